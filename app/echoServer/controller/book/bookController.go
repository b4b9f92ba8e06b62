package book

import (
	"log/slog"
	"net/http"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller"
	"github.com/felipe-nonato/Saber-IFPB/model"
	booksvc "github.com/felipe-nonato/Saber-IFPB/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List books
// @Summary      List books
// @Description  Catalog in deposit order, 8 per page, optionally filtered by state
// @Tags         books
// @Produce      json
// @Param        state  query  string  false  "available, rented or reserved"
// @Param        page   query  int     false  "page, from 1"
// @Success      200  {object}  booksvc.Page
// @Failure      400  {object}  map[string]any
// @Router       /v1/books [get]
func (h *Controller) List(c echo.Context) error {
	var q ListQuery
	if err := c.Bind(&q); err != nil {
		return controller.BadRequest(c, "invalid query")
	}
	if err := h.V.Struct(q); err != nil {
		return controller.BadRequest(c, "validation error")
	}
	page, err := h.Svc.List(c.Request().Context(), model.StateKind(q.State), q.Page)
	if err != nil {
		return controller.Fail(c, h.Log, "book list", err)
	}
	return c.JSON(http.StatusOK, page)
}

// Detail of one book
// @Summary      Book detail
// @Tags         books
// @Produce      json
// @Param        id  path  string  true  "book id"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  map[string]any
// @Router       /v1/books/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	b, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Fail(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Stats counts books per state
// @Summary      Catalog counters
// @Tags         books
// @Produce      json
// @Success      200  {object}  booksvc.Stats
// @Router       /v1/books/stats [get]
func (h *Controller) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "book stats", err)
	}
	return c.JSON(http.StatusOK, st)
}
