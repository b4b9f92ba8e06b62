package rental

import (
	"log/slog"
	"net/http"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller"
	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/jwtx"
	rs "github.com/felipe-nonato/Saber-IFPB/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Deposit a book
// @Summary      Deposit book
// @Description  Adds a book to the catalog as available; the caller is its depositor and earns a coin credit
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  DepositReq  true  "book"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "isbn already cataloged"
// @Router       /v1/books [post]
func (h *Controller) Deposit(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "deposit", err)
	}
	var req DepositReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		h.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return controller.BadRequest(c, "validation error")
	}
	out, err := h.Svc.Deposit(c.Request().Context(), uid, req.toModel())
	if err != nil {
		return controller.Fail(c, h.Log, "deposit", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "deposited", "book": out.Book, "credit": out.Credit})
}

// Rent a book
// @Summary      Rent book
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "book id"
// @Success      201  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "book not available"
// @Router       /v1/books/{id}/rent [post]
func (h *Controller) Rent(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "rent", err)
	}
	out, err := h.Svc.Rent(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return controller.Fail(c, h.Log, "rent", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "rented", "book": out.Book, "rental": out.Rental})
}

// Return a book
// @Summary      Return book
// @Description  Closes the caller's rental. A rating from 1 to 5 records the read.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string     true   "book id"
// @Param        payload  body  ReturnReq  false  "rating"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any "not the holder"
// @Failure      409  {object}  map[string]any "not rented"
// @Router       /v1/books/{id}/return [post]
func (h *Controller) Return(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "return", err)
	}
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return controller.BadRequest(c, "rating must be between 1 and 5")
	}
	out, err := h.Svc.Return(c.Request().Context(), c.Param("id"), uid, req.Rating)
	if err != nil {
		return controller.Fail(c, h.Log, "return", err)
	}
	resp := echo.Map{
		"message": "returned",
		"book":    out.Book,
		"rental":  out.Rental,
		"penalty": out.Penalty,
	}
	if out.Promoted {
		resp["promoted_to"] = out.PromotedTo
	}
	return c.JSON(http.StatusOK, resp)
}

// Reserve a book
// @Summary      Reserve book
// @Description  Queues the caller behind the current holder. Repeating the call keeps the original place.
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "book id"
// @Success      201  {object}  map[string]any
// @Failure      409  {object}  map[string]any "book available or held by caller"
// @Router       /v1/books/{id}/reserve [post]
func (h *Controller) Reserve(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "reserve", err)
	}
	res, err := h.Svc.Reserve(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return controller.Fail(c, h.Log, "reserve", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "reserved", "reservation": res})
}

// CancelReservation leaves the queue
// @Summary      Cancel reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "book id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any "not queued"
// @Router       /v1/books/{id}/reserve [delete]
func (h *Controller) CancelReservation(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "cancel reservation", err)
	}
	if err := h.Svc.CancelReservation(c.Request().Context(), c.Param("id"), uid); err != nil {
		return controller.Fail(c, h.Log, "cancel reservation", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// Queue lists reservations
// @Summary      Reservation queue
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "book id"
// @Success      200  {object}  map[string]any
// @Router       /v1/books/{id}/reservations [get]
func (h *Controller) Queue(c echo.Context) error {
	rows, err := h.Svc.Queue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Fail(c, h.Log, "queue", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
