package history

import (
	"log/slog"
	"net/http"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller"
	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/jwtx"
	historysvc "github.com/felipe-nonato/Saber-IFPB/service/history"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc historysvc.Service
	Log *slog.Logger
}

// Returned lists the caller's returned books
// @Summary      Returned books
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "page, from 1"
// @Success      200  {object}  map[string]any
// @Router       /v1/users/me/returned [get]
func (h *Controller) Returned(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "returned", err)
	}
	page, err := controller.QueryInt(c, "page")
	if err != nil {
		return controller.Fail(c, h.Log, "returned", err)
	}
	rows, err := h.Svc.Returned(c.Request().Context(), uid, page)
	if err != nil {
		return controller.Fail(c, h.Log, "returned", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Read lists the caller's rated books
// @Summary      Read books
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "page, from 1"
// @Success      200  {object}  map[string]any
// @Router       /v1/users/me/read [get]
func (h *Controller) Read(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "read", err)
	}
	page, err := controller.QueryInt(c, "page")
	if err != nil {
		return controller.Fail(c, h.Log, "read", err)
	}
	rows, err := h.Svc.Read(c.Request().Context(), uid, page)
	if err != nil {
		return controller.Fail(c, h.Log, "read", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
