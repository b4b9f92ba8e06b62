package recommend

import (
	"log/slog"
	"net/http"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller"
	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/jwtx"
	recommendsvc "github.com/felipe-nonato/Saber-IFPB/service/recommend"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc recommendsvc.Service
	Log *slog.Logger
}

// List recommendations
// @Summary      Recommendations
// @Description  Unread books ranked by affinity with the caller's ratings
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "max results, default 5, capped at 50"
// @Success      200  {object}  map[string]any
// @Router       /v1/users/me/recommendations [get]
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return controller.Fail(c, h.Log, "recommend", err)
	}
	limit, err := controller.QueryInt(c, "limit")
	if err != nil {
		return controller.Fail(c, h.Log, "recommend", err)
	}
	rows, err := h.Svc.Recommend(c.Request().Context(), uid, limit)
	if err != nil {
		return controller.Fail(c, h.Log, "recommend", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
