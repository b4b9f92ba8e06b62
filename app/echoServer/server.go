package echoServer

import (
	"net/http"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// New builds the echo instance with middlewares, operational endpoints and
// the /v1 routes.
func New(c C, v *validator.Validate) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = validation.New(v)
	RegisterMiddlewares(e, c.Log)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	Register(e, c)
	return e
}
