package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/jwtx"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/jwt"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterMiddlewares(e *echo.Echo, log *slog.Logger) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog(log))
}

func Slog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return nil
		}
	}
}

// JWTAuth verifies the bearer token and stores its subject under
// jwtx.ContextKey.
func JWTAuth(secret string, log *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: jwtx.ContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return jwt.ParseAuth(auth, secret)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Warn("auth rejected",
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"ip", c.RealIP(),
				"err", err,
			)
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized", "code": apperr.ErrUnauthenticated})
		},
	})
}
