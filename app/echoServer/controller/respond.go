package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/labstack/echo/v4"
)

// Status maps an error code to its HTTP status.
func Status(code apperr.ErrCode) int {
	switch code {
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrBadInput:
		return http.StatusBadRequest
	case apperr.ErrUnauthenticated:
		return http.StatusUnauthorized
	case apperr.ErrNotHolder:
		return http.StatusForbidden
	case apperr.ErrIllegalTransition, apperr.ErrNoOpenRental, apperr.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as {"message", "code"}. Uncoded errors are logged and
// hidden behind a generic 500.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	code := apperr.Code(err)
	status := Status(code)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error(op+" failed",
				"err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"path", c.Path(),
				"method", c.Request().Method,
			)
		}
		return c.JSON(status, echo.Map{"message": "internal error", "code": "INTERNAL"})
	}
	msg := apperr.Detail(err)
	if msg == "" {
		msg = string(code)
	}
	return c.JSON(status, echo.Map{"message": msg, "code": code})
}

// BadRequest is the 400 written for unparsable or invalid requests.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg, "code": apperr.ErrBadInput})
}

// QueryInt reads a non-negative integer query parameter; missing means 0.
func QueryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Newf(apperr.ErrBadInput, "invalid %s", name)
	}
	return n, nil
}
