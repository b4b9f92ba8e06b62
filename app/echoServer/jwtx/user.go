package jwtx

import (
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/labstack/echo/v4"
)

// ContextKey is where the auth middleware stores the verified subject.
const ContextKey = "user"

func UserIDFromContext(c echo.Context) (string, error) {
	sub, ok := c.Get(ContextKey).(string)
	if !ok || sub == "" {
		return "", apperr.New(apperr.ErrUnauthenticated, "no verified user in context")
	}
	return sub, nil
}
