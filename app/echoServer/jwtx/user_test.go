package jwtx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := UserIDFromContext(c)
	require.True(t, apperr.Is(err, apperr.ErrUnauthenticated))

	c.Set(ContextKey, "member-1")
	id, err := UserIDFromContext(c)
	require.NoError(t, err)
	require.Equal(t, "member-1", id)
}
