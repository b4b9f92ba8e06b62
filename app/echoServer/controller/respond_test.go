package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felipe-nonato/Saber-IFPB/util/apperr"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := map[apperr.ErrCode]int{
		apperr.ErrNotFound:          http.StatusNotFound,
		apperr.ErrBadInput:          http.StatusBadRequest,
		apperr.ErrUnauthenticated:   http.StatusUnauthorized,
		apperr.ErrNotHolder:         http.StatusForbidden,
		apperr.ErrIllegalTransition: http.StatusConflict,
		apperr.ErrNoOpenRental:      http.StatusConflict,
		apperr.ErrConflict:          http.StatusConflict,
		"":                          http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, Status(code), code)
	}
}

func TestFail(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, Fail(c, nil, "op", apperr.New(apperr.ErrNotHolder, "book is rented by another member")))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"message":"book is rented by another member","code":"NOT_HOLDER"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, Fail(c, nil, "op", errors.New("connection reset")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection reset")
}

func TestQueryInt(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=3&bad=x&neg=-2", nil), httptest.NewRecorder())

	n, err := QueryInt(c, "page")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = QueryInt(c, "missing")
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = QueryInt(c, "bad")
	require.True(t, apperr.Is(err, apperr.ErrBadInput))
	_, err = QueryInt(c, "neg")
	require.True(t, apperr.Is(err, apperr.ErrBadInput))
}
