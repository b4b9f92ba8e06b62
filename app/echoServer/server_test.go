package echoServer_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer"
	bookctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/book"
	historyctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/history"
	recommendctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/recommend"
	rentalctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/rental"
	catalogrepo "github.com/felipe-nonato/Saber-IFPB/repository/catalog"
	historyrepo "github.com/felipe-nonato/Saber-IFPB/repository/history"
	"github.com/felipe-nonato/Saber-IFPB/repository/locker"
	rentalrepo "github.com/felipe-nonato/Saber-IFPB/repository/rental"
	reservationrepo "github.com/felipe-nonato/Saber-IFPB/repository/reservation"
	booksvc "github.com/felipe-nonato/Saber-IFPB/service/book"
	historysvc "github.com/felipe-nonato/Saber-IFPB/service/history"
	"github.com/felipe-nonato/Saber-IFPB/service/recommend"
	rentalsvc "github.com/felipe-nonato/Saber-IFPB/service/rental"
	"github.com/felipe-nonato/Saber-IFPB/util/jwt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := slogDiscard()

	catalog := catalogrepo.NewMemory()
	rentals := rentalrepo.NewMemory()
	records := historyrepo.NewMemory()
	queue := reservationrepo.NewMemory()
	hs := historysvc.New(records, rentals, catalog)
	rs := rentalsvc.New(rentalsvc.Deps{
		Catalog: catalog,
		Rentals: rentals,
		Queue:   queue,
		History: hs,
		Locker:  locker.NewMemory(),
		Log:     log,
	}, rentalsvc.DefaultPolicy())

	v := validator.New()
	return echoServer.New(echoServer.C{
		Book:      &bookctrl.Controller{Svc: booksvc.New(catalog), V: v, Log: log},
		Rental:    &rentalctrl.Controller{Svc: rs, V: v, Log: log},
		History:   &historyctrl.Controller{Svc: hs, Log: log},
		Recommend: &recommendctrl.Controller{Svc: recommend.New(catalog, records, queue, recommend.DefaultConfig(), log), Log: log},
		JWTSecret: secret,
		Log:       log,
	}, v)
}

type call struct {
	method, path, user, body string
}

func do(t *testing.T, e *echo.Echo, c call) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if c.user != "" {
		tok, err := jwt.Issue(secret, c.user, time.Hour)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func deposit(t *testing.T, e *echo.Echo, user, title, category string) string {
	t.Helper()
	code, out := do(t, e, call{http.MethodPost, "/v1/books", user,
		`{"title":"` + title + `","author":"Autora","category":"` + category + `"}`})
	require.Equal(t, http.StatusCreated, code, out)
	require.EqualValues(t, 10, out["credit"])
	return out["book"].(map[string]any)["id"].(string)
}

func TestServer_Operational(t *testing.T) {
	e := newServer(t)

	code, out := do(t, e, call{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", out["status"])

	code, _ = do(t, e, call{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, code)
}

func TestServer_AuthRequired(t *testing.T) {
	e := newServer(t)

	code, out := do(t, e, call{method: http.MethodPost, path: "/v1/books", body: `{"title":"x","author":"y"}`})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "UNAUTHENTICATED", out["code"])

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me/read", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	code, _ = do(t, e, call{method: http.MethodGet, path: "/v1/books"})
	require.Equal(t, http.StatusOK, code, "catalog is public")
}

func TestServer_LendingFlow(t *testing.T) {
	e := newServer(t)
	id := deposit(t, e, "depositor", "Vidas Secas", "Fiction")
	other := deposit(t, e, "depositor", "Capitães da Areia", "Fiction")

	code, out := do(t, e, call{http.MethodPost, "/v1/books/" + id + "/rent", "u2", ""})
	require.Equal(t, http.StatusCreated, code, out)
	require.Equal(t, "rented", out["book"].(map[string]any)["state"])
	require.Equal(t, "u2", out["rental"].(map[string]any)["user_id"])

	code, out = do(t, e, call{http.MethodPost, "/v1/books/" + id + "/rent", "u3", ""})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "ILLEGAL_TRANSITION", out["code"])

	code, _ = do(t, e, call{http.MethodPost, "/v1/books/" + id + "/reserve", "u3", ""})
	require.Equal(t, http.StatusCreated, code)

	code, out = do(t, e, call{http.MethodGet, "/v1/books/" + id + "/reservations", "u3", ""})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out["data"], 1)

	code, out = do(t, e, call{http.MethodPost, "/v1/books/" + id + "/return", "u3", ""})
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "NOT_HOLDER", out["code"])

	code, _ = do(t, e, call{http.MethodPost, "/v1/books/" + id + "/return", "u2", `{"rating":7}`})
	require.Equal(t, http.StatusBadRequest, code)

	code, out = do(t, e, call{http.MethodPost, "/v1/books/" + id + "/return", "u2", `{"rating":4}`})
	require.Equal(t, http.StatusOK, code, out)
	require.Equal(t, "u3", out["promoted_to"])
	require.Equal(t, "u3", out["book"].(map[string]any)["holder_id"])

	code, out = do(t, e, call{http.MethodGet, "/v1/users/me/read", "u2", ""})
	require.Equal(t, http.StatusOK, code)
	read := out["data"].([]any)
	require.Len(t, read, 1)
	require.EqualValues(t, 4, read[0].(map[string]any)["rating"])

	code, out = do(t, e, call{http.MethodGet, "/v1/users/me/returned", "u2", ""})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out["data"], 1)

	code, out = do(t, e, call{http.MethodGet, "/v1/users/me/recommendations", "u2", ""})
	require.Equal(t, http.StatusOK, code)
	recs := out["data"].([]any)
	require.Len(t, recs, 1)
	require.Equal(t, other, recs[0].(map[string]any)["book"].(map[string]any)["id"])

	code, out = do(t, e, call{http.MethodGet, "/v1/books/stats", "", ""})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, out["total"])
	require.EqualValues(t, 1, out["rented"])
}

func TestServer_RecommendationsSkipQueuedBooks(t *testing.T) {
	e := newServer(t)
	a := deposit(t, e, "depositor", "O Cortiço", "Fiction")
	b := deposit(t, e, "depositor", "Dom Casmurro", "Fiction")

	code, _ := do(t, e, call{http.MethodPost, "/v1/books/" + a + "/rent", "u1", ""})
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, e, call{http.MethodPost, "/v1/books/" + a + "/return", "u1", `{"rating":5}`})
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, e, call{http.MethodGet, "/v1/users/me/recommendations", "u1", ""})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out["data"], 1)

	code, _ = do(t, e, call{http.MethodPost, "/v1/books/" + b + "/rent", "u2", ""})
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, e, call{http.MethodPost, "/v1/books/" + b + "/reserve", "u1", ""})
	require.Equal(t, http.StatusCreated, code)

	code, out = do(t, e, call{http.MethodGet, "/v1/users/me/recommendations", "u1", ""})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, out["data"])
}

func TestServer_CancelReservation(t *testing.T) {
	e := newServer(t)
	id := deposit(t, e, "depositor", "Iracema", "Romance")

	code, _ := do(t, e, call{http.MethodPost, "/v1/books/" + id + "/rent", "u1", ""})
	require.Equal(t, http.StatusCreated, code)

	code, out := do(t, e, call{http.MethodDelete, "/v1/books/" + id + "/reserve", "u2", ""})
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "NOT_FOUND", out["code"])

	code, _ = do(t, e, call{http.MethodPost, "/v1/books/" + id + "/reserve", "u2", ""})
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, e, call{http.MethodDelete, "/v1/books/" + id + "/reserve", "u2", ""})
	require.Equal(t, http.StatusOK, code)
}

func TestServer_BadRequests(t *testing.T) {
	e := newServer(t)

	cases := []struct {
		name string
		c    call
		want int
	}{
		{"unknown state", call{http.MethodGet, "/v1/books?state=lost", "", ""}, http.StatusBadRequest},
		{"bad page", call{http.MethodGet, "/v1/books?page=x", "", ""}, http.StatusBadRequest},
		{"missing book", call{http.MethodGet, "/v1/books/nope", "", ""}, http.StatusNotFound},
		{"deposit without title", call{http.MethodPost, "/v1/books", "u1", `{"author":"a"}`}, http.StatusBadRequest},
		{"broken json", call{http.MethodPost, "/v1/books", "u1", `{"title":`}, http.StatusBadRequest},
		{"negative limit", call{http.MethodGet, "/v1/users/me/recommendations?limit=-1", "u1", ""}, http.StatusBadRequest},
		{"return unknown book", call{http.MethodPost, "/v1/books/nope/return", "u1", ""}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := do(t, e, tc.c)
			require.Equal(t, tc.want, code)
		})
	}
}

func TestServer_ListPaging(t *testing.T) {
	e := newServer(t)
	for i := 0; i < 10; i++ {
		deposit(t, e, "depositor", "Livro", "Misc")
	}
	code, out := do(t, e, call{http.MethodGet, "/v1/books?page=2", "", ""})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out["items"], 2)
	require.EqualValues(t, 2, out["pages"])
	require.EqualValues(t, 10, out["total"])
}
