package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/techquiz/internal/config"
	"github.com/gokatarajesh/techquiz/internal/logging"
)

var testCORS = config.CORS{
	AllowedOrigins: []string{"http://localhost:3000"},
	AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"Content-Type", "X-Client-ID"},
	MaxAge:         600,
}

type echoRoutes struct{}

func (echoRoutes) Register(r *mux.Router) {
	r.HandleFunc("/v1/echo", func(w http.ResponseWriter, r *http.Request) {
		// The middleware must have installed a live logger.
		if logging.FromContext(r.Context()).GetLevel() == zerolog.Disabled {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := NewRouter(testCORS, zerolog.Nop(), nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestPing(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := NewRouter(testCORS, zerolog.Nop(), map[string]Pinger{"redis": ok})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewRouter(testCORS, zerolog.Nop(), map[string]Pinger{"redis": ok, "postgres": down})
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFeatureRoutesGetRequestLogger(t *testing.T) {
	h := NewRouter(testCORS, zerolog.New(nil), nil, echoRoutes{})
	req := httptest.NewRequest(http.MethodPost, "/v1/echo", nil)
	req.Header.Set(RequestIDHeader, "req-1")

	rec := serve(h, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(testCORS, zerolog.Nop(), nil, echoRoutes{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/echo", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := serve(h, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, X-Client-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := NewRouter(testCORS, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
