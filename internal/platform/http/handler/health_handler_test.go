package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Check) *gin.Engine {
	h := NewHealthHandler(checks)
	r := gin.New()
	r.GET("/api/health", h.Health)
	r.HEAD("/api/health", h.Health)
	r.OPTIONS("/api/health", h.Health)
	return r
}

func request(r http.Handler, method string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, "/api/health", nil))
	return w
}

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	w := request(setupRouter(nil), http.MethodGet)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealth_HEAD(t *testing.T) {
	t.Parallel()

	w := request(setupRouter(nil), http.MethodHead)

	assert.Equal(t, http.StatusOK, w.Code)
	// HEAD should have no body
	assert.Zero(t, w.Body.Len())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealth_OPTIONS(t *testing.T) {
	t.Parallel()

	called := false
	w := request(setupRouter(map[string]Check{
		"db": func(context.Context) error { called = true; return nil },
	}), http.MethodOptions)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called, "preflight must not check dependencies")
}

func TestHealth_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		checks         map[string]Check
		expectedStatus int
		expectedBody   HealthResponse
	}{
		{
			name: "all healthy",
			checks: map[string]Check{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			expectedStatus: http.StatusOK,
			expectedBody:   HealthResponse{Status: "ok", Checks: map[string]string{"database": "ok", "redis": "ok"}},
		},
		{
			name: "one failing",
			checks: map[string]Check{
				"database": func(context.Context) error { return errors.New("dial tcp: refused") },
				"redis":    func(context.Context) error { return nil },
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   HealthResponse{Status: "degraded", Checks: map[string]string{"database": "unavailable", "redis": "ok"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := request(setupRouter(tt.checks), http.MethodGet)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedBody, resp)
			assert.NotContains(t, w.Body.String(), "refused", "error detail must not leak")

			head := request(setupRouter(tt.checks), http.MethodHead)
			assert.Equal(t, tt.expectedStatus, head.Code)
		})
	}
}
