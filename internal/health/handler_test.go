// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHandler(Dependency{"database", pinger{}}, Dependency{"redis", pinger{}})

	rec := serve(h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "database", resp.Checks[0].Name)
	assert.Equal(t, "redis", resp.Checks[1].Name)
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler(
		Dependency{"database", pinger{}},
		Dependency{"redis", pinger{err: errors.New("connection refused")}},
		Dependency{Name: "cache"},
	)

	rec := serve(h, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.True(t, resp.Checks[0].Healthy)
	assert.Equal(t, "ping failed", resp.Checks[1].Message)
	assert.Equal(t, "cache checker not configured", resp.Checks[2].Message)
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler(Dependency{"database", pinger{}})
	assert.Equal(t, http.StatusOK, serve(h, "/livez").Code)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)
}

func TestNotReady(t *testing.T) {
	h := NewHandler()
	h.SetReady(false)

	rec := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
	assert.Equal(t, http.StatusOK, serve(h, "/livez").Code)
}
