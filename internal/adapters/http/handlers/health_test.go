package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

func healthEngine(t *testing.T, checks ...ports.HealthChecker) *gin.Engine {
	t.Helper()

	registry := ports.NewHealthRegistry()
	for _, c := range checks {
		require.NoError(t, registry.Register(c))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "quoteswipe_test_total", Help: "test"}))

	r := gin.New()
	NewHealthHandler(registry, NewBuildInfo("1.2.3", "abc123", "2026-10-01T00:00:00Z"), reg).Register(r.Group("/-"))

	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestHealth_Liveness(t *testing.T) {
	w := get(healthEngine(t), "/-/live")

	require.Equal(t, http.StatusOK, w.Code)

	var resp liveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealth_Readiness(t *testing.T) {
	ok := ports.CheckFunc{CheckName: "sessions", Fn: func(context.Context) error { return nil }}
	broken := ports.CheckFunc{CheckName: "upstream", Fn: func(context.Context) error { return errors.New("circuit open") }}

	w := get(healthEngine(t, ok), "/-/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(healthEngine(t, ok, broken), "/-/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var result ports.HealthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, ports.HealthStatusUnhealthy, result.Status)
	assert.Equal(t, "circuit open", result.Checks["upstream"].Message)
}

func TestHealth_Build(t *testing.T) {
	w := get(healthEngine(t), "/-/build")

	var bi BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bi))
	assert.Equal(t, "1.2.3", bi.Version)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestHealth_Metrics(t *testing.T) {
	w := get(healthEngine(t), "/-/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quoteswipe_test_total")
}
