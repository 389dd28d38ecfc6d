package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-service/internal/mocks"
	"github.com/jsamuelsen/quote-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func healthRouter(t *testing.T, setup func(*mocks.MockHealthRegistry)) *gin.Engine {
	t.Helper()

	registry := mocks.NewMockHealthRegistry(t)
	if setup != nil {
		setup(registry)
	}

	router := gin.New()
	NewHealthHandler(registry, NewBuildInfo("1.4.0", "9f2c1ab", "2024-05-01T08:00:00Z")).RegisterRoutes(router)

	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestHealthHandler_RootAndLiveness(t *testing.T) {
	// No expectations: neither endpoint may consult the registry.
	router := healthRouter(t, nil)

	root := get(router, "/")
	assert.Equal(t, http.StatusOK, root.Code)
	assert.Empty(t, root.Body.String())

	live := get(router, "/-/live")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.JSONEq(t, `{"status":"ok"}`, live.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		result     *ports.HealthResult
		wantStatus int
		wantRetry  string
	}{
		{
			name: "store reachable",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{"postgres": {Status: ports.HealthStatusHealthy}},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "store unreachable",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{
					"postgres": {Status: ports.HealthStatusUnhealthy, Message: "connection refused"},
				},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantRetry:  "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := healthRouter(t, func(m *mocks.MockHealthRegistry) {
				m.EXPECT().CheckAll(mock.Anything).Return(tt.result)
			})

			w := get(router, "/-/ready")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))

			var body ports.HealthResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.result.Status, body.Status)
			assert.Equal(t, tt.result.Checks["postgres"].Message, body.Checks["postgres"].Message)
		})
	}
}

func TestHealthHandler_Build(t *testing.T) {
	w := get(healthRouter(t, nil), "/-/build")

	require.Equal(t, http.StatusOK, w.Code)

	var info BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, BuildInfo{
		Version:   "1.4.0",
		Commit:    "9f2c1ab",
		BuildTime: "2024-05-01T08:00:00Z",
		GoVersion: runtime.Version(),
	}, info)
}

func TestHealthHandler_Metrics(t *testing.T) {
	w := get(healthRouter(t, nil), "/-/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
