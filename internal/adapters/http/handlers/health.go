// Package handlers holds the Gin handlers for the quote API and its probes.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quote-service/internal/ports"
)

// retryAfterSeconds is sent with a failed readiness probe.
const retryAfterSeconds = "5"

// BuildInfo is stamped into the binary with -ldflags and served at /-/build.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills GoVersion from the running toolchain.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// HealthHandler serves GET / and the /-/ operational endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

// NewHealthHandler creates a health handler over registry.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, buildInfo: buildInfo}
}

// Root handles GET / with 200 and an empty body. It never touches the
// store, so it answers even while the database is down.
func (h *HealthHandler) Root(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Liveness handles GET /-/live. Like Root it checks nothing.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /-/ready by pinging the quote store and any other
// registered dependency. Any failure yields 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	if result.Status == ports.HealthStatusUnhealthy {
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, result)

		return
	}

	c.JSON(http.StatusOK, result)
}

// Build handles GET /-/build.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterRoutes mounts GET / plus /-/live, /-/ready, /-/build and the
// Prometheus scrape endpoint /-/metrics.
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/", h.Root)

	ops := engine.Group("/-")
	ops.GET("/live", h.Liveness)
	ops.GET("/ready", h.Readiness)
	ops.GET("/build", h.Build)
	ops.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
