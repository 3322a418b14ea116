package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/politrack/politrack-api/internal/service"
)

type driverReporter interface {
	ActiveDriver() string
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	store   driverReporter
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, store driverReporter) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, store: store}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports readiness together with the storage driver in use. An
// empty driver means initialization has not completed or failed.
func (h *MetricsHandler) Health(c *gin.Context) {
	driver := ""
	if h.store != nil {
		driver = h.store.ActiveDriver()
	}
	if driver == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "driver": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "driver": driver})
}
