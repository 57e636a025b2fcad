package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-ai/inkwell-backend/internal/observability"
)

// GET /metrics — Prometheus text exposition; 404 when metrics are disabled.
func Metrics(c *gin.Context) {
	m := observability.Current()
	if m == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Content-Type", "text/plain; version=0.0.4")
	c.Status(http.StatusOK)
	_ = m.WritePrometheus(c.Writer)
}
