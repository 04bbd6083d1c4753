package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// OpsHandler serves the health probe and the metrics endpoint.
type OpsHandler struct {
	db *gorm.DB
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(db *gorm.DB) *OpsHandler {
	return &OpsHandler{db: db}
}

// HealthCheck reports UP only when the database answers a ping.
func (h *OpsHandler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// RegisterOpsRoutes registers the health and metrics routes on the API group,
// so they sit under the common prefix and behind the client id gate like every
// other route.
func (h *OpsHandler) RegisterOpsRoutes(rg *gin.RouterGroup) {
	rg.GET("/health/check", h.HealthCheck)
	rg.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
