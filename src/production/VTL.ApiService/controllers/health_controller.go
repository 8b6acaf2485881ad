package controllers

import (
	"net/http"

	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/health"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"

	"github.com/gin-gonic/gin"
)

// HealthController exposes the liveness endpoint
type HealthController struct {
	checker *health.Checker
	logger  *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(checker *health.Checker, logger *logger.Logger) *HealthController {
	return &HealthController{
		checker: checker,
		logger:  logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (h *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Check)
}

// Check reports service and database health
func (h *HealthController) Check(c *gin.Context) {
	if err := h.checker.CheckDatabase(c.Request.Context()); err != nil {
		h.logger.ErrorWithError(err, "health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
