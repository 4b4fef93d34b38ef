package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns service health status (basic)
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stockledger-service",
	})
}

// ExtendedHealthCheck returns detailed health status including Redis
func (h *StockHandler) ExtendedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	health := gin.H{
		"status":  "healthy",
		"service": "stockledger-service",
		"checks":  gin.H{},
	}

	checks := health["checks"].(gin.H)

	if err := h.inventory.RedisHealth(ctx); err != nil {
		checks["redis"] = gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		health["status"] = "degraded"
	} else {
		checks["redis"] = gin.H{
			"status": "healthy",
		}
	}

	c.JSON(http.StatusOK, health)
}
