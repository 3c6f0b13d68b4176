package handler

import (
	"context"
	"net/http"
	"time"

	"paynest/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns a handler for GET /health. It pings every backing
// store and reports per-dependency status.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checkers))
		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				deps[checker.Name()] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[checker.Name()] = "up"
		}

		word := "healthy"
		if status != http.StatusOK {
			word = "degraded"
		}

		c.JSON(status, gin.H{
			"status":       word,
			"dependencies": deps,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
