package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Environment string
	// Ping reports whether the database answers.
	Ping func() bool
}

func NewHealthHandler(environment string, ping func() bool) *HealthHandler {
	return &HealthHandler{Environment: environment, Ping: ping}
}

func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	database := "disconnected"
	if h.Ping != nil && h.Ping() {
		database = "connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "IQScalar API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.Environment,
		"database":    database,
	})
}
