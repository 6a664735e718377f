package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/asciime/internal/domain"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	sources []domain.Source
	backend string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sources []domain.Source, backend string) *HealthHandler {
	return &HealthHandler{sources: sources, backend: backend}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"sources": h.sources,
		"cache":   h.backend,
	})
}
