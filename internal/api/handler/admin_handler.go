package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/service"
)

// AdminHandler handles admin operations.
type AdminHandler struct {
	gifService *service.GifService
	logger     *logger.Logger
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - gifService: aggregation service owning the seen-sets.
//   - log: logger instance.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(gifService *service.GifService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		gifService: gifService,
		logger:     log,
	}
}

// log returns a logger from Gin context if available, otherwise returns the default logger
func (h *AdminHandler) log(c *gin.Context) *logger.Logger {
	if l := logger.FromContext(c.Request.Context()); l != nil {
		return l
	}
	return h.logger
}

// ClearSeenResponse reports a seen-set invalidation.
type ClearSeenResponse struct {
	Success bool   `json:"success"`
	Source  string `json:"source"`
	Deleted int64  `json:"deleted"`
}

// ClearSeen handles DELETE /api/admin/seen/:source, dropping today's
// seen-set for one provider.
func (h *AdminHandler) ClearSeen(c *gin.Context) {
	src, ok := domain.ParseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Unknown source: "+c.Param("source")))
		return
	}

	deleted, err := h.gifService.ClearSeen(c.Request.Context(), src)
	if err != nil {
		h.log(c).WithError(err).WithField(logger.FieldSource, string(src)).Error("Failed to clear seen-set")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to clear seen-set: "+err.Error()))
		return
	}

	h.log(c).WithField(logger.FieldSource, string(src)).WithField(logger.FieldCount, deleted).Info("Cleared seen-set")
	c.JSON(http.StatusOK, ClearSeenResponse{Success: true, Source: string(src), Deleted: deleted})
}
