package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/asciime/internal/domain"
	"github.com/timmy/asciime/internal/service"
)

const msgNoGifs = "No gifs found"

// GifHandler serves gif batches.
type GifHandler struct {
	gifService   *service.GifService
	maxCount     int
	defaultCount int
}

// NewGifHandler creates a new gif handler.
// Parameters:
//   - gifService: aggregation service.
//   - maxCount: upper bound for the count parameter.
//   - defaultCount: count used when the parameter is absent.
// Returns:
//   - *GifHandler: initialized handler.
func NewGifHandler(gifService *service.GifService, maxCount, defaultCount int) *GifHandler {
	return &GifHandler{
		gifService:   gifService,
		maxCount:     maxCount,
		defaultCount: defaultCount,
	}
}

// parseCategories reads the category parameter. It may be repeated or hold a
// comma-separated list; absent means "all".
func parseCategories(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("category") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return []string{domain.CategoryAll}
	}
	return out
}

func (h *GifHandler) parseCount(c *gin.Context) (int, error) {
	raw := c.Query("count")
	if raw == "" {
		return h.defaultCount, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("count must be an integer")
	}
	if count < 1 || count > h.maxCount {
		return 0, fmt.Errorf("count must be between 1 and %d", h.maxCount)
	}
	return count, nil
}

// Batch handles GET /api/batch.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *GifHandler) Batch(c *gin.Context) {
	count, err := h.parseCount(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	gifs := h.gifService.GetGifs(c.Request.Context(), count, parseCategories(c))
	if len(gifs) == 0 {
		c.JSON(http.StatusNotFound, errorResponse(msgNoGifs))
		return
	}

	c.JSON(http.StatusOK, BatchResponse{Success: true, Data: newGifResponses(gifs)})
}

// Random handles GET /api/random.
func (h *GifHandler) Random(c *gin.Context) {
	gifs := h.gifService.GetGifs(c.Request.Context(), 1, parseCategories(c))
	if len(gifs) == 0 {
		c.JSON(http.StatusNotFound, errorResponse(msgNoGifs))
		return
	}

	resp := newGifResponse(gifs[0])
	c.JSON(http.StatusOK, RandomResponse{Success: true, Data: &resp})
}

// BySource handles GET /api/sources/:source, a single fetch task against one
// provider.
func (h *GifHandler) BySource(c *gin.Context) {
	src, ok := domain.ParseSource(c.Param("source"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Unknown source: "+c.Param("source")))
		return
	}

	category := c.DefaultQuery("category", domain.CategoryAll)
	items := h.gifService.GetGifsFromSource(c.Request.Context(), src, category)
	if len(items) == 0 {
		c.JSON(http.StatusNotFound, errorResponse(msgNoGifs))
		return
	}

	gifs := make([]domain.Gif, len(items))
	for i, item := range items {
		gifs[i] = domain.NewGif(item)
	}
	c.JSON(http.StatusOK, BatchResponse{Success: true, Data: newGifResponses(gifs)})
}

// Categories handles GET /api/categories.
func (h *GifHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{
		Success: true,
		Data:    h.gifService.Catalog().All(),
	})
}
