package handler

import (
	"github.com/timmy/asciime/internal/domain"
)

// GifResponse is the wire form of a gif. Dims is a [width, height] pair whose
// sides may each be null.
type GifResponse struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Preview  *string `json:"preview,omitempty"`
	Size     *int64  `json:"size"`
	Dims     []*int  `json:"dims"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
}

// BatchResponse wraps a list of gifs.
type BatchResponse struct {
	Success bool          `json:"success"`
	Data    []GifResponse `json:"data"`
	Error   string        `json:"error,omitempty"`
}

// RandomResponse wraps a single gif.
type RandomResponse struct {
	Success bool         `json:"success"`
	Data    *GifResponse `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// CategoriesResponse wraps the catalog.
type CategoriesResponse struct {
	Success bool              `json:"success"`
	Data    []domain.Category `json:"data"`
}

// ErrorResponse is returned by every failing endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func newGifResponse(g domain.Gif) GifResponse {
	resp := GifResponse{
		ID:       g.ID,
		URL:      g.URL,
		Preview:  g.Preview,
		Size:     g.Size,
		Source:   string(g.Source),
		Category: g.Category,
	}
	if g.Dims != nil {
		resp.Dims = []*int{g.Dims.Width, g.Dims.Height}
	}
	return resp
}

func newGifResponses(gifs []domain.Gif) []GifResponse {
	out := make([]GifResponse, len(gifs))
	for i, g := range gifs {
		out[i] = newGifResponse(g)
	}
	return out
}

func errorResponse(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}
