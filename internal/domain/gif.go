package domain

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
)

// Source identifies an upstream gif provider.
// Values include SourceTenor, SourceGiphy, and SourceReddit.
type Source string

const (
	SourceTenor  Source = "tenor"
	SourceGiphy  Source = "giphy"
	SourceReddit Source = "reddit"
)

// AllSources lists every provider in declaration order.
var AllSources = []Source{SourceTenor, SourceReddit, SourceGiphy}

// ParseSource converts a raw provider name into a Source.
// Parameters:
//   - raw: provider name, case-insensitive.
// Returns:
//   - Source: parsed source.
//   - bool: false when the name is not a known provider.
func ParseSource(raw string) (Source, bool) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllSources {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// ErrEmptyURL is returned when an item without a url reaches validation.
var ErrEmptyURL = errors.New("gif item has no url")

// Dims holds optional pixel dimensions. Each side may be unknown.
type Dims struct {
	Width  *int
	Height *int
}

// Item is a single gif fetched from a provider.
// URL is the dedup key; Category is assigned by the aggregator, not the provider.
type Item struct {
	URL      string
	Preview  *string
	Size     *int64
	Dims     *Dims
	Source   Source
	Category string

	// PreviouslySeen marks items returned after the novelty pool ran dry.
	PreviouslySeen bool
}

// Validate checks the invariants an adapter must guarantee before handing
// the item to the aggregator.
func (i Item) Validate() error {
	if strings.TrimSpace(i.URL) == "" {
		return ErrEmptyURL
	}
	return nil
}

// WithCategory returns a copy of the item tagged with category.
func (i Item) WithCategory(category string) Item {
	i.Category = category
	return i
}

// Gif is an item with its derived identifier, produced at final assembly.
type Gif struct {
	ID string
	Item
}

// GifID derives the stable identifier of a gif from its url.
// The same url always maps to the same id across requests and processes.
func GifID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// NewGif assembles a Gif from an item.
func NewGif(item Item) Gif {
	return Gif{ID: GifID(item.URL), Item: item}
}

// IntPtr returns a pointer to v, or nil when v is zero.
func IntPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// Int64Ptr returns a pointer to v, or nil when v is zero.
func Int64Ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

// StringPtr returns a pointer to v, or nil when v is empty.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// NewDims builds a Dims from raw width and height; zero sides are unknown.
// Returns nil when both sides are unknown.
func NewDims(width, height int) *Dims {
	if width == 0 && height == 0 {
		return nil
	}
	return &Dims{Width: IntPtr(width), Height: IntPtr(height)}
}
