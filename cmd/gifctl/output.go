package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/timmy/asciime/internal/domain"
)

type gifJSON struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	Preview        *string `json:"preview,omitempty"`
	Size           *int64  `json:"size"`
	Dims           []*int  `json:"dims"`
	Source         string  `json:"source"`
	Category       string  `json:"category"`
	PreviouslySeen bool    `json:"previously_seen,omitempty"`
}

func printJSON(w io.Writer, gifs []domain.Gif) error {
	out := make([]gifJSON, len(gifs))
	for i, g := range gifs {
		out[i] = gifJSON{
			ID:             g.ID,
			URL:            g.URL,
			Preview:        g.Preview,
			Size:           g.Size,
			Source:         string(g.Source),
			Category:       g.Category,
			PreviouslySeen: g.PreviouslySeen,
		}
		if g.Dims != nil {
			out[i].Dims = []*int{g.Dims.Width, g.Dims.Height}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printGifs(w io.Writer, gifs []domain.Gif) {
	if len(gifs) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No gifs found")
		return
	}

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	for _, g := range gifs {
		cyan.Fprintf(w, "%-7s ", g.Source)
		green.Fprintf(w, "%-14s ", g.Category)
		fmt.Fprint(w, g.URL)
		if g.Dims != nil {
			faint.Fprintf(w, "  %sx%s", side(g.Dims.Width), side(g.Dims.Height))
		}
		if g.PreviouslySeen {
			faint.Fprint(w, "  (seen)")
		}
		fmt.Fprintln(w)
	}
}

func side(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}

func printCategories(w io.Writer, cats []domain.Category) {
	yellow := color.New(color.FgYellow)
	for _, c := range cats {
		yellow.Fprintln(w, c.ID)
		fmt.Fprintf(w, "  terms:      %s\n", strings.Join(c.Terms, ", "))
		fmt.Fprintf(w, "  subreddits: %s\n", strings.Join(c.Subreddits, ", "))
	}
}

func printCleared(w io.Writer, src domain.Source, n int64) {
	if n == 0 {
		color.New(color.FgYellow).Fprintf(w, "No seen-set stored today for %s\n", src)
		return
	}
	color.New(color.FgGreen).Fprintf(w, "Cleared today's seen-set for %s\n", src)
}

func printPushed(w io.Writer, key string, categories int) {
	color.New(color.FgGreen).Fprintf(w, "Uploaded %s (%d categories)\n", key, categories)
}
