// Package document supplies positioned text fragments page by page.
package document

import (
	"context"

	"github.com/joseph-ayodele/labels-tracker/internal/geometry"
)

// DefaultRenderScale is the scale operators draw regions at.
const DefaultRenderScale = 1.5

// Fragment is a run of text positioned in native document space. (X, Y) is the
// baseline origin; the fragment box spans to (X+Width, Y+Height).
type Fragment struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page is one page's fragments plus the pixel -> native transform for the
// rendering the regions were drawn on.
type Page struct {
	Number    int
	Fragments []Fragment
	Transform geometry.Matrix
}

// Reader abstracts a paginated source of positioned text. Pages are 1-based.
type Reader interface {
	PageCount() int
	Page(ctx context.Context, n int) (Page, error)
}
