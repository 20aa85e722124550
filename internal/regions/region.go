// Package regions holds the operator-defined rectangles labels are sampled at.
package regions

import (
	"strings"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/geometry"
)

// Region is a named rectangle in rendered-page pixel space (y grows downwards).
type Region struct {
	Name   string  `json:"name" yaml:"name"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Normalize moves the origin so that width and height are non-negative.
func (r Region) Normalize() Region {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// IsInert reports a zero-area click that never became a rectangle.
func (r Region) IsInert() bool {
	return r.Width == 0 && r.Height == 0
}

// Slot is 2 for names ending in " 2" and 1 otherwise.
func (r Region) Slot() int {
	_, slot := splitSlot(r.Name)
	return slot
}

// Field resolves the logical field this region samples.
func (r Region) Field() (constants.Field, bool) {
	base, _ := splitSlot(r.Name)
	return constants.CanonicalField(base)
}

// Corners returns the top-left and bottom-right pixel corners.
func (r Region) Corners() (geometry.Point, geometry.Point) {
	n := r.Normalize()
	return geometry.Point{X: n.X, Y: n.Y}, geometry.Point{X: n.X + n.Width, Y: n.Y + n.Height}
}

func splitSlot(name string) (string, int) {
	trimmed := strings.TrimSpace(name)
	switch {
	case strings.HasSuffix(trimmed, " 2"):
		return strings.TrimSpace(strings.TrimSuffix(trimmed, " 2")), 2
	case strings.HasSuffix(trimmed, " 1"):
		return strings.TrimSpace(strings.TrimSuffix(trimmed, " 1")), 1
	default:
		return trimmed, 1
	}
}

// Named builds the region name for a field in a slot.
func Named(field constants.Field, slot int) string {
	if slot == 2 {
		return string(field) + " 2"
	}
	return string(field)
}
