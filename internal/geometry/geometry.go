// Package geometry holds the 2-D affine math used to map operator-drawn pixel
// rectangles onto a document's native coordinate space.
package geometry

import "math"

type Point struct {
	X, Y float64
}

// Matrix is an affine transform [a b c d e f] in PDF order:
// x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix [6]float64

// Identity leaves points unchanged.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Invert returns the inverse transform; ok is false for singular matrices.
func (m Matrix) Invert() (Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Matrix{}, false
	}
	a := m[3] / det
	b := -m[1] / det
	c := -m[2] / det
	d := m[0] / det
	return Matrix{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}, true
}

// IsZero reports whether the matrix was never set.
func (m Matrix) IsZero() bool {
	return m == Matrix{}
}

// Box is an axis-aligned rectangle in native space.
type Box struct {
	Left, Bottom, Right, Top float64
}

// BoxFromPoints normalizes two arbitrary corners into a Box.
func BoxFromPoints(a, b Point) Box {
	return Box{
		Left:   math.Min(a.X, b.X),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Min(a.Y, b.Y),
		Top:    math.Max(a.Y, b.Y),
	}
}

// Overlaps is a strict overlap test; tol widens all four comparisons.
// Boxes that only touch along an edge do not overlap when tol is 0.
func (b Box) Overlaps(o Box, tol float64) bool {
	return o.Left < b.Right+tol &&
		o.Right > b.Left-tol &&
		o.Bottom < b.Top+tol &&
		o.Top > b.Bottom-tol
}

// PixelToNative returns the transform from a rendered page image at the given
// scale back to native page space for a page with the given media box
// [x0 y0 x1 y1]. It inverts the viewport a pdf.js-style renderer uses at
// rotation 0, where the y axis points down in pixel space.
func PixelToNative(mediaBox [4]float64, scale float64) Matrix {
	if scale == 0 {
		scale = 1
	}
	x0 := math.Min(mediaBox[0], mediaBox[2])
	y1 := math.Max(mediaBox[1], mediaBox[3])
	return Matrix{1 / scale, 0, 0, -1 / scale, x0, y1}
}

// NativeToPixel is the viewport transform itself.
func NativeToPixel(mediaBox [4]float64, scale float64) Matrix {
	inv, _ := PixelToNative(mediaBox, scale).Invert()
	return inv
}
