package extract

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/geometry"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

// Intersects maps the region's pixel corners to native space and tests the
// fragment box against it.
func Intersects(f document.Fragment, region regions.Region, transform geometry.Matrix, tolerance float64) bool {
	return nativeBox(region, transform).Overlaps(fragmentBox(f), tolerance)
}

func nativeBox(region regions.Region, transform geometry.Matrix) geometry.Box {
	if transform.IsZero() {
		transform = geometry.Identity
	}
	a, b := region.Corners()
	return geometry.BoxFromPoints(transform.Apply(a), transform.Apply(b))
}

func fragmentBox(f document.Fragment) geometry.Box {
	return geometry.BoxFromPoints(
		geometry.Point{X: f.X, Y: f.Y},
		geometry.Point{X: f.X + f.Width, Y: f.Y + f.Height},
	)
}

// ReadRegion concatenates, in reading order, the fragments that intersect
// region. Lines run top to bottom and left to right within a line.
func ReadRegion(region regions.Region, page document.Page, opts Options) string {
	if region.IsInert() {
		return ""
	}
	box := nativeBox(region, page.Transform)

	var hits []document.Fragment
	for _, f := range page.Fragments {
		text := norm.NFC.String(f.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !box.Overlaps(fragmentBox(f), opts.Tolerance) {
			continue
		}
		f.Text = text
		hits = append(hits, f)
	}
	if len(hits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(hits))
	for _, line := range groupLines(hits, opts.lineTolerance()) {
		for _, f := range line {
			parts = append(parts, f.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// groupLines clusters fragments whose Y is within tol of the line's first
// fragment. Anchoring on the first fragment keeps the grouping transitive.
func groupLines(frags []document.Fragment, tol float64) [][]document.Fragment {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].Y > frags[j].Y
	})

	var lines [][]document.Fragment
	var anchor float64
	for i, f := range frags {
		if i == 0 || anchor-f.Y >= tol {
			lines = append(lines, []document.Fragment{f})
			anchor = f.Y
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], f)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].X < line[j].X
		})
	}
	return lines
}
