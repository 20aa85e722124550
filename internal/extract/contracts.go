package extract

import (
	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

// Defaults for region sampling.
const (
	DefaultTolerance     = 0
	DefaultLineTolerance = 2
)

// Options tune region sampling. Zero LineTolerance means DefaultLineTolerance.
type Options struct {
	// Tolerance widens the overlap test in native units; about 5 helps when the
	// capture and extraction scales differ.
	Tolerance     float64
	LineTolerance float64
}

func (o Options) lineTolerance() float64 {
	if o.LineTolerance <= 0 {
		return DefaultLineTolerance
	}
	return o.LineTolerance
}

// FieldReader samples the text under a region on a page.
type FieldReader interface {
	ReadRegion(region regions.Region, page document.Page) string
}

// Reader is the FieldReader used by the pipeline.
type Reader struct {
	Options Options
}

func NewReader(opts Options) *Reader {
	return &Reader{Options: opts}
}

func (r *Reader) ReadRegion(region regions.Region, page document.Page) string {
	return ReadRegion(region, page, r.Options)
}
