package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

// Session is the immutable input of one extraction run.
type Session struct {
	Organization string
	Catalog      *regions.Catalog
	// Variant forces a layout; empty means probe the marker field.
	Variant string
	// ScannedCode is a code read from the document's QR/barcode, used for
	// slots whose own code region is empty.
	ScannedCode string
	// ReferenceDate supplies the year of day/month dates. Zero means now.
	ReferenceDate time.Time
	// DefaultRegion fills state and city when a label has a postal code but no
	// recognizable state.
	DefaultRegion string
	Tolerance     float64
	LineTolerance float64
}

// FolioStore is the read side of the label store used to seed folios.
type FolioStore interface {
	LookupFolios(ctx context.Context, org, date string, codes []string) (map[string]int, error)
	LookupMaxFolio(ctx context.Context, org, date string) (int, error)
}

// Warning codes attached to a Result.
const (
	WarnEmptyResult         = common.CodeEmptyResult
	WarnUnknownOrganization = "UNKNOWN_ORGANIZATION"
	WarnNoStore             = "NO_FOLIO_STORE"
)

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is what a run produced; records are sorted by folio.
type Result struct {
	RunID        uuid.UUID            `json:"run_id"`
	Organization string               `json:"organization"`
	Layout       string               `json:"layout"`
	DeliveryDate string               `json:"delivery_date"`
	Pages        int                  `json:"pages"`
	Records      []entity.LabelRecord `json:"records"`
	Warnings     []Warning            `json:"warnings,omitempty"`
}

// HasWarning reports whether a warning with code was raised.
func (r *Result) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
