package pipeline

import (
	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/extract"
	"github.com/joseph-ayodele/labels-tracker/internal/normalize"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

// selectLayout returns the explicitly requested variant, or probes the
// catalog's marker field (slot 1) on the first page and keeps the first
// variant under which it parses. With no match the primary variant is used.
func selectLayout(cat *regions.Catalog, explicit string, first document.Page, reader extract.FieldReader, opts normalize.Options) (regions.Layout, bool, error) {
	if explicit != "" {
		l, err := cat.Variant(explicit)
		return l, false, err
	}
	for _, l := range cat.Variants() {
		r, ok := l.Find(cat.Marker(), 1)
		if !ok {
			continue
		}
		if markerParses(cat.Marker(), reader.ReadRegion(r, first), opts) {
			return l, true, nil
		}
	}
	return cat.Primary(), false, nil
}

func markerParses(field constants.Field, text string, opts normalize.Options) bool {
	switch field {
	case constants.FieldDeliveryDate:
		return normalize.DeliveryDate(text, opts).OK
	case constants.FieldBarcode:
		return normalize.Code(text) != ""
	case constants.FieldSalesNumber:
		return normalize.SalesNumber(text) != ""
	case constants.FieldClientInfo:
		return normalize.ClientInfo(text, opts).PostalCode != ""
	default:
		return normalize.Apply(map[constants.Field]string{field: text}, opts).Populated
	}
}
