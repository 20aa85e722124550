package pipeline

import (
	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/extract"
	"github.com/joseph-ayodele/labels-tracker/internal/normalize"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

var slots = [...]int{1, 2}

// readSlot samples every region of slot on page. When a layout has several
// regions for one field, the last non-empty reading wins.
func readSlot(layout regions.Layout, page document.Page, slot int, reader extract.FieldReader) map[constants.Field]string {
	raw := map[constants.Field]string{}
	for _, r := range layout.Active() {
		if r.Slot() != slot {
			continue
		}
		field, ok := r.Field()
		if !ok {
			continue
		}
		if text := reader.ReadRegion(r, page); text != "" {
			raw[field] = text
		}
	}
	return raw
}

// readCode samples only the tracking code regions of slot.
func readCode(layout regions.Layout, page document.Page, slot int, reader extract.FieldReader) string {
	var code string
	for _, r := range layout.Active() {
		if r.Slot() != slot {
			continue
		}
		if field, ok := r.Field(); !ok || field != constants.FieldBarcode {
			continue
		}
		if c := normalize.Code(reader.ReadRegion(r, page)); c != "" {
			code = c
		}
	}
	return code
}

// slotCode is the code a slot is numbered by, falling back to the scanned code
// when the slot has text but no code of its own.
func slotCode(f normalize.Fields, scanned string) string {
	if f.Code == "" && f.Populated {
		return scanned
	}
	return f.Code
}

// assembler turns one slot's normalized fields into a record.
type assembler struct {
	organization  string
	defaultRegion string
	reference     normalize.Date
}

// emits reports whether a slot yields a record at all.
func (a assembler) emits(f normalize.Fields) bool {
	return f.Address.PostalCode != "" && (f.Date.OK || a.reference.OK)
}

func (a assembler) record(page, slot, folio int, code string, f normalize.Fields) entity.LabelRecord {
	date := f.Date
	if !date.OK {
		hour := date.Hour
		date = a.reference
		date.Hour = hour
	}

	state, city := f.Address.State, f.Address.City
	if state == "" {
		state, city = a.defaultRegion, a.defaultRegion
	}

	rec := entity.LabelRecord{
		Organization: a.organization,
		Page:         page,
		Slot:         slot,
		Folio:        folio,
		DeliveryDate: date.ISO,
		Quantity:     f.Quantity,
		ClientInfo:   f.ClientInfo,
		ClientName:   f.Address.ClientName,
		PostalCode:   f.Address.PostalCode,
		State:        state,
		City:         city,
		Code:         code,
		SalesNumber:  f.SalesNumber,
		Product:      f.Product,
		SKU:          f.SKU,
		DisplayDate:  date.Display,
		Color:        date.Color,
	}
	if date.Hour != "" {
		hour := date.Hour
		rec.DeliveryHour = &hour
	}
	return rec
}
