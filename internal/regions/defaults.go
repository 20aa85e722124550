package regions

import "github.com/joseph-ayodele/labels-tracker/constants"

const (
	VariantPrimary  = "primary"
	VariantFallback = "fallback"

	// slotOffset is the horizontal distance between the two labels on a page.
	slotOffset = 393
	// fallbackShift lifts every region for the older template, which had no
	// carrier banner above the label body.
	fallbackShift = -36
)

type rect struct {
	field               constants.Field
	x, y, width, height float64
}

var productionGeometry = []rect{
	{constants.FieldDeliveryDate, 193, 311, 238, 33},
	{constants.FieldQuantity, 69, 96, 50, 69},
	{constants.FieldClientInfo, 48, 933, 291, 119},
	{constants.FieldBarcode, 144, 445, 154, 30},
	{constants.FieldSalesNumber, 53, 51, 168, 25},
	{constants.FieldProduct, 156, 88, 269, 60},
}

func twoUp(name string, dy float64) Layout {
	l := Layout{Name: name}
	for slot := 1; slot <= 2; slot++ {
		dx := float64((slot - 1) * slotOffset)
		for _, r := range productionGeometry {
			l.Regions = append(l.Regions, Region{
				Name:   Named(r.field, slot),
				X:      r.x + dx,
				Y:      r.y + dy,
				Width:  r.width,
				Height: r.height,
			})
		}
	}
	return l
}

// DefaultCatalog ships the two-labels-per-page templates.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(constants.MarkerField, twoUp(VariantPrimary, 0), twoUp(VariantFallback, fallbackShift))
	if err != nil {
		panic(err)
	}
	return c
}
