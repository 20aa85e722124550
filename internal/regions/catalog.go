package regions

import (
	"strings"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/common"
)

// Layout is one template's ordered set of regions.
type Layout struct {
	Name    string   `json:"name" yaml:"name"`
	Regions []Region `json:"regions" yaml:"regions"`
}

// Active returns the normalized, non-inert regions in order.
func (l Layout) Active() []Region {
	out := make([]Region, 0, len(l.Regions))
	for _, r := range l.Regions {
		if r.IsInert() {
			continue
		}
		out = append(out, r.Normalize())
	}
	return out
}

// Find returns the first active region for field in slot.
func (l Layout) Find(field constants.Field, slot int) (Region, bool) {
	for _, r := range l.Active() {
		f, ok := r.Field()
		if ok && f == field && r.Slot() == slot {
			return r, true
		}
	}
	return Region{}, false
}

// Catalog is an immutable, ordered set of layout variants. The first variant
// is the primary one.
type Catalog struct {
	marker  constants.Field
	layouts []Layout
}

// NewCatalog validates layouts. Every layout needs a unique name and at least
// one active region.
func NewCatalog(marker constants.Field, layouts ...Layout) (*Catalog, error) {
	if len(layouts) == 0 {
		return nil, common.ConfigurationError("catalog has no layouts")
	}
	if marker == "" {
		marker = constants.MarkerField
	}
	seen := make(map[string]bool, len(layouts))
	copied := make([]Layout, 0, len(layouts))
	for i, l := range layouts {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return nil, common.ConfigurationError("layout %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, common.ConfigurationError("duplicate layout %q", name)
		}
		seen[key] = true
		if len(l.Active()) == 0 {
			return nil, common.ConfigurationError("layout %q has no regions", name)
		}
		regions := make([]Region, len(l.Regions))
		copy(regions, l.Regions)
		copied = append(copied, Layout{Name: name, Regions: regions})
	}
	return &Catalog{marker: marker, layouts: copied}, nil
}

// Variant returns the named layout (case-insensitive).
func (c *Catalog) Variant(name string) (Layout, error) {
	for _, l := range c.layouts {
		if strings.EqualFold(l.Name, strings.TrimSpace(name)) {
			return l, nil
		}
	}
	return Layout{}, common.ConfigurationError("unknown layout variant %q", name)
}

// Variants returns all layouts in priority order.
func (c *Catalog) Variants() []Layout {
	out := make([]Layout, len(c.layouts))
	copy(out, c.layouts)
	return out
}

// Primary is the first variant.
func (c *Catalog) Primary() Layout {
	return c.layouts[0]
}

// Marker is the field probed to choose a variant.
func (c *Catalog) Marker() constants.Field {
	return c.marker
}
