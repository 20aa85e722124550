package regions

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/common"
)

func TestRegionSlot(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"FECHA ENTREGA", 1},
		{"FECHA ENTREGA 1", 1},
		{"FECHA ENTREGA 2", 2},
		{"CLIENTE INFO 2 ", 2},
		{"PRODUCTO12", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (Region{Name: tc.name}).Slot(); got != tc.want {
				t.Errorf("Slot() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRegionSlotAllFields(t *testing.T) {
	for _, f := range constants.AllFields() {
		one := Region{Name: Named(f, 1)}
		two := Region{Name: Named(f, 2)}
		if one.Slot() != 1 || two.Slot() != 2 {
			t.Errorf("%s: slots = %d/%d", f, one.Slot(), two.Slot())
		}
		if got, ok := two.Field(); !ok || got != f {
			t.Errorf("%s: Field() = %q, %v", f, got, ok)
		}
	}
}

func TestRegionNormalize(t *testing.T) {
	r := Region{Name: "CANTIDAD", X: 100, Y: 200, Width: -50, Height: -20}.Normalize()
	want := Region{Name: "CANTIDAD", X: 50, Y: 180, Width: 50, Height: 20}
	if r != want {
		t.Errorf("Normalize() = %+v, want %+v", r, want)
	}
	if !(Region{X: 5, Y: 5}).IsInert() {
		t.Error("zero-size region should be inert")
	}
	if (Region{X: 5, Y: 5, Width: 1}).IsInert() {
		t.Error("region with width should not be inert")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	primary, err := c.Variant("PRIMARY")
	if err != nil {
		t.Fatalf("Variant(primary): %v", err)
	}
	if len(primary.Active()) != 12 {
		t.Fatalf("expected 12 regions, got %d", len(primary.Active()))
	}
	date2, ok := primary.Find(constants.FieldDeliveryDate, 2)
	if !ok || date2.X != 586 || date2.Y != 311 {
		t.Errorf("slot 2 date region = %+v, %v", date2, ok)
	}

	if _, err := c.Variant(VariantFallback); err != nil {
		t.Errorf("Variant(fallback): %v", err)
	}

	_, err = c.Variant("landscape")
	if !errors.Is(err, common.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestNewCatalogRejects(t *testing.T) {
	cases := map[string][]Layout{
		"no layouts":      nil,
		"unnamed":         {{Regions: []Region{{Name: "CANTIDAD", Width: 1, Height: 1}}}},
		"only inert":      {{Name: "a", Regions: []Region{{Name: "CANTIDAD"}}}},
		"duplicate names": {{Name: "a", Regions: []Region{{Name: "CANTIDAD", Width: 1}}}, {Name: "A", Regions: []Region{{Name: "CANTIDAD", Width: 1}}}},
	}
	for name, layouts := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewCatalog("", layouts...); !errors.Is(err, common.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	const doc = `
marker: fecha entrega
layouts:
  - name: narrow
    regions:
      - {name: FECHA ENTREGA, x: 10, y: 20, width: 100, height: 15}
      - {name: CLIENTE INFO 2, x: 300, y: 400, width: -80, height: 50}
`
	c, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Marker() != constants.FieldDeliveryDate {
		t.Errorf("marker = %q", c.Marker())
	}
	l, err := c.Variant("narrow")
	if err != nil {
		t.Fatal(err)
	}
	info, ok := l.Find(constants.FieldClientInfo, 2)
	if !ok || info.X != 220 || info.Width != 80 {
		t.Errorf("client info region = %+v, %v", info, ok)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Load(&buf)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Variants()) != 1 {
		t.Errorf("expected 1 layout after reload, got %d", len(again.Variants()))
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"missing layouts": "marker: CANTIDAD\n",
		"missing width":   "layouts:\n  - name: a\n    regions:\n      - {name: CANTIDAD, x: 1, y: 1, height: 1}\n",
		"string number":   "layouts:\n  - name: a\n    regions:\n      - {name: CANTIDAD, x: one, y: 1, width: 1, height: 1}\n",
		"unknown field":   "layouts:\n  - name: a\n    regions:\n      - {name: COLOR, x: 1, y: 1, width: 1, height: 1}\n",
		"unknown marker":  "marker: COLOR\nlayouts:\n  - name: a\n    regions:\n      - {name: CANTIDAD, x: 1, y: 1, width: 1, height: 1}\n",
		"bad yaml":        "layouts: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(doc)); !errors.Is(err, common.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}
