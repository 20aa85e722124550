package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/labels-tracker/internal/geometry"
)

func TestReadDump(t *testing.T) {
	const dump = `{
	  "pages": [
	    {
	      "viewport": {"scale": 1.5, "mediaBox": [0, 0, 612, 792]},
	      "items": [
	        {"str": "Viernes 7/feb", "transform": [9, 0, 0, 9, 130, 570], "width": 60, "height": 9},
	        {"str": " ", "transform": [9, 0, 0, 9, 190, 570], "width": 3, "height": 9}
	      ]
	    },
	    {
	      "number": 2,
	      "transform": [1, 0, 0, -1, 0, 792],
	      "items": []
	    }
	  ]
	}`

	r, err := ReadDump(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if r.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", r.PageCount())
	}

	p1, err := r.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page(1): %v", err)
	}
	if want := geometry.PixelToNative([4]float64{0, 0, 612, 792}, 1.5); p1.Transform != want {
		t.Errorf("transform = %v, want %v", p1.Transform, want)
	}
	if len(p1.Fragments) != 2 || p1.Fragments[0].X != 130 || p1.Fragments[0].Y != 570 {
		t.Errorf("unexpected fragments: %+v", p1.Fragments)
	}

	p2, _ := r.Page(context.Background(), 2)
	if p2.Transform != (geometry.Matrix{1, 0, 0, -1, 0, 792}) {
		t.Errorf("explicit transform not kept: %v", p2.Transform)
	}

	if _, err := r.Page(context.Background(), 3); err == nil {
		t.Error("expected out of range error")
	}
}

func TestReadDumpRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no pages":            `{}`,
		"no transform":        `{"pages":[{"items":[]}]}`,
		"short item matrix":   `{"pages":[{"transform":[1,0,0,1,0,0],"items":[{"str":"x","transform":[1,2]}]}]}`,
		"not json":            `pages`,
		"pages out of order":  `{"pages":[{"number":2,"transform":[1,0,0,1,0,0],"items":[]}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadDump(strings.NewReader(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMemoryReaderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (MemoryReader{{Number: 1}}).Page(ctx, 1); err == nil {
		t.Error("expected context error")
	}
}

func TestMergeGlyphs(t *testing.T) {
	glyphs := []pdf.Text{
		{S: "C", X: 10, Y: 100, W: 5, FontSize: 10},
		{S: "P", X: 15, Y: 100, W: 5, FontSize: 10},
		{S: ":", X: 20, Y: 100, W: 2, FontSize: 10},
		{S: " ", X: 22, Y: 100, W: 3, FontSize: 10},
		{S: "7", X: 25, Y: 100, W: 5, FontSize: 10},
		{S: "8", X: 30, Y: 100, W: 5, FontSize: 10},
		{S: "J", X: 10, Y: 80, W: 5, FontSize: 10},
		{S: "x", X: 60, Y: 80, W: 5, FontSize: 10},
	}

	got := MergeGlyphs(glyphs)
	want := []Fragment{
		{Text: "CP:", X: 10, Y: 100, Width: 12, Height: 10},
		{Text: "78", X: 25, Y: 100, Width: 10, Height: 10},
		{Text: "J", X: 10, Y: 80, Width: 5, Height: 10},
		{Text: "x", X: 60, Y: 80, Width: 5, Height: 10},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d fragments, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "lote.JSON")
	if err := os.WriteFile(dump, []byte(`{"pages": [{"transform": [1, 0, 0, 1, 0, 0], "items": []}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	r, closer, err := Open(dump, DefaultRenderScale, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closer.Close()
	if r.PageCount() != 1 {
		t.Errorf("PageCount = %d", r.PageCount())
	}

	for _, name := range []string{"lote.txt", "missing.pdf", "missing.json"} {
		if _, _, err := Open(filepath.Join(dir, name), DefaultRenderScale, nil); err == nil {
			t.Errorf("Open(%s) should fail", name)
		}
	}
	if !Supported("a.PDF") || Supported("a.png") {
		t.Error("unexpected Supported result")
	}
}
