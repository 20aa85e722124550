package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/labels-tracker/internal/geometry"
)

// dumpSchema describes the text-content dump an external renderer writes:
// one entry per page with pdf.js-style items and either an explicit
// pixel -> native transform or the viewport it rendered at.
const dumpSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["items"],
        "properties": {
          "number": {"type": "integer", "minimum": 1},
          "transform": {"type": "array", "items": {"type": "number"}, "minItems": 6, "maxItems": 6},
          "viewport": {
            "type": "object",
            "required": ["mediaBox"],
            "properties": {
              "scale": {"type": "number", "exclusiveMinimum": 0},
              "mediaBox": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4}
            }
          },
          "items": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["str", "transform"],
              "properties": {
                "str": {"type": "string"},
                "transform": {"type": "array", "items": {"type": "number"}, "minItems": 6, "maxItems": 6},
                "width": {"type": "number"},
                "height": {"type": "number"}
              }
            }
          }
        },
        "oneOf": [
          {"required": ["transform"]},
          {"required": ["viewport"]}
        ]
      }
    }
  }
}`

var compiledDumpSchema = jsonschema.MustCompileString("fragment-dump.json", dumpSchema)

type dumpFile struct {
	Pages []dumpPage `json:"pages"`
}

type dumpPage struct {
	Number    int           `json:"number"`
	Transform []float64     `json:"transform"`
	Viewport  *dumpViewport `json:"viewport"`
	Items     []dumpItem    `json:"items"`
}

type dumpViewport struct {
	Scale    float64   `json:"scale"`
	MediaBox []float64 `json:"mediaBox"`
}

type dumpItem struct {
	Str       string    `json:"str"`
	Transform []float64 `json:"transform"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
}

// DumpReader serves pages from a pre-rendered JSON fragment dump.
type DumpReader struct {
	pages []Page
}

// OpenDump reads and validates a dump file.
func OpenDump(path string) (*DumpReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump %s: %w", path, err)
	}
	defer f.Close()
	return ReadDump(f)
}

// ReadDump parses a dump from r.
func ReadDump(r io.Reader) (*DumpReader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal dump: %w", err)
	}
	if err := compiledDumpSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("dump does not match schema: %w", err)
	}

	var df dumpFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}

	pages := make([]Page, len(df.Pages))
	for i, dp := range df.Pages {
		num := dp.Number
		if num == 0 {
			num = i + 1
		}
		if num != i+1 {
			return nil, fmt.Errorf("dump page %d is out of order (found number %d)", i+1, num)
		}
		pages[i] = Page{
			Number:    num,
			Transform: dp.transform(),
			Fragments: dp.fragments(),
		}
	}
	return &DumpReader{pages: pages}, nil
}

func (p dumpPage) transform() geometry.Matrix {
	if len(p.Transform) == 6 {
		var m geometry.Matrix
		copy(m[:], p.Transform)
		return m
	}
	var box [4]float64
	copy(box[:], p.Viewport.MediaBox)
	scale := p.Viewport.Scale
	if scale == 0 {
		scale = DefaultRenderScale
	}
	return geometry.PixelToNative(box, scale)
}

func (p dumpPage) fragments() []Fragment {
	out := make([]Fragment, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, Fragment{
			Text:   it.Str,
			X:      it.Transform[4],
			Y:      it.Transform[5],
			Width:  it.Width,
			Height: it.Height,
		})
	}
	return out
}

func (d *DumpReader) PageCount() int {
	return len(d.pages)
}

func (d *DumpReader) Page(ctx context.Context, n int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if n < 1 || n > len(d.pages) {
		return Page{}, fmt.Errorf("page %d out of range (1..%d)", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// MemoryReader is a Reader over pages already in memory.
type MemoryReader []Page

func (m MemoryReader) PageCount() int { return len(m) }

func (m MemoryReader) Page(ctx context.Context, n int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if n < 1 || n > len(m) {
		return Page{}, fmt.Errorf("page %d out of range (1..%d)", n, len(m))
	}
	return m[n-1], nil
}
