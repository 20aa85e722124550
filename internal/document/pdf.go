package document

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/labels-tracker/internal/geometry"
)

// letter is used when a page carries no resolvable MediaBox.
var letter = [4]float64{0, 0, 612, 792}

// PDFReader reads positioned text straight from a PDF file.
type PDFReader struct {
	file   *os.File
	reader *pdf.Reader
	scale  float64
	logger *slog.Logger
}

// OpenPDF opens path; the caller must Close the reader.
func OpenPDF(path string, scale float64, logger *slog.Logger) (*PDFReader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if scale <= 0 {
		scale = DefaultRenderScale
	}
	f, r, err := openPDF(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	logger.Debug("document.pdf.open", "path", path, "pages", r.NumPage(), "scale", scale)
	return &PDFReader{file: f, reader: r, scale: scale, logger: logger}, nil
}

// openPDF guards against the parser panicking on malformed input.
func openPDF(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				_ = f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.Open(path)
}

func (p *PDFReader) Close() error {
	if p.file == nil {
		return nil
	}
	return p.file.Close()
}

func (p *PDFReader) PageCount() int {
	return p.reader.NumPage()
}

func (p *PDFReader) Page(ctx context.Context, n int) (page Page, err error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if n < 1 || n > p.reader.NumPage() {
		return Page{}, fmt.Errorf("page %d out of range (1..%d)", n, p.reader.NumPage())
	}
	defer func() {
		if rec := recover(); rec != nil {
			page, err = Page{}, fmt.Errorf("read page %d: %v", n, rec)
		}
	}()

	pg := p.reader.Page(n)
	if pg.V.IsNull() {
		return Page{Number: n, Transform: geometry.PixelToNative(letter, p.scale)}, nil
	}

	box, ok := mediaBox(pg.V)
	if !ok {
		p.logger.Debug("document.pdf.mediabox.missing", "page", n)
		box = letter
	}

	frags := MergeGlyphs(pg.Content().Text)
	p.logger.Debug("document.pdf.page", "page", n, "fragments", len(frags))
	return Page{
		Number:    n,
		Fragments: frags,
		Transform: geometry.PixelToNative(box, p.scale),
	}, nil
}

// mediaBox walks up the page tree since MediaBox is inheritable.
func mediaBox(v pdf.Value) ([4]float64, bool) {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		mb := v.Key("MediaBox")
		if mb.Len() == 4 {
			var out [4]float64
			for i := range out {
				out[i] = mb.Index(i).Float64()
			}
			return out, true
		}
		v = v.Key("Parent")
	}
	return [4]float64{}, false
}

// MergeGlyphs joins per-glyph text into runs on the same baseline. A gap wider
// than a third of the font size starts a new run.
func MergeGlyphs(glyphs []pdf.Text) []Fragment {
	var frags []Fragment
	var cur *Fragment
	var lastRight, fontSize float64

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			frags = append(frags, *cur)
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		sameLine := cur != nil && math.Abs(g.Y-cur.Y) < 0.5 && g.FontSize == fontSize
		gap := g.X - lastRight
		if !sameLine || gap > fontSize/3 || gap < -fontSize {
			flush()
			cur = &Fragment{X: g.X, Y: g.Y, Height: g.FontSize}
			fontSize = g.FontSize
		}
		cur.Text += g.S
		lastRight = g.X + g.W
		cur.Width = lastRight - cur.X
	}
	flush()

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Y != frags[j].Y {
			return frags[i].Y > frags[j].Y
		}
		return frags[i].X < frags[j].X
	})
	return frags
}
