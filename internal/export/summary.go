package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
)

// Summary is the cover sheet printed with a batch of labels.
type Summary struct {
	Organization string
	Count        int
	FirstFolio   int
	LastFolio    int
	DeliveryDate time.Time
	Display      string
	Color        string
	Printer      string
	PrintedAt    time.Time
}

// NewSummary derives a Summary from the records of one run.
func NewSummary(org string, records []entity.LabelRecord, printer string, printedAt time.Time) Summary {
	s := Summary{Organization: org, Count: len(records), Printer: printer, PrintedAt: printedAt, Color: constants.DefaultColor}
	for i, r := range records {
		if i == 0 || r.Folio < s.FirstFolio {
			s.FirstFolio = r.Folio
		}
		if r.Folio > s.LastFolio {
			s.LastFolio = r.Folio
		}
		if s.Display == "" && r.DeliveryDate != "" {
			s.DeliveryDate, _ = time.Parse(time.DateOnly, r.DeliveryDate)
			s.Display = r.DisplayDate
			if r.Color != "" {
				s.Color = r.Color
			}
		}
	}
	return s
}

// Lines returns the text of the summary sheet.
func (s Summary) Lines() []string {
	weekday := "-"
	if !s.DeliveryDate.IsZero() {
		weekday = cases.Title(language.Spanish).String(constants.WeekdayName(s.DeliveryDate.Weekday()))
	}
	printer := s.Printer
	if printer == "" {
		printer = "-"
	}
	return []string{
		fmt.Sprintf("Etiquetas Impresas: %d", s.Count),
		fmt.Sprintf("Empresa: %s", s.Organization),
		fmt.Sprintf("Listado: %s (%d-%d)", weekday, s.FirstFolio, s.LastFolio),
		fmt.Sprintf("Entrega: %s", s.Display),
		fmt.Sprintf("Imprimió: %s, %s, %s", printer, s.PrintedAt.Format("15:04"), s.PrintedAt.Format("02/01/2006")),
	}
}

// WriteSummaryPDF renders the summary on a single Letter page in the delivery
// weekday's color.
func WriteSummaryPDF(w io.Writer, s Summary) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(20, 30, 20)
	pdf.AddPage()

	r, g, b := hexColor(s.Color)
	pdf.SetTextColor(r, g, b)

	for i, line := range s.Lines() {
		size := 22.0
		style := ""
		if i == 0 {
			size, style = 30, "B"
		}
		pdf.SetFont("Helvetica", style, size)
		// Core fonts are Latin-1.
		latin1, err := charmap.ISO8859_1.NewEncoder().String(line)
		if err != nil {
			latin1 = constants.StripAccents(line)
		}
		pdf.CellFormat(0, size*0.6, latin1, "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("summary pdf: %w", err)
	}
	return nil
}

func hexColor(hex string) (int, int, int) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
