package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/repository"
)

func sampleRecords() []entity.LabelRecord {
	hour := "14:00"
	sku := "MAC-1"
	return []entity.LabelRecord{
		{Organization: "TAL", Page: 1, Slot: 1, Folio: 6, DeliveryDate: "2025-02-07", DeliveryHour: &hour,
			Quantity: "2", ClientName: "Ana", PostalCode: "78000", State: "San Luis Potosí", City: "San Luis Potosí",
			Code: "111", Product: "Maceta", SKU: &sku, DisplayDate: "2025-02-07-vie 7", Color: "#FF0000"},
		{Organization: "TAL", Page: 1, Slot: 2, Folio: 7, DeliveryDate: "2025-02-07",
			ClientName: "Luis", PostalCode: "44100", State: "Jalisco", City: "Guadalajara",
			Code: "222", SalesNumber: "99", DisplayDate: "2025-02-07-vie 7", Color: "#FF0000"},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	cases := map[string]string{
		"A1": "LISTADO",
		"N1": "SKU",
		"A2": "6",
		"D2": "2025-02-07-vie 7",
		"E2": "14:00",
		"I2": "San Luis Potosí",
		"N2": "MAC-1",
		"J3": "Guadalajara",
		"L3": "99",
		"N3": "",
	}
	for cell, want := range cases {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	at := time.Date(2025, 2, 6, 9, 5, 0, 0, time.UTC)
	s := NewSummary("TAL", sampleRecords(), "Ana", at)

	want := []string{
		"Etiquetas Impresas: 2",
		"Empresa: TAL",
		"Listado: Viernes (6-7)",
		"Entrega: 2025-02-07-vie 7",
		"Imprimió: Ana, 09:05, 06/02/2025",
	}
	got := s.Lines()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	var buf bytes.Buffer
	if err := WriteSummaryPDF(&buf, s); err != nil {
		t.Fatalf("WriteSummaryPDF: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Error("output is not a PDF")
	}
}

func TestHexColor(t *testing.T) {
	if r, g, b := hexColor("#800080"); r != 128 || g != 0 || b != 128 {
		t.Errorf("hexColor = %d,%d,%d", r, g, b)
	}
	if r, g, b := hexColor("nope"); r != 0 || g != 0 || b != 0 {
		t.Errorf("invalid colors should be black, got %d,%d,%d", r, g, b)
	}
}

type stubLabels struct {
	repository.LabelRepository
	stored []entity.StoredLabel
}

func (s stubLabels) ListRecords(context.Context, string, string) ([]entity.StoredLabel, error) {
	return s.stored, nil
}

func TestServiceExport(t *testing.T) {
	var stored []entity.StoredLabel
	for _, r := range sampleRecords() {
		stored = append(stored, entity.StoredLabel{Record: r})
	}
	data, err := NewService(stubLabels{stored: stored}, nil).ExportLabelsXLSX(context.Background(), "TAL", "2025-02-07")
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(sheet)
	if len(rows) != 3 {
		t.Errorf("expected header plus 2 rows, got %d", len(rows))
	}
}
