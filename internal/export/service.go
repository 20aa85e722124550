package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/repository"
)

const sheet = "Etiquetas"

var headers = []string{
	"LISTADO",
	"PÁGINA",
	"EMPRESA",
	"FECHA ENTREGA",
	"HORA ENTREGA",
	"CANTIDAD",
	"CLIENTE",
	"CP",
	"ESTADO",
	"CIUDAD",
	"CODIGO DE BARRA",
	"NUM DE VENTA",
	"PRODUCTO",
	"SKU",
}

// Service is a tiny façade over the label repository that produces XLSX bytes for exports.
type Service struct {
	labels repository.LabelRepository
	logger *slog.Logger
}

func NewService(labels repository.LabelRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{labels: labels, logger: logger}
}

// ExportLabelsXLSX returns the stored labels of an organization as an XLSX
// workbook. An empty date exports every delivery date.
func (s *Service) ExportLabelsXLSX(ctx context.Context, org, date string) ([]byte, error) {
	start := time.Now()

	stored, err := s.labels.ListRecords(ctx, org, date)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	records := make([]entity.LabelRecord, len(stored))
	for i, st := range stored {
		records[i] = st.Record
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, records); err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"organization", org,
		"date", date,
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteXLSX writes records as the extraction table. Delivery dates are
// colored with their weekday color.
func WriteXLSX(w io.Writer, records []entity.LabelRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A1", "N1", bold)

	dateStyles := map[string]int{}
	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Folio)
		write(2, r.Page)
		write(3, r.Organization)
		write(4, r.DisplayDate)
		write(5, deref(r.DeliveryHour))
		write(6, r.Quantity)
		write(7, r.ClientName)
		write(8, r.PostalCode)
		write(9, r.State)
		write(10, r.City)
		write(11, r.Code)
		write(12, r.SalesNumber)
		write(13, truncate(r.Product, 140))
		write(14, deref(r.SKU))

		if r.Color != "" {
			style, ok := dateStyles[r.Color]
			if !ok {
				style, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: strings.TrimPrefix(r.Color, "#")}})
				if err != nil {
					return err
				}
				dateStyles[r.Color] = style
			}
			cell, _ := excelize.CoordinatesToCellName(4, row)
			_ = f.SetCellStyle(sheet, cell, cell, style)
		}
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "C", 10)
	_ = f.SetColWidth(sheet, "D", "D", 20) // date
	_ = f.SetColWidth(sheet, "G", "G", 28) // client
	_ = f.SetColWidth(sheet, "I", "J", 20) // state, city
	_ = f.SetColWidth(sheet, "K", "L", 18) // codes
	_ = f.SetColWidth(sheet, "M", "M", 48) // product

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
