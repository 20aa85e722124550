package labels

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/pipeline"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
	"github.com/joseph-ayodele/labels-tracker/internal/repository"
)

var testConfig = common.ExtractionConfig{RenderScale: 1.5, LineTolerance: 2, DefaultRegion: constants.DefaultRegionName, Printer: "Caja 1"}

// writeDump writes a one-page fragment dump with one fragment per slot-1 region.
func writeDump(t *testing.T, texts map[constants.Field]string) string {
	t.Helper()
	layout := regions.DefaultCatalog().Primary()
	var items []map[string]any
	for field, text := range texts {
		r, ok := layout.Find(field, 1)
		if !ok {
			t.Fatalf("no region for %s", field)
		}
		items = append(items, map[string]any{
			"str":       text,
			"transform": []float64{1, 0, 0, 1, r.X/1.5 + 2, 792 - (r.Y+r.Height/2)/1.5 - 3},
			"width":     10,
			"height":    6,
		})
	}
	raw, err := json.Marshal(map[string]any{"pages": []any{map[string]any{
		"viewport": map[string]any{"scale": 1.5, "mediaBox": []float64{0, 0, 612, 792}},
		"items":    items,
	}}})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "lote.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleDump(t *testing.T) string {
	return writeDump(t, map[constants.Field]string{
		constants.FieldDeliveryDate: "Entregar: 07/02/2025",
		constants.FieldBarcode:      "ABC-111",
		constants.FieldClientInfo:   "Ana (ana) CP: 78000",
	})
}

func newSQLiteRepo(t *testing.T) repository.LabelRepository {
	t.Helper()
	db, err := repository.OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return repository.NewLabelRepository(db, nil)
}

func TestExtractFromFile(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	svc := NewService(regions.DefaultCatalog(), repo, testConfig, nil)
	path := sampleDump(t)

	res, err := svc.Extract(ctx, ExtractRequest{Organization: "TAL", Path: path, Save: true})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Records) != 1 || !res.Saved || res.Report.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	stored, err := svc.ListRecords(ctx, "TAL", "2025-02-07")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].SourceFile != "lote.json" || stored[0].PrintedBy != "Caja 1" {
		t.Errorf("unexpected stored labels: %+v", stored)
	}

	again, err := svc.Extract(ctx, ExtractRequest{Organization: "TAL", Path: path, Save: true, Printer: "Luis"})
	if err != nil {
		t.Fatal(err)
	}
	if again.Records[0].Folio != res.Records[0].Folio || again.Report.Skipped != 1 {
		t.Errorf("rerun: %+v", again)
	}
}

func TestExtractWithoutStore(t *testing.T) {
	svc := NewService(regions.DefaultCatalog(), nil, testConfig, nil)
	path := sampleDump(t)

	res, err := svc.Extract(context.Background(), ExtractRequest{Organization: "TAL", Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Saved || !res.HasWarning(pipeline.WarnNoStore) || res.Records[0].Folio != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := svc.Extract(context.Background(), ExtractRequest{Organization: "TAL", Path: path, Save: true}); !errors.Is(err, common.ErrConfiguration) {
		t.Errorf("save without store: %v", err)
	}
	if _, err := svc.ListRecords(context.Background(), "TAL", ""); !errors.Is(err, common.ErrConfiguration) {
		t.Errorf("list without store: %v", err)
	}
}

func TestExtractRejects(t *testing.T) {
	svc := NewService(regions.DefaultCatalog(), nil, testConfig, nil)
	cases := []struct {
		name string
		req  ExtractRequest
		want error
	}{
		{"no organization", ExtractRequest{Path: "a.pdf"}, common.ErrValidation},
		{"no path", ExtractRequest{Organization: "TAL"}, common.ErrValidation},
		{"bad reference date", ExtractRequest{Organization: "TAL", Path: "a.pdf", ReferenceDate: "mañana"}, common.ErrValidation},
		{"unsupported type", ExtractRequest{Organization: "TAL", Path: "a.docx"}, common.ErrInvalidInput},
		{"missing file", ExtractRequest{Organization: "TAL", Path: filepath.Join(t.TempDir(), "a.pdf")}, common.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Extract(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if !IsUserError(err) {
				t.Errorf("%v should be a user error", err)
			}
		})
	}
}
