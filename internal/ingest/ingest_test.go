package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/pipeline"
	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls []labels.ExtractRequest
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, req labels.ExtractRequest) (*labels.ExtractResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &labels.ExtractResult{Result: &pipeline.Result{
		Organization: req.Organization,
		DeliveryDate: "2025-02-07",
		Records: []entity.LabelRecord{{
			Organization: req.Organization,
			Folio:        1,
			DeliveryDate: "2025-02-07",
			DisplayDate:  "2025-02-07-vie 7",
			Color:        "#FF0000",
			Code:         "111",
			PostalCode:   "78000",
		}},
	}}, nil
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOrgFromPath(t *testing.T) {
	inbox := filepath.Join("srv", "inbox")
	cases := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"org folder", filepath.Join(inbox, "tal", "a.pdf"), "TAL", false},
		{"nested", filepath.Join(inbox, "DS", "2025", "a.json"), "DS", false},
		{"root file", filepath.Join(inbox, "a.pdf"), "", true},
		{"outside", filepath.Join("srv", "other", "a.pdf"), "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := orgFromPath(inbox, tc.path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if err != nil && !errors.Is(err, common.ErrInvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	out := filepath.Join(root, "out")

	writeDoc(t, filepath.Join(inbox, "tal", "lote1.json"), `{"a":1}`)
	writeDoc(t, filepath.Join(inbox, "tal", "copia.json"), `{"a":1}`)
	writeDoc(t, filepath.Join(inbox, "ds", "notes.txt"), "ignored")
	writeDoc(t, filepath.Join(inbox, "suelto.pdf"), "no org")
	writeDoc(t, filepath.Join(inbox, ".hidden", "x.pdf"), "hidden")

	fx := &fakeExtractor{}
	r := NewRunner(fx, RunnerConfig{InboxDir: inbox, OutputDir: out, Printer: "Ana"}, nil)

	results, stats, err := r.IngestDirectory(context.Background(), true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if stats.Matched != 3 || stats.Succeeded != 1 || stats.Duplicate != 1 || stats.Failed != 1 {
		t.Errorf("unexpected stats: %+v (results %+v)", stats, results)
	}
	if len(fx.calls) != 1 || fx.calls[0].Organization != "TAL" || fx.calls[0].Printer != "Ana" {
		t.Errorf("unexpected extract calls: %+v", fx.calls)
	}

	var wrote FileResult
	for _, res := range results {
		if res.Workbook != "" {
			wrote = res
		}
	}
	for _, p := range []string{wrote.Workbook, wrote.Summary} {
		if p == "" {
			t.Fatal("expected export paths")
		}
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("export %s missing: %v", p, err)
		}
		if filepath.Dir(p) != filepath.Join(out, "TAL") {
			t.Errorf("export %s not under org folder", p)
		}
	}
}

func TestHandleExtractFailure(t *testing.T) {
	inbox := t.TempDir()
	path := filepath.Join(inbox, "TAL", "a.json")
	writeDoc(t, path, "{}")

	fx := &fakeExtractor{err: common.DateResolutionError("no date")}
	r := NewRunner(fx, RunnerConfig{InboxDir: inbox, OutputDir: t.TempDir()}, nil)
	job, err := r.JobFor(path)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Handle(context.Background(), job)
	if !errors.Is(err, common.ErrDateResolution) || res.Err == "" {
		t.Fatalf("expected date resolution failure, got %v", err)
	}

	// a failed file is retried when it shows up again
	fx.err = nil
	if res, err := r.Handle(context.Background(), job); err != nil || res.Duplicate {
		t.Errorf("retry: %+v, %v", res, err)
	}
}

type countingHandler struct {
	mu   sync.Mutex
	jobs []Job
}

func (h *countingHandler) Handle(_ context.Context, job Job) (FileResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jobs = append(h.jobs, job)
	return FileResult{Path: job.Path}, nil
}

func TestQueueDrainsOnShutdown(t *testing.T) {
	h := &countingHandler{}
	q := NewQueue(h, nil, WithWorkers(2), WithQueueSize(4), WithProcessTimeout(time.Second))
	for _, p := range []string{"a", "b", "c"} {
		if !q.Enqueue(context.Background(), Job{Path: p, Organization: "TAL", SubmittedAt: time.Now()}) {
			t.Fatalf("enqueue %s failed", p)
		}
	}
	q.Shutdown(context.Background())

	if len(h.jobs) != 3 {
		t.Errorf("handled %d jobs, want 3", len(h.jobs))
	}
	if q.Enqueue(context.Background(), Job{Path: "late"}) {
		t.Error("enqueue after shutdown should fail")
	}
}

func TestStartWatcherInitialScan(t *testing.T) {
	inbox := t.TempDir()
	writeDoc(t, filepath.Join(inbox, "TAL", "a.pdf"), "x")
	writeDoc(t, filepath.Join(inbox, "TAL", "b.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{inbox}, InitialScan: true})
	if err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-events:
		if filepath.Base(p) != "a.pdf" {
			t.Errorf("unexpected event %q", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan event")
	}

	if _, _, err := StartWatcher(ctx, WatchConfig{}); err == nil {
		t.Error("expected error without roots")
	}
}
