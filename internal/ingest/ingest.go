package ingest

import (
	"context"
	"time"

	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
)

// Job is one document dropped into the inbox.
type Job struct {
	Path         string
	Organization string
	SubmittedAt  time.Time
}

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path         string
	Organization string
	HashHex      string
	Records      int
	Inserted     int
	Skipped      int
	Duplicate    bool
	Workbook     string
	Summary      string
	Warnings     []string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Duplicate uint32
	Failed    uint32
}

// Extractor is the behavior the runner depends on.
type Extractor interface {
	Extract(ctx context.Context, req labels.ExtractRequest) (*labels.ExtractResult, error)
}
