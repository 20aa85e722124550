package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/export"
	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
)

// RunnerConfig configures how inbox documents are processed.
type RunnerConfig struct {
	InboxDir  string
	OutputDir string
	Save      bool
	Printer   string
}

// Runner extracts one inbox document at a time and writes its workbook and
// summary sheet under OutputDir/<ORG>/.
type Runner struct {
	extractor Extractor
	cfg       RunnerConfig
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	seen map[string]string
}

func NewRunner(extractor Extractor, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		seen:      map[string]string{},
	}
}

// JobFor builds the job for a path under the inbox, taking the organization
// from the first directory below the inbox root.
func (r *Runner) JobFor(path string) (Job, error) {
	org, err := orgFromPath(r.cfg.InboxDir, path)
	if err != nil {
		return Job{}, err
	}
	return Job{Path: path, Organization: org, SubmittedAt: r.now()}, nil
}

// Handle processes a single job. Content already processed by this runner is
// reported as a duplicate and skipped.
func (r *Runner) Handle(ctx context.Context, job Job) (FileResult, error) {
	res := FileResult{Path: job.Path, Organization: job.Organization}
	logger := r.logger.With("path", job.Path, "organization", job.Organization)

	sum, err := hashFile(job.Path)
	if err != nil {
		logger.Error("ingest.hash.failed", "err", err)
		res.Err = err.Error()
		return res, err
	}
	res.HashHex = sum

	r.mu.Lock()
	prev, dup := r.seen[sum]
	r.mu.Unlock()
	if dup {
		logger.Info("ingest.duplicate", "first_seen", prev)
		res.Duplicate = true
		return res, nil
	}

	out, err := r.extractor.Extract(ctx, labels.ExtractRequest{
		Organization: job.Organization,
		Path:         job.Path,
		Save:         r.cfg.Save,
		Printer:      r.cfg.Printer,
	})
	if err != nil {
		logger.Error("ingest.extract.failed", "err", err)
		res.Err = err.Error()
		return res, err
	}
	res.Records = len(out.Records)
	res.Inserted, res.Skipped = out.Report.Inserted, out.Report.Skipped
	for _, w := range out.Warnings {
		res.Warnings = append(res.Warnings, w.Code)
	}

	if len(out.Records) > 0 {
		dir := filepath.Join(r.cfg.OutputDir, out.Organization)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			res.Err = err.Error()
			return res, err
		}
		base := strings.TrimSuffix(filepath.Base(job.Path), filepath.Ext(job.Path))

		res.Workbook = filepath.Join(dir, base+".xlsx")
		if err := writeFile(res.Workbook, func(w io.Writer) error { return export.WriteXLSX(w, out.Records) }); err != nil {
			logger.Error("export.xlsx.failed", "err", err)
			res.Err = err.Error()
			return res, err
		}

		summary := export.NewSummary(out.Organization, out.Records, r.cfg.Printer, r.now())
		res.Summary = filepath.Join(dir, base+".summary.pdf")
		if err := writeFile(res.Summary, func(w io.Writer) error { return export.WriteSummaryPDF(w, summary) }); err != nil {
			logger.Error("export.summary.failed", "err", err)
			res.Err = err.Error()
			return res, err
		}
	}

	r.mu.Lock()
	r.seen[sum] = job.Path
	r.mu.Unlock()

	logger.Info("ingest.ok",
		"records", res.Records,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"workbook", res.Workbook,
	)
	return res, nil
}

// orgFromPath returns the organization folder path sits in under inbox.
func orgFromPath(inbox, path string) (string, error) {
	rel, err := filepath.Rel(inbox, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not under %s", common.ErrInvalidInput, path, inbox)
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s is not under %s", common.ErrInvalidInput, path, inbox)
	}
	parts := strings.Split(rel, "/")
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return "", fmt.Errorf("%w: %s is not inside an organization folder", common.ErrInvalidInput, path)
	}
	return strings.ToUpper(strings.TrimSpace(parts[0])), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeFile writes through a temp file so readers never see a partial export.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
