package labels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/pipeline"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
	"github.com/joseph-ayodele/labels-tracker/internal/repository"
)

// Service handles extraction business logic shared by the CLI, the gRPC
// server and the inbox watcher.
type Service struct {
	processor *pipeline.Processor
	labels    repository.LabelRepository
	catalog   *regions.Catalog
	cfg       common.ExtractionConfig
	logger    *slog.Logger
}

// NewService creates a new labels service. labels may be nil, in which case
// runs are not numbered against stored folios and cannot be saved.
func NewService(catalog *regions.Catalog, labels repository.LabelRepository, cfg common.ExtractionConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	var store pipeline.FolioStore
	if labels != nil {
		store = labels
	}
	return &Service{
		processor: pipeline.NewProcessor(logger, store),
		labels:    labels,
		catalog:   catalog,
		cfg:       cfg,
		logger:    logger,
	}
}

// ExtractRequest represents extraction parameters.
type ExtractRequest struct {
	Organization  string
	Path          string
	Document      document.Reader
	Variant       string
	ScannedCode   string
	ReferenceDate string
	Save          bool
	Printer       string
}

// ExtractResult is a run plus what saving it did.
type ExtractResult struct {
	*pipeline.Result
	Saved  bool                  `json:"saved"`
	Report repository.SaveReport `json:"report"`
}

// Extract runs the pipeline over a document and optionally stores the records.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	v := common.NewValidator().
		Field("organization", req.Organization, common.Required, common.MaxLength(64)).
		Field("reference_date", req.ReferenceDate, common.ISODate)
	if req.Document == nil {
		v.Field("path", req.Path, common.Required)
	}
	if err := v.Error(); err != nil {
		s.logger.Error("invalid extract request", "error", err)
		return nil, err
	}
	if req.Save && s.labels == nil {
		return nil, common.ConfigurationError("saving requires a label store (DB_URL or SQLITE_PATH)")
	}

	var ref time.Time
	if req.ReferenceDate != "" {
		ref, _ = time.Parse(time.DateOnly, req.ReferenceDate)
	}

	doc := req.Document
	if doc == nil {
		opened, closer, err := document.Open(req.Path, s.cfg.RenderScale, s.logger)
		if err != nil {
			s.logger.Error("open document failed", "path", req.Path, "error", err)
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
		}
		defer closer.Close()
		doc = opened
	}

	sess := pipeline.Session{
		Organization:  req.Organization,
		Catalog:       s.catalog,
		Variant:       strings.TrimSpace(req.Variant),
		ScannedCode:   req.ScannedCode,
		ReferenceDate: ref,
		DefaultRegion: s.cfg.DefaultRegion,
		Tolerance:     s.cfg.Tolerance,
		LineTolerance: s.cfg.LineTolerance,
	}

	s.logger.Info("starting extraction", "organization", req.Organization, "path", req.Path, "variant", sess.Variant)
	res, err := s.processor.Run(ctx, sess, doc)
	if err != nil {
		s.logger.Error("extraction failed", "organization", req.Organization, "path", req.Path, "error", err)
		return nil, err
	}
	out := &ExtractResult{Result: res}

	if req.Save && len(res.Records) > 0 {
		printer := req.Printer
		if printer == "" {
			printer = s.cfg.Printer
		}
		report, err := s.labels.SaveRecords(ctx, res.Records, repository.SaveMeta{
			SourceFile: filepath.Base(req.Path),
			PrintedBy:  printer,
			PrintedAt:  time.Now(),
		})
		if err != nil {
			return nil, err
		}
		out.Saved, out.Report = true, report
	}

	s.logger.Info("extraction completed",
		"organization", res.Organization,
		"layout", res.Layout,
		"delivery_date", res.DeliveryDate,
		"records", len(res.Records),
		"inserted", out.Report.Inserted,
		"skipped", out.Report.Skipped,
	)
	return out, nil
}

// ListRecords returns stored labels for an organization, optionally for one date.
func (s *Service) ListRecords(ctx context.Context, org, date string) ([]entity.StoredLabel, error) {
	if err := common.NewValidator().
		Field("organization", org, common.Required).
		Field("date", date, common.ISODate).
		Error(); err != nil {
		return nil, err
	}
	if s.labels == nil {
		return nil, common.ConfigurationError("no label store configured")
	}
	return s.labels.ListRecords(ctx, org, date)
}

// Catalog is the region catalog runs use.
func (s *Service) Catalog() *regions.Catalog {
	return s.catalog
}

// IsUserError reports errors caused by the request rather than the system.
func IsUserError(err error) bool {
	return errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrInvalidInput) ||
		errors.Is(err, common.ErrConfiguration) || errors.Is(err, common.ErrDateResolution)
}
