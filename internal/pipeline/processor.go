package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
	"github.com/joseph-ayodele/labels-tracker/internal/extract"
	"github.com/joseph-ayodele/labels-tracker/internal/folio"
	"github.com/joseph-ayodele/labels-tracker/internal/normalize"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

// Processor runs region extraction over a document: choose a layout, resolve
// the reference delivery date, discover codes, seed folios, then normalize and
// number every label.
type Processor struct {
	Logger *slog.Logger
	Store  FolioStore
}

// NewProcessor builds a Processor. A nil store numbers folios from 1.
func NewProcessor(logger *slog.Logger, store FolioStore) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Store: store}
}

// Run executes one extraction. Any error discards the whole run.
func (p *Processor) Run(ctx context.Context, sess Session, doc document.Reader) (*Result, error) {
	res := &Result{RunID: uuid.New()}
	ctx = common.WithRunID(ctx, res.RunID.String())
	logger := common.LoggerWith(ctx, p.Logger)

	org, known := constants.NormalizeOrganization(sess.Organization)
	if org == "" {
		return nil, common.ConfigurationError("organization is required")
	}
	if !known {
		res.warn(logger, WarnUnknownOrganization, fmt.Sprintf("organization %q is not in the known list", org))
	}
	res.Organization = org
	if sess.Catalog == nil {
		return nil, common.ConfigurationError("no region catalog")
	}
	if doc == nil || doc.PageCount() == 0 {
		return nil, common.DateResolutionError("document has no pages")
	}
	res.Pages = doc.PageCount()

	reader := extract.NewReader(extract.Options{Tolerance: sess.Tolerance, LineTolerance: sess.LineTolerance})
	opts := normalize.Options{Reference: sess.ReferenceDate}

	// Pass 1: load pages, pick the layout, resolve the reference date and
	// collect codes.
	pages := make([]document.Page, 0, doc.PageCount())
	for n := 1; n <= doc.PageCount(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pg, err := doc.Page(ctx, n)
		if err != nil {
			logger.Error("pipeline.page.failed", "page", n, "err", err)
			return nil, common.WrapError(err, fmt.Sprintf("read page %d", n))
		}
		pages = append(pages, pg)
	}

	layout, probed, err := selectLayout(sess.Catalog, sess.Variant, pages[0], reader, opts)
	if err != nil {
		return nil, err
	}
	if len(layout.Active()) == 0 {
		return nil, common.ConfigurationError("layout %q has no regions", layout.Name)
	}
	res.Layout = layout.Name
	logger.Info("pipeline.layout.selected", "layout", layout.Name, "probed", probed, "explicit", sess.Variant != "")

	reference, err := referenceDate(layout, pages[0], reader, opts)
	if err != nil {
		logger.Error("pipeline.reference_date.failed", "err", err)
		return nil, err
	}
	res.DeliveryDate = reference.ISO

	scanned := normalize.Code(sess.ScannedCode)
	codes := discoverCodes(layout, pages, reader, scanned)
	logger.Info("pipeline.discovery.ok", "pages", len(pages), "codes", len(codes), "delivery_date", reference.ISO)

	// Seed folios for the (organization, date) scope.
	alloc := folio.NewAllocator()
	if p.Store != nil {
		existing, err := p.Store.LookupFolios(ctx, org, reference.ISO, codes)
		if err != nil {
			logger.Error("pipeline.seed.failed", "step", "lookup_folios", "err", err)
			return nil, asStoreError("lookup folios", err)
		}
		lastMax, err := p.Store.LookupMaxFolio(ctx, org, reference.ISO)
		if err != nil {
			logger.Error("pipeline.seed.failed", "step", "lookup_max_folio", "err", err)
			return nil, asStoreError("lookup max folio", err)
		}
		alloc.Seed(existing, lastMax)
		logger.Info("pipeline.seed.ok", "existing", len(existing), "last_max", lastMax)
	} else {
		res.warn(logger, WarnNoStore, "no folio store configured; folios start at 1")
	}

	// Pass 2: normalize every slot and number the labels.
	asm := assembler{
		organization:  org,
		defaultRegion: defaultRegion(sess.DefaultRegion),
		reference:     reference,
	}
	var records []entity.LabelRecord
	for _, pg := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, slot := range slots {
			fields := normalize.Apply(readSlot(layout, pg, slot, reader), opts)
			if !asm.emits(fields) {
				if fields.Populated {
					logger.Debug("pipeline.slot.skipped", "page", pg.Number, "slot", slot, "postal_code", fields.Address.PostalCode != "")
				}
				continue
			}
			code := slotCode(fields, scanned)
			records = append(records, asm.record(pg.Number, slot, alloc.GetOrAllocate(code), code, fields))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Folio < records[j].Folio
	})
	res.Records = records
	if len(records) == 0 {
		res.warn(logger, WarnEmptyResult, "no labels with a postal code were found")
	}
	logger.Info("pipeline.run.ok", "records", len(records), "last_folio", alloc.Last())
	return res, nil
}

// referenceDate resolves the first page's delivery date. Slot 1 is tried
// first, then any other date region on the page.
func referenceDate(layout regions.Layout, first document.Page, reader extract.FieldReader, opts normalize.Options) (normalize.Date, error) {
	var tried []string
	for _, slot := range slots {
		r, ok := layout.Find(constants.FieldDeliveryDate, slot)
		if !ok {
			continue
		}
		text := reader.ReadRegion(r, first)
		if d := normalize.DeliveryDate(text, opts); d.OK {
			return d, nil
		}
		tried = append(tried, fmt.Sprintf("%s=%q", r.Name, text))
	}
	if len(tried) == 0 {
		return normalize.Date{}, common.DateResolutionError("layout %q has no delivery date region", layout.Name)
	}
	return normalize.Date{}, common.DateResolutionError("page 1 delivery date unreadable (%s)", strings.Join(tried, ", "))
}

// discoverCodes lists distinct non-empty codes in document order.
func discoverCodes(layout regions.Layout, pages []document.Page, reader extract.FieldReader, scanned string) []string {
	seen := map[string]bool{}
	var codes []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	for _, pg := range pages {
		for _, slot := range slots {
			add(readCode(layout, pg, slot, reader))
		}
	}
	add(scanned)
	return codes
}

func defaultRegion(name string) string {
	if strings.TrimSpace(name) == "" {
		return constants.DefaultRegionName
	}
	return strings.TrimSpace(name)
}

// asStoreError keeps StoreQueryErrors as they are and classifies anything else.
func asStoreError(step string, err error) error {
	if common.IsStoreQuery(err) {
		return err
	}
	return common.StoreQueryError(step, err)
}

func (r *Result) warn(logger *slog.Logger, code, msg string) {
	logger.Warn("pipeline.warning", "code", code, "message", msg)
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: msg})
}
