package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/entity"
)

const labelsTable = "label_records"

var labelColumns = []string{
	"id", "organization", "deli_date", "deli_hour", "folio", "page", "slot",
	"quantity", "client", "client_name", "code", "sales_num", "product", "sku",
	"cp", "state", "city", "display_date", "color",
	"imp_date", "hour", "sou_file", "personal_inc", "created_at",
}

// SaveMeta describes the print job a batch of records belongs to.
type SaveMeta struct {
	SourceFile string
	PrintedBy  string
	PrintedAt  time.Time
}

// SaveReport counts what SaveRecords did.
type SaveReport struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type LabelRepository interface {
	// LookupFolios returns the folios already stored for codes in the scope.
	LookupFolios(ctx context.Context, org, date string, codes []string) (map[string]int, error)
	// LookupMaxFolio returns the highest folio stored in the scope, 0 if none.
	LookupMaxFolio(ctx context.Context, org, date string) (int, error)
	// SaveRecords inserts records whose (organization, date, code) is not yet
	// stored, all in one transaction.
	SaveRecords(ctx context.Context, records []entity.LabelRecord, meta SaveMeta) (SaveReport, error)
	ListRecords(ctx context.Context, org, date string) ([]entity.StoredLabel, error)
}

type labelRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewLabelRepository(db *DB, logger *slog.Logger) LabelRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &labelRepository{db: db, logger: logger}
}

func (r *labelRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

func (r *labelRepository) LookupFolios(ctx context.Context, org, date string, codes []string) (map[string]int, error) {
	out := make(map[string]int, len(codes))
	args := make([]any, 0, len(codes))
	for _, c := range codes {
		if c != "" {
			args = append(args, c)
		}
	}
	if len(args) == 0 {
		return out, nil
	}

	query, qargs := r.builder().
		Select("code", entsql.Min("folio")).
		From(entsql.Table(labelsTable)).
		Where(entsql.And(
			entsql.EQ("organization", org),
			entsql.EQ("deli_date", date),
			entsql.In("code", args...),
		)).
		GroupBy("code").
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, qargs, &rows); err != nil {
		r.logger.Error("repository.lookup_folios.failed", "organization", org, "date", date, "error", err)
		return nil, common.StoreQueryError("lookup folios", err)
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var folio int
		if err := rows.Scan(&code, &folio); err != nil {
			return nil, common.StoreQueryError("scan folios", err)
		}
		out[code] = folio
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreQueryError("iterate folios", err)
	}
	r.logger.Debug("repository.lookup_folios.ok", "organization", org, "date", date, "codes", len(args), "found", len(out))
	return out, nil
}

func (r *labelRepository) LookupMaxFolio(ctx context.Context, org, date string) (int, error) {
	query, args := r.builder().
		Select(entsql.Max("folio")).
		From(entsql.Table(labelsTable)).
		Where(entsql.And(
			entsql.EQ("organization", org),
			entsql.EQ("deli_date", date),
		)).
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("repository.lookup_max_folio.failed", "organization", org, "date", date, "error", err)
		return 0, common.StoreQueryError("lookup max folio", err)
	}
	defer rows.Close()

	var max sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&max); err != nil {
			return 0, common.StoreQueryError("scan max folio", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, common.StoreQueryError("iterate max folio", err)
	}
	return int(max.Int64), nil
}

func (r *labelRepository) SaveRecords(ctx context.Context, records []entity.LabelRecord, meta SaveMeta) (report SaveReport, err error) {
	if len(records) == 0 {
		return report, nil
	}
	if meta.PrintedAt.IsZero() {
		meta.PrintedAt = time.Now()
	}

	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return report, common.WrapError(err, "begin save")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("repository.save.rollback_failed", "error", rbErr)
			}
		}
	}()

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		key := rec.Organization + "\x00" + rec.DeliveryDate + "\x00" + rec.Code
		if rec.Code != "" {
			if seen[key] {
				report.Skipped++
				continue
			}
			seen[key] = true

			exists, err := r.exists(ctx, tx, rec)
			if err != nil {
				return SaveReport{}, err
			}
			if exists {
				r.logger.Debug("repository.save.duplicate", "organization", rec.Organization, "date", rec.DeliveryDate, "code", rec.Code)
				report.Skipped++
				continue
			}
		}

		query, args := r.builder().
			Insert(labelsTable).
			Columns(labelColumns...).
			Values(insertValues(rec, meta)...).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			r.logger.Error("repository.save.failed", "folio", rec.Folio, "code", rec.Code, "error", err)
			return SaveReport{}, common.WrapError(err, "insert label record")
		}
		report.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return SaveReport{}, common.WrapError(err, "commit save")
	}
	r.logger.Info("repository.save.ok", "inserted", report.Inserted, "skipped", report.Skipped, "source_file", meta.SourceFile)
	return report, nil
}

func (r *labelRepository) exists(ctx context.Context, tx dialect.Tx, rec entity.LabelRecord) (bool, error) {
	query, args := r.builder().
		Select("id").
		From(entsql.Table(labelsTable)).
		Where(entsql.And(
			entsql.EQ("organization", rec.Organization),
			entsql.EQ("deli_date", rec.DeliveryDate),
			entsql.EQ("code", rec.Code),
		)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := tx.Query(ctx, query, args, &rows); err != nil {
		return false, common.WrapError(err, "check duplicate")
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

func insertValues(rec entity.LabelRecord, meta SaveMeta) []any {
	return []any{
		uuid.NewString(),
		rec.Organization,
		rec.DeliveryDate,
		nullable(rec.DeliveryHour),
		rec.Folio,
		rec.Page,
		rec.Slot,
		rec.Quantity,
		rec.ClientInfo,
		rec.ClientName,
		rec.Code,
		rec.SalesNumber,
		rec.Product,
		nullable(rec.SKU),
		rec.PostalCode,
		rec.State,
		rec.City,
		rec.DisplayDate,
		rec.Color,
		meta.PrintedAt.Format(time.DateOnly),
		meta.PrintedAt.Format(time.TimeOnly),
		meta.SourceFile,
		meta.PrintedBy,
		time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r *labelRepository) ListRecords(ctx context.Context, org, date string) ([]entity.StoredLabel, error) {
	preds := []*entsql.Predicate{entsql.EQ("organization", org)}
	if date != "" {
		preds = append(preds, entsql.EQ("deli_date", date))
	}
	query, args := r.builder().
		Select(labelColumns...).
		From(entsql.Table(labelsTable)).
		Where(entsql.And(preds...)).
		OrderBy("deli_date", "folio").
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to list label records", "organization", org, "date", date, "error", err)
		return nil, common.WrapError(err, "list label records")
	}
	defer rows.Close()

	var out []entity.StoredLabel
	for rows.Next() {
		var (
			s                            entity.StoredLabel
			id, impDate, hour, createdAt string
			deliHour, sku                sql.NullString
		)
		rec := &s.Record
		if err := rows.Scan(
			&id, &rec.Organization, &rec.DeliveryDate, &deliHour, &rec.Folio, &rec.Page, &rec.Slot,
			&rec.Quantity, &rec.ClientInfo, &rec.ClientName, &rec.Code, &rec.SalesNumber, &rec.Product, &sku,
			&rec.PostalCode, &rec.State, &rec.City, &rec.DisplayDate, &rec.Color,
			&impDate, &hour, &s.SourceFile, &s.PrintedBy, &createdAt,
		); err != nil {
			return nil, common.WrapError(err, "scan label record")
		}
		s.ID, _ = uuid.Parse(id)
		if deliHour.Valid {
			rec.DeliveryHour = &deliHour.String
		}
		if sku.Valid {
			rec.SKU = &sku.String
		}
		s.PrintedAt, _ = time.ParseInLocation(time.DateOnly+" "+time.TimeOnly, impDate+" "+hour, time.Local)
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate label records")
	}
	return out, nil
}
