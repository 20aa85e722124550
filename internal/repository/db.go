package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB bundles the Ent SQL driver with the pool behind it.
type DB struct {
	Driver *entsql.Driver
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Dialect is the SQL dialect queries are built for.
func (db *DB) Dialect() string {
	return db.Driver.Dialect()
}

// Open creates a pgx pool and wraps it for Ent's SQL driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "labels-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	// Wrap pool as *sql.DB for Ent
	sqldb := stdlib.OpenDBFromPool(pool)
	drv := entsql.OpenDB(dialect.Postgres, sqldb)

	logger.Info("successfully connected to database")
	return &DB{Driver: drv, pool: pool, logger: logger}, nil
}

// OpenSQLite opens a local label store; path ":memory:" gives a private
// in-memory database.
func OpenSQLite(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = ":memory:"
	}
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", "path", path, "error", err)
		return nil, err
	}
	// One connection: an in-memory database lives and dies with it.
	sqldb.SetMaxOpenConns(1)

	logger.Info("opened sqlite database", "path", path)
	return &DB{Driver: entsql.OpenDB(dialect.SQLite, sqldb), logger: logger}, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if err := db.Driver.Close(); err != nil {
		db.logger.Error("failed to close sql driver", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings the database, retrying while it comes up.
func (db *DB) HealthCheck(ctx context.Context, attempts int, timeout time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	db.logger.Debug("pinging database", "attempts", attempts)
	err := retry.Do(
		func() error {
			pctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return db.Driver.DB().PingContext(pctx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			db.logger.Warn("database ping failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		db.logger.Error("database unreachable", "error", err)
		return err
	}
	db.logger.Debug("database ping successful")
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS label_records (
		id VARCHAR(36) PRIMARY KEY,
		organization VARCHAR(64) NOT NULL,
		deli_date VARCHAR(10) NOT NULL,
		deli_hour VARCHAR(5),
		folio INTEGER NOT NULL,
		page INTEGER NOT NULL,
		slot INTEGER NOT NULL,
		quantity TEXT NOT NULL DEFAULT '',
		client TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL DEFAULT '',
		code VARCHAR(64) NOT NULL DEFAULT '',
		sales_num VARCHAR(64) NOT NULL DEFAULT '',
		product TEXT NOT NULL DEFAULT '',
		sku VARCHAR(128),
		cp VARCHAR(16) NOT NULL DEFAULT '',
		state VARCHAR(64) NOT NULL DEFAULT '',
		city VARCHAR(128) NOT NULL DEFAULT '',
		display_date VARCHAR(32) NOT NULL DEFAULT '',
		color VARCHAR(7) NOT NULL DEFAULT '',
		imp_date VARCHAR(10) NOT NULL DEFAULT '',
		hour VARCHAR(8) NOT NULL DEFAULT '',
		sou_file TEXT NOT NULL DEFAULT '',
		personal_inc VARCHAR(128) NOT NULL DEFAULT '',
		created_at VARCHAR(40) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS label_records_scope_code ON label_records (organization, deli_date, code)`,
	`CREATE INDEX IF NOT EXISTS label_records_scope_folio ON label_records (organization, deli_date, folio)`,
}

// Migrate creates the label store schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if err := db.Driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			db.logger.Error("migration failed", "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db.logger.Debug("label store schema ready", "dialect", db.Dialect())
	return nil
}
