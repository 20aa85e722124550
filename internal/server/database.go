package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	repo "github.com/joseph-ayodele/labels-tracker/internal/repository"
)

// ConnectDB opens the label store described by cfg: Postgres when a DSN is
// set, otherwise SQLite at SQLitePath. The schema is migrated and the store
// pinged before it is returned. A config with neither yields (nil, nil).
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.DB, error) {
	if !cfg.HasStore() {
		logger.Warn("no label store configured; folios will start from 1 and nothing is saved")
		return nil, nil
	}

	var (
		db  *repo.DB
		err error
	)
	if cfg.DSN != "" {
		logger.Info("connecting to database", "dialect", "postgres")
		db, err = repo.Open(ctx, repo.Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
	} else {
		logger.Info("opening database", "dialect", "sqlite", "path", cfg.SQLitePath)
		db, err = repo.OpenSQLite(cfg.SQLitePath, logger)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if err := PingDB(ctx, db, cfg.ConnectAttempts, cfg.DialTimeout, logger); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("migration failed", "error", err)
		db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", db.Dialect())
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, attempts int, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if err := db.HealthCheck(ctx, attempts, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// CloseDB closes the database connections gracefully
func CloseDB(db *repo.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connections")
	db.Close()
	logger.Info("database connections closed")
}
