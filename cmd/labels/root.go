package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
	"github.com/joseph-ayodele/labels-tracker/internal/repository"
	"github.com/joseph-ayodele/labels-tracker/internal/server"
	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
	"github.com/joseph-ayodele/labels-tracker/internal/utils"
)

var version = "dev"

var (
	outputFormat string
	logJSON      bool
	verbose      bool

	cfg    *common.Config
	logger *slog.Logger
	output utils.OutputFormat
)

var rootCmd = &cobra.Command{
	Use:   "labels",
	Short: "Extract shipping labels from two-up label PDFs",
	Long: `labels reads two-up shipping label PDFs (or their text fragment dumps),
extracts each label's fields from fixed page regions, normalizes them and
numbers every label with a folio that stays stable across reprints.

Configuration comes from the environment:
  DB_URL / SQLITE_PATH   label store used for folio numbering and saving
  LABELS_LAYOUTS_FILE    region layouts (default: built-in geometry)
  LABELS_TOLERANCE       region overlap tolerance in pixels
  LABELS_INBOX_DIR       watched inbox, one folder per organization`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(logJSON, verbose)
		slog.SetDefault(logger)

		var err error
		if output, err = utils.ParseOutputFormat(outputFormat); err != nil {
			return err
		}
		cfg = common.LoadConfig()
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "output format: yaml or json")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(extractCmd, exportCmd, layoutsCmd, ingestCmd, serveCmd)
}

// newLogger writes to stderr so stdout stays parseable. The text handler
// drops time and level and keeps the message with its attributes.
func newLogger(asJSON, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func loadCatalog() (*regions.Catalog, error) {
	if cfg.Extraction.LayoutsFile == "" {
		return regions.DefaultCatalog(), nil
	}
	logger.Info("loading region layouts", "file", cfg.Extraction.LayoutsFile)
	return regions.LoadFile(cfg.Extraction.LayoutsFile)
}

// app is what every command builds from the environment.
type app struct {
	db      *repository.DB
	labels  repository.LabelRepository
	service *labels.Service
}

func (a *app) Close() {
	server.CloseDB(a.db, logger)
}

func newApp(ctx context.Context) (*app, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a := &app{db: db}
	if db != nil {
		a.labels = repository.NewLabelRepository(db, logger)
	}
	a.service = labels.NewService(catalog, a.labels, cfg.Extraction, logger)
	return a, nil
}
