package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/export"
)

var exportFlags struct {
	org  string
	date string
	out  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored labels as an XLSX workbook",
	Long: `Export the labels saved for an organization.

Examples:
  labels export --org TAL --date 2025-02-07 --out tal.xlsx
  labels export --org DS --out ds-all.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.labels == nil {
			return common.ConfigurationError("export needs DB_URL or SQLITE_PATH")
		}

		xlsx, err := export.NewService(a.labels, logger).ExportLabelsXLSX(ctx, exportFlags.org, exportFlags.date)
		if err != nil {
			return err
		}
		if exportFlags.out == "" || exportFlags.out == "-" {
			_, err = cmd.OutOrStdout().Write(xlsx)
			return err
		}
		return os.WriteFile(exportFlags.out, xlsx, 0o644)
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.org, "org", "", "organization (required)")
	f.StringVar(&exportFlags.date, "date", "", "delivery date YYYY-MM-DD (default: all dates)")
	f.StringVar(&exportFlags.out, "out", "", "output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("org")
}
