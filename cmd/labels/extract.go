package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labels-tracker/internal/export"
	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
	"github.com/joseph-ayodele/labels-tracker/internal/utils"
)

var extractFlags struct {
	org     string
	variant string
	code    string
	refDate string
	save    bool
	xlsx    string
	summary string
	printer string
}

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf|dump.json>",
	Short: "Extract labels from one document",
	Long: `Extract every label of a two-up label document.

Examples:
  labels extract --org TAL lote.pdf
  labels extract --org DS --save --xlsx lote.xlsx lote.pdf
  labels extract --org TAL --code QR-4455 --ref-date 2025-02-01 dump.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.service.Extract(ctx, labels.ExtractRequest{
			Organization:  extractFlags.org,
			Path:          args[0],
			Variant:       extractFlags.variant,
			ScannedCode:   extractFlags.code,
			ReferenceDate: extractFlags.refDate,
			Save:          extractFlags.save,
			Printer:       extractFlags.printer,
		})
		if err != nil {
			return err
		}

		if extractFlags.xlsx != "" {
			if err := writeTo(extractFlags.xlsx, func(f *os.File) error { return export.WriteXLSX(f, res.Records) }); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			logger.Info("export.xlsx.ok", "path", extractFlags.xlsx, "rows", len(res.Records))
		}
		if extractFlags.summary != "" {
			printer := extractFlags.printer
			if printer == "" {
				printer = cfg.Extraction.Printer
			}
			s := export.NewSummary(res.Organization, res.Records, printer, time.Now())
			if err := writeTo(extractFlags.summary, func(f *os.File) error { return export.WriteSummaryPDF(f, s) }); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			logger.Info("export.summary.ok", "path", extractFlags.summary)
		}

		return utils.OutputTo(cmd.OutOrStdout(), output, res)
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.org, "org", "", "organization the labels belong to (required)")
	f.StringVar(&extractFlags.variant, "variant", "", "layout variant (default: probe primary then fallback)")
	f.StringVar(&extractFlags.code, "code", "", "scanned code used for labels whose barcode region is empty")
	f.StringVar(&extractFlags.refDate, "ref-date", "", "YYYY-MM-DD used to infer missing years (default: today)")
	f.BoolVar(&extractFlags.save, "save", false, "store the records in the label store")
	f.StringVar(&extractFlags.xlsx, "xlsx", "", "write the records as an XLSX workbook")
	f.StringVar(&extractFlags.summary, "summary", "", "write a one-page PDF summary sheet")
	f.StringVar(&extractFlags.printer, "printer", "", "name recorded as the person who printed the batch")
	_ = extractCmd.MarkFlagRequired("org")
}

func writeTo(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
