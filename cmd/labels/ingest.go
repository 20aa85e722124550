package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labels-tracker/internal/ingest"
	"github.com/joseph-ayodele/labels-tracker/internal/utils"
)

var ingestFlags struct {
	save       bool
	skipHidden bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Process every document currently in the inbox",
	Long: `Walk LABELS_INBOX_DIR once. Documents must sit in a folder named after
their organization (inbox/TAL/lote.pdf). Workbooks and summary sheets are
written to LABELS_OUTPUT_DIR/<ORG>/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		runner := ingest.NewRunner(a.service, runnerConfig(ingestFlags.save && a.labels != nil), logger)
		results, stats, err := runner.IngestDirectory(ctx, ingestFlags.skipHidden)
		if err != nil {
			return err
		}
		logger.Info("ingest.directory.ok",
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"succeeded", stats.Succeeded,
			"duplicate", stats.Duplicate,
			"failed", stats.Failed,
		)
		return utils.OutputTo(cmd.OutOrStdout(), output, results)
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFlags.save, "save", true, "store records when a label store is configured")
	ingestCmd.Flags().BoolVar(&ingestFlags.skipHidden, "skip-hidden", true, "skip dot files and folders")
}

func runnerConfig(save bool) ingest.RunnerConfig {
	return ingest.RunnerConfig{
		InboxDir:  cfg.Ingest.InboxDir,
		OutputDir: cfg.Ingest.OutputDir,
		Save:      save,
		Printer:   cfg.Extraction.Printer,
	}
}
