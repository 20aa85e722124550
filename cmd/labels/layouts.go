package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labels-tracker/internal/regions"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Print the region layouts in use",
	Long: `Print the active region catalog as YAML. The output is a valid
LABELS_LAYOUTS_FILE and can be edited and loaded back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		return regions.Encode(cmd.OutOrStdout(), catalog)
	},
}
