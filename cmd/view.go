package cmd

import (
	"github.com/spf13/cobra"

	"sosie.dev/pkg/sosie/internal/domain"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "View previously generated comparison reports",
		Long:  "View previously generated comparison reports from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Reports: reportsPath()})
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
