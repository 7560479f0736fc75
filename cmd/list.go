package cmd

import (
	"github.com/spf13/cobra"

	"sosie.dev/pkg/sosie/internal/domain"
	m "sosie.dev/pkg/sosie/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <manifest>",
		Short: "List the pairs of a manifest",
		Long:  "List the test, reference and candidate traces of every pair in a manifest.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.List(cmd.Context(), domain.ListArgs{Manifest: m.Path(args[0])})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
