package cmd

import (
	"github.com/spf13/cobra"

	"sosie.dev/pkg/sosie/internal/domain"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded reports into a single directory",
		Long:  "Merge reports from shard_* subdirectories into a single reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Merge(cmd.Context(), domain.MergeArgs{Reports: reportsPath()})
		},
	}
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
