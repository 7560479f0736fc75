package cmd

import (
	"github.com/spf13/cobra"

	"sosie.dev/pkg/sosie/internal/domain"
)

// exclusionsCmd represents the exclusions command.
var exclusionsCmd = newExclusionsCmd()

func newExclusionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclusions",
		Short: "Manage variables excluded from comparison",
		Long: `Manage the variables whose values are never compared.

Keys have the form Type.Tag:name, the location of the snapshot followed by the
variable name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newExclusionsListCmd(), newExclusionsAddCmd())

	return cmd
}

func newExclusionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List excluded variables",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Exclusions(cmd.Context(), domain.ExclusionArgs{Path: exclusionsPath()})
		},
	}
}

func newExclusionsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <key>...",
		Short: "Exclude variables from comparison",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Exclusions(cmd.Context(), domain.ExclusionArgs{
				Path: exclusionsPath(),
				Add:  args,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(exclusionsCmd)
}
