package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sosie.dev/pkg/sosie/internal/domain"
	m "sosie.dev/pkg/sosie/internal/model"
)

const compareLongDescription = `Compare the trace of a candidate with the trace of the reference program.

Every thread recorded in the reference is aligned with the thread of the same
name in the candidate. The report lists the calls that could not be matched,
the variables whose values differ and a verdict: equivalent, divergent,
unsynchronizable or malformed.`

var compareStrictFlag bool
var compareTestFlag string

// compareCmd represents the compare command.
var compareCmd = newCompareCmd()

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <reference> <candidate>",
		Short: "Compare a candidate trace with a reference trace",
		Long:  compareLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, candidate := m.Path(args[0]), m.Path(args[1])

			return workflow.Compare(cmd.Context(), domain.RunArgs{
				CompareArgs: domain.CompareArgs{
					Test:      strings.TrimSpace(compareTestFlag),
					Reference: reference,
					Candidate: candidate,
					Window:    viper.GetInt(syncWindowConfigKey),
					Timeout:   compareTimeout(),
				},
				Reports:    reportsPath(),
				Exclusions: exclusionsPath(),
				Strict:     compareStrictFlag,
			})
		},
	}

	configureCompareFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func configureCompareFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&compareStrictFlag, strictFlagName, false, "exit with an error unless the candidate is equivalent")
	cmd.Flags().StringVarP(&compareTestFlag, "test", "t", "", "test name recorded in the report (default: taken from the reference trace)")
}
