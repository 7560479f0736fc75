package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sosie.dev/pkg/sosie/internal/domain"
	m "sosie.dev/pkg/sosie/internal/model"
)

const calibrateLongDescription = `Learn which variables are not deterministic.

Each pair of the manifest must hold two recordings of the unmodified program.
Every variable whose value differs between them is added to the exclusions
file so later comparisons ignore it.`

// calibrateCmd represents the calibrate command.
var calibrateCmd = newCalibrateCmd()

func newCalibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate <manifest>",
		Short: "Learn non-deterministic variables from reference runs",
		Long:  calibrateLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Calibrate(cmd.Context(), domain.CalibrateArgs{
				Manifest:   m.Path(args[0]),
				Exclusions: exclusionsPath(),
				Window:     viper.GetInt(syncWindowConfigKey),
				Timeout:    compareTimeout(),
				Threads:    viper.GetInt(runParallelConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
}
