// Package cmd provides the root command and CLI setup for sosie.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"sosie.dev/pkg/sosie/internal/adapter"
	"sosie.dev/pkg/sosie/internal/controller"
	"sosie.dev/pkg/sosie/internal/domain"
	m "sosie.dev/pkg/sosie/internal/model"
)

var traceStore adapter.TraceStore
var reportStore adapter.ReportStore
var exclusionStore adapter.ExclusionStore
var exclusions *domain.Exclusions
var comparator domain.Comparator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

var exclusionsFileFlag string
var syncWindowFlag int
var verboseFlag bool
var timeoutFlag int64
var parallelFlag int

func init() {
	configureRootFlags(rootCmd)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	traceStore = adapter.NewLocalTraceStore()
	reportStore = adapter.NewReportStore()
	exclusionStore = adapter.NewExclusionStore()
	exclusions = domain.NewExclusions()
	comparator = domain.NewComparator(traceStore, exclusions)
	workflow = domain.NewWorkflow(
		traceStore,
		reportStore,
		exclusionStore,
		ui,
		comparator,
		exclusions,
	)
}

const traceFormatHelp = `Traces are YAML files with one record list per thread:
  test: TestParse
  variant: original
  threads:
    main:
      - {kind: call-entry, type: Parser, tag: parse, depth: 1}
      - {kind: vars, type: Parser, tag: parse, vars: [{name: n, value: "3"}]}
      - {kind: call-exit, type: Parser, tag: parse, depth: 0}`

const rootLongDescription = `Sosie compares execution traces of a reference program with traces of a
candidate variant of it. Both traces are aligned call by call, recovering
from small divergences within a synchronization window, and the variable
values observed at matching points are compared. A candidate whose traces
cannot be told apart from the reference is a sosie.

` + traceFormatHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sosie",
		Short: "Execution trace equivalence oracle",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for comparison reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(&exclusionsFileFlag, exclusionsFlagName, "e", viper.GetString(exclusionsConfigKey), "file listing variables excluded from comparison")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(exclusionsFlagName), exclusionsConfigKey)

	cmd.PersistentFlags().IntVarP(&syncWindowFlag, syncWindowFlagName, "w", viper.GetInt(syncWindowConfigKey), "maximum number of calls skipped on either side to resynchronize")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(syncWindowFlagName), syncWindowConfigKey)

	cmd.PersistentFlags().Int64Var(&timeoutFlag, timeoutFlagName, viper.GetInt64(compareTimeoutKey), "seconds before a comparison is abandoned (0 disables)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(timeoutFlagName), compareTimeoutKey)

	cmd.PersistentFlags().IntVarP(&parallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of comparisons run in parallel")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level and mirror logs to stderr")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func reportsPath() m.Path {
	return m.Path(viper.GetString(outputFlagName))
}

func exclusionsPath() m.Path {
	return m.Path(viper.GetString(exclusionsConfigKey))
}
