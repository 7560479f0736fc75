package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unknownVersion = "(devel)"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sosie build version",
		Long:  "Prints the sosie module version, its module path and the Go toolchain it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			version, module, goVersion := buildVersion()
			cmd.Printf("sosie %s\n", version)
			cmd.Printf("module\t%s\n", module)
			cmd.Printf("go\t%s\n", goVersion)
		},
	}
}

// buildVersion reads the module version from the embedded build info. Test
// binaries and plain `go run` builds report unknownVersion.
func buildVersion() (version, module, goVersion string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknownVersion, "unknown", "unknown"
	}

	version = info.Main.Version
	if version == "" {
		version = unknownVersion
	}

	module = info.Main.Path
	if module == "" {
		module = "unknown"
	}

	return version, module, info.GoVersion
}

var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
