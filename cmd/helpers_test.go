package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	domainmocks "sosie.dev/pkg/sosie/internal/domain/mocks"
)

// newTestRoot builds a root command with sub attached and swaps the shared
// workflow for a mock until the test ends.
func newTestRoot(t *testing.T, sub *cobra.Command) (*cobra.Command, *domainmocks.MockWorkflow) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	originalLog := viper.GetString(logFilenameKey)
	viper.Set(logFilenameKey, t.TempDir()+"/sosie.log")
	t.Cleanup(func() { viper.Set(logFilenameKey, originalLog) })

	cmd := newRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd, mockWorkflow
}
