// Package controller provides output adapters for displaying comparison results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	m "sosie.dev/pkg/sosie/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeCompare StartMode = iota
	ModeCampaign
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithCompareMode sets the UI to single comparison mode.
func WithCompareMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCompare
	}
}

// WithCampaignMode sets the UI to campaign mode.
func WithCampaignMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCampaign
	}
}

// WithViewMode sets the UI to browse saved reports.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// UI defines how comparison progress and results are shown.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayPairs(ctx context.Context, pairs []m.Pair) error
	DisplayCampaignInfo(ctx context.Context, pairs int, threads int, shardIndex int, shardCount int)
	DisplayCompletedComparison(ctx context.Context, report m.Report)
	DisplayReport(ctx context.Context, report m.Report) error
	DisplaySummary(ctx context.Context, reports []m.Report, score float64) error
	DisplayExclusions(ctx context.Context, keys []string, added int) error
}

// NewUI picks the interactive UI for terminals and the plain one otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
