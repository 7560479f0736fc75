package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	m "sosie.dev/pkg/sosie/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	helpStyle  = lipgloss.NewStyle().Faint(true)

	verdictStyles = map[m.Verdict]lipgloss.Style{
		m.Equivalent:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		m.Divergent:        lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		m.Unsynchronizable: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		m.Malformed:        lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
)

// TUI prints progress like SimpleUI but pages reports in an interactive
// viewer when comparing or viewing.
type TUI struct {
	*SimpleUI

	mu      sync.Mutex
	mode    StartMode
	content strings.Builder
	run     func(model tea.Model) error
}

// NewTUI creates a new TUI writing to the command output.
func NewTUI(cmd *cobra.Command) *TUI {
	t := &TUI{SimpleUI: NewSimpleUI(cmd)}
	t.run = func(model tea.Model) error {
		_, err := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()), tea.WithAltScreen()).Run()
		return err
	}

	return t
}

// Start records the mode and resets buffered content.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{mode: ModeCompare}
	for _, option := range options {
		option(&config)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = config.mode
	t.content.Reset()

	return nil
}

// DisplayReport buffers the report for the pager.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.buffer(styleVerdicts(renderReport(report)))

	return nil
}

// DisplaySummary buffers the summary in view mode and prints it otherwise.
func (t *TUI) DisplaySummary(ctx context.Context, reports []m.Report, score float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	mode := t.mode
	t.mu.Unlock()

	if mode != ModeView {
		return t.SimpleUI.DisplaySummary(ctx, reports, score)
	}

	t.buffer(styleVerdicts(renderSummary(reports, score)))

	return nil
}

// Wait shows the buffered content until the user quits.
func (t *TUI) Wait(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	content := t.content.String()
	t.content.Reset()
	t.mu.Unlock()

	if content == "" {
		return
	}

	if err := t.run(newPagerModel(content)); err != nil {
		slog.Error("Failed to run report viewer", "error", err)
		t.printf("%s", content)
	}
}

func (t *TUI) buffer(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.content.WriteString(text)
}

func styleVerdicts(text string) string {
	for verdict, style := range verdictStyles {
		text = strings.ReplaceAll(text, "verdict:   "+string(verdict), "verdict:   "+style.Render(string(verdict)))
	}

	return text
}

// pagerModel is the Bubble Tea model scrolling through rendered reports.
type pagerModel struct {
	content  string
	viewport viewport.Model
	ready    bool
	quitting bool
}

func newPagerModel(content string) pagerModel {
	return pagerModel{content: content}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-2, 1)
		if !pm.ready {
			pm.viewport = viewport.New(msg.Width, height)
			pm.viewport.SetContent(pm.content)
			pm.ready = true
		} else {
			pm.viewport.Width = msg.Width
			pm.viewport.Height = height
		}

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	if !pm.ready {
		return "loading..."
	}

	return titleStyle.Render("sosie reports") + "\n" +
		pm.viewport.View() + "\n" +
		helpStyle.Render("↑/↓ scroll • q quit")
}
