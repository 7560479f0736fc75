package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	m "sosie.dev/pkg/sosie/internal/model"
)

// SimpleUI implements UI by printing to the cobra command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait returns immediately; SimpleUI never blocks.
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayPairs prints the pairs of a manifest.
func (s *SimpleUI) DisplayPairs(ctx context.Context, pairs []m.Pair) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderPairsTable(pairs))

	return nil
}

// DisplayCampaignInfo shows concurrency settings.
func (s *SimpleUI) DisplayCampaignInfo(ctx context.Context, pairs int, threads int, shardIndex int, shardCount int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Comparing %d pair(s) with %d worker(s) (Shard %d/%d)\n", pairs, threads, shardIndex, shardCount)
}

// DisplayCompletedComparison prints a one line result.
func (s *SimpleUI) DisplayCompletedComparison(ctx context.Context, report m.Report) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Compared %s (%s) -> %s\n", report.Test, shortID(report.ID), report.Verdict)
}

// DisplayReport prints the full report of one comparison.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderReport(report))

	return nil
}

// DisplaySummary prints the verdict table and the sosie score.
func (s *SimpleUI) DisplaySummary(ctx context.Context, reports []m.Report, score float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderSummary(reports, score))

	return nil
}

// DisplayExclusions prints the excluded variable keys.
func (s *SimpleUI) DisplayExclusions(ctx context.Context, keys []string, added int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if added > 0 {
		s.printf("Added %d exclusion(s)\n", added)
	}

	for _, key := range keys {
		s.printf("%s\n", key)
	}

	s.printf("Total exclusions: %d\n", len(keys))

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	return table
}

func renderPairsTable(pairs []m.Pair) string {
	var buf bytes.Buffer

	table := newTable(&buf, "Test", "Reference", "Candidate")
	for _, pair := range pairs {
		table.Append([]string{pair.Test, string(pair.Reference), string(pair.Candidate)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Pairs %d", len(pairs)), "", ""})
	table.Render()

	return buf.String()
}

func renderReport(report m.Report) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "\nTest %s [%s] window=%d\n", report.Test, shortID(report.ID), report.Window)
	fmt.Fprintf(&buf, "  reference: %s\n  candidate: %s\n", report.Reference, report.Candidate)
	fmt.Fprintf(&buf, "  verdict:   %s\n", report.Verdict)

	if report.Error != "" {
		fmt.Fprintf(&buf, "  error:     %s\n", report.Error)
	}

	if len(report.Threads) == 0 {
		return buf.String()
	}

	buf.WriteString("\n")

	table := newTable(&buf, "Thread", "Verdict", "Trail", "Same", "Different", "Diffs")
	for _, thread := range report.Threads {
		table.Append([]string{
			thread.Thread,
			string(thread.Verdict),
			strconv.Itoa(len(thread.Trail)),
			strconv.Itoa(len(thread.Same)),
			strconv.Itoa(len(thread.Different)),
			strconv.Itoa(len(thread.Diffs)),
		})
	}

	table.Render()

	for _, thread := range report.Threads {
		if thread.Error != "" {
			fmt.Fprintf(&buf, "\n[%s] %s\n", thread.Thread, thread.Error)
		}

		if len(thread.Different) > 0 {
			fmt.Fprintf(&buf, "\n[%s] divergent calls\n%s", thread.Thread, renderDivergence(thread.Different))
		}

		if len(thread.Diffs) > 0 {
			fmt.Fprintf(&buf, "\n[%s] variable diffs\n", thread.Thread)

			diffTable := newTable(&buf, "Variable", "Reference", "Candidate", "Ref #", "Cand #")
			for _, diff := range thread.Diffs {
				diffTable.Append([]string{
					diff.Key,
					diff.Reference,
					diff.Candidate,
					strconv.Itoa(diff.ReferenceIndex),
					strconv.Itoa(diff.CandidateIndex),
				})
			}

			diffTable.Render()
		}
	}

	return buf.String()
}

// renderDivergence shows the points where the traces parted as a unified diff
// of their call keys.
func renderDivergence(pairs []m.CallPair) string {
	refLines := make([]string, 0, len(pairs))
	candLines := make([]string, 0, len(pairs))

	for _, pair := range pairs {
		refLines = append(refLines, formatCall(pair.Reference))
		candLines = append(candLines, formatCall(pair.Candidate))
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        refLines,
		B:        candLines,
		FromFile: "reference",
		ToFile:   "candidate",
		Context:  1,
	})
	if err != nil {
		return fmt.Sprintf("diff error: %v\n", err)
	}

	return text
}

func formatCall(call m.CallRecord) string {
	if call.Missing() {
		return "(none)\n"
	}

	return fmt.Sprintf("#%d %s %s depth=%d\n", call.Index, call.Kind, call.Key, call.Depth)
}

func renderSummary(reports []m.Report, score float64) string {
	var buf bytes.Buffer

	counts := map[m.Verdict]int{}

	table := newTable(&buf, "Test", "Variant", "Verdict", "Different", "Diffs")
	for _, report := range reports {
		counts[report.Verdict]++

		table.Append([]string{
			report.Test,
			report.Variant,
			string(report.Verdict),
			strconv.Itoa(report.DifferentCount()),
			strconv.Itoa(len(report.Diffs())),
		})
	}

	buf.WriteString("\n")
	table.Render()

	fmt.Fprintf(&buf, "\nEquivalent: %d | Divergent: %d | Unsynchronizable: %d | Malformed: %d\n",
		counts[m.Equivalent], counts[m.Divergent], counts[m.Unsynchronizable], counts[m.Malformed])
	fmt.Fprintf(&buf, "Sosie score: %.2f%%\n", score*100)

	return buf.String()
}
