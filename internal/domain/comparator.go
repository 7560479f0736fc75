package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"sosie.dev/pkg/sosie/internal/adapter"
	m "sosie.dev/pkg/sosie/internal/model"
)

// CompareArgs describes one comparison of a reference trace with a candidate trace.
type CompareArgs struct {
	Test      string
	Reference m.Path
	Candidate m.Path
	Window    int
	Timeout   time.Duration
}

// ExclusionSource hands out the exclusion snapshot a comparison runs against.
type ExclusionSource interface {
	Snapshot() ExclusionSnapshot
}

// Comparator loads two traces, aligns every thread and reports the verdict.
type Comparator interface {
	Compare(ctx context.Context, args CompareArgs) (m.Report, error)
}

type comparator struct {
	traces     adapter.TraceStore
	exclusions ExclusionSource
}

// NewComparator constructs a Comparator reading traces from the store and
// filtering diffs through the exclusions.
func NewComparator(traces adapter.TraceStore, exclusions ExclusionSource) Comparator {
	return &comparator{
		traces:     traces,
		exclusions: exclusions,
	}
}

// Compare returns a report for args. Divergence, unsynchronizable traces and
// malformed records are verdicts, not errors. Errors are returned for
// unreadable files and when ctx is done before the alignment finishes, in
// which case the comparison is abandoned.
func (c *comparator) Compare(ctx context.Context, args CompareArgs) (m.Report, error) {
	started := time.Now()

	report := m.Report{
		ID:        uuid.NewString(),
		Test:      args.Test,
		Reference: args.Reference,
		Candidate: args.Candidate,
		Window:    args.Window,
	}

	if args.Window <= 0 {
		return report, fmt.Errorf("%w: %d", ErrInvalidWindow, args.Window)
	}

	if args.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, args.Timeout)
		defer cancel()
	}

	refTrace, err := c.traces.LoadTrace(ctx, args.Reference)
	if err != nil {
		return report, fmt.Errorf("load reference trace: %w", err)
	}

	candTrace, err := c.traces.LoadTrace(ctx, args.Candidate)
	if err != nil {
		return report, fmt.Errorf("load candidate trace: %w", err)
	}

	if report.Test == "" {
		report.Test = refTrace.Test
	}

	report.Variant = candTrace.Variant

	refSeqs, candSeqs, err := buildBoth(refTrace, candTrace)
	if err != nil {
		slog.Warn("Malformed trace", "test", report.Test, "error", err)

		report.Verdict = m.Malformed
		report.Error = err.Error()
		report.Duration = time.Since(started)

		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("compare %s: %w", report.Test, err)
	}

	snapshot := c.snapshot()
	done := make(chan []m.ThreadReport, 1)

	go func() {
		done <- alignThreads(refSeqs, candSeqs, args.Window, snapshot)
	}()

	select {
	case <-ctx.Done():
		slog.Warn("Comparison abandoned", "test", report.Test, "error", ctx.Err())
		return report, fmt.Errorf("compare %s: %w", report.Test, ctx.Err())
	case threads := <-done:
		report.Threads = threads
	}

	report.Verdict = m.WorstVerdict(report.Threads)
	report.Duration = time.Since(started)

	slog.Debug("Compared traces", "test", report.Test, "verdict", report.Verdict,
		"threads", len(report.Threads), "duration", report.Duration)

	return report, nil
}

func (c *comparator) snapshot() ExclusionChecker {
	if c.exclusions == nil {
		return nil
	}

	return c.exclusions.Snapshot()
}

func buildBoth(refTrace, candTrace m.Trace) (map[string]*PointSequence, map[string]*PointSequence, error) {
	refSeqs, err := BuildSequences(refTrace)
	if err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}

	candSeqs, err := BuildSequences(candTrace)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate: %w", err)
	}

	return refSeqs, candSeqs, nil
}

// alignThreads aligns threads by name, in name order. A thread recorded on one
// side only cannot be synchronized.
func alignThreads(refSeqs, candSeqs map[string]*PointSequence, window int, exclusions ExclusionChecker) []m.ThreadReport {
	names := slices.Sorted(maps.Keys(refSeqs))
	for name := range candSeqs {
		if _, ok := refSeqs[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	threads := make([]m.ThreadReport, 0, len(names))

	for _, name := range names {
		ref, refOK := refSeqs[name]
		cand, candOK := candSeqs[name]

		if !refOK || !candOK {
			side := "candidate"
			if !refOK {
				side = "reference"
			}

			threads = append(threads, m.ThreadReport{
				Thread:  name,
				Verdict: m.Unsynchronizable,
				Error:   fmt.Sprintf("%s: thread not recorded in %s", ErrUnsynchronizable, side),
			})

			continue
		}

		aligner := NewAligner(window, WithDiffer(NewDiffer(exclusions)))
		alignment, err := aligner.Align(ref, cand, StartOffsets{})

		thread := m.ThreadReport{
			Thread:       name,
			Synchronized: alignment.Synchronized,
			Trail:        alignment.Trail,
			Same:         alignment.Same,
			Different:    alignment.Different,
			Diffs:        alignment.Diffs,
			Verdict:      alignment.Verdict(),
		}

		if err != nil {
			thread.Error = err.Error()

			var unsync *UnsynchronizableError
			if !errors.As(err, &unsync) {
				thread.Verdict = m.Malformed
			}
		}

		threads = append(threads, thread)
	}

	return threads
}
