// Package domain contains the trace alignment engine and the comparison workflow.
package domain

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"sosie.dev/pkg/sosie/internal/adapter"
	"sosie.dev/pkg/sosie/internal/controller"
	m "sosie.dev/pkg/sosie/internal/model"
	pkg "sosie.dev/pkg/sosie/pkg"
)

// ErrNotEquivalent is returned by strict comparisons whose verdict is not equivalent.
var ErrNotEquivalent = errors.New("candidate is not equivalent to reference")

// RunArgs contains the arguments of a single comparison run.
type RunArgs struct {
	CompareArgs
	Reports    m.Path
	Exclusions m.Path
	Strict     bool
}

// CampaignArgs contains the arguments for comparing every pair of a manifest.
type CampaignArgs struct {
	Manifest        m.Path
	Reports         m.Path
	Exclusions      m.Path
	Window          int
	Timeout         time.Duration
	Threads         int
	ShardIndex      int
	TotalShardCount int
}

// CalibrateArgs contains the arguments for learning non-deterministic variables
// from pairs of reference recordings.
type CalibrateArgs struct {
	Manifest   m.Path
	Exclusions m.Path
	Window     int
	Timeout    time.Duration
	Threads    int
}

// ListArgs contains the arguments for listing a manifest.
type ListArgs struct {
	Manifest m.Path
}

// ViewArgs contains the arguments for viewing saved reports.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs contains the arguments for merging sharded reports.
type MergeArgs struct {
	Reports m.Path
}

// ExclusionArgs contains the arguments for listing or extending exclusions.
type ExclusionArgs struct {
	Path m.Path
	Add  []string
}

// Workflow runs the commands of the CLI.
type Workflow interface {
	Compare(ctx context.Context, args RunArgs) error
	Campaign(ctx context.Context, args CampaignArgs) error
	Calibrate(ctx context.Context, args CalibrateArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
	Exclusions(ctx context.Context, args ExclusionArgs) error
}

type workflow struct {
	traces       adapter.TraceStore
	reports      adapter.ReportStore
	exclusionsFS adapter.ExclusionStore
	ui           controller.UI
	comparator   Comparator
	exclusions   *Exclusions
}

// NewWorkflow creates a new Workflow with the provided dependencies. The
// comparator must read its snapshots from the same exclusions.
func NewWorkflow(
	traces adapter.TraceStore,
	reports adapter.ReportStore,
	exclusionStore adapter.ExclusionStore,
	ui controller.UI,
	comparator Comparator,
	exclusions *Exclusions,
) Workflow {
	return &workflow{
		traces:       traces,
		reports:      reports,
		exclusionsFS: exclusionStore,
		ui:           ui,
		comparator:   comparator,
		exclusions:   exclusions,
	}
}

func (w *workflow) Compare(ctx context.Context, args RunArgs) error {
	if err := w.loadExclusions(ctx, args.Exclusions); err != nil {
		return err
	}

	if err := w.ui.Start(ctx, controller.WithCompareMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	report, err := w.comparator.Compare(ctx, args.CompareArgs)
	if err != nil {
		slog.Error("Comparison failed", "reference", args.Reference, "candidate", args.Candidate, "error", err)
		return fmt.Errorf("compare: %w", err)
	}

	if args.Reports != "" {
		if err := w.reports.SaveReports(ctx, args.Reports, []m.Report{report}); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	if err := w.ui.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.ui.Wait(ctx)

	if args.Strict && report.Verdict != m.Equivalent {
		return fmt.Errorf("%w: %s", ErrNotEquivalent, report.Verdict)
	}

	return nil
}

func (w *workflow) Campaign(ctx context.Context, args CampaignArgs) error {
	manifest, err := w.traces.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	if err := w.loadExclusions(ctx, args.Exclusions); err != nil {
		return err
	}

	pairs := ShardPairs(manifest.Pairs, args.ShardIndex, args.TotalShardCount)

	if err := w.ui.Start(ctx, controller.WithCampaignMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	w.ui.DisplayCampaignInfo(ctx, len(pairs), args.Threads, args.ShardIndex, args.TotalShardCount)

	spill, err := pkg.NewFileSpill[m.Report]("")
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		_ = spill.Close()
		_ = os.Remove(spill.Path())
	}()

	compareErr := w.comparePairs(ctx, pairs, args.Window, args.Timeout, args.Threads, func(report m.Report) error {
		w.ui.DisplayCompletedComparison(ctx, report)
		return spill.Append(report)
	})

	reports, err := collectReports(spill)
	if err != nil {
		return fmt.Errorf("read reports: %w", err)
	}

	reportsDir := args.Reports
	if args.TotalShardCount > 1 {
		reportsDir = adapter.ShardDir(args.Reports, args.ShardIndex)
	}

	if err := w.reports.SaveReports(ctx, reportsDir, reports); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}

	score, err := sosieScoreFromReports(spill)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	if err := w.ui.DisplaySummary(ctx, reports, score); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return compareErr
}

func (w *workflow) Calibrate(ctx context.Context, args CalibrateArgs) error {
	manifest, err := w.traces.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	if err := w.loadExclusions(ctx, args.Exclusions); err != nil {
		return err
	}

	added := 0

	var addedMutex sync.Mutex

	compareErr := w.comparePairs(ctx, manifest.Pairs, args.Window, args.Timeout, args.Threads, func(report m.Report) error {
		keys := make([]string, 0, len(report.Diffs()))
		for _, diff := range report.Diffs() {
			keys = append(keys, diff.Key)
		}

		n := w.exclusions.Merge(keys...)

		addedMutex.Lock()
		added += n
		addedMutex.Unlock()

		if report.Verdict == m.Unsynchronizable || report.DifferentCount() > 0 {
			slog.Warn("Reference runs do not follow the same calls", "test", report.Test, "verdict", report.Verdict)
		}

		return nil
	})

	if err := w.exclusionsFS.SaveExclusions(ctx, args.Exclusions, w.exclusions.Keys()); err != nil {
		return fmt.Errorf("save exclusions: %w", err)
	}

	if err := w.ui.DisplayExclusions(ctx, w.exclusions.Keys(), added); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return compareErr
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	manifest, err := w.traces.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	return w.ui.DisplayPairs(ctx, manifest.Pairs)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.reports.LoadReports(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.ui.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	for _, report := range reports {
		if err := w.ui.DisplayReport(ctx, report); err != nil {
			return fmt.Errorf("display: %w", err)
		}
	}

	if err := w.ui.DisplaySummary(ctx, reports, scoreOf(reports)); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.ui.Wait(ctx)

	return nil
}

func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	shards, err := w.reports.ShardDirs(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("list shards: %w", err)
	}

	for _, shard := range shards {
		reports, err := w.reports.LoadReports(ctx, shard)
		if err != nil {
			return fmt.Errorf("load shard %s: %w", shard, err)
		}

		if err := w.reports.SaveReports(ctx, args.Reports, reports); err != nil {
			return fmt.Errorf("merge shard %s: %w", shard, err)
		}

		if err := w.reports.RemoveDir(ctx, shard); err != nil {
			return fmt.Errorf("remove shard %s: %w", shard, err)
		}

		slog.Debug("Merged shard", "shard", shard, "reports", len(reports))
	}

	return nil
}

func (w *workflow) Exclusions(ctx context.Context, args ExclusionArgs) error {
	if err := w.loadExclusions(ctx, args.Path); err != nil {
		return err
	}

	added := w.exclusions.Merge(args.Add...)
	if added > 0 {
		if err := w.exclusionsFS.SaveExclusions(ctx, args.Path, w.exclusions.Keys()); err != nil {
			return fmt.Errorf("save exclusions: %w", err)
		}
	}

	return w.ui.DisplayExclusions(ctx, w.exclusions.Keys(), added)
}

func (w *workflow) loadExclusions(ctx context.Context, path m.Path) error {
	keys, err := w.exclusionsFS.LoadExclusions(ctx, path)
	if err != nil {
		return fmt.Errorf("load exclusions: %w", err)
	}

	w.exclusions.Merge(keys...)

	return nil
}

// comparePairs runs the comparisons of pairs on at most threads goroutines.
// Failed comparisons do not stop the others; their errors are joined.
func (w *workflow) comparePairs(
	ctx context.Context,
	pairs []m.Pair,
	window int,
	timeout time.Duration,
	threads int,
	onReport func(m.Report) error,
) error {
	var (
		group      errgroup.Group
		errs       []error
		errorsLock sync.Mutex
	)

	if threads > 0 {
		group.SetLimit(threads)
	}

	for _, pair := range pairs {
		group.Go(func() error {
			report, err := w.comparator.Compare(ctx, CompareArgs{
				Test:      pair.Test,
				Reference: pair.Reference,
				Candidate: pair.Candidate,
				Window:    window,
				Timeout:   timeout,
			})
			if err != nil {
				slog.Error("Comparison failed", "test", pair.Test, "candidate", pair.Candidate, "error", err)

				errorsLock.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", pair.Test, err))
				errorsLock.Unlock()

				return nil
			}

			return onReport(report)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return errors.Join(errs...)
}

// ShardPairs keeps the pairs whose position modulo total equals index.
func ShardPairs(pairs []m.Pair, index, total int) []m.Pair {
	if total <= 1 {
		return pairs
	}

	var shard []m.Pair

	for i, pair := range pairs {
		if i%total == index {
			shard = append(shard, pair)
		}
	}

	return shard
}

func collectReports(spill pkg.FileSpill[m.Report]) ([]m.Report, error) {
	reports := make([]m.Report, 0, spill.Len())

	err := spill.Range(func(_ uint64, report m.Report) error {
		reports = append(reports, report)
		return nil
	})

	// Completion order depends on scheduling.
	slices.SortStableFunc(reports, func(a, b m.Report) int {
		if c := cmp.Compare(a.Test, b.Test); c != 0 {
			return c
		}

		return cmp.Compare(a.Candidate, b.Candidate)
	})

	return reports, err
}
