package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"sosie.dev/pkg/sosie/internal/adapter"
	adaptermocks "sosie.dev/pkg/sosie/internal/adapter/mocks"
	controllermocks "sosie.dev/pkg/sosie/internal/controller/mocks"
	"sosie.dev/pkg/sosie/internal/domain"
	domainmocks "sosie.dev/pkg/sosie/internal/domain/mocks"
	m "sosie.dev/pkg/sosie/internal/model"
)

type workflowMocks struct {
	traces     *adaptermocks.MockTraceStore
	reports    *adaptermocks.MockReportStore
	store      *adaptermocks.MockExclusionStore
	ui         *controllermocks.MockUI
	comparator *domainmocks.MockComparator
	exclusions *domain.Exclusions
}

func newWorkflowMocks(t *testing.T) (*workflowMocks, domain.Workflow) {
	mocks := &workflowMocks{
		traces:     adaptermocks.NewMockTraceStore(t),
		reports:    adaptermocks.NewMockReportStore(t),
		store:      adaptermocks.NewMockExclusionStore(t),
		ui:         controllermocks.NewMockUI(t),
		comparator: domainmocks.NewMockComparator(t),
		exclusions: domain.NewExclusions(),
	}

	wf := domain.NewWorkflow(mocks.traces, mocks.reports, mocks.store, mocks.ui, mocks.comparator, mocks.exclusions)

	return mocks, wf
}

func (w *workflowMocks) expectSession() {
	w.ui.On("Start", mock.Anything, mock.Anything).Return(nil)
	w.ui.On("Close", mock.Anything).Return()
}

func report(test string, candidate m.Path, verdict m.Verdict, diffKeys ...string) m.Report {
	thread := m.ThreadReport{Thread: "main", Verdict: verdict, Synchronized: verdict != m.Unsynchronizable}
	for _, key := range diffKeys {
		thread.Diffs = append(thread.Diffs, m.VariableDiff{Key: key, Reference: "1", Candidate: "2"})
	}

	return m.Report{
		ID:        test + "-" + string(candidate),
		Test:      test,
		Reference: "ref.yaml",
		Candidate: candidate,
		Verdict:   verdict,
		Threads:   []m.ThreadReport{thread},
	}
}

func forCandidate(candidate m.Path) any {
	return mock.MatchedBy(func(args domain.CompareArgs) bool {
		return args.Candidate == candidate
	})
}

func TestWorkflow_Compare(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	want := report("TestParse", "cand.yaml", m.Divergent, "Parser.parse:result")

	mocks.store.On("LoadExclusions", mock.Anything, m.Path("exclusions.yaml")).Return([]string{"Parser.parse:seed"}, nil)
	mocks.expectSession()
	mocks.comparator.On("Compare", mock.Anything, mock.MatchedBy(func(args domain.CompareArgs) bool {
		return args.Reference == "ref.yaml" && args.Candidate == "cand.yaml" && args.Window == 5
	})).Return(want, nil)
	mocks.reports.On("SaveReports", mock.Anything, m.Path("reports"), []m.Report{want}).Return(nil)
	mocks.ui.On("DisplayReport", mock.Anything, want).Return(nil)
	mocks.ui.On("Wait", mock.Anything).Return()

	err := wf.Compare(context.Background(), domain.RunArgs{
		CompareArgs: domain.CompareArgs{Reference: "ref.yaml", Candidate: "cand.yaml", Window: 5},
		Reports:     "reports",
		Exclusions:  "exclusions.yaml",
	})
	require.NoError(t, err)
	assert.True(t, mocks.exclusions.Contains("Parser.parse:seed"))
}

func TestWorkflow_CompareStrict(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	divergent := report("TestParse", "cand.yaml", m.Divergent)

	mocks.store.On("LoadExclusions", mock.Anything, m.Path("")).Return(nil, nil)
	mocks.expectSession()
	mocks.comparator.On("Compare", mock.Anything, mock.Anything).Return(divergent, nil)
	mocks.ui.On("DisplayReport", mock.Anything, divergent).Return(nil)
	mocks.ui.On("Wait", mock.Anything).Return()

	err := wf.Compare(context.Background(), domain.RunArgs{
		CompareArgs: domain.CompareArgs{Reference: "ref.yaml", Candidate: "cand.yaml", Window: 5},
		Strict:      true,
	})
	require.ErrorIs(t, err, domain.ErrNotEquivalent)
}

func TestWorkflow_CompareError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)

	mocks.store.On("LoadExclusions", mock.Anything, m.Path("")).Return(nil, nil)
	mocks.expectSession()
	mocks.comparator.On("Compare", mock.Anything, mock.Anything).Return(m.Report{}, context.DeadlineExceeded)

	err := wf.Compare(context.Background(), domain.RunArgs{
		CompareArgs: domain.CompareArgs{Reference: "ref.yaml", Candidate: "cand.yaml", Window: 5},
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkflow_Campaign(t *testing.T) {
	defer goleak.VerifyNone(t)

	mocks, wf := newWorkflowMocks(t)
	pairs := []m.Pair{
		{Test: "TestB", Reference: "ref.yaml", Candidate: "c1.yaml"},
		{Test: "TestA", Reference: "ref.yaml", Candidate: "c2.yaml"},
		{Test: "TestA", Reference: "ref.yaml", Candidate: "c3.yaml"},
		{Test: "TestC", Reference: "ref.yaml", Candidate: "c4.yaml"},
	}
	r1 := report("TestB", "c1.yaml", m.Equivalent)
	r2 := report("TestA", "c2.yaml", m.Divergent, "A.run:x")
	r3 := report("TestA", "c3.yaml", m.Equivalent)
	r4 := report("TestC", "c4.yaml", m.Malformed)

	mocks.traces.On("LoadManifest", mock.Anything, m.Path("manifest.yaml")).Return(m.Manifest{Pairs: pairs}, nil)
	mocks.store.On("LoadExclusions", mock.Anything, m.Path("exclusions.yaml")).Return(nil, nil)
	mocks.expectSession()
	mocks.ui.On("DisplayCampaignInfo", mock.Anything, 4, 2, 0, 1).Return()
	mocks.ui.On("DisplayCompletedComparison", mock.Anything, mock.Anything).Return().Times(4)

	for _, r := range []m.Report{r1, r2, r3, r4} {
		mocks.comparator.On("Compare", mock.Anything, forCandidate(r.Candidate)).Return(r, nil).Once()
	}

	sorted := []m.Report{r2, r3, r1, r4}
	mocks.reports.On("SaveReports", mock.Anything, m.Path("reports"), sorted).Return(nil)
	mocks.ui.On("DisplaySummary", mock.Anything, sorted, 2.0/3.0).Return(nil)

	err := wf.Campaign(context.Background(), domain.CampaignArgs{
		Manifest:        "manifest.yaml",
		Reports:         "reports",
		Exclusions:      "exclusions.yaml",
		Window:          5,
		Timeout:         time.Second,
		Threads:         2,
		TotalShardCount: 1,
	})
	require.NoError(t, err)
}

func TestWorkflow_CampaignShard(t *testing.T) {
	defer goleak.VerifyNone(t)

	mocks, wf := newWorkflowMocks(t)
	pairs := []m.Pair{
		{Test: "TestA", Reference: "ref.yaml", Candidate: "c1.yaml"},
		{Test: "TestB", Reference: "ref.yaml", Candidate: "c2.yaml"},
		{Test: "TestC", Reference: "ref.yaml", Candidate: "c3.yaml"},
	}
	r2 := report("TestB", "c2.yaml", m.Equivalent)

	mocks.traces.On("LoadManifest", mock.Anything, m.Path("manifest.yaml")).Return(m.Manifest{Pairs: pairs}, nil)
	mocks.store.On("LoadExclusions", mock.Anything, m.Path("")).Return(nil, nil)
	mocks.expectSession()
	mocks.ui.On("DisplayCampaignInfo", mock.Anything, 1, 1, 1, 2).Return()
	mocks.ui.On("DisplayCompletedComparison", mock.Anything, r2).Return()
	mocks.comparator.On("Compare", mock.Anything, forCandidate("c2.yaml")).Return(r2, nil).Once()
	mocks.reports.On("SaveReports", mock.Anything, adapter.ShardDir("reports", 1), []m.Report{r2}).Return(nil)
	mocks.ui.On("DisplaySummary", mock.Anything, []m.Report{r2}, 1.0).Return(nil)

	err := wf.Campaign(context.Background(), domain.CampaignArgs{
		Manifest:        "manifest.yaml",
		Reports:         "reports",
		Window:          5,
		Threads:         1,
		ShardIndex:      1,
		TotalShardCount: 2,
	})
	require.NoError(t, err)
}

func TestWorkflow_CampaignKeepsGoingAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	mocks, wf := newWorkflowMocks(t)
	pairs := []m.Pair{
		{Test: "TestA", Reference: "ref.yaml", Candidate: "c1.yaml"},
		{Test: "TestB", Reference: "ref.yaml", Candidate: "c2.yaml"},
	}
	r2 := report("TestB", "c2.yaml", m.Unsynchronizable)
	failure := errors.New("read c1.yaml: no such file")

	mocks.traces.On("LoadManifest", mock.Anything, m.Path("manifest.yaml")).Return(m.Manifest{Pairs: pairs}, nil)
	mocks.store.On("LoadExclusions", mock.Anything, m.Path("")).Return(nil, nil)
	mocks.expectSession()
	mocks.ui.On("DisplayCampaignInfo", mock.Anything, 2, 4, 0, 1).Return()
	mocks.ui.On("DisplayCompletedComparison", mock.Anything, r2).Return()
	mocks.comparator.On("Compare", mock.Anything, forCandidate("c1.yaml")).Return(m.Report{}, failure)
	mocks.comparator.On("Compare", mock.Anything, forCandidate("c2.yaml")).Return(r2, nil)
	mocks.reports.On("SaveReports", mock.Anything, m.Path("reports"), []m.Report{r2}).Return(nil)
	mocks.ui.On("DisplaySummary", mock.Anything, []m.Report{r2}, 0.0).Return(nil)

	err := wf.Campaign(context.Background(), domain.CampaignArgs{
		Manifest:        "manifest.yaml",
		Reports:         "reports",
		Window:          5,
		Threads:         4,
		TotalShardCount: 1,
	})
	require.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "TestA")
}

func TestWorkflow_CampaignManifestError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	mocks.traces.On("LoadManifest", mock.Anything, m.Path("missing.yaml")).Return(m.Manifest{}, errors.New("not found"))

	err := wf.Campaign(context.Background(), domain.CampaignArgs{Manifest: "missing.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load manifest")
}

func TestWorkflow_Calibrate(t *testing.T) {
	defer goleak.VerifyNone(t)

	mocks, wf := newWorkflowMocks(t)
	pairs := []m.Pair{
		{Test: "TestA", Reference: "run1.yaml", Candidate: "run2.yaml"},
		{Test: "TestB", Reference: "run1.yaml", Candidate: "run3.yaml"},
	}

	mocks.traces.On("LoadManifest", mock.Anything, m.Path("calibration.yaml")).Return(m.Manifest{Pairs: pairs}, nil)
	mocks.store.On("LoadExclusions", mock.Anything, m.Path("exclusions.yaml")).Return([]string{"Clock.now:t"}, nil)
	mocks.comparator.On("Compare", mock.Anything, forCandidate("run2.yaml")).
		Return(report("TestA", "run2.yaml", m.Divergent, "Cache.warm:size", "Clock.now:t"), nil)
	mocks.comparator.On("Compare", mock.Anything, forCandidate("run3.yaml")).
		Return(report("TestB", "run3.yaml", m.Divergent, "Pool.get:id"), nil)

	want := []string{"Cache.warm:size", "Clock.now:t", "Pool.get:id"}
	mocks.store.On("SaveExclusions", mock.Anything, m.Path("exclusions.yaml"), want).Return(nil)
	mocks.ui.On("DisplayExclusions", mock.Anything, want, 2).Return(nil)

	err := wf.Calibrate(context.Background(), domain.CalibrateArgs{
		Manifest:   "calibration.yaml",
		Exclusions: "exclusions.yaml",
		Window:     5,
		Threads:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, want, mocks.exclusions.Keys())
}

func TestWorkflow_List(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	pairs := []m.Pair{{Test: "TestA", Reference: "ref.yaml", Candidate: "c1.yaml"}}

	mocks.traces.On("LoadManifest", mock.Anything, m.Path("manifest.yaml")).Return(m.Manifest{Pairs: pairs}, nil)
	mocks.ui.On("DisplayPairs", mock.Anything, pairs).Return(nil)

	require.NoError(t, wf.List(context.Background(), domain.ListArgs{Manifest: "manifest.yaml"}))
}

func TestWorkflow_View(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	reports := []m.Report{
		report("TestA", "c1.yaml", m.Equivalent),
		report("TestB", "c2.yaml", m.Divergent),
	}

	mocks.reports.On("LoadReports", mock.Anything, m.Path("reports")).Return(reports, nil)
	mocks.expectSession()
	mocks.ui.On("DisplayReport", mock.Anything, reports[0]).Return(nil)
	mocks.ui.On("DisplayReport", mock.Anything, reports[1]).Return(nil)
	mocks.ui.On("DisplaySummary", mock.Anything, reports, 0.5).Return(nil)
	mocks.ui.On("Wait", mock.Anything).Return()

	require.NoError(t, wf.View(context.Background(), domain.ViewArgs{Reports: "reports"}))
}

func TestWorkflow_Merge(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	shard0 := adapter.ShardDir("reports", 0)
	shard1 := adapter.ShardDir("reports", 1)
	r0 := []m.Report{report("TestA", "c1.yaml", m.Equivalent)}
	r1 := []m.Report{report("TestB", "c2.yaml", m.Divergent)}

	mocks.reports.On("ShardDirs", mock.Anything, m.Path("reports")).Return([]m.Path{shard0, shard1}, nil)
	mocks.reports.On("LoadReports", mock.Anything, shard0).Return(r0, nil)
	mocks.reports.On("LoadReports", mock.Anything, shard1).Return(r1, nil)
	mocks.reports.On("SaveReports", mock.Anything, m.Path("reports"), r0).Return(nil)
	mocks.reports.On("SaveReports", mock.Anything, m.Path("reports"), r1).Return(nil)
	mocks.reports.On("RemoveDir", mock.Anything, shard0).Return(nil)
	mocks.reports.On("RemoveDir", mock.Anything, shard1).Return(nil)

	require.NoError(t, wf.Merge(context.Background(), domain.MergeArgs{Reports: "reports"}))
}

func TestWorkflow_MergeStopsOnError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	shard0 := adapter.ShardDir("reports", 0)

	mocks.reports.On("ShardDirs", mock.Anything, m.Path("reports")).Return([]m.Path{shard0}, nil)
	mocks.reports.On("LoadReports", mock.Anything, shard0).Return(nil, errors.New("corrupt"))

	err := wf.Merge(context.Background(), domain.MergeArgs{Reports: "reports"})
	require.Error(t, err)
	mocks.reports.AssertNotCalled(t, "RemoveDir", mock.Anything, shard0)
}

func TestWorkflow_ExclusionsAdd(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)

	mocks.store.On("LoadExclusions", mock.Anything, m.Path("exclusions.yaml")).Return([]string{"A.run:x"}, nil)
	mocks.store.On("SaveExclusions", mock.Anything, m.Path("exclusions.yaml"), []string{"A.run:x", "B.run:y"}).Return(nil)
	mocks.ui.On("DisplayExclusions", mock.Anything, []string{"A.run:x", "B.run:y"}, 1).Return(nil)

	err := wf.Exclusions(context.Background(), domain.ExclusionArgs{
		Path: "exclusions.yaml",
		Add:  []string{"A.run:x", "B.run:y"},
	})
	require.NoError(t, err)
}

func TestWorkflow_ExclusionsList(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)

	mocks.store.On("LoadExclusions", mock.Anything, m.Path("exclusions.yaml")).Return([]string{"A.run:x"}, nil)
	mocks.ui.On("DisplayExclusions", mock.Anything, []string{"A.run:x"}, 0).Return(nil)

	require.NoError(t, wf.Exclusions(context.Background(), domain.ExclusionArgs{Path: "exclusions.yaml"}))
	mocks.store.AssertNotCalled(t, "SaveExclusions", mock.Anything, mock.Anything, mock.Anything)
}

func TestShardPairs(t *testing.T) {
	pairs := []m.Pair{{Test: "A"}, {Test: "B"}, {Test: "C"}, {Test: "D"}, {Test: "E"}}

	tests := []struct {
		name  string
		index int
		total int
		want  []string
	}{
		{"single shard", 0, 1, []string{"A", "B", "C", "D", "E"}},
		{"first of two", 0, 2, []string{"A", "C", "E"}},
		{"second of two", 1, 2, []string{"B", "D"}},
		{"last of three", 2, 3, []string{"C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, pair := range domain.ShardPairs(pairs, tt.index, tt.total) {
				got = append(got, pair.Test)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}
