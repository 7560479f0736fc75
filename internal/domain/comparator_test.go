package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	adaptermocks "sosie.dev/pkg/sosie/internal/adapter/mocks"
	m "sosie.dev/pkg/sosie/internal/model"
)

func parseRecords(result string) []m.Record {
	return []m.Record{
		{Kind: "call-entry", Type: "Parser", Tag: "parse", Depth: depthOf(1)},
		{Kind: "vars", Type: "Parser", Tag: "parse", Vars: []m.VarValue{{Name: "input", Value: "1+2"}}},
		{Kind: "call-entry", Type: "Lexer", Tag: "next", Depth: depthOf(2)},
		{Kind: "call-exit", Type: "Lexer", Tag: "next", Depth: depthOf(1)},
		{Kind: "vars", Type: "Parser", Tag: "parse", Vars: []m.VarValue{{Name: "result", Value: result}}},
		{Kind: "call-exit", Type: "Parser", Tag: "parse", Depth: depthOf(0)},
	}
}

func warmRecords() []m.Record {
	return []m.Record{
		{Kind: "call-entry", Type: "Cache", Tag: "warm", Depth: depthOf(1)},
		{Kind: "call-exit", Type: "Cache", Tag: "warm", Depth: depthOf(0)},
	}
}

func parseTrace(variant, result string) m.Trace {
	return m.Trace{
		Test:    "TestParse",
		Variant: variant,
		Threads: map[string][]m.Record{
			"main":     parseRecords(result),
			"worker-1": warmRecords(),
		},
	}
}

func mockTraces(t *testing.T, ref, cand m.Trace) *adaptermocks.MockTraceStore {
	store := adaptermocks.NewMockTraceStore(t)
	store.On("LoadTrace", mock.Anything, m.Path("ref.yaml")).Return(ref, nil)
	store.On("LoadTrace", mock.Anything, m.Path("cand.yaml")).Return(cand, nil)

	return store
}

func compareArgs() CompareArgs {
	return CompareArgs{Reference: "ref.yaml", Candidate: "cand.yaml", Window: 3}
}

func TestComparator_Equivalent(t *testing.T) {
	store := mockTraces(t, parseTrace("original", "3"), parseTrace("variant-1", "3"))

	report, err := NewComparator(store, NewExclusions()).Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "TestParse", report.Test)
	assert.Equal(t, "variant-1", report.Variant)
	assert.Equal(t, 3, report.Window)
	assert.Equal(t, m.Equivalent, report.Verdict)
	require.Len(t, report.Threads, 2)
	assert.Equal(t, "main", report.Threads[0].Thread)
	assert.Equal(t, "worker-1", report.Threads[1].Thread)
	assert.Len(t, report.Threads[0].Trail, 4)
	assert.True(t, report.Threads[1].Synchronized)
}

func TestComparator_Divergent(t *testing.T) {
	store := mockTraces(t, parseTrace("original", "3"), parseTrace("variant-1", "4"))

	report, err := NewComparator(store, nil).Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.Equal(t, m.Divergent, report.Verdict)
	require.Len(t, report.Diffs(), 1)
	assert.Equal(t, "Parser.parse:result", report.Diffs()[0].Key)
}

func TestComparator_ExclusionsApply(t *testing.T) {
	store := mockTraces(t, parseTrace("original", "3"), parseTrace("variant-1", "4"))

	report, err := NewComparator(store, NewExclusions("Parser.parse:result")).Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.Equal(t, m.Equivalent, report.Verdict)
	assert.Empty(t, report.Diffs())
}

func TestComparator_ExplicitTestName(t *testing.T) {
	store := mockTraces(t, parseTrace("original", "3"), parseTrace("variant-1", "3"))

	args := compareArgs()
	args.Test = "TestRenamed"

	report, err := NewComparator(store, nil).Compare(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, "TestRenamed", report.Test)
}

func TestComparator_MalformedIsAVerdict(t *testing.T) {
	cand := parseTrace("variant-1", "3")
	cand.Threads["main"][2].Depth = depthOf(5)

	store := mockTraces(t, parseTrace("original", "3"), cand)

	report, err := NewComparator(store, nil).Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.Equal(t, m.Malformed, report.Verdict)
	assert.Contains(t, report.Error, "candidate")
	assert.Empty(t, report.Threads)
}

func TestComparator_MissingThread(t *testing.T) {
	cand := parseTrace("variant-1", "3")
	delete(cand.Threads, "worker-1")
	cand.Threads["worker-2"] = warmRecords()

	store := mockTraces(t, parseTrace("original", "3"), cand)

	report, err := NewComparator(store, nil).Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.Equal(t, m.Unsynchronizable, report.Verdict)
	require.Len(t, report.Threads, 3)
	assert.Equal(t, m.Equivalent, report.Threads[0].Verdict)
	assert.Equal(t, "worker-1", report.Threads[1].Thread)
	assert.Contains(t, report.Threads[1].Error, "candidate")
	assert.Equal(t, "worker-2", report.Threads[2].Thread)
	assert.Contains(t, report.Threads[2].Error, "reference")
}

func TestComparator_UnsynchronizableThread(t *testing.T) {
	cand := parseTrace("variant-1", "3")
	cand.Threads["worker-1"] = []m.Record{
		{Kind: "branch", Type: "Other", Tag: "a"},
		{Kind: "branch", Type: "Other", Tag: "b"},
	}

	store := mockTraces(t, parseTrace("original", "3"), cand)

	report, err := NewComparator(store, nil).Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.Equal(t, m.Unsynchronizable, report.Verdict)
	assert.False(t, report.Threads[1].Synchronized)
	assert.Contains(t, report.Threads[1].Error, ErrUnsynchronizable.Error())
}

func TestComparator_LoadError(t *testing.T) {
	store := adaptermocks.NewMockTraceStore(t)
	store.On("LoadTrace", mock.Anything, m.Path("ref.yaml")).Return(m.Trace{}, errors.New("boom"))

	_, err := NewComparator(store, nil).Compare(context.Background(), compareArgs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load reference trace")
}

func TestComparator_InvalidWindow(t *testing.T) {
	store := adaptermocks.NewMockTraceStore(t)

	args := compareArgs()
	args.Window = 0

	_, err := NewComparator(store, nil).Compare(context.Background(), args)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestComparator_AbandonsAfterTimeout(t *testing.T) {
	store := adaptermocks.NewMockTraceStore(t)
	store.On("LoadTrace", mock.Anything, m.Path("ref.yaml")).Return(parseTrace("original", "3"), nil)
	store.On("LoadTrace", mock.Anything, m.Path("cand.yaml")).
		After(50*time.Millisecond).
		Return(parseTrace("variant-1", "3"), nil)

	args := compareArgs()
	args.Timeout = 10 * time.Millisecond

	_, err := NewComparator(store, nil).Compare(context.Background(), args)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComparator_CancelledContext(t *testing.T) {
	store := mockTraces(t, parseTrace("original", "3"), parseTrace("variant-1", "3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewComparator(store, nil).Compare(ctx, compareArgs())
	require.ErrorIs(t, err, context.Canceled)
}

func TestComparator_RepeatedComparisonsAgree(t *testing.T) {
	store := mockTraces(t, parseTrace("original", "3"), parseTrace("variant-1", "4"))
	comparator := NewComparator(store, nil)

	first, err := comparator.Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	second, err := comparator.Compare(context.Background(), compareArgs())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Threads, second.Threads)
	assert.Equal(t, first.Verdict, second.Verdict)
}
