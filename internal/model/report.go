package model

import "time"

// Verdict is the outcome of comparing two traces.
type Verdict string

const (
	// Equivalent means the traces aligned with no call or value divergence.
	Equivalent Verdict = "equivalent"
	// Divergent means the traces aligned but differ in calls or values.
	Divergent Verdict = "divergent"
	// Unsynchronizable means the traces could not be realigned within the window.
	Unsynchronizable Verdict = "unsynchronizable"
	// Malformed means a trace could not be turned into a point sequence.
	Malformed Verdict = "malformed"
)

// Severity orders verdicts so a report can carry the worst of its threads.
func (v Verdict) Severity() int {
	switch v {
	case Equivalent:
		return 0
	case Divergent:
		return 1
	case Unsynchronizable:
		return 2
	case Malformed:
		return 3
	default:
		return -1
	}
}

// IndexPair is one verified match of the alignment trail.
type IndexPair struct {
	Reference int `yaml:"ref"`
	Candidate int `yaml:"cand"`
}

// Trail is the ordered list of matched positions of one comparison.
type Trail []IndexPair

// CallRecord identifies a call-level point in a report.
type CallRecord struct {
	Index int    `yaml:"index"`
	Kind  string `yaml:"kind"`
	Key   string `yaml:"key"`
	Depth int    `yaml:"depth"`
}

// NewCallRecord summarizes a point.
func NewCallRecord(p Point) CallRecord {
	return CallRecord{Index: p.Index, Kind: p.Kind.String(), Key: p.Key(), Depth: p.Depth}
}

// NoCall stands in for the side of a different pair that skipped fewer points.
var NoCall = CallRecord{Index: -1}

// Missing reports whether the record is NoCall.
func (c CallRecord) Missing() bool {
	return c.Key == ""
}

// CallPair holds the reference and candidate points observed at the same step.
type CallPair struct {
	Reference CallRecord `yaml:"reference"`
	Candidate CallRecord `yaml:"candidate"`
}

// VariableDiff is a variable whose value differs at matched positions.
// Two diffs are the same diff when their keys are equal.
type VariableDiff struct {
	Key            string `yaml:"key"`
	Reference      string `yaml:"reference"`
	Candidate      string `yaml:"candidate"`
	ReferenceIndex int    `yaml:"ref_index"`
	CandidateIndex int    `yaml:"cand_index"`
}

// ThreadReport is the comparison result of one thread.
type ThreadReport struct {
	Thread       string         `yaml:"thread"`
	Verdict      Verdict        `yaml:"verdict"`
	Synchronized bool           `yaml:"synchronized"`
	Trail        Trail          `yaml:"trail,flow"`
	Same         []CallPair     `yaml:"same,omitempty"`
	Different    []CallPair     `yaml:"different,omitempty"`
	Diffs        []VariableDiff `yaml:"diffs,omitempty"`
	Error        string         `yaml:"error,omitempty"`
}

// Report is the result of comparing one reference trace with one candidate trace.
type Report struct {
	ID        string         `yaml:"id"`
	Test      string         `yaml:"test"`
	Reference Path           `yaml:"reference"`
	Candidate Path           `yaml:"candidate"`
	Variant   string         `yaml:"variant"`
	Window    int            `yaml:"window"`
	Verdict   Verdict        `yaml:"verdict"`
	Threads   []ThreadReport `yaml:"threads"`
	Error     string         `yaml:"error,omitempty"`
	Duration  time.Duration  `yaml:"duration"`
}

// Diffs returns the variable diffs of every thread.
func (r Report) Diffs() []VariableDiff {
	var diffs []VariableDiff
	for _, thread := range r.Threads {
		diffs = append(diffs, thread.Diffs...)
	}

	return diffs
}

// DifferentCount returns the number of different pairs across threads.
func (r Report) DifferentCount() int {
	count := 0
	for _, thread := range r.Threads {
		count += len(thread.Different)
	}

	return count
}

// WorstVerdict folds thread verdicts into the report verdict.
func WorstVerdict(threads []ThreadReport) Verdict {
	worst := Equivalent
	for _, thread := range threads {
		if thread.Verdict.Severity() > worst.Severity() {
			worst = thread.Verdict
		}
	}

	return worst
}
