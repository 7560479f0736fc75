package domain

import (
	"errors"
	"fmt"
	"log/slog"

	m "sosie.dev/pkg/sosie/internal/model"
)

// ErrInvalidWindow is returned when the resynchronization window is not positive.
var ErrInvalidWindow = errors.New("sync window must be positive")

// StartOffsets are the full indices where alignment begins.
type StartOffsets struct {
	Reference int
	Candidate int
}

// Alignment is the output of one comparison of two sequences.
//
// Same and Different partition the call-level points the walk observed on
// both sides. Same holds the pairs matched at equal depth. Different holds
// the pairs matched at unequal depth and, for every resynchronization, the
// points skipped on each side, zipped in order and padded with model.NoCall.
// A point keeps the class it was first given.
type Alignment struct {
	Trail        m.Trail
	Same         []m.CallPair
	Different    []m.CallPair
	Diffs        []m.VariableDiff
	Synchronized bool
}

// Verdict summarizes the alignment.
func (a *Alignment) Verdict() m.Verdict {
	switch {
	case !a.Synchronized:
		return m.Unsynchronizable
	case len(a.Different) > 0 || len(a.Diffs) > 0:
		return m.Divergent
	default:
		return m.Equivalent
	}
}

// Aligner walks two point sequences in lockstep and realigns them after a
// divergence by searching a bounded window.
type Aligner struct {
	window int
	differ *Differ
}

// AlignerOption configures an Aligner.
type AlignerOption func(*Aligner)

// WithDiffer sets the diff extractor run at aligned positions.
func WithDiffer(differ *Differ) AlignerOption {
	return func(a *Aligner) {
		a.differ = differ
	}
}

// NewAligner creates an Aligner with the given resynchronization window.
func NewAligner(window int, opts ...AlignerOption) *Aligner {
	a := &Aligner{window: window}
	for _, opt := range opts {
		opt(a)
	}

	if a.differ == nil {
		a.differ = NewDiffer(nil)
	}

	return a
}

// Window returns the resynchronization window.
func (a *Aligner) Window() int {
	return a.window
}

// Align compares ref against cand starting at the given offsets.
//
// The returned Alignment is never nil. When the traces cannot be realigned the
// error is an *UnsynchronizableError and the Alignment holds the trail built so
// far.
func (a *Aligner) Align(ref, cand *PointSequence, start StartOffsets) (*Alignment, error) {
	out := &Alignment{}

	if a.window <= 0 {
		return out, fmt.Errorf("%w: %d", ErrInvalidWindow, a.window)
	}

	if ref.CallSize() == 0 || cand.CallSize() == 0 {
		if ref.CallSize() != cand.CallSize() {
			return out, &UnsynchronizableError{Reference: 0, Candidate: 0, Window: a.window}
		}

		out.Synchronized = true

		return out, nil
	}

	if err := seekCall(ref, start.Reference); err != nil {
		return out, fmt.Errorf("reference start: %w", err)
	}

	if err := seekCall(cand, start.Candidate); err != nil {
		return out, fmt.Errorf("candidate start: %w", err)
	}

	run := &alignRun{
		window:         a.window,
		differ:         a.differ,
		ref:            ref,
		cand:           cand,
		out:            out,
		seen:           map[string]struct{}{},
		refClassified:  map[int]struct{}{},
		candClassified: map[int]struct{}{},
	}

	if err := run.walk(); err != nil {
		return out, err
	}

	out.Synchronized = true

	return out, nil
}

// seekCall places the cursor on the first call-level point at or after full index i.
func seekCall(s *PointSequence, i int) error {
	if err := s.Seek(i); err != nil {
		return err
	}

	if s.Top().Kind != m.KindVariables {
		return nil
	}

	_, err := s.NextCall()

	return err
}

type alignRun struct {
	window int
	differ *Differ
	ref    *PointSequence
	cand   *PointSequence
	out    *Alignment
	seen   map[string]struct{}

	// full indices already put in Same or Different
	refClassified  map[int]struct{}
	candClassified map[int]struct{}

	// lastSame is set when the latest accepted pair had equal depth.
	lastSame bool

	// refLower is set when the reference was shallower than the candidate at a
	// matched pair, candLower for the opposite. Both clear at equal depth.
	refLower  bool
	candLower bool
}

func (r *alignRun) walk() error {
	if !r.ref.Top().SameLocation(r.cand.Top()) {
		if err := r.resync(false); err != nil {
			return err
		}
	}

	for {
		diverged, err := r.accept()
		if err != nil {
			return err
		}

		if diverged {
			if err := r.resync(true); err != nil {
				return err
			}

			continue
		}

		if !r.ref.HasNextCall() || !r.cand.HasNextCall() {
			return r.finish()
		}

		if _, err := r.ref.NextCall(); err != nil {
			return err
		}

		if _, err := r.cand.NextCall(); err != nil {
			return err
		}

		if !r.ref.Top().SameLocation(r.cand.Top()) {
			if err := r.resync(false); err != nil {
				return err
			}
		}
	}
}

// accept records the current pair, whose locations match, and reports whether
// the depth bookkeeping turned it into a divergence.
func (r *alignRun) accept() (bool, error) {
	rp, cp := r.ref.Top(), r.cand.Top()
	r.out.Trail = append(r.out.Trail, m.IndexPair{Reference: rp.Index, Candidate: cp.Index})

	r.lastSame = rp.Depth == cp.Depth
	r.classify(rp, cp, r.lastSame)

	switch {
	case rp.Depth == cp.Depth:
		r.refLower, r.candLower = false, false

		if r.ref.VariablesChanged() || r.cand.VariablesChanged() {
			diffs, err := r.differ.Extract(r.ref, r.cand)
			if err != nil {
				return false, err
			}

			r.addDiffs(diffs)
		}

		return false, nil
	case rp.Depth < cp.Depth:
		r.refLower = true
	default:
		r.candLower = true
	}

	return r.refLower && r.candLower, nil
}

// finish compares the snapshots recorded after the last calls once both
// sides are exhausted and the last pair was matched at equal depth.
func (r *alignRun) finish() error {
	if r.ref.HasNextCall() || r.cand.HasNextCall() {
		return nil
	}

	r.ref.ApplyTrailing()
	r.cand.ApplyTrailing()

	if !r.lastSame || !(r.ref.VariablesChanged() || r.cand.VariablesChanged()) {
		return nil
	}

	diffs, err := r.differ.Extract(r.ref, r.cand)
	if err != nil {
		return err
	}

	r.addDiffs(diffs)

	return nil
}

// classify puts a matched pair in Same when same is set and neither point was
// classified before. Otherwise its unclassified points go to Different.
func (r *alignRun) classify(rp, cp m.Point, same bool) {
	_, refDone := r.refClassified[rp.Index]
	_, candDone := r.candClassified[cp.Index]

	if same && !refDone && !candDone {
		r.refClassified[rp.Index] = struct{}{}
		r.candClassified[cp.Index] = struct{}{}
		r.out.Same = append(r.out.Same, callPair(rp, cp))

		return
	}

	var refs, cands []m.Point
	if !refDone {
		refs = append(refs, rp)
	}

	if !candDone {
		cands = append(cands, cp)
	}

	r.addDifferent(refs, cands)
}

// addDifferent zips unclassified points of both sides into Different pairs.
func (r *alignRun) addDifferent(refs, cands []m.Point) {
	for k := range max(len(refs), len(cands)) {
		pair := m.CallPair{Reference: m.NoCall, Candidate: m.NoCall}

		if k < len(refs) {
			pair.Reference = m.NewCallRecord(refs[k])
			r.refClassified[refs[k].Index] = struct{}{}
		}

		if k < len(cands) {
			pair.Candidate = m.NewCallRecord(cands[k])
			r.candClassified[cands[k].Index] = struct{}{}
		}

		r.out.Different = append(r.out.Different, pair)
	}
}

// skipped returns the unclassified call-level points with call index in [from, to).
func skipped(s *PointSequence, classified map[int]struct{}, from, to int) ([]m.Point, error) {
	var points []m.Point

	for i := from; i < to; i++ {
		p, err := s.GetCallPoint(i)
		if err != nil {
			return nil, err
		}

		if _, ok := classified[p.Index]; !ok {
			points = append(points, p)
		}
	}

	return points, nil
}

func (r *alignRun) addDiffs(diffs []m.VariableDiff) {
	for _, diff := range diffs {
		if _, ok := r.seen[diff.Key]; ok {
			continue
		}

		r.seen[diff.Key] = struct{}{}
		r.out.Diffs = append(r.out.Diffs, diff)
	}
}

// resync scans the window row by row, reference index outer and candidate
// index inner, for the first pair of call-level points at the same location.
// The current pair is skipped. A depth divergence also requires equal depth.
func (r *alignRun) resync(depthDivergence bool) error {
	rTop, cTop := r.ref.Top(), r.cand.Top()
	ri, ci := r.ref.CallIndex(rTop.Index), r.cand.CallIndex(cTop.Index)

	for i := ri; i <= ri+r.window && i < r.ref.CallSize(); i++ {
		rp, err := r.ref.GetCallPoint(i)
		if err != nil {
			return err
		}

		for j := ci; j <= ci+r.window && j < r.cand.CallSize(); j++ {
			if i == ri && j == ci {
				continue
			}

			cp, err := r.cand.GetCallPoint(j)
			if err != nil {
				return err
			}

			if !rp.SameLocation(cp) {
				continue
			}

			if depthDivergence && rp.Depth != cp.Depth {
				continue
			}

			refs, err := skipped(r.ref, r.refClassified, ri, i)
			if err != nil {
				return err
			}

			cands, err := skipped(r.cand, r.candClassified, ci, j)
			if err != nil {
				return err
			}

			r.addDifferent(refs, cands)

			slog.Debug("Resynchronized traces",
				"test", r.ref.Test(), "thread", r.ref.Thread(),
				"fromRef", rTop.Index, "fromCand", cTop.Index,
				"toRef", rp.Index, "toCand", cp.Index,
				"depth", depthDivergence)

			if err := r.ref.Seek(rp.Index); err != nil {
				return err
			}

			return r.cand.Seek(cp.Index)
		}
	}

	slog.Debug("Resynchronization failed",
		"test", r.ref.Test(), "thread", r.ref.Thread(),
		"ref", rTop.Index, "cand", cTop.Index, "window", r.window)

	return &UnsynchronizableError{Reference: rTop.Index, Candidate: cTop.Index, Window: r.window}
}

func callPair(rp, cp m.Point) m.CallPair {
	return m.CallPair{Reference: m.NewCallRecord(rp), Candidate: m.NewCallRecord(cp)}
}
