package domain

import (
	"maps"
	"slices"

	m "sosie.dev/pkg/sosie/internal/model"
)

// PointSequence is the recorded execution of one (test, variant, thread).
//
// The points are immutable once built. The cursor and the accumulated variable
// state are mutated by the aligner during a single comparison. Variable
// snapshots are applied to the state when the cursor moves over them.
type PointSequence struct {
	test    string
	variant string
	thread  string

	points  []m.Point
	calls   []int // full index of every call-level point
	callPos []int // full index -> call index, -1 for variable snapshots

	cursor  int
	applied int // highest full index whose variables were applied
	state   map[string]string
	changed map[string]struct{}
}

// NewPointSequence wraps already validated points. Indices are reassigned to
// match their position.
func NewPointSequence(test, variant, thread string, points []m.Point) *PointSequence {
	s := &PointSequence{
		test:    test,
		variant: variant,
		thread:  thread,
		points:  make([]m.Point, len(points)),
		callPos: make([]int, len(points)),
		applied: -1,
		state:   map[string]string{},
		changed: map[string]struct{}{},
	}

	for i, p := range points {
		p.Index = i
		s.points[i] = p

		if p.Kind == m.KindVariables {
			s.callPos[i] = -1
			continue
		}

		s.callPos[i] = len(s.calls)
		s.calls = append(s.calls, i)
	}

	if len(s.points) > 0 {
		s.apply(0)
	}

	return s
}

// Test returns the recorded test name.
func (s *PointSequence) Test() string { return s.test }

// Variant returns the program variant that produced the sequence.
func (s *PointSequence) Variant() string { return s.variant }

// Thread returns the thread the sequence was recorded on.
func (s *PointSequence) Thread() string { return s.thread }

// Get returns the point at full index i.
func (s *PointSequence) Get(i int) (m.Point, error) {
	if i < 0 || i >= len(s.points) {
		return m.Point{}, outOfRange(i, len(s.points))
	}

	return s.points[i], nil
}

// GetCallPoint returns the point at call-only index i.
func (s *PointSequence) GetCallPoint(i int) (m.Point, error) {
	if i < 0 || i >= len(s.calls) {
		return m.Point{}, outOfRange(i, len(s.calls))
	}

	return s.points[s.calls[i]], nil
}

// Size is the number of recorded points.
func (s *PointSequence) Size() int { return len(s.points) }

// CallSize is the number of points that are not variable snapshots.
func (s *PointSequence) CallSize() int { return len(s.calls) }

// Cursor is the current full index.
func (s *PointSequence) Cursor() int { return s.cursor }

// CallIndex maps a full index to the call-only index space. Variable
// snapshots map to the next call-level point.
func (s *PointSequence) CallIndex(full int) int {
	for i := full; i < len(s.callPos); i++ {
		if s.callPos[i] >= 0 {
			return s.callPos[i]
		}
	}

	return len(s.calls)
}

// HasNext reports whether Next can advance the cursor.
func (s *PointSequence) HasNext() bool {
	return s.cursor+1 < len(s.points)
}

// Next advances the cursor by one full index and returns the new top.
func (s *PointSequence) Next() (m.Point, error) {
	if !s.HasNext() {
		return m.Point{}, ErrEndOfSequence
	}

	s.cursor++
	s.apply(s.cursor)

	return s.points[s.cursor], nil
}

// Previous moves the cursor back by one. Variable state is not rolled back.
func (s *PointSequence) Previous() error {
	if s.cursor == 0 {
		return outOfRange(-1, len(s.points))
	}

	s.cursor--

	return nil
}

// NextIsVar reports whether the point after the cursor is a variable snapshot.
func (s *PointSequence) NextIsVar() bool {
	return s.HasNext() && s.points[s.cursor+1].Kind == m.KindVariables
}

// HasNextCall reports whether a call-level point follows the cursor.
func (s *PointSequence) HasNextCall() bool {
	return s.CallIndex(s.cursor+1) < len(s.calls)
}

// NextCall advances to the next call-level point, applying the variable
// snapshots it passes over.
func (s *PointSequence) NextCall() (m.Point, error) {
	if !s.HasNextCall() {
		return m.Point{}, ErrEndOfSequence
	}

	for s.NextIsVar() {
		if _, err := s.Next(); err != nil {
			return m.Point{}, err
		}
	}

	return s.Next()
}

// Seek moves the cursor to full index i. Moving forward applies every
// variable snapshot in between. Moving behind the last applied point replays
// the state from the first point, so it reflects exactly the points up to i.
func (s *PointSequence) Seek(i int) error {
	if i < 0 || i >= len(s.points) {
		return outOfRange(i, len(s.points))
	}

	if i < s.applied {
		s.reset()
	}

	for j := s.applied + 1; j <= i; j++ {
		s.apply(j)
	}

	s.cursor = i

	return nil
}

// ApplyTrailing applies the snapshots recorded after the last call-level
// point. It does nothing while a call-level point is still ahead. The cursor
// does not move.
func (s *PointSequence) ApplyTrailing() {
	if len(s.points) == 0 || s.HasNextCall() {
		return
	}

	for j := s.applied + 1; j < len(s.points); j++ {
		s.apply(j)
	}
}

// Top returns the point at the cursor.
func (s *PointSequence) Top() m.Point {
	if len(s.points) == 0 {
		return m.Point{Index: -1, Frame: m.NoFrame}
	}

	return s.points[s.cursor]
}

// Depth is the call depth at the cursor.
func (s *PointSequence) Depth() int {
	return s.Top().Depth
}

// Frame returns the index of the call entry enclosing the point at full index i.
func (s *PointSequence) Frame(i int) (int, error) {
	p, err := s.Get(i)
	if err != nil {
		return m.NoFrame, err
	}

	return p.Frame, nil
}

// Value returns the last known value of a location-qualified variable.
func (s *PointSequence) Value(key string) (string, bool) {
	v, ok := s.state[key]
	return v, ok
}

// VariablesChanged reports whether the variable state changed since the
// changes were last taken.
func (s *PointSequence) VariablesChanged() bool {
	return len(s.changed) > 0
}

// TakeChanged returns the sorted keys changed since the last call and resets them.
func (s *PointSequence) TakeChanged() []string {
	keys := slices.Sorted(maps.Keys(s.changed))
	clear(s.changed)

	return keys
}

// CopyFrom seeds the cursor and variable state from other.
func (s *PointSequence) CopyFrom(other *PointSequence) {
	s.cursor = min(other.cursor, max(len(s.points)-1, 0))
	s.applied = s.cursor
	s.state = maps.Clone(other.state)
	s.changed = maps.Clone(other.changed)
}

func (s *PointSequence) reset() {
	s.applied = -1
	clear(s.state)
	clear(s.changed)
}

func (s *PointSequence) apply(i int) {
	if i <= s.applied {
		return
	}

	s.applied = i

	p := s.points[i]
	for name, value := range p.Vars {
		key := m.VariableKey(p.Key(), name)
		if old, ok := s.state[key]; ok && old == value {
			continue
		}

		s.state[key] = value
		s.changed[key] = struct{}{}
	}
}
