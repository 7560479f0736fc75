package domain

import (
	"fmt"
	"slices"

	m "sosie.dev/pkg/sosie/internal/model"
)

// Differ extracts variable diffs at aligned positions.
type Differ struct {
	exclusions ExclusionChecker
}

// NewDiffer creates a Differ that drops keys known to the exclusion checker.
// A nil checker excludes nothing.
func NewDiffer(exclusions ExclusionChecker) *Differ {
	return &Differ{exclusions: exclusions}
}

// Extract compares the variable state of both sequences at their current tops.
//
// Only keys changed on either side since the last extraction are compared,
// and the change sets of both sequences are consumed. A key differs when it is
// known on one side only or when its values differ. Tops that are not the same
// location were never aligned, so no diff is made up for them.
func (d *Differ) Extract(ref, cand *PointSequence) ([]m.VariableDiff, error) {
	r, c := ref.Top(), cand.Top()
	if !r.SameLocation(c) {
		return nil, fmt.Errorf("%w: diff requested for %s against %s", ErrUnsynchronizable, r, c)
	}

	keys := append(ref.TakeChanged(), cand.TakeChanged()...)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	var diffs []m.VariableDiff

	for _, key := range keys {
		rv, rok := ref.Value(key)
		cv, cok := cand.Value(key)

		if rok == cok && rv == cv {
			continue
		}

		if d.excluded(key) {
			continue
		}

		diffs = append(diffs, m.VariableDiff{
			Key:            key,
			Reference:      rv,
			Candidate:      cv,
			ReferenceIndex: r.Index,
			CandidateIndex: c.Index,
		})
	}

	return diffs, nil
}

func (d *Differ) excluded(key string) bool {
	return d.exclusions != nil && d.exclusions.Contains(key)
}
