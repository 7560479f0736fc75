package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	m "sosie.dev/pkg/sosie/internal/model"
)

// BuildSequence converts the raw records of one thread into a PointSequence.
// Any record that cannot be converted aborts the construction with a
// *MalformedRecordError.
func BuildSequence(test, variant, thread string, records []m.Record) (*PointSequence, error) {
	points := make([]m.Point, 0, len(records))

	var (
		frames    []int
		depth     int
		seenCalls bool
	)

	for i, record := range records {
		malformed := func(format string, args ...any) error {
			return &MalformedRecordError{Thread: thread, Index: i, Reason: fmt.Sprintf(format, args...)}
		}

		kind, ok := m.ParseKind(strings.TrimSpace(record.Kind))
		if !ok {
			return nil, malformed("unknown kind %q", record.Kind)
		}

		if strings.TrimSpace(record.Type) == "" {
			return nil, malformed("missing owning type")
		}

		point := m.Point{
			Index: i,
			Kind:  kind,
			Type:  record.Type,
			Tag:   record.Tag,
			Frame: m.NoFrame,
		}

		if len(frames) > 0 {
			point.Frame = frames[len(frames)-1]
		}

		switch kind {
		case m.KindCallEntry, m.KindCallExit:
			if record.Depth == nil {
				return nil, malformed("%s without depth", kind)
			}

			if len(record.Vars) > 0 {
				return nil, malformed("%s carries variables", kind)
			}

			next := *record.Depth
			if next < 0 {
				return nil, malformed("negative depth %d", next)
			}

			if seenCalls {
				want := depth + 1
				if kind == m.KindCallExit {
					want = depth - 1
				}

				if next != want {
					return nil, malformed("%s depth %d after depth %d, want %d", kind, next, depth, want)
				}
			}

			if kind == m.KindCallEntry {
				frames = append(frames, i)
			} else if len(frames) > 0 {
				open := points[frames[len(frames)-1]]
				if open.Type != record.Type || open.Tag != record.Tag {
					return nil, malformed("exit %s.%s closes entry %s", record.Type, record.Tag, open.Key())
				}

				frames = frames[:len(frames)-1]
				point.Frame = m.NoFrame

				if len(frames) > 0 {
					point.Frame = frames[len(frames)-1]
				}
			}

			depth = next
			seenCalls = true
			point.Depth = next

		case m.KindBranch, m.KindVariables:
			vars, err := collectVars(record.Vars)
			if err != nil {
				return nil, malformed("%v", err)
			}

			if vars == nil && kind == m.KindVariables {
				vars = map[string]string{}
			}

			point.Depth = depth
			point.Vars = vars
		}

		points = append(points, point)
	}

	return NewPointSequence(test, variant, thread, points), nil
}

// BuildSequences builds one sequence per thread of a trace, keyed by thread name.
func BuildSequences(trace m.Trace) (map[string]*PointSequence, error) {
	sequences := make(map[string]*PointSequence, len(trace.Threads))

	for _, thread := range slices.Sorted(maps.Keys(trace.Threads)) {
		sequence, err := BuildSequence(trace.Test, trace.Variant, thread, trace.Threads[thread])
		if err != nil {
			return nil, err
		}

		sequences[thread] = sequence
	}

	return sequences, nil
}

func collectVars(values []m.VarValue) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	vars := make(map[string]string, len(values))
	for _, v := range values {
		if v.Name == "" {
			return nil, errors.New("variable without name")
		}

		if _, dup := vars[v.Name]; dup {
			return nil, fmt.Errorf("duplicate variable %q", v.Name)
		}

		vars[v.Name] = v.Value
	}

	return vars, nil
}
