package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	m "sosie.dev/pkg/sosie/internal/model"
)

func newSeq(points ...m.Point) *PointSequence {
	return NewPointSequence("TestAlign", "variant", "main", points)
}

func entry(typ, tag string, depth int) m.Point {
	return m.Point{Kind: m.KindCallEntry, Type: typ, Tag: tag, Depth: depth, Frame: m.NoFrame}
}

func exit(typ, tag string, depth int) m.Point {
	return m.Point{Kind: m.KindCallExit, Type: typ, Tag: tag, Depth: depth, Frame: m.NoFrame}
}

func branch(tag string, depth int) m.Point {
	return m.Point{Kind: m.KindBranch, Type: "Flow", Tag: tag, Depth: depth, Frame: m.NoFrame}
}

// snapshot builds a variable snapshot from name/value pairs.
func snapshot(typ, tag string, nameValues ...string) m.Point {
	vars := make(map[string]string, len(nameValues)/2)
	for i := 0; i+1 < len(nameValues); i += 2 {
		vars[nameValues[i]] = nameValues[i+1]
	}

	return m.Point{Kind: m.KindVariables, Type: typ, Tag: tag, Frame: m.NoFrame, Vars: vars}
}

// branches builds depth 0 branch markers, one per tag.
func branches(tags ...string) []m.Point {
	points := make([]m.Point, 0, len(tags))
	for _, tag := range tags {
		points = append(points, branch(tag, 0))
	}

	return points
}

// insertAt returns a copy of points with extra inserted before position i.
func insertAt(points []m.Point, i int, extra ...m.Point) []m.Point {
	out := make([]m.Point, 0, len(points)+len(extra))
	out = append(out, points[:i]...)
	out = append(out, extra...)

	return append(out, points[i:]...)
}

func depthOf(d int) *int {
	return &d
}

func gapTags(n int) []string {
	tags := make([]string, n)
	for i := range tags {
		tags[i] = fmt.Sprintf("inserted%d", i)
	}

	return tags
}

// parsePoints is a small traced method with nested calls, a branch and two
// variable snapshots.
func parsePoints(result string) []m.Point {
	return []m.Point{
		entry("Parser", "parse", 1),
		snapshot("Parser", "parse", "input", "1+2", "pos", "0"),
		entry("Lexer", "next", 2),
		exit("Lexer", "next", 1),
		branch("binary", 1),
		entry("Parser", "operand", 2),
		exit("Parser", "operand", 1),
		snapshot("Parser", "parse", "pos", "3", "result", result),
		exit("Parser", "parse", 0),
	}
}

// assertPartition checks that every call-level point up to the last trail
// entry of each side is in exactly one of Same and Different.
func assertPartition(t *testing.T, alignment *Alignment, ref, cand *PointSequence) {
	t.Helper()

	refSeen := map[int]int{}
	candSeen := map[int]int{}

	count := func(pairs []m.CallPair) {
		for _, pair := range pairs {
			if !pair.Reference.Missing() {
				refSeen[pair.Reference.Index]++
			}

			if !pair.Candidate.Missing() {
				candSeen[pair.Candidate.Index]++
			}
		}
	}

	count(alignment.Same)
	count(alignment.Different)

	if len(alignment.Trail) == 0 {
		return
	}

	last := alignment.Trail[len(alignment.Trail)-1]

	check := func(side string, s *PointSequence, seen map[int]int, upTo int) {
		for i := 0; i < s.CallSize(); i++ {
			p, err := s.GetCallPoint(i)
			if err != nil || p.Index > upTo {
				return
			}

			assert.Equal(t, 1, seen[p.Index], "%s point %d", side, p.Index)
		}
	}

	check("reference", ref, refSeen, last.Reference)
	check("candidate", cand, candSeen, last.Candidate)
}
