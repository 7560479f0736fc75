// Package model defines the data structures for trace comparison.
package model

import "fmt"

// Kind discriminates the recorded execution events.
type Kind int

const (
	// KindCallEntry is recorded when a method is entered.
	KindCallEntry Kind = iota
	// KindCallExit is recorded when a method returns.
	KindCallExit
	// KindBranch marks a conditional branch taken.
	KindBranch
	// KindVariables is a snapshot of the variables in scope.
	KindVariables
)

// String returns the trace file spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindCallEntry:
		return "call-entry"
	case KindCallExit:
		return "call-exit"
	case KindBranch:
		return "branch"
	case KindVariables:
		return "vars"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a trace file kind tag to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "call-entry", "entry":
		return KindCallEntry, true
	case "call-exit", "exit":
		return KindCallExit, true
	case "branch", "conditional":
		return KindBranch, true
	case "vars", "variables":
		return KindVariables, true
	}

	return 0, false
}

// IsCall reports whether the kind is a call entry or exit.
func (k Kind) IsCall() bool {
	return k == KindCallEntry || k == KindCallExit
}

// NoFrame is the Frame of a point recorded outside any call.
const NoFrame = -1

// Point is one recorded execution event.
//
// Call entries and exits carry the stack depth after the event. Branch
// markers and variable snapshots may carry Vars, in which case the point is a
// conditional point. Frame is the index of the enclosing call entry within the
// owning sequence, so points never hold pointers to each other.
type Point struct {
	Index int
	Kind  Kind
	Type  string
	Tag   string
	Depth int
	Frame int
	Vars  map[string]string
}

// Key is the logical location of the point: owning type plus method or branch tag.
func (p Point) Key() string {
	return p.Type + "." + p.Tag
}

// IsConditional reports whether the point carries a variable snapshot.
func (p Point) IsConditional() bool {
	return p.Vars != nil
}

// SameLocation is the identity predicate used for alignment. Values are never
// compared.
func (p Point) SameLocation(other Point) bool {
	return p.Kind == other.Kind && p.Type == other.Type && p.Tag == other.Tag
}

// VariableKey qualifies a variable name with the location that captured it.
func VariableKey(location, name string) string {
	return location + ":" + name
}

// String renders the point for logs and reports.
func (p Point) String() string {
	return fmt.Sprintf("#%d %s %s@%d", p.Index, p.Kind, p.Key(), p.Depth)
}
