package engine

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/roach88/backlash/internal/ir"
)

// Decoder turns an argument tuple into a concrete action. It is only called
// with tuples of the declared arity.
type Decoder func(args ir.IRArray) (Action, error)

// ActionSpec declares one action of a set.
type ActionSpec struct {
	Name   string
	Arity  int
	Decode Decoder
}

// ActionSet is the closed set of actions of one application, used wherever
// actions arrive by name (scenarios, the CLI).
type ActionSet struct {
	specs map[string]ActionSpec
	names []string
}

// NewActionSet builds a set from specs, preserving their order. Duplicate or
// empty names panic.
func NewActionSet(specs ...ActionSpec) ActionSet {
	set := ActionSet{specs: make(map[string]ActionSpec, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			panic("engine: action spec without a name")
		}
		if _, dup := set.specs[spec.Name]; dup {
			panic(fmt.Sprintf("engine: duplicate action %q", spec.Name))
		}
		set.specs[spec.Name] = spec
		set.names = append(set.names, spec.Name)
	}
	return set
}

// Names returns the action names in declaration order.
func (s ActionSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether name belongs to the set.
func (s ActionSet) Has(name string) bool {
	_, ok := s.specs[name]
	return ok
}

// Arity returns the argument count of name.
func (s ActionSet) Arity(name string) (int, bool) {
	spec, ok := s.specs[name]
	return spec.Arity, ok
}

// Decode builds the action named name from args. It returns
// *UnknownActionError, *ArityError or *ArgumentError.
func (s ActionSet) Decode(name string, args ir.IRArray) (Action, error) {
	spec, ok := s.specs[name]
	if !ok {
		return nil, &UnknownActionError{Name: name, Suggestion: s.suggest(name)}
	}
	if len(args) != spec.Arity {
		return nil, &ArityError{Action: name, Want: spec.Arity, Got: len(args)}
	}
	a, err := spec.Decode(args)
	if err != nil {
		return nil, &ArgumentError{Action: name, Err: err}
	}
	return a, nil
}

// suggest returns the closest known name within a third of its length.
func (s ActionSet) suggest(name string) string {
	best, bestDist := "", -1
	for _, candidate := range s.names {
		d := levenshtein.ComputeDistance(name, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return ""
	}
	return best
}
