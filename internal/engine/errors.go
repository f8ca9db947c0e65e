package engine

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownActionError reports an action outside the application's action set.
//
// Inside the engine this is a programming error and is raised with panic.
// ActionSet.Decode returns it as an ordinary error.
type UnknownActionError struct {
	Name string

	// Suggestion is the closest known action name, if any is close enough.
	Suggestion string
}

// Unknown builds the error an exhaustive type switch panics with in its
// default branch.
func Unknown(a Action) *UnknownActionError {
	if a == nil {
		return &UnknownActionError{Name: "<nil>"}
	}
	return &UnknownActionError{Name: a.ActionName()}
}

func (e *UnknownActionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown action %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown action %q", e.Name)
}

// ArityError reports an argument tuple of the wrong length.
type ArityError struct {
	Action string
	Want   int
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("action %s takes %d argument(s), got %d", e.Action, e.Want, e.Got)
}

// ArgumentError reports an argument tuple of the right length whose values
// do not decode.
type ArgumentError struct {
	Action string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("action %s: %v", e.Action, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// EffectError wraps the failure of an effect: either the error it returned or
// the value it panicked with.
type EffectError struct {
	// Action is the action whose command carried the effect.
	Action string

	// DispatchID identifies the dispatch that scheduled the effect.
	DispatchID string

	// Err is the error returned by the effect. Nil when the effect panicked.
	Err error

	// Panic is the recovered panic value. Nil when the effect returned an error.
	Panic any
}

func (e *EffectError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("effect of %s panicked: %v", e.Action, e.Panic)
	}
	return fmt.Sprintf("effect of %s failed: %v", e.Action, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}

// EffectDepthError is reported when an effect chain grows past the configured
// depth limit. The offending effect is not started; the dispatch that
// produced it stays committed.
type EffectDepthError struct {
	Action     string
	DispatchID string
	Depth      int64
	Limit      int64
}

func (e *EffectDepthError) Error() string {
	return fmt.Sprintf("effect of %s refused: depth %d exceeds limit %d", e.Action, e.Depth, e.Limit)
}

// CoverageError is returned by UpdateMap.Check when the map and the action
// set disagree.
type CoverageError struct {
	Missing []string
	Extra   []string
}

func (e *CoverageError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing update for "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "update for unknown action "+strings.Join(e.Extra, ", "))
	}
	return "update map: " + strings.Join(parts, "; ")
}

// IsUnknownActionError reports whether err is or wraps an UnknownActionError.
func IsUnknownActionError(err error) bool {
	var ue *UnknownActionError
	return errors.As(err, &ue)
}

// IsEffectError reports whether err is or wraps an EffectError.
func IsEffectError(err error) bool {
	var ee *EffectError
	return errors.As(err, &ee)
}

// IsEffectDepthError reports whether err is or wraps an EffectDepthError.
func IsEffectDepthError(err error) bool {
	var de *EffectDepthError
	return errors.As(err, &de)
}

// IsDecodeError reports whether err came from decoding a name-based action:
// an unknown name, a wrong arity or a bad argument.
func IsDecodeError(err error) bool {
	var ae *ArityError
	var ge *ArgumentError
	return IsUnknownActionError(err) || errors.As(err, &ae) || errors.As(err, &ge)
}
