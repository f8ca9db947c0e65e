// Package services defines the platform capabilities injected into the
// screens, and a scripted implementation of them for tests, scenarios and the
// CLI.
package services

// Outcome is the result of a capability the user may back out of: either a
// value or the explicit canceled sentinel. Cancellation is data, not an
// error.
type Outcome[T any] struct {
	value    T
	canceled bool
}

// Done wraps a produced value.
func Done[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Canceled is the sentinel for a user cancellation.
func Canceled[T any]() Outcome[T] {
	return Outcome[T]{canceled: true}
}

// IsCanceled reports whether the user canceled.
func (o Outcome[T]) IsCanceled() bool {
	return o.canceled
}

// Value returns the value and true, or the zero value and false when
// canceled.
func (o Outcome[T]) Value() (T, bool) {
	return o.value, !o.canceled
}

func (o Outcome[T]) String() string {
	if o.canceled {
		return "canceled"
	}
	return "done"
}
