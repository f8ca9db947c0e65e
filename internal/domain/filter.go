package domain

import (
	"fmt"
	"strconv"

	"github.com/roach88/backlash/internal/ir"
)

// Filter is an image filter with a strength in percent.
type Filter struct {
	Name   string
	Amount int64
}

// Validate checks the name and the 0..100 amount range.
func (f Filter) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("filter: empty name")
	}
	if f.Amount < 0 || f.Amount > 100 {
		return fmt.Errorf("filter %s: amount %d outside 0..100", f.Name, f.Amount)
	}
	return nil
}

// IR renders {"name", "amount"}.
func (f Filter) IR() ir.IRObject {
	return ir.IRObject{"name": ir.IRString(f.Name), "amount": ir.IRInt(f.Amount)}
}

// ParseFilter decodes and validates {"name": s, "amount": n}.
func ParseFilter(obj ir.IRObject) (Filter, error) {
	name, err := obj.StringField("name")
	if err != nil {
		return Filter{}, fmt.Errorf("filter: %w", err)
	}
	amount, err := obj.IntField("amount")
	if err != nil {
		return Filter{}, fmt.Errorf("filter: %w", err)
	}
	if len(obj) != 2 {
		return Filter{}, fmt.Errorf("filter: unexpected keys, want name and amount")
	}
	f := Filter{Name: name, Amount: amount}
	return f, f.Validate()
}

// FilterID is the decimal id a filter gets when it is added to a list.
type FilterID string

// NewFilterID formats n.
func NewFilterID(n int64) FilterID {
	return FilterID(strconv.FormatInt(n, 10))
}

// ParseFilterID checks that s is a decimal number.
func ParseFilterID(s string) (FilterID, error) {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return "", fmt.Errorf("filter id %q is not a number", s)
	}
	return FilterID(s), nil
}

// KeyedFilter is a Filter placed in a list.
type KeyedFilter struct {
	Filter
	ID FilterID
}

// IR renders {"id", "name", "amount"}.
func (k KeyedFilter) IR() ir.IRObject {
	obj := k.Filter.IR()
	obj["id"] = ir.IRString(k.ID)
	return obj
}

// IndexOf returns the position of id in filters, or -1.
func IndexOf(filters []KeyedFilter, id FilterID) int {
	for i, f := range filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Swap returns a copy of s with elements i and j exchanged. When either index
// is out of range it returns s itself, so callers can detect the no-op by
// identity.
func Swap[T any](s []T, i, j int) []T {
	if i < 0 || j < 0 || i >= len(s) || j >= len(s) {
		return s
	}
	out := make([]T, len(s))
	copy(out, s)
	out[i], out[j] = out[j], out[i]
	return out
}

// Same reports whether a and b are the same slice: same length over the same
// backing array.
func Same[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
