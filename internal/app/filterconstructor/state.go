// Package filterconstructor is the filter constructor screen: an ordered list
// of filters applied to an image, edited one action at a time.
package filterconstructor

import (
	"context"

	"github.com/roach88/backlash/internal/domain"
	"github.com/roach88/backlash/internal/ir"
	"github.com/roach88/backlash/internal/services"
)

// Name is the registry name of the screen.
const Name = "filter_constructor"

// State is immutable. Filters is never mutated in place; transitions that
// touch it build a new slice.
type State struct {
	SelectedResizeMode domain.ResizeMode
	IsAddingFilter     bool
	Filters            []domain.KeyedFilter
	NextID             int64
	Image              domain.Image
}

// Snapshot implements ir.Snapshotter.
func (s *State) Snapshot() ir.IRObject {
	filters := make(ir.IRArray, len(s.Filters))
	for i, f := range s.Filters {
		filters[i] = f.IR()
	}
	return ir.IRObject{
		"selectedResizeMode": ir.IRString(s.SelectedResizeMode),
		"isAddingFilter":     ir.IRBool(s.IsAddingFilter),
		"filters":            filters,
		"nextId":             ir.IRInt(s.NextID),
		"image":              s.Image.IR(),
	}
}

func (s *State) with(edit func(*State)) *State {
	next := *s
	edit(&next)
	return &next
}

// Injections are the capabilities the screen's effects use.
type Injections struct {
	TakePhoto func(ctx context.Context) (services.Outcome[services.Photo], error)
}

// FromPicker wires the camera of p.
func FromPicker(p services.ImagePicker) Injections {
	return Injections{TakePhoto: p.TakePhoto}
}
