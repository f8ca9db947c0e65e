package filterconstructor

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/backlash/internal/domain"
	"github.com/roach88/backlash/internal/engine"
)

// Command is the command type of the screen.
type Command = engine.Command[*State, Injections]

// Init starts with no filters, center mode and the bundled asset staticImage.
func Init(staticImage int64) Command {
	return pure(&State{
		SelectedResizeMode: domain.ResizeCenter,
		Image:              domain.StaticImage(staticImage),
	})
}

func pure(s *State) Command {
	return engine.Pure[*State, Injections](s)
}

// Updates maps every action name of the screen to its handler.
var Updates = engine.UpdateMap[*State, Injections]{
	"selectResizeMode": engine.On(func(s *State, a SelectResizeMode) Command {
		if a.Mode == s.SelectedResizeMode {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.SelectedResizeMode = a.Mode }))
	}),

	"startAddFilter": engine.On(func(s *State, _ StartAddFilter) Command {
		if s.IsAddingFilter {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.IsAddingFilter = true }))
	}),

	"confirmAddFilter": engine.On(func(s *State, a ConfirmAddFilter) Command {
		added := domain.KeyedFilter{Filter: a.Filter, ID: domain.NewFilterID(s.NextID)}
		return pure(s.with(func(n *State) {
			n.Filters = append(slices.Clip(s.Filters), added)
			n.NextID++
			n.IsAddingFilter = false
		}))
	}),

	"cancelAddFilter": engine.On(func(s *State, _ CancelAddFilter) Command {
		if !s.IsAddingFilter {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.IsAddingFilter = false }))
	}),

	"removeFilter": engine.On(func(s *State, a RemoveFilter) Command {
		i := domain.IndexOf(s.Filters, a.ID)
		if i < 0 {
			return pure(s)
		}
		return pure(s.with(func(n *State) {
			n.Filters = slices.Delete(slices.Clone(s.Filters), i, i+1)
		}))
	}),

	"updateFilter": engine.On(func(s *State, a UpdateFilter) Command {
		i := domain.IndexOf(s.Filters, a.ID)
		if i < 0 || s.Filters[i].Filter == a.Filter {
			return pure(s)
		}
		return pure(s.with(func(n *State) {
			n.Filters = slices.Clone(s.Filters)
			n.Filters[i].Filter = a.Filter
		}))
	}),

	"moveFilterUp": engine.On(func(s *State, a MoveFilterUp) Command {
		i := domain.IndexOf(s.Filters, a.ID)
		return move(s, i-1, i)
	}),

	"moveFilterDown": engine.On(func(s *State, a MoveFilterDown) Command {
		i := domain.IndexOf(s.Filters, a.ID)
		return move(s, i, i+1)
	}),

	"takePhoto": engine.On(func(s *State, _ TakePhoto) Command {
		return engine.WithEffect(s, takePhoto)
	}),

	"photoTaken": engine.On(func(s *State, a PhotoTaken) Command {
		img := domain.PhotoImage(a.URI)
		if img == s.Image {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.Image = img }))
	}),
}

// Update is Updates as a transition function.
var Update = Updates.Update()

// move swaps positions i and j. Out-of-range positions (an unknown id, or the
// first filter moving up) leave the state as is.
func move(s *State, i, j int) Command {
	filters := domain.Swap(s.Filters, i, j)
	if domain.Same(filters, s.Filters) {
		return pure(s)
	}
	return pure(s.with(func(n *State) { n.Filters = filters }))
}

func takePhoto(ctx context.Context, d engine.Dispatcher, inj Injections) error {
	out, err := inj.TakePhoto(ctx)
	if err != nil {
		return err
	}
	if photo, ok := out.Value(); ok {
		d.Dispatch(PhotoTaken{URI: photo.URI})
	}
	return nil
}

// New starts an engine for the screen. It panics when Updates and Actions
// disagree.
func New(staticImage int64, inj Injections, opts ...engine.Option) *engine.Engine[*State, Injections] {
	mustCover(Updates, Actions)
	opts = append([]engine.Option{engine.WithApp(Name)}, opts...)
	return engine.New(Init(staticImage), Update, inj, opts...)
}

func mustCover(updates engine.UpdateMap[*State, Injections], set engine.ActionSet) {
	if err := updates.Check(set); err != nil {
		panic(fmt.Sprintf("%s: %v", Name, err))
	}
}
