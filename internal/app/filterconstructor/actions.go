package filterconstructor

import (
	"github.com/roach88/backlash/internal/domain"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
)

type SelectResizeMode struct {
	Mode domain.ResizeMode
}

func (SelectResizeMode) ActionName() string       { return "selectResizeMode" }
func (a SelectResizeMode) ActionArgs() ir.IRArray { return ir.Args(ir.IRString(a.Mode)) }

type StartAddFilter struct{}

func (StartAddFilter) ActionName() string     { return "startAddFilter" }
func (StartAddFilter) ActionArgs() ir.IRArray { return ir.Args() }

// ConfirmAddFilter appends Filter under the next free id.
type ConfirmAddFilter struct {
	Filter domain.Filter
}

func (ConfirmAddFilter) ActionName() string       { return "confirmAddFilter" }
func (a ConfirmAddFilter) ActionArgs() ir.IRArray { return ir.Args(a.Filter.IR()) }

type CancelAddFilter struct{}

func (CancelAddFilter) ActionName() string     { return "cancelAddFilter" }
func (CancelAddFilter) ActionArgs() ir.IRArray { return ir.Args() }

type RemoveFilter struct {
	ID domain.FilterID
}

func (RemoveFilter) ActionName() string       { return "removeFilter" }
func (a RemoveFilter) ActionArgs() ir.IRArray { return ir.Args(ir.IRString(a.ID)) }

// UpdateFilter replaces the filter with id ID, keeping its position.
type UpdateFilter struct {
	ID     domain.FilterID
	Filter domain.Filter
}

func (UpdateFilter) ActionName() string { return "updateFilter" }
func (a UpdateFilter) ActionArgs() ir.IRArray {
	return ir.Args(ir.IRString(a.ID), a.Filter.IR())
}

type MoveFilterUp struct {
	ID domain.FilterID
}

func (MoveFilterUp) ActionName() string       { return "moveFilterUp" }
func (a MoveFilterUp) ActionArgs() ir.IRArray { return ir.Args(ir.IRString(a.ID)) }

type MoveFilterDown struct {
	ID domain.FilterID
}

func (MoveFilterDown) ActionName() string       { return "moveFilterDown" }
func (a MoveFilterDown) ActionArgs() ir.IRArray { return ir.Args(ir.IRString(a.ID)) }

// TakePhoto asks the camera for a new source image.
type TakePhoto struct{}

func (TakePhoto) ActionName() string     { return "takePhoto" }
func (TakePhoto) ActionArgs() ir.IRArray { return ir.Args() }

// PhotoTaken shows a captured photo. Dispatched by the TakePhoto effect.
type PhotoTaken struct {
	URI string
}

func (PhotoTaken) ActionName() string       { return "photoTaken" }
func (a PhotoTaken) ActionArgs() ir.IRArray { return ir.Args(domain.PhotoImage(a.URI).IR()) }

func none(a engine.Action) engine.Decoder {
	return func(ir.IRArray) (engine.Action, error) { return a, nil }
}

func decodeID(args ir.IRArray, i int) (domain.FilterID, error) {
	s, err := args.StringAt(i)
	if err != nil {
		return "", err
	}
	return domain.ParseFilterID(s)
}

func decodeFilter(args ir.IRArray, i int) (domain.Filter, error) {
	obj, err := args.ObjectAt(i)
	if err != nil {
		return domain.Filter{}, err
	}
	return domain.ParseFilter(obj)
}

// Actions is the closed action set of the screen.
var Actions = engine.NewActionSet(
	engine.ActionSpec{Name: "selectResizeMode", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		s, err := args.StringAt(0)
		if err != nil {
			return nil, err
		}
		mode, err := domain.ParseResizeMode(s)
		if err != nil {
			return nil, err
		}
		return SelectResizeMode{Mode: mode}, nil
	}},
	engine.ActionSpec{Name: "startAddFilter", Decode: none(StartAddFilter{})},
	engine.ActionSpec{Name: "confirmAddFilter", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		f, err := decodeFilter(args, 0)
		if err != nil {
			return nil, err
		}
		return ConfirmAddFilter{Filter: f}, nil
	}},
	engine.ActionSpec{Name: "cancelAddFilter", Decode: none(CancelAddFilter{})},
	engine.ActionSpec{Name: "removeFilter", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		id, err := decodeID(args, 0)
		if err != nil {
			return nil, err
		}
		return RemoveFilter{ID: id}, nil
	}},
	engine.ActionSpec{Name: "updateFilter", Arity: 2, Decode: func(args ir.IRArray) (engine.Action, error) {
		id, err := decodeID(args, 0)
		if err != nil {
			return nil, err
		}
		f, err := decodeFilter(args, 1)
		if err != nil {
			return nil, err
		}
		return UpdateFilter{ID: id, Filter: f}, nil
	}},
	engine.ActionSpec{Name: "moveFilterUp", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		id, err := decodeID(args, 0)
		if err != nil {
			return nil, err
		}
		return MoveFilterUp{ID: id}, nil
	}},
	engine.ActionSpec{Name: "moveFilterDown", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		id, err := decodeID(args, 0)
		if err != nil {
			return nil, err
		}
		return MoveFilterDown{ID: id}, nil
	}},
	engine.ActionSpec{Name: "takePhoto", Decode: none(TakePhoto{})},
	engine.ActionSpec{Name: "photoTaken", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		obj, err := args.ObjectAt(0)
		if err != nil {
			return nil, err
		}
		img, err := domain.ParsePhoto(obj)
		if err != nil {
			return nil, err
		}
		uri, _ := img.URI()
		return PhotoTaken{URI: uri}, nil
	}},
)
