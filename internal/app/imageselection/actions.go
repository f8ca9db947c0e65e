package imageselection

import (
	"github.com/roach88/backlash/internal/domain"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/ir"
)

// SelectResizeMode picks how the image fills its frame.
type SelectResizeMode struct {
	Mode domain.ResizeMode
}

func (SelectResizeMode) ActionName() string       { return "selectResizeMode" }
func (a SelectResizeMode) ActionArgs() ir.IRArray { return ir.Args(ir.IRString(a.Mode)) }

// TakePhotoFromCamera asks the camera for a photo.
type TakePhotoFromCamera struct{}

func (TakePhotoFromCamera) ActionName() string     { return "takePhotoFromCamera" }
func (TakePhotoFromCamera) ActionArgs() ir.IRArray { return ir.Args() }

// PickPhotoFromLibrary asks the photo library for a photo.
type PickPhotoFromLibrary struct{}

func (PickPhotoFromLibrary) ActionName() string     { return "pickPhotoFromLibrary" }
func (PickPhotoFromLibrary) ActionArgs() ir.IRArray { return ir.Args() }

// UpdatePhoto shows a picked photo. Dispatched by the picker effects.
type UpdatePhoto struct {
	URI string
}

func (UpdatePhoto) ActionName() string { return "updatePhoto" }
func (a UpdatePhoto) ActionArgs() ir.IRArray {
	return ir.Args(domain.PhotoImage(a.URI).IR())
}

// EnterFullScreen shows the image full screen.
type EnterFullScreen struct{}

func (EnterFullScreen) ActionName() string     { return "enterFullScreen" }
func (EnterFullScreen) ActionArgs() ir.IRArray { return ir.Args() }

// LeaveFullScreen returns to the framed view.
type LeaveFullScreen struct{}

func (LeaveFullScreen) ActionName() string     { return "leaveFullScreen" }
func (LeaveFullScreen) ActionArgs() ir.IRArray { return ir.Args() }

func constant(a engine.Action) engine.Decoder {
	return func(ir.IRArray) (engine.Action, error) { return a, nil }
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
	engine.ActionSpec{Name: "takePhotoFromCamera", Decode: constant(TakePhotoFromCamera{})},
	engine.ActionSpec{Name: "pickPhotoFromLibrary", Decode: constant(PickPhotoFromLibrary{})},
	engine.ActionSpec{Name: "updatePhoto", Arity: 1, Decode: func(args ir.IRArray) (engine.Action, error) {
		obj, err := args.ObjectAt(0)
		if err != nil {
			return nil, err
		}
		img, err := domain.ParsePhoto(obj)
		if err != nil {
			return nil, err
		}
		uri, _ := img.URI()
		return UpdatePhoto{URI: uri}, nil
	}},
	engine.ActionSpec{Name: "enterFullScreen", Decode: constant(EnterFullScreen{})},
	engine.ActionSpec{Name: "leaveFullScreen", Decode: constant(LeaveFullScreen{})},
)
