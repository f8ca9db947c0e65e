package imageselection

import (
	"context"

	"github.com/roach88/backlash/internal/domain"
	"github.com/roach88/backlash/internal/engine"
	"github.com/roach88/backlash/internal/services"
)

// Command is the command type of the screen.
type Command = engine.Command[*State, services.ImagePicker]

// Init starts in center mode showing the bundled asset staticImage.
func Init(staticImage int64) Command {
	return engine.Pure[*State, services.ImagePicker](&State{
		SelectedResizeMode: domain.ResizeCenter,
		Image:              domain.StaticImage(staticImage),
	})
}

// Update is the transition function of the screen.
func Update(s *State, action engine.Action) Command {
	switch a := action.(type) {
	case SelectResizeMode:
		if a.Mode == s.SelectedResizeMode {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.SelectedResizeMode = a.Mode }))

	case TakePhotoFromCamera:
		return engine.WithEffect(s, takePhoto(services.Camera))

	case PickPhotoFromLibrary:
		return engine.WithEffect(s, takePhoto(services.Library))

	case UpdatePhoto:
		img := domain.PhotoImage(a.URI)
		if img == s.Image {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.Image = img }))

	case EnterFullScreen:
		if s.IsFullScreen {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.IsFullScreen = true }))

	case LeaveFullScreen:
		if !s.IsFullScreen {
			return pure(s)
		}
		return pure(s.with(func(n *State) { n.IsFullScreen = false }))

	default:
		panic(engine.Unknown(action))
	}
}

func pure(s *State) Command {
	return engine.Pure[*State, services.ImagePicker](s)
}

// takePhoto asks src for a photo and shows it. A cancellation dispatches
// nothing.
func takePhoto(src services.Source) engine.Effect[services.ImagePicker] {
	return func(ctx context.Context, d engine.Dispatcher, picker services.ImagePicker) error {
		pick := picker.TakePhoto
		if src == services.Library {
			pick = picker.PickFromLibrary
		}

		out, err := pick(ctx)
		if err != nil {
			return err
		}
		photo, ok := out.Value()
		if !ok {
			return nil
		}
		d.Dispatch(UpdatePhoto{URI: photo.URI})
		return nil
	}
}

// New starts an engine for the screen.
func New(staticImage int64, picker services.ImagePicker, opts ...engine.Option) *engine.Engine[*State, services.ImagePicker] {
	opts = append([]engine.Option{engine.WithApp(Name)}, opts...)
	return engine.New(Init(staticImage), Update, picker, opts...)
}
