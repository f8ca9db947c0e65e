// Package imageselection is the image selection screen: choose a resize mode,
// replace the bundled image with a photo from the camera or the library, and
// toggle full screen.
package imageselection

import (
	"github.com/roach88/backlash/internal/domain"
	"github.com/roach88/backlash/internal/ir"
)

// Name is the registry name of the screen.
const Name = "image_selection"

// State is immutable; every transition returns a new *State or the same
// pointer when nothing changes.
type State struct {
	SelectedResizeMode domain.ResizeMode
	Image              domain.Image
	IsFullScreen       bool
}

// Snapshot implements ir.Snapshotter.
func (s *State) Snapshot() ir.IRObject {
	return ir.IRObject{
		"selectedResizeMode": ir.IRString(s.SelectedResizeMode),
		"image":              s.Image.IR(),
		"isFullScreen":       ir.IRBool(s.IsFullScreen),
	}
}

func (s *State) with(edit func(*State)) *State {
	next := *s
	edit(&next)
	return &next
}
