package domain

import (
	"fmt"

	"github.com/roach88/backlash/internal/ir"
)

// Image is either a bundled static asset or a photo picked at runtime.
// It is comparable, so equal images compare equal with ==.
type Image struct {
	static int64
	uri    string
	photo  bool
}

// StaticImage references a bundled asset.
func StaticImage(asset int64) Image {
	return Image{static: asset}
}

// PhotoImage references a photo by URI.
func PhotoImage(uri string) Image {
	return Image{uri: uri, photo: true}
}

// IsPhoto reports whether the image is a picked photo.
func (i Image) IsPhoto() bool { return i.photo }

// Static returns the asset id of a static image.
func (i Image) Static() (int64, bool) { return i.static, !i.photo }

// URI returns the URI of a photo.
func (i Image) URI() (string, bool) { return i.uri, i.photo }

// IR renders the image as {"static": n} or {"uri": s}.
func (i Image) IR() ir.IRObject {
	if i.photo {
		return ir.IRObject{"uri": ir.IRString(i.uri)}
	}
	return ir.IRObject{"static": ir.IRInt(i.static)}
}

func (i Image) String() string {
	if i.photo {
		return "uri:" + i.uri
	}
	return fmt.Sprintf("static:%d", i.static)
}

// ParseImage decodes {"static": n} or {"uri": s}. Exactly one key is allowed.
func ParseImage(obj ir.IRObject) (Image, error) {
	if len(obj) != 1 {
		return Image{}, fmt.Errorf("image: want exactly one of static, uri; got %d keys", len(obj))
	}
	if _, ok := obj["uri"]; ok {
		return ParsePhoto(obj)
	}
	asset, err := obj.IntField("static")
	if err != nil {
		return Image{}, fmt.Errorf("image: %w", err)
	}
	return StaticImage(asset), nil
}

// ParsePhoto decodes {"uri": s} with a non-empty URI.
func ParsePhoto(obj ir.IRObject) (Image, error) {
	if len(obj) != 1 {
		return Image{}, fmt.Errorf("photo: want only uri, got %d keys", len(obj))
	}
	uri, err := obj.StringField("uri")
	if err != nil {
		return Image{}, fmt.Errorf("photo: %w", err)
	}
	if uri == "" {
		return Image{}, fmt.Errorf("photo: empty uri")
	}
	return PhotoImage(uri), nil
}
