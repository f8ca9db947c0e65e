package domain

import (
	"fmt"
	"strings"
)

// ResizeMode controls how an image fills its frame.
type ResizeMode string

const (
	ResizeCenter  ResizeMode = "center"
	ResizeContain ResizeMode = "contain"
	ResizeCover   ResizeMode = "cover"
	ResizeStretch ResizeMode = "stretch"
	ResizeRepeat  ResizeMode = "repeat"
)

var resizeModes = []ResizeMode{ResizeCenter, ResizeContain, ResizeCover, ResizeStretch, ResizeRepeat}

// ResizeModes lists every mode in display order.
func ResizeModes() []ResizeMode {
	return append([]ResizeMode(nil), resizeModes...)
}

// Valid reports whether m is a known mode.
func (m ResizeMode) Valid() bool {
	for _, known := range resizeModes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseResizeMode validates s.
func ParseResizeMode(s string) (ResizeMode, error) {
	m := ResizeMode(s)
	if !m.Valid() {
		names := make([]string, len(resizeModes))
		for i, known := range resizeModes {
			names[i] = string(known)
		}
		return "", fmt.Errorf("unknown resize mode %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return m, nil
}
