// Package domain holds the value types shared by the image screens: resize
// modes, images and filters. Every type renders itself as an ir value for
// tracing and decodes from one for name-based dispatch.
package domain
