// Package common provides shared constants and errors for internal packages.
// The errors are re-exported by the public bdfsurface package.
package common

import "errors"

const (
	// GlyphSpacing is the fixed gap in pixels added after every glyph,
	// including the last glyph on a line. Layout and rasterization must agree on it.
	GlyphSpacing = 1

	// MaxCanvasPixels caps the number of pixels a single canvas may hold (256 Mpx, 1 GiB of RGBA).
	MaxCanvasPixels = 1 << 28

	// MaxGlyphPixels caps the bitmap area of a single glyph or font bounding box.
	MaxGlyphPixels = 1 << 22

	// BytesPerPixel is the size of one RGBA8 pixel.
	BytesPerPixel = 4
)

// Common errors (re-exported by the bdfsurface package)
var (
	// ErrFontLoad is returned when a font resource cannot be opened or parsed
	ErrFontLoad = errors.New("font load failed")
	// ErrBadFontFormat is returned when font data has invalid structure
	ErrBadFontFormat = errors.New("bad font format")
	// ErrGlyphNotFound is returned when a rune has no glyph in the font
	ErrGlyphNotFound = errors.New("glyph not found")
	// ErrSurfaceAllocation is returned when a canvas cannot be allocated
	ErrSurfaceAllocation = errors.New("surface allocation failed")
	// ErrDegenerateLayout is returned when rasterizing a layout with zero line height
	ErrDegenerateLayout = errors.New("degenerate layout: line height is zero")
	// ErrOutOfBounds is returned when a glyph would be written outside the canvas
	ErrOutOfBounds = errors.New("pixel write out of bounds")
	// ErrInvalidWidth is returned when the maximum line width is not positive
	ErrInvalidWidth = errors.New("max line width must be positive")
	// ErrNilFont is returned when no glyph source is provided
	ErrNilFont = errors.New("font cannot be nil")
)
