package renderer

import (
	"fmt"

	"github.com/ryanlewis/bdfsurface/internal/debug"
)

// Color is an 8-bit RGB triple. It carries no alpha: alpha comes from glyph coverage.
type Color struct {
	R, G, B uint8
}

// RGB returns the color with the given components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// RGBA implements color.Color. The color is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// String returns the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Run is a piece of input text drawn in a single color.
type Run struct {
	Text  string
	Color Color
}

// Fragment is the part of a Run that landed on one output line.
type Fragment struct {
	Text  string
	Color Color
}

// Line is one row band of output.
// Width includes the spacing after every glyph, the last one too.
type Line struct {
	Fragments []Fragment
	Width     int
}

// Text returns the concatenated text of all fragments on the line.
func (l Line) Text() string {
	switch len(l.Fragments) {
	case 0:
		return ""
	case 1:
		return l.Fragments[0].Text
	}
	n := 0
	for _, f := range l.Fragments {
		n += len(f.Text)
	}
	b := make([]byte, 0, n)
	for _, f := range l.Fragments {
		b = append(b, f.Text...)
	}
	return string(b)
}

// Glyph is the narrow view of a font glyph the renderer needs.
// Covered is only queried for 0 <= x < Width() and 0 <= y < Height().
type Glyph interface {
	Width() int
	Height() int
	Covered(x, y int) bool
}

// GlyphSource looks up glyphs by rune.
type GlyphSource interface {
	Glyph(r rune) (Glyph, bool)
}

// Options contains rendering options passed from the main package
type Options struct {
	// UnknownRune, when set, replaces runes missing from the font.
	// The replacement must itself have a glyph.
	UnknownRune *rune
	// Debug receives trace events; nil disables tracing
	Debug *debug.Session
}

func (o *Options) unknownRune() *rune {
	if o == nil {
		return nil
	}
	return o.UnknownRune
}

func (o *Options) session() *debug.Session {
	if o == nil {
		return nil
	}
	return o.Debug
}
