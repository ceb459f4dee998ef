package bdfsurface

import (
	"io"
	"sort"

	"github.com/ryanlewis/bdfsurface/internal/common"
	"github.com/ryanlewis/bdfsurface/internal/debug"
	"github.com/ryanlewis/bdfsurface/internal/parser"
	"github.com/ryanlewis/bdfsurface/internal/renderer"
	"github.com/ryanlewis/bdfsurface/internal/surface"
)

// Color is an 8-bit RGB color. Alpha is never part of a Color: each pixel's
// alpha comes from the glyph coverage bit.
type Color = renderer.Color

// Text is a run of characters drawn in one color.
type Text = renderer.Run

// Fragment is the part of a Text that landed on a single output line.
type Fragment = renderer.Fragment

// Line is one band of laid-out output.
type Line = renderer.Line

// Glyph is the per-character view the renderer needs: a size and a coverage test.
type Glyph = renderer.Glyph

// GlyphSource looks up glyphs by rune. *Font and FaceSource implement it.
type GlyphSource = renderer.GlyphSource

// Canvas is the rendered RGBA8 pixel buffer (row-major, 4 bytes per pixel, R G B A).
type Canvas = surface.Canvas

// Format selects the encoding used by Canvas.Encode.
type Format = surface.Format

// Canvas encodings
const (
	FormatBMP = surface.FormatBMP
	FormatPNG = surface.FormatPNG
)

// BoundingBox is a BDF bounding box.
type BoundingBox = parser.BoundingBox

// RGB returns the color with the given components.
func RGB(r, g, b uint8) Color {
	return renderer.RGB(r, g, b)
}

// Font represents an immutable BDF font that can be safely shared across goroutines.
type Font struct {
	// glyphs maps runes to their bitmaps (unexported for immutability)
	glyphs map[rune]*parser.Glyph

	// Name is the font name derived from the file name (e.g., "wqy_9pt")
	Name string

	// FontName is the FONT line, usually an XLFD name
	FontName string

	// Version is the BDF format version from STARTFONT
	Version string

	// PointSize, ResolutionX and ResolutionY come from the SIZE line
	PointSize   int
	ResolutionX int
	ResolutionY int

	// BoundingBox is the font-wide bounding box
	BoundingBox BoundingBox

	// Ascent and Descent come from the FONT_ASCENT and FONT_DESCENT properties
	Ascent  int
	Descent int

	// DefaultChar is the DEFAULT_CHAR property, or -1 if the font has none
	DefaultChar rune

	// Properties holds every STARTPROPERTIES entry
	Properties map[string]string

	// Comments contains the COMMENT lines
	Comments []string

	// Warnings lists non-fatal problems found while parsing
	Warnings []string
}

// Glyph returns the glyph for r, or false if the font has none.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if f == nil || f.glyphs == nil {
		return nil, false
	}
	g, ok := f.glyphs[r]
	if !ok {
		return nil, false
	}
	return g, true
}

// Len returns the number of encoded glyphs.
func (f *Font) Len() int {
	if f == nil {
		return 0
	}
	return len(f.glyphs)
}

// Runes returns every encoded rune in ascending order.
func (f *Font) Runes() []rune {
	if f == nil {
		return nil
	}
	runes := make([]rune, 0, len(f.glyphs))
	for r := range f.glyphs {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}

// Common errors returned by the bdfsurface package
var (
	// ErrFontLoad is returned when a font cannot be opened or parsed
	ErrFontLoad = common.ErrFontLoad

	// ErrBadFontFormat is returned when a font file has an invalid format
	ErrBadFontFormat = common.ErrBadFontFormat

	// ErrGlyphNotFound is returned when a rune has no glyph in the font
	ErrGlyphNotFound = common.ErrGlyphNotFound

	// ErrSurfaceAllocation is returned when the output canvas cannot be allocated
	ErrSurfaceAllocation = common.ErrSurfaceAllocation

	// ErrDegenerateLayout is returned when there is nothing with height to draw
	ErrDegenerateLayout = common.ErrDegenerateLayout

	// ErrOutOfBounds is returned when a glyph does not fit inside the canvas,
	// for example a single glyph wider than the maximum line width
	ErrOutOfBounds = common.ErrOutOfBounds

	// ErrInvalidWidth is returned for a non-positive maximum line width
	ErrInvalidWidth = common.ErrInvalidWidth

	// ErrNilFont is returned when no font or glyph source is given
	ErrNilFont = common.ErrNilFont
)

// Option configures rendering behavior.
type Option func(*options)

type options struct {
	unknownRune *rune
	debug       *debug.Session
}

func defaultOptions() *options {
	return &options{}
}

func (o *options) toInternal() *renderer.Options {
	return &renderer.Options{
		UnknownRune: o.unknownRune,
		Debug:       o.debug,
	}
}

// WithUnknownRune replaces runes missing from the font with r.
//
// Error Handling Strategy:
//   - Without this option: rendering fails with ErrGlyphNotFound
//   - With this option: missing runes are laid out and drawn as r
//   - The replacement must exist in the font, or rendering still fails
//
// Substitution changes the text recorded in the returned lines: the
// replacement rune appears where the missing one was.
func WithUnknownRune(r rune) Option {
	return func(opts *options) {
		opts.unknownRune = &r
	}
}

// DebugSession traces one or more renders. Create it with NewDebugSession.
type DebugSession = debug.Session

// NewDebugSession starts a trace that writes one JSON object per event to w,
// or indented text when pretty is true. Pass it to a render with WithDebug
// and Close it afterwards to flush the output. A nil w returns nil.
func NewDebugSession(w io.Writer, pretty bool) *DebugSession {
	if w == nil {
		return nil
	}
	if pretty {
		return debug.Open(debug.NewPrettySink(w))
	}
	return debug.Open(debug.NewJSONSink(w))
}

// WithDebug attaches a debug session that receives layout and raster events.
// A nil session disables tracing.
func WithDebug(session *DebugSession) Option {
	return func(opts *options) {
		opts.debug = session
	}
}
