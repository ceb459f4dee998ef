// Package renderer lays out colored text runs and rasterizes them into a canvas.
package renderer

import (
	"github.com/ryanlewis/bdfsurface/internal/surface"
)

// Render lays out runs and rasterizes the result into a new canvas.
// The canvas is always maxLineWidth pixels wide.
func Render(runs []Run, maxLineWidth int, src GlyphSource, opts *Options) (*surface.Canvas, error) {
	lines, lineHeight, err := Layout(runs, maxLineWidth, src, opts)
	if err != nil {
		return nil, err
	}
	return Rasterize(lines, lineHeight, maxLineWidth, src, opts)
}
