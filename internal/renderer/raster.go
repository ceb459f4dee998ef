package renderer

import (
	"fmt"
	"time"

	"github.com/ryanlewis/bdfsurface/internal/common"
	"github.com/ryanlewis/bdfsurface/internal/debug"
	"github.com/ryanlewis/bdfsurface/internal/surface"
)

// coverageAlpha maps a coverage bit to an alpha byte. There is no anti-aliasing.
func coverageAlpha(covered bool) uint8 {
	if covered {
		return 0xff
	}
	return 0
}

// rasterStats collects counters for the raster/End trace event.
type rasterStats struct {
	glyphs  int
	written int
	covered int
}

// Rasterize blits laid-out lines into a new canvas of maxLineWidth × len(lines)*lineHeight.
//
// Each line occupies one band of lineHeight rows. Glyphs sit on the bottom of
// their band, so a glyph of height h starts lineHeight-h rows below the band
// top. Every pixel of a glyph box is overwritten with the fragment color and
// alpha 255 where covered, 0 elsewhere. A glyph that does not fit inside the
// canvas fails the whole call with common.ErrOutOfBounds; nothing is clipped.
func Rasterize(lines []Line, lineHeight, maxLineWidth int, src GlyphSource, opts *Options) (*surface.Canvas, error) {
	if src == nil {
		return nil, common.ErrNilFont
	}
	if lineHeight <= 0 {
		return nil, fmt.Errorf("%w (%d lines)", common.ErrDegenerateLayout, len(lines))
	}
	if maxLineWidth <= 0 {
		return nil, fmt.Errorf("%w: got %d", common.ErrInvalidWidth, maxLineWidth)
	}
	if len(lines) > common.MaxCanvasPixels/lineHeight {
		return nil, fmt.Errorf("%w: %d lines of height %d", common.ErrSurfaceAllocation, len(lines), lineHeight)
	}

	canvas, err := surface.New(maxLineWidth, len(lines)*lineHeight)
	if err != nil {
		return nil, err
	}

	session := opts.session()
	var startTime time.Time
	if session != nil {
		startTime = time.Now()
		session.Emit("raster", "Start", debug.RasterStartData{
			Width:      canvas.Width(),
			Height:     canvas.Height(),
			Lines:      len(lines),
			LineHeight: lineHeight,
		})
	}

	var stats rasterStats
	err = canvas.WithLock(func(buf *surface.Buffer) error {
		for i, line := range lines {
			bandTop := i * lineHeight
			endX, glyphs, err := blitLine(buf, line, bandTop, lineHeight, src, &stats)
			if err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
			if session != nil {
				session.Emit("raster", "Line", debug.RasterLineData{
					Line:      i,
					BandTop:   bandTop,
					Fragments: len(line.Fragments),
					Glyphs:    glyphs,
					EndX:      endX,
				})
			}
		}
		return nil
	})
	if err != nil {
		if session != nil {
			session.Emit("raster", "Error", debug.ErrorData{Phase: "raster", Message: err.Error()})
		}
		return nil, err
	}

	if session != nil {
		session.Emit("raster", "End", debug.RasterEndData{
			Glyphs:        stats.glyphs,
			PixelsWritten: stats.written,
			CoveredPixels: stats.covered,
			ElapsedMs:     time.Since(startTime).Milliseconds(),
		})
	}

	return canvas, nil
}

// blitLine draws one line into its band and returns the final cursor position
// and the number of glyphs drawn.
func blitLine(buf *surface.Buffer, line Line, bandTop, lineHeight int, src GlyphSource, stats *rasterStats) (int, int, error) {
	x := 0
	glyphs := 0
	for _, frag := range line.Fragments {
		for _, r := range frag.Text {
			glyph, ok := src.Glyph(r)
			if !ok || glyph == nil {
				return x, glyphs, fmt.Errorf("%w: %q (U+%04X)", common.ErrGlyphNotFound, r, r)
			}
			w, h := glyph.Width(), glyph.Height()
			top := bandTop + lineHeight - h

			// Reject the whole glyph up front rather than half-drawing it
			if w > 0 && h > 0 && (x+w > buf.Width() || top < bandTop || top+h > buf.Height()) {
				return x, glyphs, fmt.Errorf("%w: glyph %q (%dx%d) at (%d,%d) exceeds %dx%d canvas",
					common.ErrOutOfBounds, r, w, h, x, top, buf.Width(), buf.Height())
			}

			for gy := 0; gy < h; gy++ {
				for gx := 0; gx < w; gx++ {
					covered := glyph.Covered(gx, gy)
					if err := buf.Set(x+gx, top+gy, frag.Color.R, frag.Color.G, frag.Color.B, coverageAlpha(covered)); err != nil {
						return x, glyphs, err
					}
					if covered {
						stats.covered++
					}
				}
			}
			if w > 0 && h > 0 {
				stats.written += w * h
			}

			x += w + common.GlyphSpacing
			glyphs++
			stats.glyphs++
		}
	}
	return x, glyphs, nil
}
