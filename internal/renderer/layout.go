package renderer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ryanlewis/bdfsurface/internal/common"
	"github.com/ryanlewis/bdfsurface/internal/debug"
)

// lineBuilder is the accumulator threaded through a single layout pass.
// It is a local value; nothing survives between calls.
type lineBuilder struct {
	lines     []Line
	fragments []Fragment
	text      strings.Builder
	width     int
	glyphs    int // glyphs on the current line
	total     int // glyphs placed overall
	height    int // tallest glyph seen anywhere
}

// place appends r to the pending fragment.
func (b *lineBuilder) place(r rune, advance, height int) {
	b.text.WriteRune(r)
	b.width += advance
	b.glyphs++
	b.total++
	if height > b.height {
		b.height = height
	}
}

// closeFragment commits the pending text as a fragment.
// Run boundaries keep empty fragments; width breaks drop them.
func (b *lineBuilder) closeFragment(c Color, keepEmpty bool) {
	if b.text.Len() == 0 && !keepEmpty {
		return
	}
	b.fragments = append(b.fragments, Fragment{Text: b.text.String(), Color: c})
	b.text.Reset()
}

// closeLine commits the current line and starts an empty one.
func (b *lineBuilder) closeLine() {
	b.lines = append(b.lines, Line{Fragments: b.fragments, Width: b.width})
	b.fragments = nil
	b.width = 0
	b.glyphs = 0
}

// Layout wraps runs greedily into lines no wider than maxLineWidth.
//
// Every glyph advances the line by its width plus common.GlyphSpacing. A line
// is broken before a glyph that would push it past maxLineWidth, unless the
// line is still empty: a glyph wider than the limit gets a line of its own.
// The returned line height is the tallest glyph across the whole input, or 0
// when there are no glyphs. At least one line is always returned.
func Layout(runs []Run, maxLineWidth int, src GlyphSource, opts *Options) ([]Line, int, error) {
	if src == nil {
		return nil, 0, common.ErrNilFont
	}
	if maxLineWidth <= 0 {
		return nil, 0, fmt.Errorf("%w: got %d", common.ErrInvalidWidth, maxLineWidth)
	}

	session := opts.session()
	unknown := opts.unknownRune()
	if session != nil {
		start := debug.LayoutStartData{
			Runs:         len(runs),
			MaxLineWidth: maxLineWidth,
		}
		for _, run := range runs {
			start.TotalRunes += utf8.RuneCountInString(run.Text)
		}
		if unknown != nil {
			u := int(*unknown)
			start.UnknownRune = &u
		}
		session.Emit("layout", "Start", start)
	}

	var b lineBuilder
	for ri, run := range runs {
		for _, r := range run.Text {
			glyph, placed, err := resolveGlyph(src, r, unknown)
			if err != nil {
				if session != nil {
					session.Emit("layout", "Error", debug.ErrorData{
						Phase:   "layout",
						Message: err.Error(),
						Context: map[string]interface{}{"run": ri, "index": b.total},
					})
				}
				return nil, 0, err
			}

			advance := glyph.Width() + common.GlyphSpacing
			if b.width+advance > maxLineWidth && b.glyphs > 0 {
				if session != nil {
					session.Emit("layout", "Break", debug.BreakData{
						Line:      len(b.lines),
						Rune:      placed,
						LineWidth: b.width,
						Advance:   advance,
						Limit:     maxLineWidth,
						Fragments: len(b.fragments),
						SplitsRun: b.text.Len() > 0,
					})
				}
				b.closeFragment(run.Color, false)
				b.closeLine()
			}

			b.place(placed, advance, glyph.Height())

			if session != nil {
				session.Emit("layout", "Glyph", debug.GlyphData{
					Index:        b.total - 1,
					Run:          ri,
					Rune:         placed,
					Width:        glyph.Width(),
					Height:       glyph.Height(),
					LineWidth:    b.width,
					UnknownSubst: placed != r,
				})
			}
		}
		// A run boundary ends the fragment but never the line
		b.closeFragment(run.Color, true)
	}
	// The last line is always emitted, even when empty
	b.closeLine()

	if session != nil {
		widths := make([]int, len(b.lines))
		for i, l := range b.lines {
			widths[i] = l.Width
		}
		session.Emit("layout", "End", debug.LayoutEndData{
			Lines:      len(b.lines),
			LineHeight: b.height,
			LineWidths: widths,
			Glyphs:     b.total,
		})
	}

	return b.lines, b.height, nil
}

// resolveGlyph looks up r, falling back to the unknown rune when one is configured.
// It returns the glyph and the rune that was actually placed.
func resolveGlyph(src GlyphSource, r rune, unknown *rune) (Glyph, rune, error) {
	if g, ok := src.Glyph(r); ok && g != nil {
		return g, r, nil
	}
	if unknown == nil {
		return nil, r, fmt.Errorf("%w: %q (U+%04X)", common.ErrGlyphNotFound, r, r)
	}
	if g, ok := src.Glyph(*unknown); ok && g != nil {
		return g, *unknown, nil
	}
	return nil, r, fmt.Errorf("%w: %q (U+%04X), replacement %q also missing",
		common.ErrGlyphNotFound, r, r, *unknown)
}
