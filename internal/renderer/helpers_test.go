package renderer

import "strings"

// testGlyph is a glyph backed by ASCII art rows: '#' is covered, anything else is not.
// A glyph without rows is solid when solid is set and empty otherwise.
type testGlyph struct {
	w, h  int
	rows  []string
	solid bool
}

func (g testGlyph) Width() int  { return g.w }
func (g testGlyph) Height() int { return g.h }

func (g testGlyph) Covered(x, y int) bool {
	if g.rows == nil {
		return g.solid
	}
	return g.rows[y][x] == '#'
}

// solidGlyph returns a fully covered w×h glyph.
func solidGlyph(w, h int) testGlyph {
	return testGlyph{w: w, h: h, solid: true}
}

// emptyGlyph returns a fully uncovered w×h glyph.
func emptyGlyph(w, h int) testGlyph {
	return testGlyph{w: w, h: h}
}

// artGlyph builds a glyph from rows of equal length.
func artGlyph(rows ...string) testGlyph {
	w := 0
	if len(rows) > 0 {
		w = len(rows[0])
	}
	return testGlyph{w: w, h: len(rows), rows: rows}
}

// testFont is a map-backed GlyphSource.
type testFont map[rune]Glyph

func (f testFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f[r]
	return g, ok
}

// scenarioFont has the 5×8 glyphs used by the wrapping scenarios plus a few
// odd sizes for alignment and overflow tests.
func scenarioFont() testFont {
	return testFont{
		'A': solidGlyph(5, 8),
		'B': solidGlyph(5, 8),
		'C': solidGlyph(5, 8),
		'D': solidGlyph(5, 8),
		' ': emptyGlyph(3, 8),
		'.': solidGlyph(1, 2),
		'W': solidGlyph(30, 8),
		'?': solidGlyph(4, 6),
		'x': artGlyph(
			"#.#",
			".#.",
			"#.#",
		),
	}
}

// joinedText concatenates the text of every fragment of every line.
func joinedText(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Text())
	}
	return sb.String()
}

// lineTexts returns each line's text.
func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}
