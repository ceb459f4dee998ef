// Package parser implements Glyph Bitmap Distribution Format (BDF 2.1) parsing.
package parser

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/bits-and-blooms/bitset"
	"github.com/ryanlewis/bdfsurface/internal/common"
)

const (
	// startFontKeyword opens every BDF file
	startFontKeyword = "STARTFONT"
	// bboxFields is the number of integers in a BBX or FONTBOUNDINGBOX line
	bboxFields = 4
	// noDefaultChar marks a font without a DEFAULT_CHAR property
	noDefaultChar rune = -1
)

// BoundingBox is a BDF bounding box: size plus offset of the lower-left corner from the origin.
type BoundingBox struct {
	Width   int
	Height  int
	XOffset int
	YOffset int
}

// Glyph is a single BDF character with its coverage bitmap.
// Coverage is stored row-major, one bit per pixel.
type Glyph struct {
	Name     string
	Encoding rune
	SWidth   [2]int
	DWidth   [2]int
	BBox     BoundingBox
	bits     *bitset.BitSet
}

// NewGlyph returns an empty (fully uncovered) glyph of the given size.
// Negative sizes are treated as zero.
func NewGlyph(width, height int) *Glyph {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Glyph{
		BBox: BoundingBox{Width: width, Height: height},
		bits: bitset.New(uint(width * height)),
	}
}

// Width returns the bitmap width in pixels.
func (g *Glyph) Width() int { return g.BBox.Width }

// Height returns the bitmap height in pixels.
func (g *Glyph) Height() int { return g.BBox.Height }

// Covered reports whether the pixel at (x, y) is painted.
// Coordinates outside the bitmap are never covered.
func (g *Glyph) Covered(x, y int) bool {
	if x < 0 || y < 0 || x >= g.BBox.Width || y >= g.BBox.Height {
		return false
	}
	return g.bits.Test(uint(y*g.BBox.Width + x))
}

// Set marks the pixel at (x, y) as covered. Out of range coordinates are ignored.
func (g *Glyph) Set(x, y int) {
	if x < 0 || y < 0 || x >= g.BBox.Width || y >= g.BBox.Height {
		return
	}
	g.bits.Set(uint(y*g.BBox.Width + x))
}

// CoveredCount returns the number of painted pixels.
func (g *Glyph) CoveredCount() int {
	return int(g.bits.Count())
}

// Font represents a parsed BDF font with all its metadata and glyphs.
type Font struct {
	// Glyphs maps encodings to their glyphs
	Glyphs map[rune]*Glyph

	// Comments contains the COMMENT lines in file order
	Comments []string

	// Version is the STARTFONT version (e.g., "2.1")
	Version string

	// Name is the FONT name (usually an XLFD string)
	Name string

	// PointSize, ResolutionX and ResolutionY come from the SIZE line
	PointSize   int
	ResolutionX int
	ResolutionY int

	// BoundingBox is the FONTBOUNDINGBOX
	BoundingBox BoundingBox

	// Properties holds STARTPROPERTIES entries with quotes removed
	Properties map[string]string

	// Ascent and Descent come from FONT_ASCENT and FONT_DESCENT (0 if absent)
	Ascent  int
	Descent int

	// DefaultChar is the DEFAULT_CHAR property, or -1 if absent
	DefaultChar rune

	// CharCount is the glyph count declared by the CHARS line
	CharCount int

	// Warnings contains any non-fatal issues encountered during parsing
	Warnings []string
}

// lineReader wraps a scanner and tracks the current line number for error messages.
type lineReader struct {
	scanner *bufio.Scanner
	buf     []byte
	line    int
}

// next returns the next line with surrounding whitespace trimmed.
// It returns io.ErrUnexpectedEOF at end of input.
func (lr *lineReader) next() (string, error) {
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			return "", fmt.Errorf("error reading line %d: %w", lr.line+1, err)
		}
		return "", io.ErrUnexpectedEOF
	}
	lr.line++
	return strings.TrimSpace(lr.scanner.Text()), nil
}

// errorf builds an ErrBadFontFormat error annotated with the current line.
func (lr *lineReader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", common.ErrBadFontFormat, lr.line, fmt.Sprintf(format, args...))
}

// Parse reads a BDF font from the provided reader and returns a parsed Font.
func Parse(r io.Reader) (*Font, error) {
	lr := newLineReader(r)
	defer lr.release()

	font, err := parseHeader(lr)
	if err != nil {
		return nil, err
	}

	if err := parseGlyphs(lr, font); err != nil {
		return nil, err
	}

	return font, nil
}

// ParseHeader parses the BDF global section up to and including the CHARS line.
// No glyphs are read.
func ParseHeader(r io.Reader) (*Font, error) {
	lr := newLineReader(r)
	defer lr.release()
	return parseHeader(lr)
}

// splitKeyword splits a BDF line into its keyword and the remainder.
func splitKeyword(line string) (keyword, rest string) {
	keyword, rest, _ = strings.Cut(line, " ")
	return keyword, strings.TrimSpace(rest)
}

// parseHeader parses the global font section
func parseHeader(lr *lineReader) (*Font, error) {
	font := &Font{
		Properties:  make(map[string]string),
		DefaultChar: noDefaultChar,
	}

	// Read and validate the STARTFONT line (first non-empty line)
	if err := readStartFont(lr, font); err != nil {
		return nil, err
	}

	for {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			return nil, lr.errorf("unexpected EOF before CHARS")
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}

		keyword, rest := splitKeyword(line)
		switch keyword {
		case "COMMENT":
			font.Comments = append(font.Comments, rest)
		case "FONT":
			font.Name = rest
		case "SIZE":
			vals, err := parseInts(lr, keyword, rest, 3)
			if err != nil {
				return nil, err
			}
			font.PointSize, font.ResolutionX, font.ResolutionY = vals[0], vals[1], vals[2]
		case "FONTBOUNDINGBOX":
			bbox, err := parseBoundingBox(lr, keyword, rest)
			if err != nil {
				return nil, err
			}
			font.BoundingBox = bbox
		case "STARTPROPERTIES":
			if err := parseProperties(lr, font, rest); err != nil {
				return nil, err
			}
		case "CHARS":
			vals, err := parseInts(lr, keyword, rest, 1)
			if err != nil {
				return nil, err
			}
			if vals[0] < 0 {
				return nil, lr.errorf("CHARS must be non-negative, got %d", vals[0])
			}
			font.CharCount = vals[0]
			font.Glyphs = make(map[rune]*Glyph, font.CharCount)
			return font, nil
		default:
			// METRICSSET, CONTENTVERSION, global SWIDTH/DWIDTH and friends are not needed
			font.Warnings = append(font.Warnings, fmt.Sprintf("line %d: ignored header keyword %s", lr.line, keyword))
		}
	}
}

// readStartFont reads the first non-empty line and checks the STARTFONT signature
func readStartFont(lr *lineReader, font *Font) error {
	for {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: empty font data", common.ErrBadFontFormat)
		}
		if err != nil {
			return err
		}

		// Some files carry a UTF-8 BOM
		line = strings.TrimPrefix(line, "\uFEFF")
		if line == "" {
			continue
		}

		keyword, rest := splitKeyword(line)
		if keyword != startFontKeyword {
			return lr.errorf("invalid signature: expected %s, got %q", startFontKeyword, keyword)
		}
		if rest == "" {
			return lr.errorf("missing %s version", startFontKeyword)
		}
		font.Version = rest
		return nil
	}
}

// parseProperties reads the property block up to ENDPROPERTIES
func parseProperties(lr *lineReader, font *Font, countField string) error {
	count, err := strconv.Atoi(countField)
	if err != nil {
		return lr.errorf("invalid STARTPROPERTIES count: %v", err)
	}

	read := 0
	for {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			return lr.errorf("unexpected EOF in properties")
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if line == "ENDPROPERTIES" {
			break
		}

		name, value := splitKeyword(line)
		value = strings.Trim(value, `"`)
		font.Properties[name] = value
		read++

		if err := applyProperty(lr, font, name, value); err != nil {
			return err
		}
	}

	if read != count {
		font.Warnings = append(font.Warnings,
			fmt.Sprintf("STARTPROPERTIES declared %d properties, found %d", count, read))
	}
	return nil
}

// applyProperty copies the properties the renderer cares about into typed fields
func applyProperty(lr *lineReader, font *Font, name, value string) error {
	var target *int
	switch name {
	case "FONT_ASCENT":
		target = &font.Ascent
	case "FONT_DESCENT":
		target = &font.Descent
	case "DEFAULT_CHAR":
		v, err := strconv.Atoi(value)
		if err != nil {
			return lr.errorf("invalid DEFAULT_CHAR: %v", err)
		}
		if v < int(noDefaultChar) || v > unicode.MaxRune {
			font.Warnings = append(font.Warnings,
				fmt.Sprintf("line %d: DEFAULT_CHAR %d is not a Unicode code point, ignored", lr.line, v))
			return nil
		}
		font.DefaultChar = rune(v)
		return nil
	default:
		return nil
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return lr.errorf("invalid %s: %v", name, err)
	}
	*target = v
	return nil
}

// parseGlyphs parses STARTCHAR blocks until ENDFONT or EOF
func parseGlyphs(lr *lineReader, font *Font) error {
	parsed := 0
	for {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			// Permissive: plenty of hand-edited fonts drop the trailer
			font.Warnings = append(font.Warnings, "missing ENDFONT")
			break
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		keyword, rest := splitKeyword(line)
		if keyword == "ENDFONT" {
			break
		}
		if keyword == "COMMENT" {
			font.Comments = append(font.Comments, rest)
			continue
		}
		if keyword != "STARTCHAR" {
			font.Warnings = append(font.Warnings, fmt.Sprintf("line %d: ignored keyword %s between glyphs", lr.line, keyword))
			continue
		}

		glyph, err := parseGlyph(lr, font, rest)
		if err != nil {
			return fmt.Errorf("error parsing glyph %q: %w", rest, err)
		}
		parsed++

		if glyph.Encoding < 0 {
			font.Warnings = append(font.Warnings, fmt.Sprintf("glyph %q has no encoding, skipped", glyph.Name))
			continue
		}
		if _, dup := font.Glyphs[glyph.Encoding]; dup {
			font.Warnings = append(font.Warnings, fmt.Sprintf("duplicate encoding %d, glyph %q replaces earlier one", glyph.Encoding, glyph.Name))
		}
		font.Glyphs[glyph.Encoding] = glyph
	}

	if parsed != font.CharCount {
		font.Warnings = append(font.Warnings,
			fmt.Sprintf("CHARS declared %d glyphs, found %d", font.CharCount, parsed))
	}
	return nil
}

// parseGlyph parses a single glyph after its STARTCHAR line
func parseGlyph(lr *lineReader, font *Font, name string) (*Glyph, error) {
	glyph := &Glyph{Name: name, Encoding: noDefaultChar}
	haveBBX := false

	for {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			return nil, lr.errorf("unexpected EOF before BITMAP")
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}

		keyword, rest := splitKeyword(line)
		if keyword == "BITMAP" {
			break
		}

		switch keyword {
		case "ENCODING":
			enc, err := parseEncoding(lr, rest)
			if err != nil {
				return nil, err
			}
			if enc > unicode.MaxRune {
				font.Warnings = append(font.Warnings,
					fmt.Sprintf("line %d: glyph %q encoding %d is not a Unicode code point", lr.line, name, enc))
				enc = int(noDefaultChar)
			}
			glyph.Encoding = rune(enc)
		case "SWIDTH":
			vals, err := parseInts(lr, keyword, rest, 2)
			if err != nil {
				return nil, err
			}
			glyph.SWidth = [2]int{vals[0], vals[1]}
		case "DWIDTH":
			vals, err := parseInts(lr, keyword, rest, 2)
			if err != nil {
				return nil, err
			}
			glyph.DWidth = [2]int{vals[0], vals[1]}
		case "BBX":
			bbox, err := parseBoundingBox(lr, keyword, rest)
			if err != nil {
				return nil, err
			}
			glyph.BBox = bbox
			haveBBX = true
		case "ENDCHAR":
			return nil, lr.errorf("ENDCHAR before BITMAP")
		}
	}

	if !haveBBX {
		font.Warnings = append(font.Warnings,
			fmt.Sprintf("glyph %q has no BBX, using FONTBOUNDINGBOX", name))
		glyph.BBox = font.BoundingBox
	}
	glyph.bits = bitset.New(uint(glyph.BBox.Width * glyph.BBox.Height))

	if err := parseBitmap(lr, glyph); err != nil {
		return nil, err
	}

	// Expect ENDCHAR
	for {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			return nil, lr.errorf("unexpected EOF before ENDCHAR")
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}
		if line == "ENDCHAR" {
			return glyph, nil
		}
		return nil, lr.errorf("expected ENDCHAR, got %q (bitmap has more rows than BBX height %d)", line, glyph.BBox.Height)
	}
}

// parseEncoding handles "ENCODING n" and the non-standard "ENCODING -1 n" form.
// Negative results mean the glyph is unencoded.
func parseEncoding(lr *lineReader, rest string) (int, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, lr.errorf("missing ENCODING value")
	}
	enc, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, lr.errorf("invalid ENCODING: %v", err)
	}
	if enc < 0 && len(fields) > 1 {
		alt, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, lr.errorf("invalid alternate ENCODING: %v", err)
		}
		enc = alt
	}
	if enc < 0 {
		return int(noDefaultChar), nil
	}
	return enc, nil
}

// parseBitmap reads BBX-height rows of hex data into the glyph.
// Each row holds ceil(width/8) bytes, most significant bit first.
func parseBitmap(lr *lineReader, glyph *Glyph) error {
	w, h := glyph.BBox.Width, glyph.BBox.Height
	rowBytes := (w + 7) / 8
	row := rowPool.get(rowBytes)
	defer rowPool.put(row)

	for y := 0; y < h; y++ {
		line, err := lr.next()
		if err == io.ErrUnexpectedEOF {
			return lr.errorf("unexpected EOF: expected %d bitmap rows, got %d", h, y)
		}
		if err != nil {
			return err
		}
		if len(line) < rowBytes*2 {
			return lr.errorf("bitmap row %d too short: need %d hex digits, got %d", y, rowBytes*2, len(line))
		}

		// Extra trailing digits are padding some generators emit
		row = row[:rowBytes]
		if _, err := hex.Decode(row, []byte(line[:rowBytes*2])); err != nil {
			return lr.errorf("bitmap row %d: %v", y, err)
		}

		for x := 0; x < w; x++ {
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				glyph.Set(x, y)
			}
		}
	}
	return nil
}

// parseBoundingBox parses "w h xoff yoff"
func parseBoundingBox(lr *lineReader, keyword, rest string) (BoundingBox, error) {
	vals, err := parseInts(lr, keyword, rest, bboxFields)
	if err != nil {
		return BoundingBox{}, err
	}
	if vals[0] < 0 || vals[1] < 0 {
		return BoundingBox{}, lr.errorf("%s size must be non-negative, got %dx%d", keyword, vals[0], vals[1])
	}
	if vals[1] > 0 && vals[0] > common.MaxGlyphPixels/vals[1] {
		return BoundingBox{}, lr.errorf("%s size %dx%d exceeds %d pixels", keyword, vals[0], vals[1], common.MaxGlyphPixels)
	}
	return BoundingBox{Width: vals[0], Height: vals[1], XOffset: vals[2], YOffset: vals[3]}, nil
}

// parseInts parses at least n whitespace separated integers for keyword
func parseInts(lr *lineReader, keyword, rest string, n int) ([]int, error) {
	fields := strings.Fields(rest)
	if len(fields) < n {
		return nil, lr.errorf("insufficient %s fields: got %d, need %d", keyword, len(fields), n)
	}
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, lr.errorf("invalid %s field %d: %v", keyword, i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}
