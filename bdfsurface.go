// Package bdfsurface renders colored text with bitmap fonts into RGBA pixel buffers.
//
// Text is wrapped greedily, one character at a time, so that no line is wider
// than a maximum pixel width. Every line is as tall as the tallest glyph in the
// whole input and glyphs sit on the bottom of their line. Each glyph pixel is
// written with its run's color and an alpha of 255 (covered) or 0 (not covered).
//
// Example:
//
//	conv, err := bdfsurface.NewConverter("./resource/wqy_9pt.bdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	canvas, err := conv.Render([]bdfsurface.Text{
//	    {Text: "Hello, ", Color: bdfsurface.RGB(255, 0, 0)},
//	    {Text: "Locez!", Color: bdfsurface.RGB(255, 73, 170)},
//	}, 60)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := canvas.Save("output.bmp"); err != nil {
//	    log.Fatal(err)
//	}
package bdfsurface

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ryanlewis/bdfsurface/internal/parser"
	"github.com/ryanlewis/bdfsurface/internal/renderer"
)

// ParseFont reads a BDF font from the provided reader and returns a Font instance.
// The returned Font is immutable and safe for concurrent use across goroutines.
//
// Any failure is reported as ErrFontLoad; malformed data additionally matches
// ErrBadFontFormat.
func ParseFont(r io.Reader) (*Font, error) {
	pf, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}
	return convertParserFont(pf), nil
}

// ParseFontBytes parses a BDF font held in memory.
func ParseFontBytes(data []byte) (*Font, error) {
	return ParseFont(bytes.NewReader(data))
}

// LoadFont opens and parses the BDF font at path.
// The font name is the file name without its extension.
func LoadFont(fontPath string) (*Font, error) {
	file, err := os.Open(fontPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open font file: %w", ErrFontLoad, err)
	}
	defer file.Close()

	font, err := ParseFont(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", fontPath, err)
	}

	base := filepath.Base(fontPath)
	font.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return font, nil
}

// cleanFSPath validates and cleans a path for use with fs.FS.
// It ensures the path is valid according to fs.ValidPath rules and
// prevents directory traversal attacks.
func cleanFSPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("path cannot be empty")
	}
	// fs.FS disallows leading slash and uses '/' only
	if strings.HasPrefix(p, "/") {
		return "", errors.New("absolute paths not allowed")
	}
	if strings.ContainsRune(p, '\\') {
		return "", errors.New("backslashes not allowed in fs paths")
	}
	if !fs.ValidPath(p) {
		// rejects ".", ".." segments, empty elements, etc.
		return "", fmt.Errorf("invalid fs path: %s", p)
	}
	clean := path.Clean(p) // purely slash semantics
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", errors.New("path traversal not allowed")
	}
	return clean, nil
}

// LoadFontFS loads a BDF font from a filesystem at the specified path.
// The returned Font is immutable and safe for concurrent use across goroutines.
//
// Path traversal (e.g., "../") is not allowed.
//
// Example with embed.FS:
//
//	//go:embed fonts/*.bdf
//	var fonts embed.FS
//
//	font, err := bdfsurface.LoadFontFS(fonts, "fonts/wqy_9pt.bdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadFontFS(fsys fs.FS, fontPath string) (*Font, error) {
	if fsys == nil {
		return nil, fmt.Errorf("%w: filesystem cannot be nil", ErrFontLoad)
	}

	clean, err := cleanFSPath(fontPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}

	file, err := fsys.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open font file: %w", ErrFontLoad, err)
	}
	defer file.Close()

	font, err := ParseFont(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", clean, err)
	}

	// Use path package for fs.FS paths (not filepath)
	font.Name = strings.TrimSuffix(path.Base(clean), path.Ext(clean))
	return font, nil
}

// convertParserFont converts internal parser.Font to public Font type.
// The glyph map is shared; neither side mutates it after parsing.
func convertParserFont(pf *parser.Font) *Font {
	return &Font{
		glyphs:      pf.Glyphs,
		FontName:    pf.Name,
		Version:     pf.Version,
		PointSize:   pf.PointSize,
		ResolutionX: pf.ResolutionX,
		ResolutionY: pf.ResolutionY,
		BoundingBox: pf.BoundingBox,
		Ascent:      pf.Ascent,
		Descent:     pf.Descent,
		DefaultChar: pf.DefaultChar,
		Properties:  pf.Properties,
		Comments:    pf.Comments,
		Warnings:    pf.Warnings,
	}
}

// isNilSource reports whether src is nil or wraps a nil *Font.
func isNilSource(src GlyphSource) bool {
	if src == nil {
		return true
	}
	f, ok := src.(*Font)
	return ok && f == nil
}

// buildOptions applies opts over the defaults.
func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Render lays out texts within maxLineWidth pixels and rasterizes them.
// The canvas is maxLineWidth wide and one line height tall per output line.
//
// Errors:
//   - ErrGlyphNotFound when a rune has no glyph (see WithUnknownRune)
//   - ErrDegenerateLayout when the input contains no glyphs with height
//   - ErrOutOfBounds when a glyph is wider than maxLineWidth
//   - ErrInvalidWidth when maxLineWidth is not positive
func Render(texts []Text, maxLineWidth int, src GlyphSource, opts ...Option) (*Canvas, error) {
	if isNilSource(src) {
		return nil, ErrNilFont
	}
	return renderer.Render(texts, maxLineWidth, src, buildOptions(opts).toInternal())
}

// Layout wraps texts into lines without drawing anything.
// It returns the lines and the line height (the tallest glyph in the input).
func Layout(texts []Text, maxLineWidth int, src GlyphSource, opts ...Option) ([]Line, int, error) {
	if isNilSource(src) {
		return nil, 0, ErrNilFont
	}
	return renderer.Layout(texts, maxLineWidth, src, buildOptions(opts).toInternal())
}

// Rasterize draws lines produced by Layout into a new canvas.
// src must be the same glyph source that was used for layout.
func Rasterize(lines []Line, lineHeight, maxLineWidth int, src GlyphSource, opts ...Option) (*Canvas, error) {
	if isNilSource(src) {
		return nil, ErrNilFont
	}
	return renderer.Rasterize(lines, lineHeight, maxLineWidth, src, buildOptions(opts).toInternal())
}

// Converter renders text with one loaded font.
type Converter struct {
	font *Font
}

// NewConverter loads the BDF font at fontPath.
// A missing or malformed font is reported here, not at render time.
func NewConverter(fontPath string) (*Converter, error) {
	font, err := LoadFont(fontPath)
	if err != nil {
		return nil, err
	}
	return &Converter{font: font}, nil
}

// NewConverterFromFont wraps an already parsed font.
func NewConverterFromFont(font *Font) (*Converter, error) {
	if font == nil {
		return nil, ErrNilFont
	}
	return &Converter{font: font}, nil
}

// Font returns the converter's font.
func (c *Converter) Font() *Font {
	return c.font
}

// Render renders texts with the converter's font. See Render.
func (c *Converter) Render(texts []Text, maxLineWidth int, opts ...Option) (*Canvas, error) {
	return Render(texts, maxLineWidth, c.font, opts...)
}
