package bdfsurface

import (
	"image"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// coverageThreshold is the mask alpha at or above which a face pixel counts as covered.
const coverageThreshold = 0x80

// faceGlyph is a glyph rasterized from a font.Face into a coverage bitmap.
type faceGlyph struct {
	width  int
	height int
	bits   *bitset.BitSet
}

func (g *faceGlyph) Width() int  { return g.width }
func (g *faceGlyph) Height() int { return g.height }

func (g *faceGlyph) Covered(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return false
	}
	return g.bits.Test(uint(y*g.width + x))
}

// faceSource adapts a font.Face to GlyphSource.
type faceSource struct {
	mu   sync.Mutex // font.Face implementations are not safe for concurrent use
	face font.Face
}

// FaceSource returns a GlyphSource backed by face, so any golang.org/x/image
// font (for example basicfont.Face7x13) can be rendered without a BDF file.
//
// Every glyph is as wide as its advance and as tall as the face's line height.
// Mask pixels with alpha of at least 50% are covered. Runes outside a
// *basicfont.Face's ranges are reported as missing rather than drawn as the
// replacement glyph.
func FaceSource(face font.Face) GlyphSource {
	if face == nil {
		return nil
	}
	return &faceSource{face: face}
}

func (s *faceSource) Glyph(r rune) (Glyph, bool) {
	if bf, ok := s.face.(*basicfont.Face); ok && !inRanges(bf, r) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	advance, ok := s.face.GlyphAdvance(r)
	if !ok {
		return nil, false
	}
	metrics := s.face.Metrics()
	width := advance.Ceil()
	height := metrics.Height.Ceil()
	if width <= 0 || height <= 0 {
		return &faceGlyph{width: max(width, 0), height: max(height, 0), bits: bitset.New(0)}, true
	}

	dot := fixed.Point26_6{Y: metrics.Ascent}
	dr, mask, maskp, _, ok := s.face.Glyph(dot, r)
	if !ok {
		return nil, false
	}

	dst := image.NewAlpha(image.Rect(0, 0, width, height))
	draw.DrawMask(dst, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)

	bits := bitset.New(uint(width * height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if dst.AlphaAt(x, y).A >= coverageThreshold {
				bits.Set(uint(y*width + x))
			}
		}
	}
	return &faceGlyph{width: width, height: height, bits: bits}, true
}

// inRanges reports whether r has a glyph of its own in f.
func inRanges(f *basicfont.Face, r rune) bool {
	for _, rr := range f.Ranges {
		if rr.Low <= r && r < rr.High {
			return true
		}
	}
	return false
}
