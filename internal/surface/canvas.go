// Package surface provides the RGBA8 pixel buffer that text is rasterized into.
//
// A Canvas is a row-major width×height buffer with 4 bytes per pixel in
// R, G, B, A order (non-premultiplied, the same layout as image.NRGBA).
// All writes go through WithLock, which grants exclusive access for the
// duration of a callback and bounds-checks every pixel.
package surface

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/ryanlewis/bdfsurface/internal/common"
)

// Canvas is an RGBA8 pixel buffer.
type Canvas struct {
	mu     sync.Mutex
	img    *image.NRGBA
	width  int
	height int
}

// New allocates a zeroed (fully transparent black) canvas.
// It fails with common.ErrSurfaceAllocation for non-positive or oversized dimensions.
func New(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", common.ErrSurfaceAllocation, width, height)
	}
	// Divide instead of multiplying so the check itself cannot overflow
	if width > common.MaxCanvasPixels/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", common.ErrSurfaceAllocation, width, height, common.MaxCanvasPixels)
	}

	return &Canvas{
		img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Buffer is the write handle passed to WithLock callbacks.
// It must not be retained after the callback returns.
type Buffer struct {
	pix    []byte
	width  int
	height int
}

// Set overwrites the pixel at (x, y). No blending is performed.
func (b *Buffer) Set(x, y int, r, g, bl, a uint8) error {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", common.ErrOutOfBounds, x, y, b.width, b.height)
	}
	i := (y*b.width + x) * common.BytesPerPixel
	p := b.pix[i : i+common.BytesPerPixel : i+common.BytesPerPixel]
	p[0] = r
	p[1] = g
	p[2] = bl
	p[3] = a
	return nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// WithLock runs fn with exclusive write access to the pixel memory.
// The lock is released when fn returns, including when it panics.
func (c *Canvas) WithLock(fn func(buf *Buffer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(&Buffer{pix: c.img.Pix, width: c.width, height: c.height})
}

// Pix returns a copy of the raw RGBA8 bytes.
func (c *Canvas) Pix() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]byte, len(c.img.Pix))
	copy(out, c.img.Pix)
	return out
}

// NRGBA returns the pixel at (x, y). Out of range coordinates return the zero color.
func (c *Canvas) NRGBA(x, y int) color.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.img.NRGBAAt(x, y)
}

// ColorModel implements image.Image.
func (c *Canvas) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

// At implements image.Image.
func (c *Canvas) At(x, y int) color.Color { return c.NRGBA(x, y) }

// Image returns a copy of the canvas as an *image.NRGBA.
func (c *Canvas) Image() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	img := image.NewNRGBA(c.img.Rect)
	copy(img.Pix, c.img.Pix)
	return img
}
