package surface

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Format selects an image encoding for Save.
type Format int

const (
	// FormatBMP writes a 32-bit BMP with alpha
	FormatBMP Format = iota
	// FormatPNG writes an RGBA PNG
	FormatPNG
)

// FormatFromPath picks the encoding from the file extension.
// ".png" selects PNG; everything else falls back to BMP.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return FormatPNG
	}
	return FormatBMP
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	default:
		return "bmp"
	}
}

// Encode writes the canvas to w in the given format.
func (c *Canvas) Encode(w io.Writer, format Format) error {
	img := c.Image()
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	default:
		return bmp.Encode(w, img)
	}
}

// Save writes the canvas to path, choosing the format from the extension.
func (c *Canvas) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := c.Encode(f, FormatFromPath(path)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
