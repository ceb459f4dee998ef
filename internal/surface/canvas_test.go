package surface

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ryanlewis/bdfsurface/internal/common"
	"golang.org/x/image/bmp"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"small", 3, 2, false},
		{"single pixel", 1, 1, false},
		{"zero width", 0, 5, true},
		{"zero height", 5, 0, true},
		{"negative", -1, 5, true},
		{"too many pixels", common.MaxCanvasPixels, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.w, tt.h)
			if tt.wantErr {
				if !errors.Is(err, common.ErrSurfaceAllocation) {
					t.Errorf("New(%d, %d) error = %v, want ErrSurfaceAllocation", tt.w, tt.h, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%d, %d) error = %v", tt.w, tt.h, err)
			}
			if c.Width() != tt.w || c.Height() != tt.h {
				t.Errorf("size = %dx%d", c.Width(), c.Height())
			}
			pix := c.Pix()
			if len(pix) != tt.w*tt.h*common.BytesPerPixel {
				t.Errorf("len(Pix()) = %d", len(pix))
			}
			for i, b := range pix {
				if b != 0 {
					t.Fatalf("Pix()[%d] = %d, want zeroed canvas", i, b)
				}
			}
		})
	}
}

func TestBufferSet(t *testing.T) {
	c, err := New(3, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = c.WithLock(func(buf *Buffer) error {
		if buf.Width() != 3 || buf.Height() != 2 {
			t.Errorf("buffer size = %dx%d", buf.Width(), buf.Height())
		}
		if err := buf.Set(2, 1, 10, 20, 30, 255); err != nil {
			return err
		}
		// Overwrite, not blend
		if err := buf.Set(0, 0, 1, 2, 3, 255); err != nil {
			return err
		}
		return buf.Set(0, 0, 4, 5, 6, 0)
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}

	pix := c.Pix()
	if want := []byte{4, 5, 6, 0}; !bytes.Equal(pix[0:4], want) {
		t.Errorf("pixel (0,0) = %v, want %v", pix[0:4], want)
	}
	// Row-major: (2,1) is pixel index 5
	if want := []byte{10, 20, 30, 255}; !bytes.Equal(pix[20:24], want) {
		t.Errorf("pixel (2,1) = %v, want %v", pix[20:24], want)
	}
	if got := c.NRGBA(2, 1); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("NRGBA(2,1) = %+v", got)
	}
	if got := c.At(2, 1); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("At(2,1) = %+v", got)
	}
}

func TestBufferSetOutOfBounds(t *testing.T) {
	c, err := New(3, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	points := [][2]int{{3, 0}, {0, 2}, {-1, 0}, {0, -1}, {100, 100}}
	for _, p := range points {
		err := c.WithLock(func(buf *Buffer) error {
			return buf.Set(p[0], p[1], 1, 1, 1, 255)
		})
		if !errors.Is(err, common.ErrOutOfBounds) {
			t.Errorf("Set(%d,%d) error = %v, want ErrOutOfBounds", p[0], p[1], err)
		}
	}
	if !bytes.Equal(c.Pix(), make([]byte, 3*2*common.BytesPerPixel)) {
		t.Error("out of bounds writes modified the canvas")
	}
}

func TestWithLockSerializes(t *testing.T) {
	c, err := New(1, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.WithLock(func(buf *Buffer) error {
				p := buf.pix
				return buf.Set(0, 0, p[0]+1, 0, 0, 255)
			})
		}()
	}
	wg.Wait()

	if got := c.NRGBA(0, 0).R; got != 50 {
		t.Errorf("R = %d after 50 locked increments, want 50", got)
	}
}

func TestImageIsCopy(t *testing.T) {
	c, err := New(2, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	img := c.Image()
	img.Pix[0] = 99
	if c.Pix()[0] != 0 {
		t.Error("Image() aliases the canvas memory")
	}
	pix := c.Pix()
	pix[0] = 99
	if c.Pix()[0] != 0 {
		t.Error("Pix() aliases the canvas memory")
	}
}

func paintedCanvas(t *testing.T) *Canvas {
	t.Helper()
	c, err := New(4, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = c.WithLock(func(buf *Buffer) error {
		if err := buf.Set(0, 0, 255, 0, 0, 255); err != nil {
			return err
		}
		if err := buf.Set(3, 2, 0, 0, 255, 255); err != nil {
			return err
		}
		return buf.Set(1, 1, 0, 255, 0, 255)
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	return c
}

func TestEncode(t *testing.T) {
	c := paintedCanvas(t)

	decoders := map[Format]func(io.Reader) (image.Image, error){
		FormatBMP: bmp.Decode,
		FormatPNG: png.Decode,
	}

	for format, decode := range decoders {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := c.Encode(&buf, format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			img, err := decode(&buf)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			for _, p := range []struct {
				x, y int
				want color.NRGBA
			}{
				{0, 0, color.NRGBA{R: 255, A: 255}},
				{1, 1, color.NRGBA{G: 255, A: 255}},
				{3, 2, color.NRGBA{B: 255, A: 255}},
			} {
				got := color.NRGBAModel.Convert(img.At(p.x, p.y)).(color.NRGBA)
				if got != p.want {
					t.Errorf("pixel (%d,%d) = %+v, want %+v", p.x, p.y, got, p.want)
				}
			}
		})
	}
}

func TestSave(t *testing.T) {
	c := paintedCanvas(t)
	dir := t.TempDir()

	for _, name := range []string{"out.bmp", "out.png", "out.BMP", "out"} {
		path := filepath.Join(dir, name)
		if err := c.Save(path); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", name, err)
		}
		wantMagic := []byte("BM")
		if FormatFromPath(path) == FormatPNG {
			wantMagic = []byte("\x89PNG")
		}
		if !bytes.HasPrefix(data, wantMagic) {
			t.Errorf("%s starts with %q, want %q", name, data[:4], wantMagic)
		}
	}

	if err := c.Save(filepath.Join(dir, "missing", "out.bmp")); err == nil {
		t.Error("Save() into a missing directory should fail")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.bmp", FormatBMP},
		{"a.png", FormatPNG},
		{"A.PNG", FormatPNG},
		{"a", FormatBMP},
		{"dir.png/a.jpg", FormatBMP},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
