// Package capture saves rendered frames to image files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Formats accepted by New.
const (
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// Capturer writes frames as timestamped files in one directory.
type Capturer struct {
	dir    string
	prefix string
	format string

	// now is replaced in tests.
	now func() time.Time
}

// New creates a capturer. An unknown format is an error.
func New(dir, prefix, format string) (*Capturer, error) {
	format = strings.ToLower(format)
	switch format {
	case "":
		format = FormatPNG
	case FormatPNG, FormatBMP, FormatTIFF:
	default:
		return nil, fmt.Errorf("capture: unsupported format %q", format)
	}
	if prefix == "" {
		prefix = "frame"
	}
	return &Capturer{dir: dir, prefix: prefix, format: format, now: time.Now}, nil
}

// Filename returns the path the next capture is written to.
func (c *Capturer) Filename() string {
	name := fmt.Sprintf("%s_%s.%s", c.prefix, c.now().Format("2006-01-02_15-04-05.000"), c.format)
	if c.dir != "" {
		name = filepath.Join(c.dir, name)
	}
	return name
}

// SavePixels writes width x height RGBA rows read bottom-up from a GL
// framebuffer and returns the file path.
func (c *Capturer) SavePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("capture: pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	return c.Save(FlipRGBA(pixels, width, height))
}

// Save writes img and returns the file path.
func (c *Capturer) Save(img image.Image) (string, error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	name := c.Filename()
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := c.encode(f, img); err != nil {
		return "", fmt.Errorf("encoding %s: %w", c.format, err)
	}
	return name, nil
}

func (c *Capturer) encode(w io.Writer, img image.Image) error {
	switch c.format {
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// FlipRGBA copies bottom-up RGBA rows into a top-down image.
func FlipRGBA(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img
}
