package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// JPEGQuality is the quality used when encoding JPEG files.
const JPEGQuality = 95

// Decode reads a PNG or JPEG image and returns its pixels and format name.
func Decode(r io.Reader) (*Pixels, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode: %w", err)
	}
	return FromImage(img), format, nil
}

// Encode writes p in the named format ("png", "jpeg" or "jpg").
func Encode(w io.Writer, p *Pixels, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, p.Image())
	case "jpeg", "jpg":
		return jpeg.Encode(w, p.Image(), &jpeg.Options{Quality: JPEGQuality})
	default:
		return fmt.Errorf("imageio: unsupported format %q", format)
	}
}

// Read decodes the image file at path.
func Read(path string) (*Pixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, _, err := Decode(bufio.NewReader(f))
	return p, err
}

// Write encodes p to path in the format implied by the file extension.
func Write(path string, p *Pixels) (err error) {
	format := FormatOf(path)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := Encode(w, p, format); err != nil {
		return err
	}
	return w.Flush()
}

// FormatOf returns the image format implied by the extension of path.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
