package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when a matrix or label slice does not fit the image.
var ErrShape = errors.New("imageio: shape mismatch")

// Space selects the pixel feature space.
type Space uint8

const (
	// RGB features are the red, green and blue channels in [0, 255].
	RGB Space = iota
	// Lab features are CIE-Lab coordinates (D65 white point).
	Lab
)

func (s Space) String() string {
	switch s {
	case RGB:
		return "rgb"
	case Lab:
		return "lab"
	default:
		return fmt.Sprintf("Space(%d)", uint8(s))
	}
}

// ParseSpace parses "rgb" or "lab".
func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(s) {
	case "rgb":
		return RGB, nil
	case "lab":
		return Lab, nil
	default:
		return 0, fmt.Errorf("imageio: unknown color space %q", s)
	}
}

// Pixels is an opaque 8-bit RGB raster stored row-major, three bytes per pixel.
type Pixels struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixels returns a black raster of the given size.
func NewPixels(width, height int) *Pixels {
	return &Pixels{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

// FromImage copies img into a Pixels raster. Alpha is dropped.
func FromImage(img image.Image) *Pixels {
	b := img.Bounds()
	p := NewPixels(b.Dx(), b.Dy())

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			p.Pix[i], p.Pix[i+1], p.Pix[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
	return p
}

// Len returns the number of pixels.
func (p *Pixels) Len() int { return p.Width * p.Height }

// RGBAt returns the channels of pixel i in row-major order.
func (p *Pixels) RGBAt(i int) (r, g, b uint8) {
	return p.Pix[3*i], p.Pix[3*i+1], p.Pix[3*i+2]
}

// SetRGB sets the channels of pixel i.
func (p *Pixels) SetRGB(i int, r, g, b uint8) {
	p.Pix[3*i], p.Pix[3*i+1], p.Pix[3*i+2] = r, g, b
}

// Image returns p as an opaque image.
func (p *Pixels) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for i := 0; i < p.Len(); i++ {
		img.Pix[4*i] = p.Pix[3*i]
		img.Pix[4*i+1] = p.Pix[3*i+1]
		img.Pix[4*i+2] = p.Pix[3*i+2]
		img.Pix[4*i+3] = 0xff
	}
	return img
}

// Matrix returns one row of three features per pixel, in row-major pixel
// order.
func (p *Pixels) Matrix(space Space) *mat.Dense {
	n := p.Len()
	data := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		r, g, b := p.RGBAt(i)
		if space == Lab {
			data[3*i], data[3*i+1], data[3*i+2] = colorful.Color{
				R: float64(r) / 255,
				G: float64(g) / 255,
				B: float64(b) / 255,
			}.Lab()
			continue
		}
		data[3*i], data[3*i+1], data[3*i+2] = float64(r), float64(g), float64(b)
	}
	return mat.NewDense(n, 3, data)
}

// Quantize returns a copy of pix where every pixel takes the color of its
// cluster representative. centroids holds one 3-feature row per cluster in
// the given space and labels holds the cluster of every pixel.
func Quantize(pix *Pixels, centroids mat.Matrix, labels []int, space Space) (*Pixels, error) {
	k, d := centroids.Dims()
	if d != 3 {
		return nil, fmt.Errorf("%w: centroids have %d columns, want 3", ErrShape, d)
	}
	if len(labels) != pix.Len() {
		return nil, fmt.Errorf("%w: %d labels for %d pixels", ErrShape, len(labels), pix.Len())
	}

	palette := make([][3]uint8, k)
	for j := range palette {
		palette[j] = toRGB(centroids.At(j, 0), centroids.At(j, 1), centroids.At(j, 2), space)
	}

	out := NewPixels(pix.Width, pix.Height)
	for i, l := range labels {
		if l < 0 || l >= k {
			return nil, fmt.Errorf("%w: label %d of pixel %d, %d clusters", ErrShape, l, i, k)
		}
		c := palette[l]
		out.SetRGB(i, c[0], c[1], c[2])
	}
	return out, nil
}

func toRGB(x, y, z float64, space Space) [3]uint8 {
	if space == Lab {
		r, g, b := colorful.Lab(x, y, z).Clamped().RGB255()
		return [3]uint8{r, g, b}
	}
	return [3]uint8{channel(x), channel(y), channel(z)}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
