// Package rpixel holds the engine's pixel and input-plane data model.
package rpixel

import (
	"image"
	"image/color"
	"math"
)

// Pixel is a 4-component floating-point color, nominally in [0,1] per
// channel. Intermediate computation may leave components out of range;
// they are clamped only on export to 8-bit.
type Pixel struct {
	R, G, B, A float32
}

// FromRGBA8 converts an 8-bit-per-channel color into a Pixel.
func FromRGBA8(r, g, b, a uint8) Pixel {
	return Pixel{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

// ToRGBA8 clamps and rounds p to 8-bit components.
func (p Pixel) ToRGBA8() (r, g, b, a uint8) {
	return clampRound(p.R), clampRound(p.G), clampRound(p.B), clampRound(p.A)
}

func clampRound(c float32) uint8 {
	v := float64(c) * 255
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}

// Plane is an immutable, row-major array of Pixel shared read-only by
// every Tile cut from it. It is owned by the renderer for the lifetime
// of a loaded image.
type Plane struct {
	W, H int
	Pix  []Pixel
}

// NewPlaneFromImage converts any image.Image into a Plane, one
// component/255 conversion per channel per §3.
func NewPlaneFromImage(img image.Image) *Plane {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	pix := make([]Pixel, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// img.At(...).RGBA() is alpha-premultiplied; convert through
			// NRGBA first so non-opaque pixels don't get crushed toward black.
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			pix[y*w+x] = FromRGBA8(c.R, c.G, c.B, c.A)
		}
	}

	return &Plane{W: w, H: h, Pix: pix}
}

// At returns the pixel at global (x,y). It panics on out-of-bounds
// access — an invariant violation, not a recoverable error (§7).
func (p *Plane) At(x, y int) Pixel {
	if x < 0 || x >= p.W || y < 0 || y >= p.H {
		panic("rpixel: plane coordinate out of bounds")
	}
	return p.Pix[y*p.W+x]
}

// ToImage assembles an 8-bit RGBA image from the plane, converting each
// channel via clamp-and-round as in ToRGBA8.
func (p *Plane) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			r, g, b, a := p.Pix[y*p.W+x].ToRGBA8()
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return out
}
