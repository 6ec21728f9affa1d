package rpixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRGBA8ToRGBA8Roundtrip(t *testing.T) {
	r, g, b, a := uint8(10), uint8(20), uint8(30), uint8(40)
	p := FromRGBA8(r, g, b, a)

	gotR, gotG, gotB, gotA := p.ToRGBA8()
	assert.Equal(t, r, gotR)
	assert.Equal(t, g, gotG)
	assert.Equal(t, b, gotB)
	assert.Equal(t, a, gotA)
}

func TestToRGBA8ClampsOutOfRange(t *testing.T) {
	p := Pixel{R: 2.0, G: -1.0, B: 0.5, A: 1.0}
	r, g, b, a := p.ToRGBA8()
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(128), b)
	assert.Equal(t, uint8(255), a)
}

func TestNewPlaneFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
		}
	}

	plane := NewPlaneFromImage(img)
	require.Equal(t, 4, plane.W)
	require.Equal(t, 2, plane.H)

	px := plane.At(1, 1)
	r, g, b, a := px.ToRGBA8()
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)
	assert.Equal(t, uint8(40), a)
}

func TestPlaneAtOutOfBoundsPanics(t *testing.T) {
	plane := &Plane{W: 2, H: 2, Pix: make([]Pixel, 4)}
	assert.Panics(t, func() { plane.At(2, 0) })
	assert.Panics(t, func() { plane.At(0, 2) })
	assert.Panics(t, func() { plane.At(-1, 0) })
}
