package present

import (
	"image"
	"image/color"
	"sync"
)

// NeutralColor fills the preview buffer on clear; WorkingColor outlines
// tiles a worker currently has claimed.
var (
	NeutralColor = color.NRGBA{R: 32, G: 32, B: 32, A: 255}
	WorkingColor = color.NRGBA{R: 255, G: 176, B: 0, A: 255}
)

// PreviewBuffer is the shared, UI-thread-owned destination for
// completed tile output. By convention only a presenter tick writes to
// it; workers never touch it (§5).
type PreviewBuffer struct {
	mu  sync.Mutex
	img *image.NRGBA
}

// NewPreviewBuffer allocates a w×h buffer.
func NewPreviewBuffer(w, h int) *PreviewBuffer {
	return &PreviewBuffer{img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the current buffer contents. Callers must not mutate
// the result's pixels; Resize invalidates outstanding references.
func (p *PreviewBuffer) Image() *image.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.img
}

// Resize replaces the buffer with a fresh w×h image, used when a new
// pass begins against a differently sized input.
func (p *PreviewBuffer) Resize(w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.img = image.NewNRGBA(image.Rect(0, 0, w, h))
}

func (p *PreviewBuffer) fill(c color.NRGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bounds := p.img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p.img.SetNRGBA(x, y, c)
		}
	}
}

func (p *PreviewBuffer) drawWorkingMarker(x, y, w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bounds := p.img.Bounds()
	clampX := func(v int) int { return max(bounds.Min.X, min(bounds.Max.X-1, v)) }
	clampY := func(v int) int { return max(bounds.Min.Y, min(bounds.Max.Y-1, v)) }

	for cx := x; cx < x+w; cx++ {
		p.img.SetNRGBA(clampX(cx), clampY(y), WorkingColor)
		p.img.SetNRGBA(clampX(cx), clampY(y+h-1), WorkingColor)
	}
	for cy := y; cy < y+h; cy++ {
		p.img.SetNRGBA(clampX(x), clampY(cy), WorkingColor)
		p.img.SetNRGBA(clampX(x+w-1), clampY(cy), WorkingColor)
	}

	for iy := y + 1; iy < y+h-1; iy++ {
		for ix := x + 1; ix < x+w-1; ix++ {
			p.img.SetNRGBA(clampX(ix), clampY(iy), NeutralColor)
		}
	}
}

func (p *PreviewBuffer) blit(x, y, w, h int, pix func(c, r int) color.NRGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			p.img.SetNRGBA(x+c, y+r, pix(c, r))
		}
	}
}
