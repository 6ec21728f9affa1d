package filters

import (
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rparam"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// GiftBlurKind selects which gift.Filter GiftBlurProcessor wraps.
type GiftBlurKind int

const (
	GiftGaussianBlur GiftBlurKind = iota
	GiftUnsharpMask
)

// GiftBlurProcessor wraps a disintegration/gift spatial filter, the
// library the teacher already uses for mask.GaussianBlur (see
// mask/processor.go). Spatial filters need pixels beyond a tile's own
// bounds, so ProcessTile reads a radius-padded halo via GlobalInput
// into a scratch image, runs the gift.Filter over the padded region,
// then copies back only the tile's own pixels.
type GiftBlurProcessor struct {
	Kind     GiftBlurKind
	Sigma    *rparam.RangedFloat
	Amount   *rparam.RangedFloat // only meaningful for GiftUnsharpMask

	mu   sync.RWMutex
	w, h int
}

// NewGiftBlurProcessor builds a processor of the given kind with sigma
// default 2.0, UI hint range [0,20], hard-clamped to [0, 50].
func NewGiftBlurProcessor(kind GiftBlurKind) *GiftBlurProcessor {
	var hardMin, hardMax float64 = 0, 50
	return &GiftBlurProcessor{
		Kind:   kind,
		Sigma:  rparam.NewRangedFloat(2.0, 0, 20, &hardMin, &hardMax),
		Amount: rparam.NewRangedFloat(1.0, 0, 3, &hardMin, nil),
	}
}

func (p *GiftBlurProcessor) Begin(w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.w, p.h = w, h
}

func (p *GiftBlurProcessor) dims() (int, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.w, p.h
}

func (p *GiftBlurProcessor) filter() gift.Filter {
	sigma := float32(p.Sigma.Get())
	switch p.Kind {
	case GiftUnsharpMask:
		return gift.UnsharpMask(sigma, float32(p.Amount.Get()), 0)
	default:
		return gift.GaussianBlur(sigma)
	}
}

func (p *GiftBlurProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	w, h := p.dims()
	radius := int(p.Sigma.Get()*3) + 1

	padX0 := clampInt(tile.Rect.X-radius, 0, w)
	padY0 := clampInt(tile.Rect.Y-radius, 0, h)
	padX1 := clampInt(tile.Rect.X+tile.Rect.W+radius, 0, w)
	padY1 := clampInt(tile.Rect.Y+tile.Rect.H+radius, 0, h)

	padW, padH := padX1-padX0, padY1-padY0
	scratch := image.NewNRGBA(image.Rect(0, 0, padW, padH))
	for y := 0; y < padH; y++ {
		if y%16 == 0 && cancel.Cancelled() {
			return
		}
		for x := 0; x < padW; x++ {
			px := tile.GlobalInput(padX0+x, padY0+y)
			r, g, b, a := px.ToRGBA8()
			scratch.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}

	g := gift.New(p.filter())
	blurred := image.NewNRGBA(g.Bounds(scratch.Bounds()))
	g.Draw(blurred, scratch)

	offX, offY := tile.Rect.X-padX0, tile.Rect.Y-padY0
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				c := blurred.NRGBAAt(offX+col, offY+row)
				out[row*tile.Rect.W+col] = rpixel.FromRGBA8(c.R, c.G, c.B, c.A)
			}
		}
	})
}

// NewGiftBlurFilter constructs the Filter descriptor for a Gaussian blur.
func NewGiftBlurFilter() rprocess.Filter {
	proc := NewGiftBlurProcessor(GiftGaussianBlur)
	return rprocess.Filter{
		Name:   "Gaussian Blur",
		Params: []rprocess.NamedParam{{Label: "Sigma", Value: proc.Sigma}},
		New:    func() rprocess.Processor { return proc },
	}
}

// NewUnsharpMaskFilter constructs the Filter descriptor for an unsharp mask.
func NewUnsharpMaskFilter() rprocess.Filter {
	proc := NewGiftBlurProcessor(GiftUnsharpMask)
	return rprocess.Filter{
		Name: "Unsharp Mask",
		Params: []rprocess.NamedParam{
			{Label: "Sigma", Value: proc.Sigma},
			{Label: "Amount", Value: proc.Amount},
		},
		New: func() rprocess.Processor { return proc },
	}
}
