package filters

import (
	"sort"
	"sync"

	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rparam"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// MedianBlurProcessor is a naive O(r^2) windowed median per channel,
// grounded on naive_median.rs. Radius is a RangedInt parameter so the
// UI can edit it live; the cancellation-polling granularity switches
// between per-row (cheap radii) and per-pixel (radius>=30), carried
// over verbatim from the two loop variants in the original.
type MedianBlurProcessor struct {
	Radius *rparam.RangedInt

	mu   sync.RWMutex
	w, h int
}

// NewMedianBlurProcessor constructs a processor with radius default 3,
// UI hint range [0,20], hard-clamped to [0, no upper bound].
func NewMedianBlurProcessor() *MedianBlurProcessor {
	var hardMin int32 = 0
	def, min, max := int32(3), int32(0), int32(20)
	return &MedianBlurProcessor{
		Radius: rparam.NewRangedInt(def, min, max, &hardMin, nil),
	}
}

func (p *MedianBlurProcessor) Begin(w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.w, p.h = w, h
}

func (p *MedianBlurProcessor) dims() (int, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.w, p.h
}

func (p *MedianBlurProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	radius := int(p.Radius.Get())
	w, h := p.dims()

	tile.WithOutput(func(out []rpixel.Pixel) {
		if radius < 30 {
			for row := 0; row < tile.Rect.H; row++ {
				if cancel.Cancelled() {
					return
				}
				for col := 0; col < tile.Rect.W; col++ {
					out[row*tile.Rect.W+col] = p.processPixel(tile, w, h, row, col, radius)
				}
			}
		} else {
			for row := 0; row < tile.Rect.H; row++ {
				for col := 0; col < tile.Rect.W; col++ {
					if cancel.Cancelled() {
						return
					}
					out[row*tile.Rect.W+col] = p.processPixel(tile, w, h, row, col, radius)
				}
			}
		}
	})
}

func (p *MedianBlurProcessor) processPixel(tile *rtile.Tile, w, h, row, col, radius int) rpixel.Pixel {
	if radius < 1 {
		return tile.GetInput(col, row)
	}

	var samplesR, samplesG, samplesB, samplesA []float32

	for r2 := row - radius; r2 < row+radius; r2++ {
		gr := clampInt(r2+tile.Rect.Y, 0, h-1)
		for c2 := col - radius; c2 < col+radius; c2++ {
			gc := clampInt(c2+tile.Rect.X, 0, w-1)
			px := tile.GlobalInput(gc, gr)
			samplesR = append(samplesR, px.R)
			samplesG = append(samplesG, px.G)
			samplesB = append(samplesB, px.B)
			samplesA = append(samplesA, px.A)
		}
	}

	sortFloat32(samplesR)
	sortFloat32(samplesG)
	sortFloat32(samplesB)
	sortFloat32(samplesA)

	mid := len(samplesR) / 2
	return rpixel.Pixel{
		R: samplesR[mid],
		G: samplesG[mid],
		B: samplesB[mid],
		A: samplesA[mid],
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortFloat32(s []float32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// NewMedianBlurFilter constructs the Filter descriptor, exposing Radius
// to a UI as a single NamedParam.
func NewMedianBlurFilter() rprocess.Filter {
	proc := NewMedianBlurProcessor()
	return rprocess.Filter{
		Name:   "Median Blur (naive)",
		Params: []rprocess.NamedParam{{Label: "Radius", Value: proc.Radius}},
		New:    func() rprocess.Processor { return proc },
	}
}
