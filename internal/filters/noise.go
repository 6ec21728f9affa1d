package filters

import (
	"github.com/aquilax/go-perlin"

	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rparam"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// NoiseOverlayProcessor tints each pixel with Perlin noise, adapted
// from mask.GeneratePerlinNoiseWithOffset/ApplyNoiseToMask's grayscale
// mask math (mask/processor.go) into a full-color overlay: Seed
// reseeds the noise field (a SpinInt, since it only makes sense as a
// whole number the UI spins through), Strength blends the perturbation
// into each channel (a RangedFloat in [0,1]).
type NoiseOverlayProcessor struct {
	Seed     *rparam.SpinInt
	Strength *rparam.RangedFloat

	noise     *perlin.Perlin
	noiseSeed int64
}

// NewNoiseOverlayProcessor builds a processor seeded at 0 with
// strength default 0.3, hard-clamped to [0,1].
func NewNoiseOverlayProcessor() *NoiseOverlayProcessor {
	var hardMin, hardMax float64 = 0, 1
	return &NoiseOverlayProcessor{
		Seed:     rparam.NewSpinInt(0),
		Strength: rparam.NewRangedFloat(0.3, 0, 1, &hardMin, &hardMax),
	}
}

func (p *NoiseOverlayProcessor) Begin(w, h int) {
	seed := int64(p.Seed.Get())
	if p.noise == nil || seed != p.noiseSeed {
		p.noise = perlin.NewPerlin(2.0, 2.0, 3, seed)
		p.noiseSeed = seed
	}
}

func (p *NoiseOverlayProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	strength := float32(p.Strength.Get())

	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			if row%16 == 0 && cancel.Cancelled() {
				return
			}
			gr := tile.Rect.Y + row
			for col := 0; col < tile.Rect.W; col++ {
				gc := tile.Rect.X + col
				px := tile.GetInput(col, row)

				n := p.noise.Noise2D(float64(gc)/32.0, float64(gr)/32.0)
				delta := float32(n) * strength

				out[row*tile.Rect.W+col] = rpixel.Pixel{
					R: clamp01(px.R + delta),
					G: clamp01(px.G + delta),
					B: clamp01(px.B + delta),
					A: px.A,
				}
			}
		}
	})
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NewNoiseOverlayFilter constructs the Filter descriptor.
func NewNoiseOverlayFilter() rprocess.Filter {
	proc := NewNoiseOverlayProcessor()
	return rprocess.Filter{
		Name: "Noise Overlay",
		Params: []rprocess.NamedParam{
			{Label: "Seed", Value: proc.Seed},
			{Label: "Strength", Value: proc.Strength},
		},
		New: func() rprocess.Processor { return proc },
	}
}
