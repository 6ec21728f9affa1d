package filters

import (
	"github.com/aquilax/go-perlin"

	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// GlitchProcessor is the "broken quicksort" glitch effect referenced in
// the design notes: pixels within a row are split into runs whose
// length is driven by Perlin noise, and each run is partially sorted by
// brightness with a single quicksort partition pass that never recurses,
// so each run ends up only roughly ordered, producing streaky, smeared
// artifacts. Exact output is unspecified
// (§9); the contract is only that it doesn't panic, respects
// cancellation, and fills every output slot.
type GlitchProcessor struct {
	noise *perlin.Perlin
}

// NewGlitchProcessor seeds the noise field once; callers share one
// instance across a render pass the way a Filter factory would.
func NewGlitchProcessor(seed int64) *GlitchProcessor {
	return &GlitchProcessor{noise: perlin.NewPerlin(2.0, 2.0, 3, seed)}
}

func (p *GlitchProcessor) Begin(w, h int) {}

func (p *GlitchProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			if row%8 == 0 && cancel.Cancelled() {
				return
			}

			r0 := row * tile.Rect.W
			for col := 0; col < tile.Rect.W; col++ {
				out[r0+col] = tile.GetInput(col, row)
			}

			runLen := p.runLength(tile.Rect.Y+row, tile.Rect.X)
			for start := 0; start < tile.Rect.W; start += runLen {
				end := start + runLen
				if end > tile.Rect.W {
					end = tile.Rect.W
				}
				brokenQuicksort(out[r0+start : r0+end])
			}
		}
	})
}

func (p *GlitchProcessor) runLength(globalRow, globalCol int) int {
	n := p.noise.Noise2D(float64(globalRow)/17.0, float64(globalCol)/17.0)
	runLen := int((n+1)/2*24) + 4
	return runLen
}

// brokenQuicksort sorts a run of pixels by luma, but deliberately picks
// the first element as the pivot and never recurses into the
// partitions it produces — a single partition pass rather than a
// real sort, so the run ends up only approximately ordered.
func brokenQuicksort(run []rpixel.Pixel) {
	if len(run) < 2 {
		return
	}
	pivot := luma(run[0])
	i := 0
	for j := 1; j < len(run); j++ {
		if luma(run[j]) < pivot {
			i++
			run[i], run[j] = run[j], run[i]
		}
	}
	run[0], run[i] = run[i], run[0]
}

func luma(p rpixel.Pixel) float32 {
	return 0.299*p.R + 0.587*p.G + 0.114*p.B
}

// NewGlitchFilter constructs the Filter descriptor. seed is exposed as
// a constructor argument rather than a parameter since the original
// glitch filter takes none (glitch.rs).
func NewGlitchFilter(seed int64) rprocess.Filter {
	return rprocess.Filter{
		Name: "Glitch",
		New:  func() rprocess.Processor { return NewGlitchProcessor(seed) },
	}
}
