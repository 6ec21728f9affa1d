package filters

import (
	"sync"

	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// FlipProcessor point-reflects the image: output(c,r) = input(W-1-c,H-1-r).
// Grounded on flip.rs, which stashes (w,h) on begin under an RWMutex
// rather than deriving it per-tile from PlaneDims, since the original
// engine's Tile type doesn't expose plane dimensions directly.
type FlipProcessor struct {
	mu   sync.RWMutex
	w, h int
}

func (p *FlipProcessor) Begin(w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.w, p.h = w, h
}

func (p *FlipProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	p.mu.RLock()
	xAxis, yAxis := p.w-1, p.h-1
	p.mu.RUnlock()

	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				gc := xAxis - (tile.Rect.X + col)
				gr := yAxis - (tile.Rect.Y + row)
				out[row*tile.Rect.W+col] = tile.GlobalInput(gc, gr)
			}
		}
	})
}

// NewFlipFilter constructs the Filter descriptor for FlipProcessor.
func NewFlipFilter() rprocess.Filter {
	return rprocess.Filter{
		Name: "Flip",
		New:  func() rprocess.Processor { return &FlipProcessor{} },
	}
}
