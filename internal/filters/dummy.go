// Package filters provides sample Processor implementations exercising
// the renderer's contract: identity, geometric, noise-driven and
// library-backed spatial filters.
package filters

import (
	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// DummyProcessor copies input straight to output, unchanged. Grounded
// on dummy.rs's DummyRenderProc: no params, no begin hook.
type DummyProcessor struct {
	rprocess.BaseProcessor
}

func (DummyProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				out[row*tile.Rect.W+col] = tile.GetInput(col, row)
			}
		}
	})
}

// DummyFilter is the Filter descriptor wrapping DummyProcessor.
var DummyFilter = rprocess.Filter{
	Name: "None",
	New:  func() rprocess.Processor { return DummyProcessor{} },
}
