package filters

import (
	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// InvertProcessor negates each color channel, passing alpha through.
// Grounded on invert.rs.
type InvertProcessor struct {
	rprocess.BaseProcessor
}

func (InvertProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				px := tile.GetInput(col, row)
				out[row*tile.Rect.W+col] = rpixel.Pixel{
					R: 1 - px.R,
					G: 1 - px.G,
					B: 1 - px.B,
					A: px.A,
				}
			}
		}
	})
}

// InvertFilter is the Filter descriptor wrapping InvertProcessor.
var InvertFilter = rprocess.Filter{
	Name: "Invert",
	New:  func() rprocess.Processor { return InvertProcessor{} },
}
