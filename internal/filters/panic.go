package filters

import (
	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// PanicProcessor always panics, grounded on panic.rs's debug filter for
// exercising the pool's per-task failure isolation (§7).
type PanicProcessor struct {
	rprocess.BaseProcessor
}

func (PanicProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	panic("filters: debug panic")
}

// PanicFilter is the Filter descriptor wrapping PanicProcessor.
var PanicFilter = rprocess.Filter{
	Name: "PANIC",
	New:  func() rprocess.Processor { return PanicProcessor{} },
}
