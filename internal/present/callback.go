// Package present streams per-tile completion events from worker
// goroutines to a single-threaded presenter that blits finished tiles
// into a shared preview buffer without blocking the workers.
package present

import "github.com/MeKo-Tech/tiledraw/internal/rtile"

// RenderCallback is implemented by the presenter. HandleTile must be
// safe to call concurrently from any number of worker goroutines.
// BeforeTile and AfterEnd are optional; NopCallback supplies no-op
// defaults a presenter can embed and override selectively.
type RenderCallback interface {
	BeforeBegin(ntiles int)
	BeforeTile(tile *rtile.Tile, workerID int)
	HandleTile(tile *rtile.Tile, workerID int)
	Abort()
	AfterEnd()
}

// NopCallback implements RenderCallback with no-ops, for embedding by
// callbacks that only care about a subset of the lifecycle (e.g. tests
// that only assert on HandleTile counts).
type NopCallback struct{}

func (NopCallback) BeforeBegin(ntiles int)                  {}
func (NopCallback) BeforeTile(tile *rtile.Tile, workerID int) {}
func (NopCallback) HandleTile(tile *rtile.Tile, workerID int) {}
func (NopCallback) Abort()                                  {}
func (NopCallback) AfterEnd()                               {}
