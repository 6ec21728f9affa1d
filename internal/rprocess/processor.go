// Package rprocess defines the contract pluggable pixel-processing
// routines must satisfy, and the Filter descriptor that pairs a
// processor factory with its UI-editable parameters.
package rprocess

import (
	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// Processor is implemented by pluggable pixel-transform routines.
// Begin is called once per render pass before any tile is processed
// and must be idempotent within a pass. ProcessTile fills the tile's
// output buffer in row-major order; it may read the input plane at any
// coordinate but must not mutate it, and must poll cancel at a coarse
// but bounded interval, returning early when it observes cancellation.
type Processor interface {
	Begin(w, h int)
	ProcessTile(tile *rtile.Tile, cancel *rcancel.Token)
}

// BaseProcessor supplies a no-op Begin for processors that don't need
// per-image precomputation; DummyProcessor, InvertProcessor and
// PanicProcessor embed it.
type BaseProcessor struct{}

func (BaseProcessor) Begin(w, h int) {}

// NamedParam pairs a UI label with one of the rparam primitive types.
type NamedParam struct {
	Label string
	Value any
}

// Filter is a named, parameterized processor factory: the unit a
// filter author registers with a shell and a UI presents to the user.
type Filter struct {
	Name   string
	Params []NamedParam
	New    func() Processor
}
