package present

import (
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

// ChunkSize bounds how many completed tiles a single presenter tick
// blits, so one tick can never block the UI loop for long even if a
// pass finished thousands of tiles between ticks.
const ChunkSize = 500

// queueTag is a tile's dedup flag: if HandleTile is called for the same
// tile more than once before a tick drains it, the flag keeps the tile
// from being queued for blitting twice. Grounded on
// original_source/src/app.rs's AppRenderCallbackTag, whose sole field
// is this same queued AtomicBool, swapped true on enqueue and false on
// drain.
type queueTag struct {
	queued atomic.Bool
}

func (t *queueTag) Reset() { t.queued.Store(false) }

type taggedTile = rtile.TaggedTile[*queueTag]

// PresenterBridge implements RenderCallback by coalescing worker tile
// completions into bounded-size preview buffer writes driven by a
// single-threaded tick. It is the only place in this package that
// workers and the UI loop actually touch shared state concurrently;
// everything it exposes beyond RenderCallback is meant to be called
// from the UI side only.
type PresenterBridge struct {
	// RequestTick is called (possibly from a worker goroutine) whenever
	// there may be new work for the UI loop's next Tick. Implementations
	// typically do a non-blocking send on a channel the loop selects on.
	RequestTick func()

	mu         sync.Mutex
	queue      []*taggedTile
	tags       map[*rtile.Tile]*taggedTile
	inProgress map[int]*rtile.Tile

	running atomic.Bool
	clear   atomic.Bool
	done    atomic.Int64
	total   atomic.Int64
	saveOK  atomic.Bool
}

// NewPresenterBridge constructs a bridge. requestTick may be nil, in
// which case the UI side is expected to poll Tick on its own schedule.
func NewPresenterBridge(requestTick func()) *PresenterBridge {
	if requestTick == nil {
		requestTick = func() {}
	}
	return &PresenterBridge{
		RequestTick: requestTick,
		tags:        make(map[*rtile.Tile]*taggedTile),
		inProgress:  make(map[int]*rtile.Tile),
	}
}

func (b *PresenterBridge) BeforeBegin(ntiles int) {
	b.total.Store(int64(ntiles))
	b.done.Store(0)
	b.saveOK.Store(false)
	b.clear.Store(true)

	b.mu.Lock()
	b.inProgress = make(map[int]*rtile.Tile)
	b.tags = make(map[*rtile.Tile]*taggedTile)
	b.mu.Unlock()

	b.RequestTick()
}

func (b *PresenterBridge) BeforeTile(tile *rtile.Tile, workerID int) {
	b.mu.Lock()
	b.inProgress[workerID] = tile
	b.mu.Unlock()

	b.RequestTick()
}

// tagFor returns the tile's tag, creating one (reset to its default
// state per the Tagger contract) the first time this tile is seen.
func (b *PresenterBridge) tagFor(tile *rtile.Tile) *taggedTile {
	tt, ok := b.tags[tile]
	if !ok {
		tag := &queueTag{}
		tag.Reset()
		tt = &taggedTile{Tile: tile, Tag: tag}
		b.tags[tile] = tt
	}
	return tt
}

func (b *PresenterBridge) HandleTile(tile *rtile.Tile, workerID int) {
	b.done.Add(1)

	b.mu.Lock()
	tt := b.tagFor(tile)
	delete(b.inProgress, workerID)
	if !tt.Tag.queued.Swap(true) {
		b.queue = append(b.queue, tt)
	}
	b.mu.Unlock()

	b.RequestTick()
}

func (b *PresenterBridge) Abort() {
	b.mu.Lock()
	b.inProgress = make(map[int]*rtile.Tile)
	if b.running.Load() {
		for _, tt := range b.queue {
			tt.Tag.Reset()
		}
		b.queue = nil
	}
	b.mu.Unlock()
}

func (b *PresenterBridge) AfterEnd() {}

// Snapshot reports the bridge's current progress for a UI to render as
// text, independent of whether a Tick has run yet.
type Snapshot struct {
	Done, Total int64
	QueueLen    int
	SaveEnabled bool
}

// Label renders the "done / total" (or "done / total (blitting qlen)")
// text described in §4.H.
func (s Snapshot) Label() string {
	if s.QueueLen > ChunkSize {
		return fmt.Sprintf("%d / %d (blitting %d)", s.Done, s.Total, s.QueueLen)
	}
	return fmt.Sprintf("%d / %d", s.Done, s.Total)
}

// Fraction returns done/max(1,total).
func (s Snapshot) Fraction() float64 {
	total := s.Total
	if total < 1 {
		total = 1
	}
	return float64(s.Done) / float64(total)
}

func (b *PresenterBridge) snapshot(queueLen int) Snapshot {
	return Snapshot{
		Done:        b.done.Load(),
		Total:       b.total.Load(),
		QueueLen:    queueLen,
		SaveEnabled: b.saveOK.Load(),
	}
}

// Tick runs the presenter loop over the preview buffer: it is meant to
// be invoked from the UI's single cooperative loop (or, for a headless
// driver with no event loop of its own, polled directly). It returns
// the progress snapshot as of the last round and whether any work was
// performed.
//
// Tick is a reentry-guarded debouncer: if a tick is already in flight
// (on another goroutine, or this call re-entering via RequestTick) it
// returns immediately. Internally it keeps draining rounds — "if any
// work was done this tick, schedule another tick" — until a round does
// nothing, then clears running so a later call (or a worker's
// RequestTick) can start a fresh one.
func (b *PresenterBridge) Tick(preview *PreviewBuffer) (Snapshot, bool) {
	if !b.running.CompareAndSwap(false, true) {
		return b.snapshot(b.queueLen()), false
	}
	defer b.running.Store(false)

	anyWork := false
	for b.runTick(preview) {
		anyWork = true
	}

	return b.snapshot(b.queueLen()), anyWork
}

func (b *PresenterBridge) queueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *PresenterBridge) runTick(preview *PreviewBuffer) bool {
	didWork := false

	if b.clear.CompareAndSwap(true, false) {
		preview.fill(NeutralColor)
		didWork = true
	}

	b.mu.Lock()
	inProgress := make([]*rtile.Tile, 0, len(b.inProgress))
	for _, t := range b.inProgress {
		inProgress = append(inProgress, t)
	}
	b.mu.Unlock()

	for _, t := range inProgress {
		preview.drawWorkingMarker(t.Rect.X, t.Rect.Y, t.Rect.W, t.Rect.H)
	}

	drained := b.drainChunk()
	for _, tt := range drained {
		if tt.Tag.queued.Swap(false) {
			blitTile(preview, tt.Tile)
		}
	}
	if len(drained) > 0 {
		didWork = true
	}

	if b.done.Load() >= max64(1, b.total.Load()) {
		b.saveOK.Store(true)
	}

	return didWork
}

func (b *PresenterBridge) drainChunk() []*taggedTile {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.queue)
	if n > ChunkSize {
		n = ChunkSize
	}
	drained := b.queue[:n]
	b.queue = b.queue[n:]
	return drained
}

func blitTile(preview *PreviewBuffer, t *rtile.Tile) {
	out := t.Output()
	preview.blit(t.Rect.X, t.Rect.Y, t.Rect.W, t.Rect.H, func(c, r int) color.NRGBA {
		px := out[r*t.Rect.W+c]
		rr, gg, bb, aa := px.ToRGBA8()
		return color.NRGBA{R: rr, G: gg, B: bb, A: aa}
	})
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
