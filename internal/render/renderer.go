// Package render implements the renderer orchestrator: it owns the
// current input plane, tile list, active processor and callback, and
// the one-shot worker pool driving a render pass.
package render

import (
	"image"
	"image/color"
	"log/slog"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/tiledraw/internal/present"
	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
	"github.com/MeKo-Tech/tiledraw/internal/rworker"
)

// workerCtx is the per-worker context threaded through rworker.Pool: a
// handle to the processor, callback and cancel token shared by every
// worker of a pass, per §9's "shared handles, not a renderer reference".
type workerCtx struct {
	proc     rprocess.Processor
	callback present.RenderCallback
	cancel   *rcancel.Token
}

// Renderer orchestrates a tiled render pass: read_input builds tiles
// against a shared input plane; rerender/set_proc restart the pass;
// get_output joins the active pass and assembles the result image.
//
// Orchestration methods are serialized by mu, matching §4.F's "at most
// one pass is active" invariant and the single-threaded UI-affinity
// discipline of §5/§9 (the caller is expected to invoke these from one
// goroutine, but the mutex makes misuse safe rather than racy).
type Renderer struct {
	tileW, tileH int
	numWorkers   int
	logger       *slog.Logger

	mu       sync.Mutex
	plane    *rpixel.Plane
	tiles    []*rtile.Tile
	proc     rprocess.Processor
	callback present.RenderCallback
	cancel   *rcancel.Token
	pool     *rworker.Pool[workerCtx, *rtile.Tile]
	hasImage bool
}

// New constructs an idle renderer. numWorkers<=0 defaults to
// runtime.NumCPU(), matching app.rs's num_cpus::get() fallback.
func New(tileW, tileH, numWorkers int, proc rprocess.Processor, cb present.RenderCallback, logger *slog.Logger) *Renderer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		tileW:      tileW,
		tileH:      tileH,
		numWorkers: numWorkers,
		proc:       proc,
		callback:   cb,
		cancel:     &rcancel.Token{},
		logger:     logger,
	}
}

// ReadInput loads a new image, rebuilding the tile list and input
// plane, and begins a new pass (§4.F steps 1-7).
func (r *Renderer) ReadInput(img image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.abortRenderLocked()

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	r.plane = rpixel.NewPlaneFromImage(img)

	rects := rtile.Partition(w, h, r.tileW, r.tileH)
	rects = rtile.Order(rects, w, h)

	tiles := make([]*rtile.Tile, len(rects))
	for i, rect := range rects {
		tiles[i] = rtile.New(rect, r.plane)
	}
	r.tiles = tiles
	r.hasImage = true

	r.beginRenderLocked()
	return nil
}

// SetProc swaps the active processor and restarts the pass.
func (r *Renderer) SetProc(proc rprocess.Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.abortRenderLocked()
	r.proc = proc
	if r.hasImage {
		r.beginRenderLocked()
	}
}

// Rerender aborts the current pass and starts a fresh one over the
// existing tiles and input plane.
func (r *Renderer) Rerender() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.abortRenderLocked()
	if r.hasImage {
		r.beginRenderLocked()
	}
}

// GetOutput joins the current pass to completion and assembles an
// 8-bit RGBA image from the tile outputs. It returns (nil, false) if no
// image has been loaded yet.
func (r *Renderer) GetOutput() (image.Image, bool) {
	r.mu.Lock()
	pool := r.pool
	plane := r.plane
	tiles := r.tiles
	hasImage := r.hasImage
	r.mu.Unlock()

	if !hasImage {
		return nil, false
	}
	if pool != nil {
		pool.Join()
	}

	out := image.NewNRGBA(image.Rect(0, 0, plane.W, plane.H))
	for _, t := range tiles {
		pix := t.Output()
		for row := 0; row < t.Rect.H; row++ {
			for col := 0; col < t.Rect.W; col++ {
				p := pix[row*t.Rect.W+col]
				cr, cg, cb, ca := p.ToRGBA8()
				out.SetNRGBA(t.Rect.X+col, t.Rect.Y+row, color.NRGBA{R: cr, G: cg, B: cb, A: ca})
			}
		}
	}
	return out, true
}

// Close aborts any active pass. Go has no destructor, so callers that
// own a Renderer must defer Close to satisfy §4.F's "destructor aborts
// any active pass" invariant.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abortRenderLocked()
}

// beginRenderLocked implements §4.F's begin_render protocol. Callers
// must hold r.mu.
func (r *Renderer) beginRenderLocked() {
	r.callback.BeforeBegin(len(r.tiles))
	w, h := r.plane.W, r.plane.H
	r.proc.Begin(w, h)

	contexts := make([]workerCtx, r.numWorkers)
	for i := range contexts {
		contexts[i] = workerCtx{proc: r.proc, callback: r.callback, cancel: r.cancel}
	}

	proc, callback, cancel := r.proc, r.callback, r.cancel

	task := func(workerID int, ctx *workerCtx, tile *rtile.Tile) {
		callback.BeforeTile(tile, workerID)
		proc.ProcessTile(tile, cancel)
		if !cancel.Cancelled() {
			callback.HandleTile(tile, workerID)
		}
	}
	finalize := func() {
		if !cancel.Cancelled() {
			callback.AfterEnd()
		}
	}

	r.logger.Debug("render pass starting", "tiles", len(r.tiles), "workers", r.numWorkers)
	r.pool = rworker.New(r.tiles, contexts, task, finalize)
}

// abortRenderLocked implements §4.F's abort_render protocol. Callers
// must hold r.mu. It is a no-op if no pass is active.
func (r *Renderer) abortRenderLocked() {
	if r.pool == nil {
		return
	}

	r.logger.Debug("render pass aborting")
	r.cancel.Set()
	r.callback.Abort()
	r.pool.Abort()
	r.pool = nil
	r.cancel.Reset()
}
