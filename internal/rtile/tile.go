// Package rtile models the renderer's unit of work: an immutable
// rectangular region of an input plane with a mutable output buffer.
package rtile

import (
	"sort"
	"sync"

	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
)

// Rect is a tile's geometry: 0<=X, 0<=Y, X+W<=plane width, Y+H<=plane height.
type Rect struct {
	X, Y, W, H int
}

// Cx and Cy return the rect's center, used for center-out ordering.
func (r Rect) Cx() int { return r.X + r.W/2 }
func (r Rect) Cy() int { return r.Y + r.H/2 }

// Tagger is implemented by per-tile tags a presenter attaches to a Tile
// for its own bookkeeping (e.g. a "queued" dedup flag). Reset restores
// the tag to its default-constructed state; a presenter calls it when
// it mints a tag for a tile it hasn't seen before, so every tile starts
// out with a clean tag.
type Tagger interface {
	Reset()
}

// Tile is an immutable geometric descriptor plus a reference to the
// shared input plane and a mutex-guarded output buffer. Tiles are
// created fresh on each Renderer.ReadInput call and never outlive the
// plane they reference.
type Tile struct {
	Rect  Rect
	plane *rpixel.Plane

	mu  sync.Mutex
	out []rpixel.Pixel
}

// New allocates a tile with a zero-initialized output buffer.
func New(rect Rect, plane *rpixel.Plane) *Tile {
	return &Tile{
		Rect:  rect,
		plane: plane,
		out:   make([]rpixel.Pixel, rect.W*rect.H),
	}
}

// GetInput returns the input pixel at tile-local (c,r); it panics if
// c>=w or r>=h (§4.C, §7 programming error).
func (t *Tile) GetInput(c, r int) rpixel.Pixel {
	if c < 0 || c >= t.Rect.W || r < 0 || r >= t.Rect.H {
		panic("rtile: tile-local coordinate out of bounds")
	}
	return t.plane.At(t.Rect.X+c, t.Rect.Y+r)
}

// GlobalInput returns the input pixel at plane-global (C,R); it panics
// if C>=W or R>=H.
func (t *Tile) GlobalInput(c, r int) rpixel.Pixel {
	return t.plane.At(c, r)
}

// PlaneDims returns the dimensions of the plane this tile was cut from.
func (t *Tile) PlaneDims() (w, h int) {
	return t.plane.W, t.plane.H
}

// WithOutput grants fn exclusive access to the output buffer, serialized
// by a per-tile mutex so at most one worker writes at a time.
func (t *Tile) WithOutput(fn func(out []rpixel.Pixel)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.out)
}

// Output returns a copy of the current output buffer contents, taken
// under the tile's lock. Used by the assembler in render.Renderer.GetOutput
// once the pass has fully drained, so no contention is expected there.
func (t *Tile) Output() []rpixel.Pixel {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]rpixel.Pixel, len(t.out))
	copy(out, t.out)
	return out
}

// Cx/Cy expose the tile's center for ordering and presenter UI markers.
func (t *Tile) Cx() int { return t.Rect.Cx() }
func (t *Tile) Cy() int { return t.Rect.Cy() }

// TaggedTile pairs a Tile with a presenter-defined tag, used to
// coordinate dedup/queueing decisions outside the engine's core.
type TaggedTile[T Tagger] struct {
	Tile *Tile
	Tag  T
}

// Partition computes the tile geometries covering a w×h plane with
// tiles of size tw×th, clipping edge tiles to the plane bounds.
// Testable property 1: the result is a partition of [0,w)×[0,h) with
// no overlap and no gap.
func Partition(w, h, tw, th int) []Rect {
	if w <= 0 || h <= 0 || tw <= 0 || th <= 0 {
		return nil
	}

	tilesX := ceilDiv(w, tw)
	tilesY := ceilDiv(h, th)

	rects := make([]Rect, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y := ty * th
		rh := min(th, h-y)
		for tx := 0; tx < tilesX; tx++ {
			x := tx * tw
			rw := min(tw, w-x)
			rects = append(rects, Rect{X: x, Y: y, W: rw, H: rh})
		}
	}
	return rects
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Order sorts rects center-out: ascending by Euclidean distance from
// the rect center to the plane center (w/2, h/2), ties broken by
// (y asc, x asc). The input slice is sorted in place and returned.
func Order(rects []Rect, w, h int) []Rect {
	cx, cy := float64(w)/2, float64(h)/2

	dist := func(r Rect) float64 {
		dx := float64(r.Cx()) - cx
		dy := float64(r.Cy()) - cy
		return dx*dx + dy*dy // squared distance is sufficient for ordering
	}

	sort.SliceStable(rects, func(i, j int) bool {
		di, dj := dist(rects[i]), dist(rects[j])
		if di != dj {
			return di < dj
		}
		if rects[i].Y != rects[j].Y {
			return rects[i].Y < rects[j].Y
		}
		return rects[i].X < rects[j].X
	})
	return rects
}
