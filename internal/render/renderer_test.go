package render

import (
	"image"
	"image/color"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tiledraw/internal/present"
	"github.com/MeKo-Tech/tiledraw/internal/rcancel"
	"github.com/MeKo-Tech/tiledraw/internal/rpixel"
	"github.com/MeKo-Tech/tiledraw/internal/rtile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// countingCallback records every lifecycle call for Testable Property 6.
type countingCallback struct {
	present.NopCallback

	mu          sync.Mutex
	handleCount int
	afterEndN   int
	aborted     bool
}

func (c *countingCallback) HandleTile(tile *rtile.Tile, workerID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handleCount++
}

func (c *countingCallback) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborted = true
}

func (c *countingCallback) AfterEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterEndN++
}

func (c *countingCallback) snapshot() (handled, afterEnd int, aborted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handleCount, c.afterEndN, c.aborted
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// identityCopyProcessor copies each tile-local input pixel straight to
// output, used to verify the identity round-trip (S1, property 3).
type identityCopyProcessor struct{}

func (identityCopyProcessor) Begin(w, h int) {}

func (identityCopyProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				out[row*tile.Rect.W+col] = tile.GetInput(col, row)
			}
		}
	})
}

// TestS1IdentityRoundTrip is scenario S1: a 128x128 solid image through
// an identity processor round-trips unchanged.
func TestS1IdentityRoundTrip(t *testing.T) {
	want := color.NRGBA{R: 10, G: 20, B: 30, A: 40}
	img := solidImage(128, 128, want)

	cb := &countingCallback{}
	r := New(64, 64, 4, identityCopyProcessor{}, cb, discardLogger())
	require.NoError(t, r.ReadInput(img))

	out, ok := r.GetOutput()
	require.True(t, ok)

	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			got := color.NRGBAModel.Convert(out.At(x, y)).(color.NRGBA)
			require.Equal(t, want, got, "pixel (%d,%d)", x, y)
		}
	}

	handled, afterEnd, aborted := cb.snapshot()
	assert.Equal(t, 4, handled) // 2x2 tiles
	assert.Equal(t, 1, afterEnd)
	assert.False(t, aborted)
}

// TestS4FlipBothAxes is scenario S4: a flip processor reading
// global_input(W-1-c, H-1-r) produces a point-reflected image.
func TestS4FlipBothAxes(t *testing.T) {
	const w, h = 4, 2
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(n), G: uint8(n * 2), B: uint8(n * 3), A: 255})
			n++
		}
	}

	cb := present.NopCallback{}
	r := New(w, h, 2, flipProcessor{}, cb, discardLogger())
	require.NoError(t, r.ReadInput(img))

	out, ok := r.GetOutput()
	require.True(t, ok)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := color.NRGBAModel.Convert(out.At(x, y)).(color.NRGBA)
			want := color.NRGBAModel.Convert(img.At(w-1-x, h-1-y)).(color.NRGBA)
			assert.Equal(t, want, got, "pixel (%d,%d)", x, y)
		}
	}
}

type flipProcessor struct{}

func (flipProcessor) Begin(w, h int) {}

func (flipProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	w, h := tile.PlaneDims()
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				gc := w - 1 - (tile.Rect.X + col)
				gr := h - 1 - (tile.Rect.Y + row)
				out[row*tile.Rect.W+col] = tile.GlobalInput(gc, gr)
			}
		}
	})
}

// TestS3CancelMidPass is scenario S3: rerendering during a slow pass
// must terminate in bounded time, and the final pass must complete and
// produce output. Goroutine leaks are checked by
// TestCancelDoesNotLeakGoroutines.
func TestS3CancelMidPass(t *testing.T) {
	img := solidImage(256, 256, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	var tileSleeps atomic.Int64
	proc := &sleepyProcessor{perTile: 20 * time.Millisecond, counter: &tileSleeps}

	cb := present.NopCallback{}
	r := New(64, 64, 4, proc, cb, discardLogger())

	require.NoError(t, r.ReadInput(img))

	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		for i := 0; i < 5; i++ {
			r.Rerender()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rerender storm did not settle in time")
	}

	out, ok := r.GetOutput()
	require.True(t, ok)
	require.NotNil(t, out)

	r.Close()
}

type sleepyProcessor struct {
	perTile time.Duration
	counter *atomic.Int64
}

func (p *sleepyProcessor) Begin(w, h int) {}

func (p *sleepyProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	p.counter.Add(1)
	time.Sleep(p.perTile)
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				out[row*tile.Rect.W+col] = tile.GetInput(col, row)
			}
		}
	})
}

// TestGetOutputNoImageLoaded covers the Option-style "no image yet"
// contract of get_output.
func TestGetOutputNoImageLoaded(t *testing.T) {
	r := New(64, 64, 2, identityCopyProcessor{}, present.NopCallback{}, discardLogger())
	out, ok := r.GetOutput()
	assert.False(t, ok)
	assert.Nil(t, out)
}

// TestSetProcRerendersWithNewProcessor checks set_proc swaps the
// processor and produces output reflecting the new one.
func TestSetProcRerendersWithNewProcessor(t *testing.T) {
	img := solidImage(64, 64, color.NRGBA{R: 5, G: 5, B: 5, A: 255})

	r := New(32, 32, 2, identityCopyProcessor{}, present.NopCallback{}, discardLogger())
	require.NoError(t, r.ReadInput(img))

	r.SetProc(invertingProcessor{})
	out, ok := r.GetOutput()
	require.True(t, ok)

	got := color.NRGBAModel.Convert(out.At(0, 0)).(color.NRGBA)
	assert.NotEqual(t, uint8(5), got.R)
}

// TestAbortMidPassSkipsAfterEndAndCapsHandled is Testable Property 6 at
// the render-package level: an aborted pass calls HandleTile strictly
// fewer times than ntiles and never calls AfterEnd.
func TestAbortMidPassSkipsAfterEndAndCapsHandled(t *testing.T) {
	img := solidImage(256, 256, color.NRGBA{R: 9, G: 9, B: 9, A: 255})

	var tileSleeps atomic.Int64
	proc := &sleepyProcessor{perTile: 30 * time.Millisecond, counter: &tileSleeps}

	cb := &countingCallback{}
	r := New(64, 64, 2, proc, cb, discardLogger())
	require.NoError(t, r.ReadInput(img)) // 16 tiles total, 2 workers

	time.Sleep(15 * time.Millisecond)
	r.Rerender() // aborts the in-flight pass and starts a fresh one

	r.Close() // abort the restarted pass too, before it can finish

	handled, afterEnd, aborted := cb.snapshot()
	assert.Less(t, handled, 16)
	assert.Equal(t, 0, afterEnd)
	assert.True(t, aborted)
}

// TestCancelDoesNotLeakGoroutines is Testable Property 4: repeated
// cancel/restart cycles must not accumulate worker goroutines once the
// renderer is closed.
func TestCancelDoesNotLeakGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	img := solidImage(128, 128, color.NRGBA{R: 1, G: 1, B: 1, A: 255})
	var tileSleeps atomic.Int64
	proc := &sleepyProcessor{perTile: 5 * time.Millisecond, counter: &tileSleeps}

	r := New(32, 32, 4, proc, present.NopCallback{}, discardLogger())
	require.NoError(t, r.ReadInput(img))

	for i := 0; i < 10; i++ {
		r.Rerender()
	}
	r.Close()

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

type invertingProcessor struct{}

func (invertingProcessor) Begin(w, h int) {}

func (invertingProcessor) ProcessTile(tile *rtile.Tile, cancel *rcancel.Token) {
	tile.WithOutput(func(out []rpixel.Pixel) {
		for row := 0; row < tile.Rect.H; row++ {
			for col := 0; col < tile.Rect.W; col++ {
				px := tile.GetInput(col, row)
				out[row*tile.Rect.W+col] = rpixel.Pixel{R: 1 - px.R, G: 1 - px.G, B: 1 - px.B, A: px.A}
			}
		}
	})
}
