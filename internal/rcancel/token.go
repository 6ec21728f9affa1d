// Package rcancel provides the cooperative cancellation signal shared by
// a renderer and the workers of its current pass.
package rcancel

import "sync/atomic"

// Token is a shared flag workers consult cooperatively, at per-row or
// per-pixel granularity depending on how costly the processor is.
type Token struct {
	flag atomic.Bool
}

// Set requests abort of the current pass.
func (t *Token) Set() {
	t.flag.Store(true)
}

// Cancelled reports whether abort has been requested.
func (t *Token) Cancelled() bool {
	return t.flag.Load()
}

// Reset clears the flag after a pass has been fully stopped, so the
// token can be reused for the next pass.
func (t *Token) Reset() {
	t.flag.Store(false)
}
