// Package rparam implements threadsafe, live-editable filter
// parameters shared between a UI thread and many worker goroutines.
package rparam

import "sync/atomic"

// Switch is an atomic boolean parameter.
type Switch struct {
	v atomic.Bool
}

// NewSwitch returns a Switch with the given default value.
func NewSwitch(def bool) *Switch {
	s := &Switch{}
	s.v.Store(def)
	return s
}

func (s *Switch) Get() bool { return s.v.Load() }
func (s *Switch) Set(v bool) { s.v.Store(v) }

// Swap stores v and returns the previous value, letting the UI detect
// no-op changes and suppress a redundant rerender.
func (s *Switch) Swap(v bool) (previous bool) {
	return s.v.Swap(v)
}

// SpinInt is an atomic 32-bit signed integer parameter.
type SpinInt struct {
	v atomic.Int32
}

// NewSpinInt returns a SpinInt with the given default value.
func NewSpinInt(def int32) *SpinInt {
	s := &SpinInt{}
	s.v.Store(def)
	return s
}

func (s *SpinInt) Get() int32 { return s.v.Load() }
func (s *SpinInt) Set(v int32) { s.v.Store(v) }

func (s *SpinInt) Swap(v int32) (previous int32) {
	return s.v.Swap(v)
}
