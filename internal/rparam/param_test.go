package rparam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i32(v int32) *int32     { return &v }

func TestSwitchSwapReturnsPrevious(t *testing.T) {
	s := NewSwitch(false)
	assert.False(t, s.Swap(true))
	assert.True(t, s.Get())
}

func TestSpinIntSwap(t *testing.T) {
	s := NewSpinInt(5)
	assert.Equal(t, int32(5), s.Swap(9))
	assert.Equal(t, int32(9), s.Get())
}

func TestRangedFloatClampS5(t *testing.T) {
	// RangedFloat(default=0.5, min=0, max=1, hard_min=0, hard_max=1)
	r := NewRangedFloat(0.5, 0, 1, f64(0), f64(1))

	r.Set(2.0)
	assert.Equal(t, 1.0, r.Get())

	r.Set(-1.0)
	assert.Equal(t, 0.0, r.Get())

	previous := r.Swap(0.5)
	assert.Equal(t, 1.0, previous)
}

func TestRangedIntClamp(t *testing.T) {
	r := NewRangedInt(3, 0, 20, i32(0), nil)
	r.Set(-5)
	assert.Equal(t, int32(0), r.Get())

	r.Set(100)
	assert.Equal(t, int32(100), r.Get(), "no hard max means no clamp on the upper side")
}

func TestRangedIntNoHardBoundsPassesThrough(t *testing.T) {
	r := NewRangedInt(0, 0, 10, nil, nil)
	r.Set(-500)
	assert.Equal(t, int32(-500), r.Get())
}

func TestRangedFloatInvalidHardBoundsPanics(t *testing.T) {
	require.Panics(t, func() {
		NewRangedFloat(0, 0, 1, f64(1), f64(0))
	})
}

func TestRangedIntInvalidHardBoundsPanics(t *testing.T) {
	require.Panics(t, func() {
		NewRangedInt(0, 0, 1, i32(1), i32(0))
	})
}
