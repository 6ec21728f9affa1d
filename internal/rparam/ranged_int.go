package rparam

import "sync"

// RangedInt is a UI-editable integer with informational {Min,Max} hints
// and optional hard clamps enforced on every Set. Readers see only the
// coerced value; the raw (uncoerced) value the UI last requested is kept
// so loosening a hard bound later doesn't lose user intent.
type RangedInt struct {
	Min, Max int32 // UI hints only, not enforced

	hardMin, hardMax *int32

	mu       sync.RWMutex
	internal int32
	coerced  int32
}

// NewRangedInt constructs a RangedInt. hardMin/hardMax may be nil for
// "no clamp" on that side. It panics if both are set and hardMax <
// hardMin — a programming error (§3 invariant).
func NewRangedInt(def, min, max int32, hardMin, hardMax *int32) *RangedInt {
	if hardMin != nil && hardMax != nil && *hardMax < *hardMin {
		panic("rparam: RangedInt hard_max < hard_min")
	}

	r := &RangedInt{
		Min: min, Max: max,
		hardMin: hardMin, hardMax: hardMax,
	}
	r.internal = def
	r.coerced = r.coerce(def)
	return r
}

func (r *RangedInt) coerce(v int32) int32 {
	if r.hardMin != nil && v < *r.hardMin {
		return *r.hardMin
	}
	if r.hardMax != nil && v > *r.hardMax {
		return *r.hardMax
	}
	return v
}

// Get returns the coerced value.
func (r *RangedInt) Get() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coerced
}

// Set stores v and recomputes the coerced value.
func (r *RangedInt) Set(v int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.internal = v
	r.coerced = r.coerce(v)
}

// Swap stores v and returns the previous coerced value.
func (r *RangedInt) Swap(v int32) (previous int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous = r.coerced
	r.internal = v
	r.coerced = r.coerce(v)
	return previous
}
