package rparam

import "sync"

// RangedFloat mirrors RangedInt for float64-valued parameters.
type RangedFloat struct {
	Min, Max float64 // UI hints only, not enforced

	hardMin, hardMax *float64

	mu       sync.RWMutex
	internal float64
	coerced  float64
}

// NewRangedFloat constructs a RangedFloat. It panics if both hard bounds
// are set and hardMax < hardMin.
func NewRangedFloat(def, min, max float64, hardMin, hardMax *float64) *RangedFloat {
	if hardMin != nil && hardMax != nil && *hardMax < *hardMin {
		panic("rparam: RangedFloat hard_max < hard_min")
	}

	r := &RangedFloat{
		Min: min, Max: max,
		hardMin: hardMin, hardMax: hardMax,
	}
	r.internal = def
	r.coerced = r.coerce(def)
	return r
}

func (r *RangedFloat) coerce(v float64) float64 {
	if r.hardMin != nil && v < *r.hardMin {
		return *r.hardMin
	}
	if r.hardMax != nil && v > *r.hardMax {
		return *r.hardMax
	}
	return v
}

func (r *RangedFloat) Get() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coerced
}

func (r *RangedFloat) Set(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.internal = v
	r.coerced = r.coerce(v)
}

func (r *RangedFloat) Swap(v float64) (previous float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous = r.coerced
	r.internal = v
	r.coerced = r.coerce(v)
	return previous
}
