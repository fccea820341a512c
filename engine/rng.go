package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking. Every
// public method consumes exactly one draw from the stream, so two callers
// issuing the same sequence of calls from the same seed stay in lockstep.
// The one exception is WeightedIndex on a non-positive total, which
// consumes nothing (the deterministic first-candidate fallback).
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed this RNG was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	if sides < 1 {
		sides = 1
	}
	r.pos++
	return r.src.Intn(sides) + 1
}

// IntBetween returns a random integer in [lo, hi], inclusive on both ends.
// An inverted range is coerced so that hi rises to lo.
func (r *RNG) IntBetween(lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	r.pos++
	return lo + r.src.Intn(hi-lo+1)
}

// Float returns a uniform real in [0, 1).
func (r *RNG) Float() float64 {
	r.pos++
	return r.src.Float64()
}

// Pick returns a uniform index in [0, n).
func (r *RNG) Pick(n int) int {
	if n < 1 {
		n = 1
	}
	r.pos++
	return r.src.Intn(n)
}

// WeightedIndex returns an index chosen by cumulative-weight linear scan.
// Negative weights count as zero. If the total weight is not positive the
// first index is returned without consuming a draw; otherwise exactly one
// uniform draw in [0, total) decides, and the first index whose cumulative
// weight meets or exceeds the draw wins. Input order is significant at
// floating-point boundaries.
func (r *RNG) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}

	r.pos++
	roll := r.src.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if w > 0 {
			acc += w
		}
		if roll <= acc {
			return i
		}
	}
	return len(weights) - 1
}

// SubSeed draws a fresh seed in [0, 999999] for a child generator, so
// nested generation stays reproducible from the parent stream position.
func (r *RNG) SubSeed() int64 {
	r.pos++
	return int64(r.src.Intn(1_000_000))
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}
