package engine

import "math/rand/v2"

// Rand picks a uniform index in [0, n). *rand.Rand from math/rand/v2
// satisfies it; such a value is not safe for concurrent use.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the math/rand/v2 top-level source, which is safe
// for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

func (e *Engine) pick(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[e.rng.IntN(len(candidates))]
}
