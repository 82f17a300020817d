package rng

import (
	"math/rand"
)

// GoStream wraps math/rand with an explicit source
type GoStream struct {
	r *rand.Rand
}

// NewGoStream creates a math/rand stream; every int64 seed is accepted
func NewGoStream(seed int64) *GoStream {
	return &GoStream{r: rand.New(rand.NewSource(seed))}
}

// UniformInt returns an integer in [low, high]
func (s *GoStream) UniformInt(low, high int) int {
	if high <= low {
		return low
	}
	return low + s.r.Intn(high-low+1)
}
