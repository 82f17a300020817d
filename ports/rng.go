package ports

import (
	"context"
)

// RandomStream is a seeded, reproducible source of integers.
// A stream is owned by exactly one generation run.
type RandomStream interface {
	// UniformInt returns a uniformly distributed integer in [low, high]
	UniformInt(low, high int) int
}

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic stream for the named algorithm
	SeededStream(ctx context.Context, algorithm string, seed int64) (RandomStream, error)

	// Algorithms lists the algorithm names SeededStream accepts
	Algorithms() []string
}
