package rng

import (
	"context"
	"fmt"
	"strings"

	"datasynth/domain/core"
	"datasynth/ports"
)

// Supported algorithm names
const (
	AlgorithmMT19937 = "mt19937"
	AlgorithmGo      = "go"
)

// DefaultAlgorithm reproduces the numpy-generated reference dataset
const DefaultAlgorithm = AlgorithmMT19937

// RNGAdapter implements ports.RNGPort
type RNGAdapter struct{}

// NewRNGAdapter creates the stream factory
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream creates a fresh deterministic stream. An empty algorithm selects DefaultAlgorithm.
func (a *RNGAdapter) SeededStream(ctx context.Context, algorithm string, seed int64) (ports.RandomStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmMT19937:
		stream, err := NewMT19937Stream(seed)
		if err != nil {
			return nil, err
		}
		return stream, nil
	case AlgorithmGo:
		return NewGoStream(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", core.ErrUnknownAlgorithm, algorithm, strings.Join(a.Algorithms(), ", "))
	}
}

// Algorithms lists the accepted algorithm names
func (a *RNGAdapter) Algorithms() []string {
	return []string{AlgorithmMT19937, AlgorithmGo}
}

// IsKnownAlgorithm reports whether name selects a stream
func IsKnownAlgorithm(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmMT19937, AlgorithmGo:
		return true
	}
	return false
}

var _ ports.RNGPort = (*RNGAdapter)(nil)
