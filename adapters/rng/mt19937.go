package rng

import (
	"fmt"
	"math"
	"math/bits"

	"datasynth/domain/core"

	"gonum.org/v1/gonum/mathext/prng"
)

// MT19937Stream draws integers the way numpy's legacy RandomState does:
// init_genrand seeding and masked rejection sampling for bounded draws.
// With the same seed it reproduces np.random.randint value for value.
type MT19937Stream struct {
	src *prng.MT19937
}

// NewMT19937Stream seeds a Mersenne Twister. Seeds outside [0, 2^32-1]
// are rejected, matching np.random.seed.
func NewMT19937Stream(seed int64) (*MT19937Stream, error) {
	if seed < 0 || seed > math.MaxUint32 {
		return nil, fmt.Errorf("%w: mt19937 seed %d not in [0, %d]", core.ErrSeedOutOfRange, seed, uint32(math.MaxUint32))
	}
	src := prng.NewMT19937()
	src.Seed(uint64(seed))
	return &MT19937Stream{src: src}, nil
}

// UniformInt returns an integer in [low, high]. An empty range consumes no draws.
func (s *MT19937Stream) UniformInt(low, high int) int {
	if high <= low {
		return low
	}
	span := uint64(high - low)
	if span <= math.MaxUint32 {
		mask := uint32(rangeMask(span))
		for {
			v := s.src.Uint32() & mask
			if uint64(v) <= span {
				return low + int(v)
			}
		}
	}
	mask := rangeMask(span)
	for {
		v := s.src.Uint64() & mask
		if v <= span {
			return low + int(v)
		}
	}
}

// rangeMask returns the smallest 2^k-1 that covers span.
func rangeMask(span uint64) uint64 {
	return math.MaxUint64 >> bits.LeadingZeros64(span)
}
