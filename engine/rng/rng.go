// Package rng provides the seedable random source shared by the rules
// engines. Every engine stores a Source inside its state so that the same
// seed and the same action sequence reproduce the same states.
package rng

// Source is an xorshift64 generator. The zero value is remapped to 1 on
// first use (xorshift cannot leave 0). It serializes as a plain integer, so
// states carrying a Source round-trip through JSON losslessly.
type Source uint64

// New returns a Source seeded with seed.
func New(seed uint64) Source {
	if seed == 0 {
		seed = 1
	}
	return Source(seed)
}

// Next advances the generator and returns the next raw value.
func (s *Source) Next() uint64 {
	x := uint64(*s)
	if x == 0 {
		x = 1
	}
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*s = Source(x)
	return x
}

// IntN returns a value in [0, n). n must be positive.
func (s *Source) IntN(n int) int {
	return int(s.Next() % uint64(n))
}

// Shuffle performs a Fisher-Yates shuffle of a in place.
func Shuffle[T any](s *Source, a []T) {
	for i := len(a) - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Pick returns a uniformly chosen element of a. a must be nonempty.
func Pick[T any](s *Source, a []T) T {
	return a[s.IntN(len(a))]
}
