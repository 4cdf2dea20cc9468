package engine

import "math/rand"

// RNG is a seeded die roller with position tracking. It satisfies
// compiler.Rand.
type RNG struct {
	src  *countingSource
	rand *rand.Rand
}

// countingSource counts draws from the underlying source, whatever Rand
// method consumed them. The count is the position recorded per evaluation.
type countingSource struct {
	src   rand.Source64
	draws int64
}

func (s *countingSource) Int63() int64 {
	s.draws++
	return s.src.Int63()
}

func (s *countingSource) Uint64() uint64 {
	s.draws++
	return s.src.Uint64()
}

func (s *countingSource) Seed(seed int64) {
	s.src.Seed(seed)
	s.draws = 0
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	src := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &RNG{src: src, rand: rand.New(src)}
}

// Roll returns a random integer in [1, sides]. sides must be positive; the
// binder rejects dice with fewer than one side.
func (r *RNG) Roll(sides int) int {
	return r.rand.Intn(sides) + 1
}

// Position returns the number of source draws since creation.
func (r *RNG) Position() int64 { return r.src.draws }
