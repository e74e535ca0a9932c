package interview

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// Source is the randomness used for pool shuffling and weighted selection.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// lockedSource makes a *rand.Rand safe to share across sessions.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed.
// Equal seeds produce equal sequences.
func NewSource(seed int64) Source {
	s := uint64(seed)
	return &lockedSource{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *lockedSource) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// WeightedSampler draws an index with probability proportional to its weight
// using an explicit cumulative-weight table.
type WeightedSampler struct {
	src Source
}

// NewWeightedSampler creates a sampler drawing from src.
func NewWeightedSampler(src Source) *WeightedSampler {
	return &WeightedSampler{src: src}
}

// Pick returns the chosen index, or -1 when weights is empty or sums to zero.
// Negative weights count as zero.
func (w *WeightedSampler) Pick(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, wt := range weights {
		if wt > 0 {
			total += wt
		}
		cumulative[i] = total
	}
	if total <= 0 {
		return -1
	}

	r := w.src.Float64() * total
	idx := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > r })
	if idx >= len(cumulative) {
		idx = len(cumulative) - 1
	}
	return idx
}
