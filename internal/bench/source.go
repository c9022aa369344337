package bench

import (
	"math/rand/v2"
)

// DefaultWindow is the width of the value window each element is drawn from.
const DefaultWindow = 10

// Source produces count non-decreasing sequences with lengths in
// [minLen, maxLen).
type Source interface {
	Sequences(count, minLen, maxLen int) [][]uint64
}

// WindowSource draws element k uniformly from [k*Window, k*Window+Window).
// Consecutive windows do not overlap, so every sequence is non-decreasing;
// equal neighbours can only occur when Window is 1.
type WindowSource struct {
	rng    *rand.Rand
	Window uint64
}

// NewWindowSource returns a deterministic WindowSource for seed.
func NewWindowSource(seed uint64) *WindowSource {
	return &WindowSource{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Window: DefaultWindow,
	}
}

func (s *WindowSource) Sequences(count, minLen, maxLen int) [][]uint64 {
	window := s.Window
	if window == 0 {
		window = DefaultWindow
	}

	out := make([][]uint64, 0, count)
	for range count {
		n := minLen + s.rng.IntN(maxLen-minLen)
		seq := make([]uint64, n)
		var base uint64
		for k := range seq {
			seq[k] = base + s.rng.Uint64N(window)
			base += window
		}
		out = append(out, seq)
	}
	return out
}

// StaticSource replays fixed sequences, ignoring the requested shape; it
// returns at most count of them.
type StaticSource [][]uint64

func (s StaticSource) Sequences(count, _, _ int) [][]uint64 {
	if count > len(s) {
		count = len(s)
	}
	out := make([][]uint64, count)
	for i := range out {
		out[i] = append([]uint64(nil), s[i]...)
	}
	return out
}
