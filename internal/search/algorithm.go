package search

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/searchbench/internal/domain"
)

// Algorithm names a search strategy.
type Algorithm string

const (
	AlgorithmBinary             Algorithm = "binary"
	AlgorithmInterpolation      Algorithm = "interpolation"
	AlgorithmInterpolatedBinary Algorithm = "interpolated-binary"
)

// Func is the shared contract of every search strategy.
type Func func(seq []uint64, target uint64) Outcome

// Algorithms lists every strategy in reporting order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmBinary, AlgorithmInterpolation, AlgorithmInterpolatedBinary}
}

// Label is the human readable name used in tables and chart legends.
func (a Algorithm) Label() string {
	switch a {
	case AlgorithmBinary:
		return "Binary search"
	case AlgorithmInterpolation:
		return "Interpolation search"
	case AlgorithmInterpolatedBinary:
		return "Interpolated binary search"
	}
	return string(a)
}

// ShortLabel is the column banner used by the wide CSV layout.
func (a Algorithm) ShortLabel() string {
	switch a {
	case AlgorithmBinary:
		return "Binary"
	case AlgorithmInterpolation:
		return "Interpolated"
	case AlgorithmInterpolatedBinary:
		return "Interpolated binary"
	}
	return string(a)
}

// Func returns the search implementation for a.
func (a Algorithm) Func() (Func, error) {
	switch a {
	case AlgorithmBinary:
		return Binary, nil
	case AlgorithmInterpolation:
		return Interpolation, nil
	case AlgorithmInterpolatedBinary:
		return InterpolatedBinary, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, string(a))
}

// ParseAlgorithm accepts the canonical names plus a few aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin":
		return AlgorithmBinary, nil
	case "interpolation", "interp":
		return AlgorithmInterpolation, nil
	case "interpolated-binary", "interpolated_binary", "hybrid", "interp-binary":
		return AlgorithmInterpolatedBinary, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, s)
}

// funcs matches Algorithms order.
var funcs = []Func{Binary, Interpolation, InterpolatedBinary}

// Run executes every algorithm on the same input, in Algorithms order.
func Run(seq []uint64, target uint64) []Outcome {
	out := make([]Outcome, 0, len(funcs))
	for _, fn := range funcs {
		out = append(out, fn(seq, target))
	}
	return out
}

// IsSorted reports whether seq is non-decreasing.
func IsSorted(seq []uint64) bool {
	for i := 1; i < len(seq); i++ {
		if seq[i] < seq[i-1] {
			return false
		}
	}
	return true
}
