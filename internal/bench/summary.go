package bench

import (
	"math"

	"github.com/cloo-solutions/searchbench/internal/search"
)

// Summary aggregates one algorithm's comparison counts over a batch.
type Summary struct {
	Algorithm       search.Algorithm `json:"algorithm" yaml:"algorithm"`
	Runs            int              `json:"runs" yaml:"runs"`
	Found           int              `json:"found" yaml:"found"`
	MinComparisons  uint64           `json:"min_comparisons" yaml:"min_comparisons"`
	MaxComparisons  uint64           `json:"max_comparisons" yaml:"max_comparisons"`
	MeanComparisons float64          `json:"mean_comparisons" yaml:"mean_comparisons"`
}

// Summarize returns one Summary per algorithm in the batch.
func Summarize(b *Batch) []Summary {
	algs := b.Algorithms()
	out := make([]Summary, 0, len(algs))
	for _, alg := range algs {
		out = append(out, summarizeSeries(alg, b.Series(alg)))
	}
	return out
}

func summarizeSeries(alg search.Algorithm, series []search.Outcome) Summary {
	s := Summary{Algorithm: alg, Runs: len(series)}
	if len(series) == 0 {
		return s
	}

	s.MinComparisons = math.MaxUint64
	var sum float64
	for _, o := range series {
		if o.Index.IsFound() {
			s.Found++
		}
		s.MinComparisons = min(s.MinComparisons, o.Comparisons)
		s.MaxComparisons = max(s.MaxComparisons, o.Comparisons)
		sum += float64(o.Comparisons)
	}
	s.MeanComparisons = sum / float64(len(series))
	return s
}
