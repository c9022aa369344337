package service

import (
	"context"

	"github.com/cloo-solutions/searchbench/internal/domain"
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/cloo-solutions/searchbench/internal/telemetry"
)

// SearchInput is one ad hoc search. An empty Algorithm runs all of them.
type SearchInput struct {
	Algorithm string
	Sequence  []uint64
	Target    uint64
}

// SearchService runs searches over caller-supplied sequences.
type SearchService struct{}

func NewSearchService() *SearchService {
	return &SearchService{}
}

// Search rejects sequences that are not non-decreasing, since every
// algorithm assumes sorted input.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]search.Outcome, error) {
	_, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Algorithm: input.Algorithm,
		Operation: "search",
		Count:     1,
	})
	defer span.End()

	if !search.IsSorted(input.Sequence) {
		return nil, domain.ErrUnsortedSequence
	}

	if input.Algorithm == "" {
		return search.Run(input.Sequence, input.Target), nil
	}

	alg, err := search.ParseAlgorithm(input.Algorithm)
	if err != nil {
		return nil, err
	}
	fn, err := alg.Func()
	if err != nil {
		return nil, err
	}
	return []search.Outcome{fn(input.Sequence, input.Target)}, nil
}
