package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/domain"
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/cloo-solutions/searchbench/internal/sink"
	"github.com/cloo-solutions/searchbench/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBatchRunner struct {
	mock.Mock
}

func (m *MockBatchRunner) Run(ctx context.Context) (*bench.Batch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bench.Batch), args.Error(1)
}

type MockArtifactPublisher struct {
	mock.Mock
}

func (m *MockArtifactPublisher) Publish(ctx context.Context, b *bench.Batch, artifacts []storage.Artifact) ([]storage.Published, error) {
	args := m.Called(ctx, b, artifacts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Published), args.Error(1)
}

func newTestBatch(id string) *bench.Batch {
	seq := []uint64{1, 3, 5, 7, 9, 11}
	return &bench.Batch{
		ID:    id,
		Units: []bench.Unit{{Length: len(seq), Target: 7, Outcomes: search.Run(seq, 7)}},
	}
}

func newServiceWithRunner(runner BatchRunner, publisher ArtifactPublisher, artifacts []storage.Artifact) (*BenchmarkService, *[]bench.Config) {
	svc := NewBenchmarkService(bench.DefaultConfig(), publisher, artifacts)
	var seen []bench.Config
	svc.newRunner = func(cfg bench.Config) BatchRunner {
		seen = append(seen, cfg)
		return runner
	}
	return svc, &seen
}

func TestBenchmarkService_Resolve(t *testing.T) {
	svc := NewBenchmarkService(bench.DefaultConfig(), nil, nil)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := svc.Resolve(RunInput{})
		require.NoError(t, err)
		assert.Equal(t, bench.DefaultCount, cfg.Count)
		assert.Equal(t, bench.DefaultMinLength, cfg.MinLength)
		assert.Equal(t, bench.DefaultMaxLength, cfg.MaxLength)
		assert.NotZero(t, cfg.Seed)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := svc.Resolve(RunInput{Count: 5, MinLength: 3, MaxLength: 9, Seed: 11, Workers: 2})
		require.NoError(t, err)
		assert.Equal(t, bench.Config{Count: 5, MinLength: 3, MaxLength: 9, Seed: 11, Workers: 2}, cfg)
	})

	t.Run("count limit", func(t *testing.T) {
		_, err := svc.Resolve(RunInput{Count: MaxArrayCount + 1})
		assert.ErrorIs(t, err, domain.ErrCountLimitReached)
	})

	t.Run("length limit", func(t *testing.T) {
		_, err := svc.Resolve(RunInput{MaxLength: MaxArrayLength + 1})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("element budget", func(t *testing.T) {
		_, err := svc.Resolve(RunInput{Count: MaxArrayCount, MinLength: MaxArrayLength - 1, MaxLength: MaxArrayLength})
		assert.ErrorIs(t, err, domain.ErrCountLimitReached)

		_, err = svc.Resolve(RunInput{Count: 16, MinLength: 1, MaxLength: MaxArrayLength})
		assert.NoError(t, err, "16 arrays of 1<<20 values fit the budget exactly")

		_, err = svc.Resolve(RunInput{Count: 17, MinLength: 1, MaxLength: MaxArrayLength})
		assert.ErrorIs(t, err, domain.ErrCountLimitReached)

		_, err = svc.Resolve(RunInput{Count: MaxArrayCount, MaxLength: 1000})
		assert.NoError(t, err)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := svc.Resolve(RunInput{MinLength: 50, MaxLength: 10})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})
}

func TestBenchmarkService_LatestBeforeRun(t *testing.T) {
	svc := NewBenchmarkService(bench.DefaultConfig(), nil, nil)

	_, err := svc.Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoBatch)
}

func TestBenchmarkService_Run(t *testing.T) {
	ctx := context.Background()
	runner := new(MockBatchRunner)
	runner.On("Run", mock.Anything).Return(newTestBatch("b-1"), nil)

	svc, seen := newServiceWithRunner(runner, nil, nil)

	snap, err := svc.Run(ctx, RunInput{Count: 1, Seed: 9})
	require.NoError(t, err)
	assert.Equal(t, "b-1", snap.Batch.ID)
	require.Len(t, snap.Summary, 3)
	assert.Equal(t, uint64(9), snap.Summary[0].MaxComparisons)
	assert.Empty(t, snap.Artifacts)

	require.Len(t, *seen, 1)
	assert.Equal(t, uint64(9), (*seen)[0].Seed)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Same(t, snap, latest)
	runner.AssertExpectations(t)
}

func TestBenchmarkService_RunFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	runner := new(MockBatchRunner)
	runner.On("Run", mock.Anything).Return(newTestBatch("b-1"), nil).Once()
	runner.On("Run", mock.Anything).Return(nil, context.Canceled).Once()

	svc, _ := newServiceWithRunner(runner, nil, nil)

	_, err := svc.Run(ctx, RunInput{})
	require.NoError(t, err)

	_, err = svc.Run(ctx, RunInput{})
	assert.ErrorIs(t, err, context.Canceled)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b-1", latest.Batch.ID)
}

func TestBenchmarkService_RunPublishes(t *testing.T) {
	ctx := context.Background()
	batch := newTestBatch("b-2")
	artifacts := []storage.Artifact{{Name: "search_results.csv", Writer: &sink.CSVWriter{}}}

	runner := new(MockBatchRunner)
	runner.On("Run", mock.Anything).Return(batch, nil)
	publisher := new(MockArtifactPublisher)
	publisher.On("Publish", mock.Anything, batch, artifacts).
		Return([]storage.Published{{Name: "search_results.csv", Key: "runs/b-2/search_results.csv"}}, nil)

	svc, _ := newServiceWithRunner(runner, publisher, artifacts)

	snap, err := svc.Run(ctx, RunInput{})
	require.NoError(t, err)
	require.Len(t, snap.Artifacts, 1)
	assert.Equal(t, "runs/b-2/search_results.csv", snap.Artifacts[0].Key)
	publisher.AssertExpectations(t)
}

func TestBenchmarkService_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	batch := newTestBatch("b-3")
	artifacts := []storage.Artifact{{Name: "search_results.csv", Writer: &sink.CSVWriter{}}}

	runner := new(MockBatchRunner)
	runner.On("Run", mock.Anything).Return(batch, nil)
	publisher := new(MockArtifactPublisher)
	publisher.On("Publish", mock.Anything, batch, artifacts).Return(nil, errors.New("bucket unreachable"))

	svc, _ := newServiceWithRunner(runner, publisher, artifacts)

	snap, err := svc.Run(ctx, RunInput{})
	require.NoError(t, err)
	assert.Empty(t, snap.Artifacts)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b-3", latest.Batch.ID)
}

func TestBenchmarkService_Render(t *testing.T) {
	ctx := context.Background()
	runner := new(MockBatchRunner)
	runner.On("Run", mock.Anything).Return(newTestBatch("b-4"), nil)
	svc, _ := newServiceWithRunner(runner, nil, nil)

	_, _, err := svc.Render(ctx, sink.FormatCSV)
	assert.ErrorIs(t, err, domain.ErrNoBatch)

	_, err = svc.Run(ctx, RunInput{})
	require.NoError(t, err)

	body, contentType, err := svc.Render(ctx, sink.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasPrefix(string(body), "Binary,,Interpolated,,Interpolated binary,"))

	body, contentType, err = svc.Render(ctx, sink.FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", contentType)
	assert.Contains(t, string(body), "Search algorithm complexity")

	_, _, err = svc.Render(ctx, "pdf")
	assert.ErrorIs(t, err, domain.ErrUnknownFormat)
}

func TestBenchmarkService_ProcessJobs(t *testing.T) {
	svc := NewBenchmarkService(bench.Config{Count: 20, MinLength: 2, MaxLength: 30, Workers: 2}, nil, nil)

	require.NoError(t, svc.ProcessJobs(context.Background()))

	snap, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Batch.Units, 20)
	for _, s := range snap.Summary {
		assert.Equal(t, 20, s.Found, "every target is drawn from its own sequence")
	}
}
