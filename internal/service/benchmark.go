package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/domain"
	"github.com/cloo-solutions/searchbench/internal/sink"
	"github.com/cloo-solutions/searchbench/internal/storage"
	"github.com/cloo-solutions/searchbench/internal/telemetry"
)

// Limits on API-requested batches.
const (
	MaxArrayCount  = 10000
	MaxArrayLength = 1 << 20

	// MaxBatchElements bounds Count*MaxLength, the worst-case number of
	// values a batch holds (128 MiB of uint64).
	MaxBatchElements = 1 << 24
)

// BatchRunner runs one benchmark batch.
type BatchRunner interface {
	Run(ctx context.Context) (*bench.Batch, error)
}

// ArtifactPublisher uploads rendered batches.
type ArtifactPublisher interface {
	Publish(ctx context.Context, b *bench.Batch, artifacts []storage.Artifact) ([]storage.Published, error)
}

// Snapshot is a finished batch with its summary and uploaded artifacts.
type Snapshot struct {
	Batch     *bench.Batch        `json:"batch"`
	Summary   []bench.Summary     `json:"summary"`
	Artifacts []storage.Published `json:"artifacts,omitempty"`
}

// RunInput overrides the service defaults for one batch. Zero fields keep
// the default; a zero seed picks one from the clock.
type RunInput struct {
	Count     int
	MinLength int
	MaxLength int
	Seed      uint64
	Workers   int
}

// BenchmarkService runs batches and keeps the most recent one.
type BenchmarkService struct {
	defaults  bench.Config
	newRunner func(cfg bench.Config) BatchRunner
	publisher ArtifactPublisher
	artifacts []storage.Artifact

	runMu  sync.Mutex
	latest atomic.Pointer[Snapshot]
}

// NewBenchmarkService creates a service running batches with defaults.
// publisher may be nil, in which case nothing is uploaded.
func NewBenchmarkService(defaults bench.Config, publisher ArtifactPublisher, artifacts []storage.Artifact) *BenchmarkService {
	return &BenchmarkService{
		defaults: defaults,
		newRunner: func(cfg bench.Config) BatchRunner {
			return bench.NewHarness(cfg, nil)
		},
		publisher: publisher,
		artifacts: artifacts,
	}
}

// Resolve merges input over the defaults and checks the API limits.
func (s *BenchmarkService) Resolve(input RunInput) (bench.Config, error) {
	cfg := s.defaults
	if input.Count != 0 {
		cfg.Count = input.Count
	}
	if input.MinLength != 0 {
		cfg.MinLength = input.MinLength
	}
	if input.MaxLength != 0 {
		cfg.MaxLength = input.MaxLength
	}
	if input.Workers != 0 {
		cfg.Workers = input.Workers
	}
	cfg.Seed = input.Seed
	if cfg.Seed == 0 {
		cfg.Seed = bench.TimeSeed()
	}

	if cfg.Count > MaxArrayCount {
		return bench.Config{}, fmt.Errorf("%w: %d > %d", domain.ErrCountLimitReached, cfg.Count, MaxArrayCount)
	}
	if cfg.MaxLength > MaxArrayLength {
		return bench.Config{}, fmt.Errorf("%w: max length %d exceeds %d", domain.ErrInvalidRange, cfg.MaxLength, MaxArrayLength)
	}
	if cfg.Count > 0 && cfg.MaxLength > 0 && int64(cfg.Count)*int64(cfg.MaxLength) > MaxBatchElements {
		return bench.Config{}, fmt.Errorf("%w: %d arrays of length up to %d exceed %d values",
			domain.ErrCountLimitReached, cfg.Count, cfg.MaxLength, MaxBatchElements)
	}
	if err := cfg.Validate(); err != nil {
		return bench.Config{}, err
	}
	return cfg, nil
}

// Run executes a batch, publishes it when a publisher is configured and
// makes it the latest snapshot. Publishing failures are logged and
// reported, not returned.
func (s *BenchmarkService) Run(ctx context.Context, input RunInput) (*Snapshot, error) {
	cfg, err := s.Resolve(input)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "BenchmarkService.Run", telemetry.SpanAttributes{
		Operation: "run",
		Count:     cfg.Count,
	})
	defer span.End()

	// One batch at a time; a batch can hold up to MaxBatchElements values.
	s.runMu.Lock()
	defer s.runMu.Unlock()

	batch, err := s.newRunner(cfg).Run(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag("batch_id", batch.ID)

	snap := &Snapshot{Batch: batch, Summary: bench.Summarize(batch)}
	if s.publisher != nil && len(s.artifacts) > 0 {
		published, err := s.publisher.Publish(ctx, batch, s.artifacts)
		if err != nil {
			log.Printf("batch %s: artifact upload failed: %v", batch.ID, err)
			telemetry.CaptureError(ctx, err)
		}
		snap.Artifacts = published
	}

	s.latest.Store(snap)
	telemetry.AddBreadcrumb(ctx, "bench", fmt.Sprintf("batch %s finished with %d units", batch.ID, len(batch.Units)))
	return snap, nil
}

// Latest returns the most recent snapshot.
func (s *BenchmarkService) Latest(ctx context.Context) (*Snapshot, error) {
	snap := s.latest.Load()
	if snap == nil {
		return nil, domain.ErrNoBatch
	}
	return snap, nil
}

// Render writes the latest batch in format.
func (s *BenchmarkService) Render(ctx context.Context, format string) ([]byte, string, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return nil, "", err
	}

	w, err := sink.NewWriter(format)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, snap.Batch); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.ContentType(), nil
}

// ProcessJobs runs a batch with the default parameters. It lets the
// service drive a jobs.Worker.
func (s *BenchmarkService) ProcessJobs(ctx context.Context) error {
	snap, err := s.Run(ctx, RunInput{})
	if err != nil {
		return err
	}
	log.Printf("batch %s refreshed (%d units)", snap.Batch.ID, len(snap.Batch.Units))
	return nil
}
