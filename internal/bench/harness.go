// Package bench generates batches of sorted sequences and runs every search
// strategy over them.
package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Unit is one (sequence, target) pair and the outcome of each algorithm on
// it, in search.Algorithms order.
type Unit struct {
	Length   int              `json:"length" yaml:"length"`
	Target   uint64           `json:"target" yaml:"target"`
	Outcomes []search.Outcome `json:"outcomes" yaml:"outcomes"`
}

// Outcome returns the unit's outcome for alg.
func (u Unit) Outcome(alg search.Algorithm) (search.Outcome, bool) {
	for _, o := range u.Outcomes {
		if o.Algorithm == alg {
			return o, true
		}
	}
	return search.Outcome{}, false
}

// Batch holds the units of one benchmark run, ordered by ascending length.
type Batch struct {
	ID         string    `json:"id" yaml:"id"`
	Config     Config    `json:"config" yaml:"config"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Units      []Unit    `json:"units" yaml:"units"`
}

// Series returns alg's outcomes aligned with b.Units.
func (b *Batch) Series(alg search.Algorithm) []search.Outcome {
	out := make([]search.Outcome, 0, len(b.Units))
	for _, u := range b.Units {
		if o, ok := u.Outcome(alg); ok {
			out = append(out, o)
		}
	}
	return out
}

// Algorithms returns the algorithms present in the batch.
func (b *Batch) Algorithms() []search.Algorithm {
	if len(b.Units) == 0 {
		return nil
	}
	algs := make([]search.Algorithm, 0, len(b.Units[0].Outcomes))
	for _, o := range b.Units[0].Outcomes {
		algs = append(algs, o.Algorithm)
	}
	return algs
}

// Harness runs benchmark batches.
type Harness struct {
	cfg    Config
	source Source
	now    func() time.Time
	newID  func() string
}

// NewHarness returns a harness drawing sequences from source. A nil source
// uses a WindowSource seeded with cfg.Seed.
func NewHarness(cfg Config, source Source) *Harness {
	if source == nil {
		source = NewWindowSource(cfg.Seed)
	}
	return &Harness{
		cfg:    cfg,
		source: source,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run generates the batch's sequences, sorts them by length, picks one
// target per sequence and runs every algorithm on each.
func (h *Harness) Run(ctx context.Context) (*Batch, error) {
	if err := h.cfg.Validate(); err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:        h.newID(),
		Config:    h.cfg,
		StartedAt: h.now().UTC(),
	}

	seqs := h.source.Sequences(h.cfg.Count, h.cfg.MinLength, h.cfg.MaxLength)
	slices.SortStableFunc(seqs, func(a, b []uint64) int {
		return len(a) - len(b)
	})

	// Targets are chosen before any fan-out so a seed reproduces the same
	// batch regardless of the worker count.
	picker := rand.New(rand.NewPCG(h.cfg.Seed^0x5851f42d4c957f2d, h.cfg.Seed))
	targets := make([]uint64, len(seqs))
	for i, seq := range seqs {
		targets[i] = pickTarget(picker, seq)
	}

	batch.Units = make([]Unit, len(seqs))
	if err := h.runUnits(ctx, seqs, targets, batch.Units); err != nil {
		return nil, err
	}

	batch.FinishedAt = h.now().UTC()
	return batch, nil
}

func (h *Harness) runUnits(ctx context.Context, seqs [][]uint64, targets []uint64, units []Unit) error {
	if h.cfg.Workers <= 1 {
		for i := range seqs {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("benchmark cancelled: %w", err)
			}
			units[i] = runUnit(seqs[i], targets[i])
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Workers)
	for i := range seqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("benchmark cancelled: %w", err)
			}
			// Each goroutine owns slot i.
			units[i] = runUnit(seqs[i], targets[i])
			return nil
		})
	}
	return g.Wait()
}

func runUnit(seq []uint64, target uint64) Unit {
	return Unit{
		Length:   len(seq),
		Target:   target,
		Outcomes: search.Run(seq, target),
	}
}

// pickTarget returns a uniformly chosen element of seq, or 0 for an empty
// sequence.
func pickTarget(rng *rand.Rand, seq []uint64) uint64 {
	if len(seq) == 0 {
		return 0
	}
	return seq[rng.IntN(len(seq))]
}
