package bench

import (
	"fmt"
	"time"

	"github.com/cloo-solutions/searchbench/internal/domain"
)

const (
	DefaultCount     = 1000
	DefaultMinLength = 2
	DefaultMaxLength = 500
	DefaultWorkers   = 1
)

// Config controls the size and shape of a benchmark batch.
type Config struct {
	Count     int    `json:"count" yaml:"count"`
	MinLength int    `json:"min_length" yaml:"min_length"` // inclusive
	MaxLength int    `json:"max_length" yaml:"max_length"` // exclusive
	Seed      uint64 `json:"seed" yaml:"seed"`
	Workers   int    `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the standard benchmark parameters.
func DefaultConfig() Config {
	return Config{
		Count:     DefaultCount,
		MinLength: DefaultMinLength,
		MaxLength: DefaultMaxLength,
		Workers:   DefaultWorkers,
	}
}

// Validate checks the config before any sequence is generated.
func (c Config) Validate() error {
	if c.Count <= 0 {
		return domain.ErrInvalidCount
	}
	if c.MinLength < 0 || c.MaxLength <= c.MinLength {
		return fmt.Errorf("%w: lengths must satisfy 0 <= min < max, got [%d, %d)",
			domain.ErrInvalidRange, c.MinLength, c.MaxLength)
	}
	if c.Workers <= 0 {
		return domain.ErrInvalidWorkers
	}
	return nil
}

// TimeSeed returns a non-zero seed derived from the clock.
func TimeSeed() uint64 {
	return uint64(time.Now().UnixNano()) | 1
}
