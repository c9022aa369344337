package config

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	ArrayCount int    `envconfig:"ARRAY_COUNT" default:"1000"`
	MinLength  int    `envconfig:"MIN_LENGTH" default:"2"`
	MaxLength  int    `envconfig:"MAX_LENGTH" default:"500"`
	Seed       uint64 `envconfig:"SEED" default:"0"`
	Workers    int    `envconfig:"WORKERS" default:"1"`

	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`
	CSVFile   string `envconfig:"CSV_FILE" default:"search_results.csv"`
	ChartFile string `envconfig:"CHART_FILE" default:"search_results.svg"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"searchbench-results"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	// Batches whose artifacts serve keeps in the bucket; zero keeps all.
	S3Retain int `envconfig:"S3_RETAIN" default:"0"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Interval at which serve re-runs the benchmark; zero disables it.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5m"`
	APIToken        string        `envconfig:"API_TOKEN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SEARCHBENCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// BenchConfig returns the harness parameters. A zero seed is replaced with
// one derived from the clock so consecutive runs differ.
func (c *Config) BenchConfig() bench.Config {
	seed := c.Seed
	if seed == 0 {
		seed = bench.TimeSeed()
	}
	return bench.Config{
		Count:     c.ArrayCount,
		MinLength: c.MinLength,
		MaxLength: c.MaxLength,
		Seed:      seed,
		Workers:   c.Workers,
	}
}

func (c *Config) CSVPath() string {
	return filepath.Join(c.OutputDir, c.CSVFile)
}

func (c *Config) ChartPath() string {
	return filepath.Join(c.OutputDir, c.ChartFile)
}
