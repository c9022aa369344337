// Package commands implements the searchbench command line.
package commands

import (
	"fmt"
	"log"

	"github.com/cloo-solutions/searchbench/internal/cli"
	"github.com/cloo-solutions/searchbench/internal/config"
	"github.com/cloo-solutions/searchbench/internal/telemetry"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the searchbench command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "searchbench",
		Short:   "Compare comparison counts of sorted-array search algorithms",
		Long:    "Benchmarks binary, interpolation and interpolated binary search over random sorted arrays of unsigned integers",
		Version: version,

		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("output", "o", false, "Output JSON instead of tables")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(SearchCmd())
	rootCmd.AddCommand(AlgorithmsCmd())
	rootCmd.AddCommand(ServeCmd(version))

	return rootCmd
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("output")
	return v
}

func noColor(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("no-color")
	return v
}

// loadConfig reads the environment and applies any flag the user set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("count") {
		cfg.ArrayCount, _ = flags.GetInt("count")
	}
	if changed("min-length") {
		cfg.MinLength, _ = flags.GetInt("min-length")
	}
	if changed("max-length") {
		cfg.MaxLength, _ = flags.GetInt("max-length")
	}
	if changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if changed("csv-file") {
		cfg.CSVFile, _ = flags.GetString("csv-file")
	}
	if changed("chart-file") {
		cfg.ChartFile, _ = flags.GetString("chart-file")
	}
	if changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if changed("refresh-interval") {
		cfg.RefreshInterval, _ = flags.GetDuration("refresh-interval")
	}
	if changed("api-token") && cmd.Name() == "serve" {
		cfg.APIToken, _ = flags.GetString("api-token")
	}

	return cfg, nil
}

// initTelemetry starts Sentry when a DSN is configured and returns its flush.
func initTelemetry(cfg *config.Config) func() {
	if !cfg.HasSentry() {
		return func() {}
	}

	// 10% sampling in production, everything elsewhere
	sampleRate := 1.0
	if cfg.Environment == "production" {
		sampleRate = 0.1
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}
