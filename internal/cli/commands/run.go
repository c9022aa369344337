package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/config"
	"github.com/cloo-solutions/searchbench/internal/sink"
	"github.com/cloo-solutions/searchbench/internal/storage"
	"github.com/cloo-solutions/searchbench/internal/telemetry"
	"github.com/spf13/cobra"
)

type runOptions struct {
	formats []string
	upload  bool
}

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark and write its results",
		Long: `Generates random sorted arrays, searches each one for a random element
with every algorithm and writes the comparison counts as a CSV table and an
SVG chart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runBenchmark(cmd, cfg, opts)
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().String("output-dir", ".", "Directory for result files")
	cmd.Flags().String("csv-file", "search_results.csv", "CSV file name")
	cmd.Flags().String("chart-file", "search_results.svg", "Chart file name")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil,
		"Extra output formats ("+strings.Join([]string{sink.FormatCSVLong, sink.FormatJSON, sink.FormatYAML}, ", ")+")")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload results to S3 (requires SEARCHBENCH_S3_* settings)")

	return cmd
}

// addBenchFlags registers the batch parameters shared by run and serve.
func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("count", "n", bench.DefaultCount, "Number of arrays")
	cmd.Flags().Int("min-length", bench.DefaultMinLength, "Minimum array length (inclusive)")
	cmd.Flags().Int("max-length", bench.DefaultMaxLength, "Maximum array length (exclusive)")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	cmd.Flags().IntP("workers", "w", bench.DefaultWorkers, "Arrays searched concurrently")
}

// output is one local file produced by run.
type output struct {
	label  string
	path   string
	writer sink.Writer
}

func runOutputs(cfg *config.Config, formats []string) ([]output, error) {
	outs := []output{
		{label: "Search results", path: cfg.CSVPath(), writer: &sink.CSVWriter{Layout: sink.LayoutWide}},
		{label: "Chart", path: cfg.ChartPath(), writer: sink.NewChartWriter(sink.DefaultChartConfig())},
	}
	for _, format := range formats {
		format = strings.ToLower(format)
		if format == sink.FormatCSV || format == sink.FormatSVG {
			continue // always written
		}
		w, err := sink.NewWriter(format)
		if err != nil {
			return nil, err
		}
		name := "search_results" + w.Extension()
		if format == sink.FormatCSVLong {
			name = "search_results_long" + w.Extension()
		}
		outs = append(outs, output{
			label:  strings.ToUpper(format) + " results",
			path:   filepath.Join(cfg.OutputDir, name),
			writer: w,
		})
	}
	return outs, nil
}

func runBenchmark(cmd *cobra.Command, cfg *config.Config, opts runOptions) error {
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout(), noColor(cmd))

	outs, err := runOutputs(cfg, opts.formats)
	if err != nil {
		return err
	}
	if opts.upload && !cfg.HasS3() {
		return fmt.Errorf("--upload requires SEARCHBENCH_S3_ENDPOINT, SEARCHBENCH_S3_ACCESS_KEY_ID and SEARCHBENCH_S3_SECRET_ACCESS_KEY")
	}

	shutdown := initTelemetry(cfg)
	defer shutdown()

	benchCfg := cfg.BenchConfig()
	ctx, span := telemetry.StartSpan(ctx, "searchbench.run", telemetry.SpanAttributes{
		Operation: "run",
		Count:     benchCfg.Count,
	})
	defer span.End()

	batch, err := bench.NewHarness(benchCfg, nil).Run(ctx)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("benchmark failed: %w", err)
	}
	span.SetTag("batch_id", batch.ID)
	if cfg.Debug {
		log.Printf("batch %s: %d units in %v", batch.ID, len(batch.Units), batch.FinishedAt.Sub(batch.StartedAt))
	}

	// Each output is attempted regardless of the others.
	var errs []error
	for _, o := range outs {
		err := telemetry.Trace(ctx, "sink.write", telemetry.SpanAttributes{BatchID: batch.ID, Operation: o.label}, func(ctx context.Context) error {
			return sink.WriteFile(o.path, o.writer, batch)
		})
		if err != nil {
			p.failure("Failed to write %s: %v", strings.ToLower(o.label), err)
			errs = append(errs, fmt.Errorf("%s: %w", o.path, err))
			continue
		}
		p.success("%s successfully written to %s.", o.label, o.path)
	}

	if opts.upload {
		if err := uploadBatch(ctx, cfg, batch, outs, p); err != nil {
			errs = append(errs, err)
		}
	}

	summaries := bench.Summarize(batch)
	if asJSON(cmd) {
		if err := printJSON(cmd.OutOrStdout(), summaries); err != nil {
			return err
		}
	} else {
		p.summary(batch, summaries)
	}

	return errors.Join(errs...)
}

func uploadBatch(ctx context.Context, cfg *config.Config, batch *bench.Batch, outs []output, p *printer) error {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		p.failure("Failed to upload results: %v", err)
		return err
	}

	artifacts := make([]storage.Artifact, 0, len(outs))
	for _, o := range outs {
		artifacts = append(artifacts, storage.Artifact{Name: filepath.Base(o.path), Writer: o.writer})
	}

	published, err := storage.NewPublisher(client).Publish(ctx, batch, artifacts)
	for _, pub := range published {
		p.success("Uploaded s3://%s/%s", client.Bucket(), pub.Key)
		if pub.URL != "" {
			p.info("  %s", pub.URL)
		}
	}
	if err != nil {
		p.failure("Failed to upload results: %v", err)
		telemetry.CaptureError(ctx, err)
		return err
	}
	return nil
}

func newS3Client(ctx context.Context, cfg *config.Config) (*storage.S3Client, error) {
	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("s3 bucket '%s' ready", cfg.S3Bucket)
	return client, nil
}
