package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/searchbench/internal/api/handlers"
	"github.com/cloo-solutions/searchbench/internal/config"
	"github.com/cloo-solutions/searchbench/internal/jobs"
	"github.com/cloo-solutions/searchbench/internal/server"
	"github.com/cloo-solutions/searchbench/internal/service"
	"github.com/cloo-solutions/searchbench/internal/sink"
	"github.com/cloo-solutions/searchbench/internal/storage"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Starts the searchbench API server. The server runs a batch on startup,
refreshes it on --refresh-interval and answers ad hoc searches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			lis, err := net.Listen("tcp", ":"+cfg.Port)
			if err != nil {
				return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
			}
			return serve(ctx, cfg, version, lis)
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Duration("refresh-interval", 5*time.Minute, "Interval between benchmark runs (0 disables)")
	cmd.Flags().String("api-token", "", "Bearer token required by the API (overrides SEARCHBENCH_API_TOKEN)")

	return cmd
}

// serve runs the API on lis until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, cfg *config.Config, version string, lis net.Listener) error {
	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	benchCfg := cfg.BenchConfig()
	if err := benchCfg.Validate(); err != nil {
		lis.Close()
		return err
	}

	var publisher service.ArtifactPublisher
	if cfg.HasS3() {
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			lis.Close()
			return err
		}
		publisher = storage.NewPublisher(client, storage.WithRetain(cfg.S3Retain))
	}

	artifacts := []storage.Artifact{
		{Name: "search_results.csv", Writer: &sink.CSVWriter{Layout: sink.LayoutWide}},
		{Name: "search_results.svg", Writer: sink.NewChartWriter(sink.DefaultChartConfig())},
		{Name: "batch.json", Writer: sink.JSONWriter{}},
	}

	benchSvc := service.NewBenchmarkService(benchCfg, publisher, artifacts)
	worker := jobs.NewWorker(benchSvc, cfg.RefreshInterval, jobs.WithRunOnStart())
	go worker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		APIToken:         cfg.APIToken,
		SearchHandler:    handlers.NewSearchHandler(service.NewSearchService()),
		BenchmarkHandler: handlers.NewBenchmarkHandler(benchSvc),
	})

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting searchbench %s on %s", version, lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Println("shutting down...")
	case serveErr = <-errCh:
		log.Printf("server failed: %v", serveErr)
	}

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}

	log.Println("server exited")
	return nil
}
