// Package testutil starts throwaway dependencies for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	RustFSImage     = "rustfs/rustfs:latest"
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"

	rustFSPort = "9000/tcp"
)

// RustFSContainer is an S3-compatible object store for tests.
type RustFSContainer struct {
	Container testcontainers.Container
	endpoint  string
}

// NewRustFSContainer starts RustFS and removes it when the test ends. The
// test fails if the container cannot be started.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	t.Helper()

	ctr, err := testcontainers.Run(ctx, RustFSImage,
		testcontainers.WithExposedPorts(rustFSPort),
		testcontainers.WithEnv(map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSSecretKey,
		}),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(rustFSPort).WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("failed to start rustfs container: %v", err)
	}

	endpoint, err := ctr.PortEndpoint(ctx, rustFSPort, "http")
	if err != nil {
		t.Fatalf("failed to resolve rustfs endpoint: %v", err)
	}

	return &RustFSContainer{Container: ctr, endpoint: endpoint}
}

// Endpoint returns the RustFS endpoint URL, e.g. http://localhost:32768.
func (rc *RustFSContainer) Endpoint() string {
	return rc.endpoint
}

// Terminate stops and removes the container before test cleanup does.
func (rc *RustFSContainer) Terminate(ctx context.Context) error {
	if err := testcontainers.TerminateContainer(rc.Container); err != nil {
		return fmt.Errorf("failed to terminate rustfs: %w", err)
	}
	return nil
}
