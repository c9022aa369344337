//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/cloo-solutions/searchbench/internal/storage"
	"github.com/cloo-solutions/searchbench/internal/testutil"
)

const testBucket = "e2e-results"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	RustFSC    *testutil.RustFSContainer
	S3Client   *storage.S3Client
	BinaryDir  string
	ServerURL  string
	Token      string
	HTTPClient *http.Client

	server *exec.Cmd
}

// SetupE2EEnv builds the binary. Containers and the server are started on
// demand by the tests that need them.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	env := &E2ETestEnv{
		T:          t,
		Ctx:        context.Background(),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.BuildBinary()
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	e.StopServer()
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinary builds the searchbench binary
func (e *E2ETestEnv) BuildBinary() {
	tmpDir, err := os.MkdirTemp("", "searchbench-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "searchbench"), "./cmd/searchbench")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build searchbench: %v\n%s", err, out)
	}
}

// StartS3 starts RustFS and a client for the test bucket.
func (e *E2ETestEnv) StartS3() {
	e.RustFSC = testutil.NewRustFSContainer(e.Ctx, e.T)

	client, err := storage.NewS3Client(e.Ctx, storage.S3ClientConfig{
		Endpoint:        e.RustFSC.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          testBucket,
		UsePathStyle:    true,
	})
	if err != nil {
		e.T.Fatalf("failed to create S3 client: %v", err)
	}
	e.S3Client = client
}

// S3Env returns the environment pointing searchbench at RustFS.
func (e *E2ETestEnv) S3Env() []string {
	return []string{
		"SEARCHBENCH_S3_ENDPOINT=" + e.RustFSC.Endpoint(),
		"SEARCHBENCH_S3_ACCESS_KEY_ID=" + testutil.RustFSAccessKey,
		"SEARCHBENCH_S3_SECRET_ACCESS_KEY=" + testutil.RustFSSecretKey,
		"SEARCHBENCH_S3_BUCKET=" + testBucket,
	}
}

func (e *E2ETestEnv) command(workDir string, env []string, args ...string) *exec.Cmd {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "searchbench"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "SEARCHBENCH_API_URL=", "SEARCHBENCH_API_TOKEN=", "SEARCHBENCH_SENTRY_DSN=")
	cmd.Env = append(cmd.Env, env...)
	return cmd
}

// Run runs the searchbench CLI command
func (e *E2ETestEnv) Run(workDir string, args ...string) (string, error) {
	return e.RunWithEnv(workDir, nil, args...)
}

// RunWithEnv runs the searchbench CLI command with extra environment
func (e *E2ETestEnv) RunWithEnv(workDir string, env []string, args ...string) (string, error) {
	out, err := e.command(workDir, env, args...).CombinedOutput()
	return string(out), err
}

// StartServer runs searchbench serve on a free port and waits for it.
func (e *E2ETestEnv) StartServer(token string, args ...string) {
	port, err := getFreePort()
	if err != nil {
		e.T.Fatalf("failed to get free port: %v", err)
	}

	args = append([]string{"serve", "--port", strconv.Itoa(port), "--api-token", token}, args...)
	cmd := e.command(e.T.TempDir(), nil, args...)
	var logs bytes.Buffer
	cmd.Stdout = &logs
	cmd.Stderr = &logs
	if err := cmd.Start(); err != nil {
		e.T.Fatalf("failed to start server: %v", err)
	}

	e.server = cmd
	e.Token = token
	e.ServerURL = fmt.Sprintf("http://localhost:%d", port)
	if !waitForServer(e.ServerURL, 10*time.Second) {
		e.T.Fatalf("server did not become healthy:\n%s", logs.String())
	}
}

// StopServer interrupts the server and waits for it to exit.
func (e *E2ETestEnv) StopServer() error {
	if e.server == nil {
		return nil
	}
	cmd := e.server
	e.server = nil

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		return err
	}
	return cmd.Wait()
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// Get performs a GET request and returns the status and raw body.
func (e *E2ETestEnv) Get(path string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, e.ServerURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if e.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// GetJSON performs a GET request and decodes the API envelope.
func (e *E2ETestEnv) GetJSON(path string) (*APIResponse, error) {
	status, body, err := e.Get(path)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", status, string(body))
	}
	if status >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", status, apiResp.Error)
	}
	return &apiResp, nil
}

// uploadedKeys extracts the object keys from run --upload output.
func uploadedKeys(out string) []string {
	var keys []string
	prefix := "Uploaded s3://" + testBucket + "/"
	for _, line := range strings.Split(out, "\n") {
		if key, ok := strings.CutPrefix(strings.TrimSpace(line), prefix); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func waitForServer(url string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

func getFreePort() (int, error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port, nil
}
