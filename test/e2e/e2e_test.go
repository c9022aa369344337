//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Run(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("writes csv and chart to the working directory", func(t *testing.T) {
		dir := t.TempDir()
		out, err := env.Run(dir, "run", "--no-color")
		require.NoError(t, err, out)

		assert.Contains(t, out, "Search results successfully written to search_results.csv.")
		assert.Contains(t, out, "Chart successfully written to search_results.svg.")

		data, err := os.ReadFile(filepath.Join(dir, "search_results.csv"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 1002)
		assert.FileExists(t, filepath.Join(dir, "search_results.svg"))
	})

	t.Run("seed makes runs reproducible", func(t *testing.T) {
		a, b := t.TempDir(), t.TempDir()
		_, err := env.Run(a, "run", "-n", "50", "--seed", "42")
		require.NoError(t, err)
		_, err = env.Run(b, "run", "-n", "50", "--seed", "42", "-w", "8")
		require.NoError(t, err)

		first, _ := os.ReadFile(filepath.Join(a, "search_results.csv"))
		second, _ := os.ReadFile(filepath.Join(b, "search_results.csv"))
		assert.Equal(t, string(first), string(second))
	})

	t.Run("configuration from environment", func(t *testing.T) {
		dir := t.TempDir()
		out, err := env.RunWithEnv(dir, []string{"SEARCHBENCH_ARRAY_COUNT=7", "SEARCHBENCH_CSV_FILE=out.csv"}, "run")
		require.NoError(t, err, out)

		data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 9)
	})
}

func TestE2E_RunUpload(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.StartS3()

	out, err := env.RunWithEnv(t.TempDir(), env.S3Env(), "run", "-n", "10", "--upload", "--no-color")
	require.NoError(t, err, out)

	keys := uploadedKeys(out)
	require.Len(t, keys, 2, out)

	for _, key := range keys {
		body, err := env.S3Client.GetObject(env.Ctx, key)
		require.NoError(t, err)
		assert.NotEmpty(t, body)
	}
}

func TestE2E_Search(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	out, err := env.Run(t.TempDir(), "search", "-o", "--target", "7", "1", "3", "5", "7", "9", "11")
	require.NoError(t, err, out)

	var outcomes []struct {
		Algorithm   string `json:"algorithm"`
		Index       *int   `json:"index"`
		Comparisons uint64 `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		require.NotNil(t, o.Index)
		assert.Equal(t, 3, *o.Index)
	}

	_, err = env.Run(t.TempDir(), "search", "-t", "1", "5", "2")
	assert.Error(t, err)
}

func TestE2E_HelpJSON(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	out, err := env.Run(t.TempDir(), "search", "--help-json")
	require.NoError(t, err)

	var schema struct {
		Name  string `json:"name"`
		Flags []struct {
			Name     string `json:"name"`
			Required bool   `json:"required"`
		} `json:"flags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "search", schema.Name)

	required := map[string]bool{}
	for _, f := range schema.Flags {
		required[f.Name] = f.Required
	}
	assert.True(t, required["target"])
}

func TestE2E_Serve(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.StartServer("e2e-token", "-n", "20", "--refresh-interval", "0")

	t.Run("startup batch becomes latest", func(t *testing.T) {
		require.Eventually(t, func() bool {
			status, _, err := env.Get("/benchmarks/latest")
			return err == nil && status == http.StatusOK
		}, 10*time.Second, 100*time.Millisecond)

		resp, err := env.GetJSON("/benchmarks/latest/units?limit=5")
		require.NoError(t, err)

		var page struct {
			Items   []json.RawMessage `json:"items"`
			HasMore bool              `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Len(t, page.Items, 5)
		assert.True(t, page.HasMore)
	})

	t.Run("artifacts are served", func(t *testing.T) {
		status, body, err := env.Get("/benchmarks/latest/results.csv")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, strings.Split(strings.TrimSpace(string(body)), "\n"), 22)

		status, body, err = env.Get("/benchmarks/latest/chart.svg")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), "<svg")
	})

	t.Run("token is required", func(t *testing.T) {
		resp, err := http.Get(env.ServerURL + "/algorithms")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("cli searches remotely", func(t *testing.T) {
		out, err := env.Run(t.TempDir(), "search", "-o",
			"--api-url", env.ServerURL, "--api-token", "e2e-token", "-t", "9", "2", "2", "2")
		require.NoError(t, err, out)
		assert.Contains(t, out, `"index": null`)
	})

	t.Run("graceful shutdown", func(t *testing.T) {
		assert.NoError(t, env.StopServer())
	})
}
