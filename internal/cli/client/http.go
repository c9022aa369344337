// Package client talks to a running searchbench server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/spf13/cobra"
)

const (
	envAPIToken = "SEARCHBENCH_API_TOKEN"
	envAPIURL   = "SEARCHBENCH_API_URL"
)

type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClientWithCmd creates an APIClient with config cascade: flag → env.
// It returns nil when no API URL is configured, meaning work runs locally.
func NewAPIClientWithCmd(cmd *cobra.Command) *APIClient {
	var token, baseURL string

	if cmd != nil {
		if flagToken, err := cmd.Flags().GetString("api-token"); err == nil && flagToken != "" {
			token = flagToken
		}
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}

	if token == "" {
		token = os.Getenv(envAPIToken)
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}

	if baseURL == "" {
		return nil
	}
	return NewAPIClient(baseURL, token)
}

// NewAPIClient creates an APIClient for baseURL. An empty token sends no
// Authorization header.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// SearchRequest mirrors the server's POST /search body.
type SearchRequest struct {
	Algorithm string   `json:"algorithm,omitempty"`
	Sequence  []uint64 `json:"sequence"`
	Target    uint64   `json:"target"`
}

// SearchResponse mirrors the server's POST /search result.
type SearchResponse struct {
	Target   uint64           `json:"target"`
	Length   int              `json:"length"`
	Outcomes []search.Outcome `json:"outcomes"`
}

// Search runs a search on the server.
func (c *APIClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	resp, err := c.Post(ctx, "/search", req)
	if err != nil {
		return nil, err
	}

	var out SearchResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &out, nil
}

// Get performs a GET request.
func (c *APIClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body interface{}) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}) (*APIResponse, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
			}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       apiResp.Code,
			Message:    apiResp.Error,
		}
	}

	return &apiResp, nil
}
