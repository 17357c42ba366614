package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// HTTPClient implements Client against the structured-extraction HTTP service.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient constructs a client for the given endpoint.
func NewHTTPClient(endpoint, apiKey string) (*HTTPClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("parser endpoint is required")
	}
	timeout := 60 * time.Second
	if raw := strings.TrimSpace(os.Getenv("PARSER_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		apiKey:   strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type parseRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// Parse submits text to the extraction service and decodes the structured record.
func (c *HTTPClient) Parse(ctx context.Context, text string, kind Kind) (Result, error) {
	payload, err := json.Marshal(parseRequest{Text: text, Kind: string(kind)})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/parse", bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("parser request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, fmt.Errorf("parser response read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("parser status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if !json.Valid(body) {
		return Result{}, fmt.Errorf("invalid JSON from parser")
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("parser response decode: %w", err)
	}
	if err := validateResult(result, kind); err != nil {
		return Result{}, err
	}
	return result, nil
}

func validateResult(result Result, kind Kind) error {
	switch kind {
	case KindResume:
		if result.Profile == nil {
			return fmt.Errorf("parser returned no candidate profile")
		}
	case KindJobDescription:
		if result.Job == nil {
			return fmt.Errorf("parser returned no job profile")
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Client = (*HTTPClient)(nil)
