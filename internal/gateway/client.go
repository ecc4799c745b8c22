// Package gateway wraps the generative analysis backend behind four typed
// request/response operations. Each call is a single OpenAI-compatible
// chat-completions request; structured output is schema-checked before
// decoding. The package holds no state between calls.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Config holds parameters for one model backend.
type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client issues analysis requests to a single model backend.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client with defaults filled in.
func New(cfg Config) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// chat sends one system+user exchange and returns the raw assistant text.
// HTTP 429 maps to ErrRateLimited; every other failure wraps ErrUpstream.
func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": 0.2,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("model backend HTTP 429: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", ErrUpstream)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// decode strips markdown fences, validates the payload against the given
// schema, and unmarshals into out. Any failure is an upstream error: the
// backend broke its output contract.
func decode(raw string, schema *gojsonschema.Schema, out interface{}) error {
	cleaned := cleanJSON(raw)
	if err := validateSchema(schema, []byte(cleaned)); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

// cleanJSON strips markdown fences and leading/trailing whitespace.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
