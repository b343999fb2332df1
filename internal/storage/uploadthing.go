// Package storage talks to the upload storage service that holds track audio.
// Clients upload directly; the server only deletes files it no longer references.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/metrics"
)

// Deleter removes stored files by key.
type Deleter interface {
	DeleteFiles(ctx context.Context, keys ...string) error
}

// Noop is used when no API key is configured.
type Noop struct{}

func (Noop) DeleteFiles(context.Context, ...string) error { return nil }

const apiKeyHeader = "x-uploadthing-api-key"

// Client calls the UploadThing REST API through a circuit breaker.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[struct{}]
}

type deleteRequest struct {
	FileKeys []string `json:"fileKeys"`
}

type deleteResponse struct {
	Success      bool `json:"success"`
	DeletedCount int  `json:"deletedCount"`
}

// New returns Noop when apiKey is empty.
func New(baseURL, apiKey string, timeout time.Duration) Deleter {
	if strings.TrimSpace(apiKey) == "" {
		return Noop{}
	}
	return NewClient(baseURL, apiKey, &http.Client{Timeout: timeout})
}

func NewClient(baseURL, apiKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	metrics.StorageBreakerState.Set(0)
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "upload-storage",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.StorageBreakerState.Set(float64(to))
		},
	})
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: hc, cb: cb}
}

// DeleteFiles removes the given keys. Blank keys are skipped.
func (c *Client) DeleteFiles(ctx context.Context, keys ...string) error {
	var clean []string
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.deleteFiles(ctx, clean)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("upload storage unavailable: %w", err)
	}
	return err
}

func (c *Client) deleteFiles(ctx context.Context, keys []string) error {
	body, err := json.Marshal(deleteRequest{FileKeys: keys})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v6/deleteFiles", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("delete files: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var out deleteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("delete files: decode response: %w", err)
	}
	if !out.Success {
		return errors.New("delete files: storage reported failure")
	}
	return nil
}

// KeyFromURL returns the last path segment of a stored file URL, or "" when
// there is none.
func KeyFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	key := path.Base(p)
	if key == "." || key == "/" {
		return ""
	}
	return key
}
