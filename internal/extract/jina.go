// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/meshintel/brief-engine/internal/httputil"
	"github.com/meshintel/brief-engine/internal/metrics"
)

// jinaAPIBase is the Jina Reader endpoint. Declared as a var so tests
// can substitute an httptest server.
var jinaAPIBase = "https://r.jina.ai"

// JinaProvider extracts page text through the Jina Reader service,
// which renders a page and returns its readable text.
type JinaProvider struct {
	APIKey    string
	UserAgent string
	Client    *http.Client

	// MaxRetries bounds 429 backoff retries per request (0 = default).
	MaxRetries int
}

// Name returns the provider identifier.
func (p *JinaProvider) Name() string { return "jina" }

// Extract fetches the readable text of url via the reader proxy.
func (p *JinaProvider) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jinaAPIBase+"/"+url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	req.Header.Set("X-Return-Format", "text")
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, p.MaxRetries)
	if err != nil {
		metrics.RecordProviderCall("jina", "error")
		return "", fmt.Errorf("jina request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderCall("jina", "error")
		return "", fmt.Errorf("jina returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordProviderCall("jina", "error")
		return "", fmt.Errorf("reading jina response: %w", err)
	}

	metrics.RecordProviderCall("jina", "ok")
	return string(body), nil
}
