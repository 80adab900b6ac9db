// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/meshintel/brief-engine/internal/httputil"
	"github.com/meshintel/brief-engine/internal/metrics"
	"github.com/meshintel/brief-engine/pkg/types"
)

// serpAPIBase is the SerpAPI search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search"

// SerpAPIBackend queries Google through SerpAPI.
type SerpAPIBackend struct {
	APIKey    string
	UserAgent string
	Client    *http.Client

	// MaxRetries bounds 429 backoff retries per request (0 = default).
	MaxRetries int
}

// Name returns the backend identifier.
func (b *SerpAPIBackend) Name() string { return "serpapi" }

// serpAPIResponse mirrors the subset of the SerpAPI payload we consume.
type serpAPIResponse struct {
	OrganicResults []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search issues one Google query and returns the organic results.
func (b *SerpAPIBackend) Search(ctx context.Context, query string, count int) ([]types.SourceCandidate, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("serpapi api key not configured")
	}
	if count <= 0 {
		count = 10
	}

	params := url.Values{
		"engine":  {"google"},
		"q":       {query},
		"num":     {strconv.Itoa(count)},
		"gl":      {"us"},
		"hl":      {"en"},
		"api_key": {b.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, b.MaxRetries)
	if err != nil {
		metrics.RecordProviderCall("serpapi", "error")
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderCall("serpapi", "error")
		return nil, fmt.Errorf("serpapi returned HTTP %d", resp.StatusCode)
	}

	var sr serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		metrics.RecordProviderCall("serpapi", "error")
		return nil, fmt.Errorf("parsing serpapi response: %w", err)
	}

	results := make([]types.SourceCandidate, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		results = append(results, types.SourceCandidate{
			URL:     r.Link,
			Title:   r.Title,
			Snippet: r.Snippet,
		})
	}

	metrics.RecordProviderCall("serpapi", "ok")
	return results, nil
}
