// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSerpAPIBackendSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("engine"); got != "google" {
			t.Errorf("engine = %q, want google", got)
		}
		if got := q.Get("q"); got != "kubernetes blog" {
			t.Errorf("q = %q, want 'kubernetes blog'", got)
		}
		if got := q.Get("num"); got != "10" {
			t.Errorf("num = %q, want 10", got)
		}
		if got := q.Get("gl"); got != "us" {
			t.Errorf("gl = %q, want us", got)
		}
		if got := q.Get("hl"); got != "en" {
			t.Errorf("hl = %q, want en", got)
		}
		if got := q.Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic_results": [
				{"link": "https://a.com/blog/one", "title": "One", "snippet": "first"},
				{"link": "https://b.com/guide/two", "title": "Two", "snippet": "second"}
			]
		}`))
	}))
	defer server.Close()

	oldBase := serpAPIBase
	serpAPIBase = server.URL
	defer func() { serpAPIBase = oldBase }()

	backend := &SerpAPIBackend{APIKey: "test-key", Client: server.Client()}
	results, err := backend.Search(context.Background(), "kubernetes blog", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "https://a.com/blog/one" {
		t.Errorf("URL = %q", results[0].URL)
	}
	if results[0].Title != "One" {
		t.Errorf("Title = %q", results[0].Title)
	}
	if results[1].Snippet != "second" {
		t.Errorf("Snippet = %q", results[1].Snippet)
	}
}

func TestSerpAPIBackendMissingKey(t *testing.T) {
	backend := &SerpAPIBackend{}
	if _, err := backend.Search(context.Background(), "anything", 10); err == nil {
		t.Error("expected error without API key")
	}
}

func TestSerpAPIBackendHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	oldBase := serpAPIBase
	serpAPIBase = server.URL
	defer func() { serpAPIBase = oldBase }()

	backend := &SerpAPIBackend{APIKey: "test-key", Client: server.Client()}
	if _, err := backend.Search(context.Background(), "kubernetes", 10); err == nil {
		t.Error("expected error for HTTP 500")
	}
}

func TestSerpAPIBackendEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results": []}`))
	}))
	defer server.Close()

	oldBase := serpAPIBase
	serpAPIBase = server.URL
	defer func() { serpAPIBase = oldBase }()

	backend := &SerpAPIBackend{APIKey: "test-key", Client: server.Client()}
	results, err := backend.Search(context.Background(), "nonexistent", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
