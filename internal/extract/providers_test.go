// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJinaProviderExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer jina-key" {
			t.Errorf("Authorization = %q, want Bearer jina-key", got)
		}
		if got := r.Header.Get("X-Return-Format"); got != "text" {
			t.Errorf("X-Return-Format = %q, want text", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/https://a.com/blog/one") {
			t.Errorf("path = %q, want target URL appended", r.URL.Path)
		}
		w.Write([]byte("# Article\n\nreadable text"))
	}))
	defer server.Close()

	oldBase := jinaAPIBase
	jinaAPIBase = server.URL
	defer func() { jinaAPIBase = oldBase }()

	p := &JinaProvider{APIKey: "jina-key", Client: server.Client()}
	got, err := p.Extract(context.Background(), "https://a.com/blog/one")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "readable text") {
		t.Errorf("content = %q", got)
	}
}

func TestJinaProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	}))
	defer server.Close()

	oldBase := jinaAPIBase
	jinaAPIBase = server.URL
	defer func() { jinaAPIBase = oldBase }()

	p := &JinaProvider{APIKey: "jina-key", Client: server.Client()}
	if _, err := p.Extract(context.Background(), "https://a.com/blog/one"); err == nil {
		t.Error("expected error for HTTP 502")
	}
}

func TestLocalProviderExtract(t *testing.T) {
	page := `<html>
<head><title>Scaling Postgres | Acme Blog</title><style>body{}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Scaling Postgres</h1>
<p>First paragraph of the article body.</p>
<h2>Connection Pooling</h2>
<p>Second paragraph with detail.</p>
<script>console.log("tracking")</script>
<footer>Copyright Acme</footer>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	p := &LocalProvider{Client: server.Client()}
	got, err := p.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !strings.Contains(got, "# Scaling Postgres | Acme Blog") {
		t.Errorf("missing title heading:\n%s", got)
	}
	if !strings.Contains(got, "## Connection Pooling") {
		t.Errorf("missing h2 heading:\n%s", got)
	}
	if !strings.Contains(got, "First paragraph of the article body.") {
		t.Errorf("missing paragraph text:\n%s", got)
	}
	for _, stripped := range []string{"console.log", "Copyright Acme", "Home", "body{}"} {
		if strings.Contains(got, stripped) {
			t.Errorf("chrome content %q survived stripping:\n%s", stripped, got)
		}
	}
}

func TestLocalProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	p := &LocalProvider{Client: server.Client()}
	if _, err := p.Extract(context.Background(), server.URL); err == nil {
		t.Error("expected error for HTTP 404")
	}
}
