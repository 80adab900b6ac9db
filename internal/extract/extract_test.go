// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/meshintel/brief-engine/pkg/types"
)

// mockProvider serves canned text per URL.
type mockProvider struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Extract(ctx context.Context, url string) (string, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	page, ok := m.pages[url]
	if !ok {
		return "", errors.New("no such page")
	}
	return page, nil
}

func testExtractionConfig() types.ExtractionConfig {
	return types.ExtractionConfig{
		TargetSuccesses: 5,
		MinSuccesses:    2,
		MinWordCount:    500,
		InterCallDelay:  time.Millisecond,
	}
}

// goodArticle builds a structured article comfortably over the word
// floor.
func goodArticle(title string) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	for i := 0; i < 6; i++ {
		b.WriteString(fmt.Sprintf("## Section %d\n\n", i+1))
		for j := 0; j < 100; j++ {
			b.WriteString("word ")
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func candidates(urls ...string) []types.SourceCandidate {
	out := make([]types.SourceCandidate, 0, len(urls))
	for _, u := range urls {
		out = append(out, types.SourceCandidate{URL: u, Title: "serp title"})
	}
	return out
}

func TestExtractAllStopsAtTarget(t *testing.T) {
	provider := &mockProvider{pages: map[string]string{}}
	urls := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		u := fmt.Sprintf("https://site%d.com/blog/post", i)
		urls = append(urls, u)
		provider.pages[u] = goodArticle(fmt.Sprintf("Post %d", i))
	}

	e := NewExtractor(provider, testExtractionConfig(), nil)
	defer e.Close()

	got, err := e.ExtractAll(context.Background(), candidates(urls...))
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d sources, want 5", len(got))
	}
	// Remaining candidates are never fetched once the target is met.
	if len(provider.calls) != 5 {
		t.Errorf("provider called %d times, want 5", len(provider.calls))
	}
}

func TestExtractAllSkipsFailures(t *testing.T) {
	provider := &mockProvider{
		pages: map[string]string{
			"https://a.com/blog/one":   goodArticle("One"),
			"https://c.com/blog/three": goodArticle("Three"),
		},
		errs: map[string]error{
			"https://b.com/blog/two": errors.New("connection refused"),
		},
	}

	e := NewExtractor(provider, testExtractionConfig(), nil)
	defer e.Close()

	got, err := e.ExtractAll(context.Background(),
		candidates("https://a.com/blog/one", "https://b.com/blog/two", "https://c.com/blog/three"))
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sources, want 2", len(got))
	}
	for _, s := range got {
		if !s.Success {
			t.Errorf("returned source not marked successful: %s", s.URL)
		}
	}
}

func TestExtractAllBelowMinimum(t *testing.T) {
	provider := &mockProvider{
		pages: map[string]string{
			"https://a.com/blog/one": goodArticle("One"),
		},
		errs: map[string]error{
			"https://b.com/blog/two":   errors.New("timeout"),
			"https://c.com/blog/three": errors.New("timeout"),
		},
	}

	e := NewExtractor(provider, testExtractionConfig(), nil)
	defer e.Close()

	_, err := e.ExtractAll(context.Background(),
		candidates("https://a.com/blog/one", "https://b.com/blog/two", "https://c.com/blog/three"))
	if err == nil {
		t.Fatal("expected error when below minimum success count")
	}
	if !errors.Is(err, ErrInsufficientContent) {
		t.Errorf("error = %v, want ErrInsufficientContent", err)
	}
}

func TestExtractAllContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExtractor(&mockProvider{}, testExtractionConfig(), nil)
	defer e.Close()

	if _, err := e.ExtractAll(ctx, candidates("https://a.com/blog/one")); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExtractOneSetsMetadata(t *testing.T) {
	provider := &mockProvider{pages: map[string]string{
		"https://a.com/blog/one": goodArticle("Derived Heading"),
	}}
	e := NewExtractor(provider, testExtractionConfig(), nil)
	defer e.Close()

	src := e.extractOne(context.Background(), types.SourceCandidate{URL: "https://a.com/blog/one"})
	if !src.Success {
		t.Fatalf("extraction failed: %s", src.FailureReason)
	}
	if src.Title != "Derived Heading" {
		t.Errorf("Title = %q, want Derived Heading", src.Title)
	}
	if src.WordCount < 500 {
		t.Errorf("WordCount = %d, want >= 500", src.WordCount)
	}
}

func TestValidateContent(t *testing.T) {
	e := NewExtractor(&mockProvider{}, testExtractionConfig(), nil)
	defer e.Close()

	longUnstructured := strings.Repeat("word ", 1100)
	shortStructured := "## Heading\n\n" + strings.Repeat("word ", 600)
	twoParagraphs := strings.Repeat("alpha ", 300) + "\n\n" + strings.Repeat("beta ", 300)
	// Short in characters so the error-phrase check applies, but still
	// over the word floor.
	errorPage := "404 page not found\n\n" + strings.Repeat("a ", 600)
	longWithErrorPhrase := "## Debugging\n\n" + strings.Repeat("padding text here and more prose ", 200) +
		"\n\nwhen the server says not found you should check the route table"

	tests := []struct {
		name    string
		content string
		wantOK  bool
	}{
		{"empty", "", false},
		{"below word floor", strings.Repeat("word ", 100), false},
		{"structured and long enough", shortStructured, true},
		{"unstructured but very long", longUnstructured, true},
		{"two plain paragraphs", twoParagraphs, true},
		{"unstructured and merely adequate", strings.Repeat("word ", 700), false},
		{"short error page", errorPage, false},
		{"long article mentioning error phrase", longWithErrorPhrase, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := e.validateContent(strings.TrimSpace(tt.content))
			if tt.wantOK && reason != "" {
				t.Errorf("rejected: %s", reason)
			}
			if !tt.wantOK && reason == "" {
				t.Error("accepted, want rejection")
			}
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"# Kubernetes at Scale\n\nbody", "Kubernetes at Scale"},
		{"\n\n  ## Deep Dive\nbody", "Deep Dive"},
		{"Plain first line\nsecond", "Plain first line"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := deriveTitle(tt.content); got != tt.want {
			t.Errorf("deriveTitle(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
