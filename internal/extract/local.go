// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/meshintel/brief-engine/internal/httputil"
	"github.com/meshintel/brief-engine/internal/metrics"
)

// LocalProvider fetches pages directly and strips them to readable text
// with goquery. No external service, no JavaScript rendering; use it
// for offline work or when the reader service is unavailable.
type LocalProvider struct {
	UserAgent string
	Client    *http.Client

	MaxRetries int
}

// Name returns the provider identifier.
func (p *LocalProvider) Name() string { return "local" }

// chromeNodes are stripped before text extraction.
var chromeNodes = []string{"script", "style", "noscript", "nav", "header", "footer", "aside", "form", "iframe"}

// Extract fetches url and returns its text in a light markdown shape:
// headings as #-prefixed lines, paragraphs separated by blank lines.
func (p *LocalProvider) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, p.MaxRetries)
	if err != nil {
		metrics.RecordProviderCall("local", "error")
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderCall("local", "error")
		return "", fmt.Errorf("page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.RecordProviderCall("local", "error")
		return "", fmt.Errorf("parsing page: %w", err)
	}

	metrics.RecordProviderCall("local", "ok")
	return renderDocument(doc), nil
}

// renderDocument flattens the document body into heading and paragraph
// lines. The page title leads the output when present so that title
// derivation downstream has something to work with.
func renderDocument(doc *goquery.Document) string {
	for _, sel := range chromeNodes {
		doc.Find(sel).Remove()
	}

	var b strings.Builder

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title != "" {
		b.WriteString("# " + collapseSpace(title) + "\n\n")
	}

	doc.Find("h1, h2, h3, h4, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1":
			b.WriteString("# " + text + "\n\n")
		case "h2":
			b.WriteString("## " + text + "\n\n")
		case "h3":
			b.WriteString("### " + text + "\n\n")
		case "h4":
			b.WriteString("#### " + text + "\n\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	return strings.TrimSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
