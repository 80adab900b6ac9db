// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the brief-engine pipeline.
package types

// SourceCandidate is a competing article discovered by the source finder.
// Candidates are immutable and deduplicated by URL before they reach the
// content extractor.
type SourceCandidate struct {
	// URL is the article location as returned by the search provider.
	URL string `json:"url" yaml:"url"`

	// Title is the result title from the search provider.
	Title string `json:"title" yaml:"title"`

	// Snippet is the short result excerpt, possibly empty.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// ExtractedSource holds the normalized text pulled from one candidate URL.
// When Success is true the content passed quality validation: at least 500
// words, no error-page signature, and visible article structure.
type ExtractedSource struct {
	URL       string `json:"url" yaml:"url"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	WordCount int    `json:"word_count" yaml:"word_count"`
	Success   bool   `json:"success" yaml:"success"`

	// FailureReason explains why validation or the provider call failed.
	// Empty when Success is true.
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}

// HeadingSet groups the section headings observed in one source.
type HeadingSet struct {
	H2s []string `json:"h2s" yaml:"h2s"`
	H3s []string `json:"h3s" yaml:"h3s"`
}

// SourceAnalysis is the structural and keyword profile of one extracted
// source. Every heading and keyword it lists is traceable to text present
// in the source content; the analyzer drops anything it cannot verify.
type SourceAnalysis struct {
	SourceURL       string     `json:"source_url" yaml:"source_url"`
	PrimaryKeywords []string   `json:"primary_keywords" yaml:"primary_keywords"`
	Headings        HeadingSet `json:"headings" yaml:"headings"`
	WordCount       int        `json:"word_count" yaml:"word_count"`
	Tone            string     `json:"tone" yaml:"tone"`
	Style           string     `json:"style" yaml:"style"`
	KeyTopics       []string   `json:"key_topics" yaml:"key_topics"`
	UniqueAngles    []string   `json:"unique_angles" yaml:"unique_angles"`

	// Generic is set when the source's top-level headings match the
	// known boilerplate set ("introduction", "conclusion", ...).
	Generic bool `json:"generic,omitempty" yaml:"generic,omitempty"`
}
