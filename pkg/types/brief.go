// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Brief is the terminal artifact of a pipeline run: a structured content
// brief with six named sub-sections plus meta tags. Downstream consumers
// depend on the exact JSON field names and on the structural invariants:
// 4-7 sections, exactly three sub-points per section, no duplicate section
// headings (case-insensitive).
type Brief struct {
	SEOData             SEOData             `json:"seoData" yaml:"seo_data"`
	TargetSpecs         TargetSpecs         `json:"targetSpecs" yaml:"target_specs"`
	Structure           Structure           `json:"structure" yaml:"structure"`
	CompetitorAnalysis  CompetitorAnalysis  `json:"competitorAnalysis" yaml:"competitor_analysis"`
	ContentRequirements ContentRequirements `json:"contentRequirements" yaml:"content_requirements"`
	WritingInstructions WritingInstructions `json:"writingInstructions" yaml:"writing_instructions"`
	MetaData            MetaData            `json:"metaData" yaml:"meta_data"`
}

// SEOData carries the target keyword strategy.
type SEOData struct {
	Title             string   `json:"title" yaml:"title"`
	PrimaryKeyword    string   `json:"primaryKeyword" yaml:"primary_keyword"`
	SecondaryKeywords []string `json:"secondaryKeywords" yaml:"secondary_keywords"`
	SearchIntent      string   `json:"searchIntent" yaml:"search_intent"`
	Difficulty        string   `json:"difficulty" yaml:"difficulty"`
}

// TargetSpecs describes the recommended shape of the article to write.
type TargetSpecs struct {
	WordCount    string `json:"wordCount" yaml:"word_count"`
	ReadingLevel string `json:"readingLevel" yaml:"reading_level"`
	Tone         string `json:"tone" yaml:"tone"`
	Format       string `json:"format" yaml:"format"`
}

// Section is one H2 section with exactly three H3 sub-points.
type Section struct {
	H2  string   `json:"h2" yaml:"h2"`
	H3s []string `json:"h3s" yaml:"h3s"`
}

// Structure is the recommended outline: one H1 and 4-7 sections.
type Structure struct {
	H1       string    `json:"h1" yaml:"h1"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// CompetitorAnalysis summarizes what the analyzed sources cover.
type CompetitorAnalysis struct {
	CommonTopics []string `json:"commonTopics" yaml:"common_topics"`
	AvgWordCount string   `json:"avgWordCount" yaml:"avg_word_count"`
	Gaps         []string `json:"gaps" yaml:"gaps"`
}

// ContentRequirements lists elements the article must contain.
type ContentRequirements struct {
	MustInclude   []string `json:"mustInclude" yaml:"must_include"`
	InternalLinks []string `json:"internalLinks" yaml:"internal_links"`
	ExternalLinks []string `json:"externalLinks" yaml:"external_links"`
	Visuals       []string `json:"visuals" yaml:"visuals"`
}

// WritingInstructions guides the eventual writer.
type WritingInstructions struct {
	Audience  string   `json:"audience" yaml:"audience"`
	Voice     string   `json:"voice" yaml:"voice"`
	KeyPoints []string `json:"keyPoints" yaml:"key_points"`
	Avoid     []string `json:"avoid" yaml:"avoid"`
	CTA       string   `json:"cta" yaml:"cta"`
}

// MetaData holds the SEO meta tags.
type MetaData struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// SourceRef records one discovered source for provenance.
type SourceRef struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// Provenance carries the per-stage counters surfaced to the caller
// alongside the Brief.
type Provenance struct {
	SourcesFound     int         `json:"sources_found" yaml:"sources_found"`
	SourcesExtracted int         `json:"sources_extracted" yaml:"sources_extracted"`
	SourcesAnalyzed  int         `json:"sources_analyzed" yaml:"sources_analyzed"`
	Sources          []SourceRef `json:"sources" yaml:"sources"`
}

// BriefRecord is the persisted form of a finished run.
type BriefRecord struct {
	ID           string     `json:"id" yaml:"id"`
	UserID       string     `json:"user_id" yaml:"user_id"`
	Topic        string     `json:"topic" yaml:"topic"`
	Brief        Brief      `json:"brief" yaml:"brief"`
	Provenance   Provenance `json:"provenance" yaml:"provenance"`
	ArtifactPath string     `json:"artifact_path,omitempty" yaml:"artifact_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
}
