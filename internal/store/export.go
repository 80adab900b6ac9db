// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/brief-engine/pkg/types"
)

// WriteYAML serializes a record to w for machine consumption.
func WriteYAML(w io.Writer, record *types.BriefRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encoding brief record: %w", err)
	}
	return enc.Close()
}

// Render writes the human-readable Markdown artifact for a record into
// the artifact directory and returns its path.
func (s *Store) Render(record *types.BriefRecord) (string, error) {
	if s.artifactDir == "" {
		return "", fmt.Errorf("artifact directory not configured")
	}
	if err := os.MkdirAll(s.artifactDir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	path := filepath.Join(s.artifactDir, record.ID+".md")
	if err := os.WriteFile(path, []byte(RenderMarkdown(record)), 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// RenderMarkdown formats a brief record as a Markdown document.
func RenderMarkdown(record *types.BriefRecord) string {
	b := &strings.Builder{}
	brief := record.Brief

	fmt.Fprintf(b, "# Content Brief: %s\n\n", record.Topic)
	fmt.Fprintf(b, "Generated %s from %d analyzed sources.\n\n",
		record.CreatedAt.Format("2006-01-02"), record.Provenance.SourcesAnalyzed)

	fmt.Fprintf(b, "## SEO\n\n")
	fmt.Fprintf(b, "- **Title:** %s\n", brief.SEOData.Title)
	fmt.Fprintf(b, "- **Primary keyword:** %s\n", brief.SEOData.PrimaryKeyword)
	if len(brief.SEOData.SecondaryKeywords) > 0 {
		fmt.Fprintf(b, "- **Secondary keywords:** %s\n", strings.Join(brief.SEOData.SecondaryKeywords, ", "))
	}
	fmt.Fprintf(b, "- **Search intent:** %s\n", brief.SEOData.SearchIntent)
	fmt.Fprintf(b, "- **Difficulty:** %s\n\n", brief.SEOData.Difficulty)

	fmt.Fprintf(b, "## Target Specs\n\n")
	fmt.Fprintf(b, "- **Word count:** %s\n", brief.TargetSpecs.WordCount)
	fmt.Fprintf(b, "- **Reading level:** %s\n", brief.TargetSpecs.ReadingLevel)
	fmt.Fprintf(b, "- **Tone:** %s\n", brief.TargetSpecs.Tone)
	fmt.Fprintf(b, "- **Format:** %s\n\n", brief.TargetSpecs.Format)

	fmt.Fprintf(b, "## Outline\n\n")
	fmt.Fprintf(b, "# %s\n\n", brief.Structure.H1)
	for _, sec := range brief.Structure.Sections {
		fmt.Fprintf(b, "## %s\n\n", sec.H2)
		for _, h3 := range sec.H3s {
			fmt.Fprintf(b, "- %s\n", h3)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "## Competitor Analysis\n\n")
	fmt.Fprintf(b, "- **Average word count:** %s\n", brief.CompetitorAnalysis.AvgWordCount)
	writeList(b, "Common topics", brief.CompetitorAnalysis.CommonTopics)
	writeList(b, "Gaps to exploit", brief.CompetitorAnalysis.Gaps)
	b.WriteString("\n")

	fmt.Fprintf(b, "## Content Requirements\n\n")
	writeList(b, "Must include", brief.ContentRequirements.MustInclude)
	writeList(b, "Internal links", brief.ContentRequirements.InternalLinks)
	writeList(b, "External links", brief.ContentRequirements.ExternalLinks)
	writeList(b, "Visuals", brief.ContentRequirements.Visuals)
	b.WriteString("\n")

	fmt.Fprintf(b, "## Writing Instructions\n\n")
	fmt.Fprintf(b, "- **Audience:** %s\n", brief.WritingInstructions.Audience)
	fmt.Fprintf(b, "- **Voice:** %s\n", brief.WritingInstructions.Voice)
	writeList(b, "Key points", brief.WritingInstructions.KeyPoints)
	writeList(b, "Avoid", brief.WritingInstructions.Avoid)
	fmt.Fprintf(b, "- **Call to action:** %s\n\n", brief.WritingInstructions.CTA)

	fmt.Fprintf(b, "## Meta Tags\n\n")
	fmt.Fprintf(b, "- **Title:** %s\n", brief.MetaData.Title)
	fmt.Fprintf(b, "- **Description:** %s\n\n", brief.MetaData.Description)

	if len(record.Provenance.Sources) > 0 {
		fmt.Fprintf(b, "## Sources\n\n")
		for _, src := range record.Provenance.Sources {
			fmt.Fprintf(b, "- [%s](%s)\n", src.Title, src.URL)
		}
	}

	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- **%s:**\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
