// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/meshintel/brief-engine/pkg/types"
)

// synthesisPromptTmpl asks the model for a complete content brief in a
// single JSON object. The field list mirrors the Brief type exactly;
// missing top-level keys fail validation and burn an attempt.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are an SEO content strategist. Using the competitor research below, produce a content brief for an article about: {{.Topic}}

Competitor research ({{.SourceCount}} analyzed articles):
{{.Research}}

Produce a JSON object with exactly these top-level keys:
- seoData: {"title", "primaryKeyword", "secondaryKeywords" (array), "searchIntent", "difficulty"}
- targetSpecs: {"wordCount" (e.g. "1500-2000"), "readingLevel", "tone", "format"}
- structure: {"h1", "sections": [{"h2", "h3s" (exactly 3 strings)}]} with 4 to 7 sections
- competitorAnalysis: {"commonTopics" (array), "avgWordCount", "gaps" (array)}
- contentRequirements: {"mustInclude" (array), "internalLinks" (array), "externalLinks" (array), "visuals" (array)}
- writingInstructions: {"audience", "voice", "keyPoints" (array), "avoid" (array), "cta"}
- metaData: {"title" (max 60 chars), "description" (max 160 chars)}

Requirements:
- Section headings must be specific to {{.Topic}} and informed by the research. Never use filler headings like "Introduction", "Main Content", "Overview" or "Conclusion".
- Every section has exactly 3 h3 sub-points.
- The h1 must make a concrete promise. Never title it "{{.Topic}}: A Complete Guide" or "The Ultimate Guide to {{.Topic}}".
- The gaps array names topics the competitors skipped; that is where this article wins.
{{if .Strengthen}}
Your previous attempt was rejected for being too generic. Be concrete this time: name specific techniques, tools, numbers, and trade-offs from the research in the headings themselves.
{{end}}
Respond with the JSON object only, no surrounding text.
`))

// buildSynthesisPrompt renders the brief-generation prompt. Attempts
// after the first carry a strengthening instruction because a rejection
// means the model already produced filler once.
func buildSynthesisPrompt(topic string, analyses []types.SourceAnalysis, attempt int) (string, error) {
	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, struct {
		Topic       string
		SourceCount int
		Research    string
		Strengthen  bool
	}{
		Topic:       topic,
		SourceCount: len(analyses),
		Research:    renderResearch(analyses),
		Strengthen:  attempt > 1,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderResearch flattens the analyses into a compact text block for
// the prompt. Degraded profiles are labeled so the model discounts
// them.
func renderResearch(analyses []types.SourceAnalysis) string {
	var b strings.Builder
	for i, a := range analyses {
		fmt.Fprintf(&b, "Article %d (%s)", i+1, a.SourceURL)
		if a.Generic {
			b.WriteString(" [analysis degraded, low confidence]")
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  keywords: %s\n", strings.Join(a.PrimaryKeywords, ", "))
		fmt.Fprintf(&b, "  h2 headings: %s\n", strings.Join(a.Headings.H2s, " | "))
		if len(a.Headings.H3s) > 0 {
			fmt.Fprintf(&b, "  h3 headings: %s\n", strings.Join(a.Headings.H3s, " | "))
		}
		fmt.Fprintf(&b, "  words: %d, tone: %s, style: %s\n", a.WordCount, a.Tone, a.Style)
		if len(a.KeyTopics) > 0 {
			fmt.Fprintf(&b, "  topics: %s\n", strings.Join(a.KeyTopics, ", "))
		}
		if len(a.UniqueAngles) > 0 {
			fmt.Fprintf(&b, "  unique angles: %s\n", strings.Join(a.UniqueAngles, "; "))
		}
	}
	return b.String()
}

// subpointPromptTmpl repairs a section that came back with fewer than
// three sub-points.
var subpointPromptTmpl = template.Must(template.New("subpoints").Parse(`An article about "{{.Topic}}" has a section titled "{{.H2}}"{{if .Existing}} that already covers: {{.Existing}}{{end}}.

Write {{.Needed}} additional specific h3 sub-point headings for this section. Do not repeat the existing sub-points. Avoid filler phrasings like "Understanding ..." or "Benefits of ...".

Respond with a JSON array of {{.Needed}} strings and nothing else.
`))

func buildSubpointPrompt(topic string, section types.Section, needed int) (string, error) {
	var buf bytes.Buffer
	err := subpointPromptTmpl.Execute(&buf, struct {
		Topic    string
		H2       string
		Existing string
		Needed   int
	}{
		Topic:    topic,
		H2:       section.H2,
		Existing: strings.Join(section.H3s, "; "),
		Needed:   needed,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
