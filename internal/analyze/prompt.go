// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"text/template"
)

// analysisPromptTmpl instructs the model to profile a single competitor
// article. Responses must be a bare JSON object; the heading fields are
// cross-checked against the article text afterwards, so the prompt
// insists on verbatim headings.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are a content analysis system. Analyze the following article and produce a structural profile of it.

Report:
- primaryKeywords: 3-7 keywords or short phrases the article actually targets, most important first
- actualH2Headings: the H2 section headings exactly as they appear in the article text, verbatim, in order
- actualH3Headings: the H3 subsection headings exactly as they appear, verbatim (empty array if none)
- wordCount: your estimate of the article's word count as an integer
- tone: one or two words describing the writing tone (e.g. "professional", "conversational")
- style: one word for the content format (e.g. "article", "tutorial", "listicle")
- mainTopics: 3-5 topics the article covers
- uniqueInsights: 1-3 angles or claims that distinguish this article from a generic treatment

Copy headings character for character from the article. Do not invent headings that are not present. Respond with a single JSON object containing exactly the fields above and no text outside it.

Example response:
{"primaryKeywords": ["kubernetes autoscaling", "HPA"], "actualH2Headings": ["How the Horizontal Pod Autoscaler Works"], "actualH3Headings": [], "wordCount": 1850, "tone": "professional", "style": "tutorial", "mainTopics": ["autoscaling", "resource limits"], "uniqueInsights": ["benchmarks HPA reaction latency under burst load"]}

Article:
{{.Content}}
`))

// buildAnalysisPrompt renders the prompt for one article, truncating the
// content prefix so a single oversized page cannot blow the context
// window.
func buildAnalysisPrompt(content string, maxChars int) (string, error) {
	if maxChars > 0 && len(content) > maxChars {
		content = content[:maxChars]
	}
	var buf bytes.Buffer
	if err := analysisPromptTmpl.Execute(&buf, struct{ Content string }{Content: content}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
