// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meshintel/brief-engine/pkg/types"
)

// FallbackBrief assembles a brief deterministically from the analyses
// when the model cannot produce one. It is built entirely from observed
// competitor data plus topic-derived scaffolding, and it must itself
// pass the genericity check: a fallback that trips the same filter it
// exists to satisfy would be a bug.
func FallbackBrief(topic string, analyses []types.SourceAnalysis) types.Brief {
	keywords := rankedKeywords(analyses)
	primary := strings.ToLower(topic)

	// Topic stays primary; competitor keywords become secondary.
	secondary := make([]string, 0, 5)
	for _, k := range keywords {
		if strings.EqualFold(k, topic) {
			continue
		}
		secondary = append(secondary, k)
		if len(secondary) == 5 {
			break
		}
	}

	avg := averageWordCount(analyses)
	commonTopics := rankedTopics(analyses)

	sections := fallbackSections(topic, analyses)

	return types.Brief{
		SEOData: types.SEOData{
			Title:             fmt.Sprintf("%s: Lessons from %d Competing Articles", topic, len(analyses)),
			PrimaryKeyword:    primary,
			SecondaryKeywords: secondary,
			SearchIntent:      "informational",
			Difficulty:        "medium",
		},
		TargetSpecs: types.TargetSpecs{
			WordCount:    fmt.Sprintf("%d-%d", avg, avg+500),
			ReadingLevel: "intermediate",
			Tone:         dominantTone(analyses),
			Format:       "article",
		},
		Structure: types.Structure{
			H1:       fmt.Sprintf("%s: Lessons from %d Competing Articles", topic, len(analyses)),
			Sections: sections,
		},
		CompetitorAnalysis: types.CompetitorAnalysis{
			CommonTopics: commonTopics,
			AvgWordCount: fmt.Sprintf("%d", avg),
			Gaps:         []string{fmt.Sprintf("first-hand results and measurements for %s", topic)},
		},
		ContentRequirements: types.ContentRequirements{
			MustInclude:   mustIncludeList(topic, keywords),
			InternalLinks: []string{},
			ExternalLinks: []string{"one authoritative source per major claim"},
			Visuals:       []string{fmt.Sprintf("diagram or screenshot illustrating %s in practice", topic)},
		},
		WritingInstructions: types.WritingInstructions{
			Audience:  fmt.Sprintf("readers evaluating or working with %s", topic),
			Voice:     "direct, specific, evidence-led",
			KeyPoints: keyPointList(topic, commonTopics),
			Avoid:     []string{"unsupported superlatives", "restating competitor content without adding depth"},
			CTA:       fmt.Sprintf("invite readers to apply one %s takeaway this week", strings.ToLower(topic)),
		},
		MetaData: types.MetaData{
			Title:       truncate(fmt.Sprintf("%s: What %d Top Articles Get Right", topic, len(analyses)), 60),
			Description: truncate(fmt.Sprintf("A practical look at %s drawn from %d high-ranking articles: what they cover, where they fall short, and what to do differently.", topic, len(analyses)), 160),
		},
	}
}

// fallbackSections picks the most common non-filler competitor headings
// first, then tops up from topic-derived templates to reach at least
// four sections.
func fallbackSections(topic string, analyses []types.SourceAnalysis) []types.Section {
	used := map[string]bool{}
	sections := make([]types.Section, 0, 7)

	for _, h := range rankedHeadings(analyses) {
		if len(sections) == 5 {
			break
		}
		key := strings.ToLower(h)
		if used[key] || isGenericHeading(h) {
			continue
		}
		used[key] = true
		sections = append(sections, types.Section{H2: h, H3s: deterministicSubpoints(topic, h, nil)})
	}

	for _, h := range topicSectionTemplates(topic) {
		if len(sections) >= 4 {
			break
		}
		key := strings.ToLower(h)
		if used[key] {
			continue
		}
		used[key] = true
		sections = append(sections, types.Section{H2: h, H3s: deterministicSubpoints(topic, h, nil)})
	}

	return sections
}

// topicSectionTemplates derives concrete section headings from the
// topic itself. These deliberately avoid the filler shapes the
// genericity filter rejects.
func topicSectionTemplates(topic string) []string {
	return []string{
		fmt.Sprintf("How %s Works in Practice", topic),
		fmt.Sprintf("Choosing an Approach to %s", topic),
		fmt.Sprintf("Common %s Mistakes and How to Avoid Them", topic),
		fmt.Sprintf("Measuring Results with %s", topic),
		fmt.Sprintf("Where %s Is Heading Next", topic),
	}
}

// deterministicSubpoints fills a section's sub-points without a model
// call. Existing sub-points are kept in front; each template is skipped
// if it duplicates one.
func deterministicSubpoints(topic, h2 string, existing []string) []string {
	out := make([]string, 0, 3)
	seen := map[string]bool{}
	for _, p := range existing {
		p = strings.TrimSpace(p)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
		if len(out) == 3 {
			return out
		}
	}

	candidates := []string{
		fmt.Sprintf("What the data shows about %s", strings.ToLower(h2)),
		fmt.Sprintf("Applying this to your own %s work", strings.ToLower(topic)),
		"Trade-offs to weigh before committing",
		fmt.Sprintf("Questions to ask when evaluating %s", strings.ToLower(h2)),
		fmt.Sprintf("A worked example with %s", strings.ToLower(topic)),
	}
	for _, c := range candidates {
		if len(out) == 3 {
			break
		}
		if seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}

// rankedKeywords returns keywords across all analyses ordered by
// frequency, then first appearance. Degraded profiles are skipped when
// any real profile exists, since their keywords are placeholders.
func rankedKeywords(analyses []types.SourceAnalysis) []string {
	return rankStrings(analyses, func(a types.SourceAnalysis) []string { return a.PrimaryKeywords })
}

func rankedTopics(analyses []types.SourceAnalysis) []string {
	topics := rankStrings(analyses, func(a types.SourceAnalysis) []string { return a.KeyTopics })
	if len(topics) > 5 {
		topics = topics[:5]
	}
	return topics
}

func rankedHeadings(analyses []types.SourceAnalysis) []string {
	return rankStrings(analyses, func(a types.SourceAnalysis) []string { return a.Headings.H2s })
}

func rankStrings(analyses []types.SourceAnalysis, pick func(types.SourceAnalysis) []string) []string {
	hasReal := false
	for _, a := range analyses {
		if !a.Generic {
			hasReal = true
			break
		}
	}

	type entry struct {
		value string
		count int
		first int
	}
	byKey := map[string]*entry{}
	order := 0
	for _, a := range analyses {
		if a.Generic && hasReal {
			continue
		}
		for _, v := range pick(a) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if e, ok := byKey[key]; ok {
				e.count++
				continue
			}
			byKey[key] = &entry{value: v, count: 1, first: order}
			order++
		}
	}

	entries := make([]*entry, 0, len(byKey))
	for _, e := range byKey {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	return out
}

func averageWordCount(analyses []types.SourceAnalysis) int {
	total, n := 0, 0
	for _, a := range analyses {
		if a.WordCount > 0 {
			total += a.WordCount
			n++
		}
	}
	if n == 0 {
		return 1500
	}
	return total / n
}

func dominantTone(analyses []types.SourceAnalysis) string {
	counts := map[string]int{}
	best, bestCount := "professional", 0
	for _, a := range analyses {
		tone := strings.ToLower(strings.TrimSpace(a.Tone))
		if tone == "" {
			continue
		}
		counts[tone]++
		if counts[tone] > bestCount {
			best, bestCount = tone, counts[tone]
		}
	}
	return best
}

func mustIncludeList(topic string, keywords []string) []string {
	out := []string{fmt.Sprintf("a concrete definition of %s in the opening section", topic)}
	if len(keywords) > 0 {
		out = append(out, fmt.Sprintf("natural usage of %q and related terms", keywords[0]))
	}
	out = append(out, "at least one worked example or case study")
	return out
}

func keyPointList(topic string, commonTopics []string) []string {
	out := make([]string, 0, 4)
	for i, t := range commonTopics {
		if i == 3 {
			break
		}
		out = append(out, fmt.Sprintf("cover %s with more depth than competitors", t))
	}
	if len(out) == 0 {
		out = append(out, fmt.Sprintf("give readers an actionable path into %s", topic))
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max])
}
