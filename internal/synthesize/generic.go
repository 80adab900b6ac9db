// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"strings"

	"github.com/meshintel/brief-engine/pkg/types"
)

// genericHeadings are filler section titles that tell the reader
// nothing. A brief leaning on them gets regenerated.
var genericHeadings = map[string]bool{
	"introduction":   true,
	"main content":   true,
	"conclusion":     true,
	"overview":       true,
	"summary":        true,
	"final thoughts": true,
}

// genericHeadlineSuffixes and genericHeadlinePrefixes catch stock
// headline shapes regardless of the topic spliced into them.
var genericHeadlineSuffixes = []string{
	": a complete guide",
	": the complete guide",
	": everything you need to know",
}

var genericHeadlinePrefixes = []string{
	"the ultimate guide to ",
	"the complete guide to ",
	"everything you need to know about ",
}

// genericSubpointPrefixes and genericSubpoints catch template-shaped
// sub-points ("Understanding X", "Benefits of X") that carry no
// competitor-specific information.
var genericSubpointPrefixes = []string{
	"understanding ",
	"benefits of ",
	"introduction to ",
	"overview of ",
}

var genericSubpoints = map[string]bool{
	"implementation strategies": true,
	"best practices":            true,
	"key takeaways":             true,
}

func isGenericSubpoint(h3 string) bool {
	lower := strings.ToLower(strings.TrimSpace(h3))
	lower = strings.TrimRight(lower, ".:!?")
	if genericSubpoints[lower] {
		return true
	}
	for _, prefix := range genericSubpointPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func isGenericHeading(h string) bool {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimRight(h, ".:!?")
	return genericHeadings[h]
}

func isGenericHeadline(h1 string) bool {
	lower := strings.ToLower(strings.TrimSpace(h1))
	if lower == "" {
		return true
	}
	for _, suffix := range genericHeadlineSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	for _, prefix := range genericHeadlinePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// sectionIsGeneric flags a section whose title is filler or whose
// sub-points are mostly template-shaped.
func sectionIsGeneric(s types.Section) bool {
	if isGenericHeading(s.H2) {
		return true
	}
	if len(s.H3s) == 0 {
		return false
	}
	generic := 0
	for _, h3 := range s.H3s {
		if isGenericSubpoint(h3) {
			generic++
		}
	}
	return generic*2 >= len(s.H3s)
}

// IsGenericBrief reports whether a brief reads like filler: a stock
// headline, no sections at all, or filler on half or more of its
// sections. Section filler covers both the titles and the sub-points,
// so a brief cannot pass on specific H2s propped up by template H3s.
func IsGenericBrief(b types.Brief) bool {
	if isGenericHeadline(b.Structure.H1) {
		return true
	}
	sections := b.Structure.Sections
	if len(sections) == 0 {
		return true
	}
	generic := 0
	for _, s := range sections {
		if sectionIsGeneric(s) {
			generic++
		}
	}
	return generic*2 >= len(sections)
}
