// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment splits assistant responses into typed segments for
// rendering: fenced code regions become code segments, everything between
// becomes prose. Prose emphasis is a fixed, non-recursive, five-rule
// pipeline, intentionally not a structured-document grammar.
package segment

import (
	"regexp"
	"strings"
)

// =============================================================================
// SEGMENT TYPE
// =============================================================================

// Kind classifies a segment for rendering.
type Kind int

const (
	KindProse Kind = iota
	KindCode
)

// DefaultLanguage is assumed when a fence carries no language tag.
const DefaultLanguage = "text"

// Segment is a contiguous span of a response classified as code or prose.
// Body is always the verbatim source span. For prose segments Rendered
// holds the emphasis-formatted form; code bodies are never formatted.
type Segment struct {
	Kind     Kind
	Language string
	Body     string
	Rendered string
}

// =============================================================================
// FENCE SCANNING
// =============================================================================

// fenceRe matches a triple-backtick fence with an optional language tag
// terminated by a newline, through the closing marker.
var fenceRe = regexp.MustCompile("(?s)```" + `(\w+)?` + "\n(.*?)```")

// Split scans text for fenced code regions and returns the ordered segment
// sequence. Empty leading, trailing and interior prose spans are omitted.
// A text with zero fence matches yields exactly one prose segment equal to
// the whole input, even when the input is empty.
func Split(text string) []Segment {
	matches := fenceRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{Kind: KindProse, Body: text}}
	}

	var segs []Segment
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, Segment{Kind: KindProse, Body: text[last:m[0]]})
		}

		language := DefaultLanguage
		if m[2] >= 0 {
			language = text[m[2]:m[3]]
		}
		// The capture runs up to the closing marker; the newline that
		// precedes it belongs to the fence, not the code.
		segs = append(segs, Segment{
			Kind:     KindCode,
			Language: language,
			Body:     strings.TrimSuffix(text[m[4]:m[5]], "\n"),
		})

		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Kind: KindProse, Body: text[last:]})
	}

	return segs
}

// =============================================================================
// PROSE FORMATTING
// =============================================================================

// Styler supplies the concrete emphasis rendering for prose formatting.
// The pipeline itself is fixed; only the output form varies (terminal
// escapes in the TUI, markers in tests).
type Styler struct {
	Strong func(string) string
	Em     func(string) string
	Code   func(string) string
	Break  string
}

// PlainStyler passes emphasis spans through unchanged, with newlines kept
// as line breaks. Useful for width measurement and plain-text export.
func PlainStyler() Styler {
	ident := func(s string) string { return s }
	return Styler{Strong: ident, Em: ident, Code: ident, Break: "\n"}
}

// Prose formatting rules, applied in fixed precedence. Later rules operate
// on the result of earlier ones; the pipeline is single-pass per rule.
var (
	headingRe    = regexp.MustCompile(`(?m)^### (.*)$`)
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.*?)\*`)
	inlineCodeRe = regexp.MustCompile("`(.*?)`")
)

// Format applies the emphasis pipeline to a prose span:
// line-leading "### " headings, double-marker bold, single-marker italic,
// backtick inline code, then newline to line break.
func (st Styler) Format(prose string) string {
	out := headingRe.ReplaceAllStringFunc(prose, func(m string) string {
		return st.Strong(strings.TrimPrefix(m, "### "))
	})
	out = boldRe.ReplaceAllStringFunc(out, func(m string) string {
		return st.Strong(m[2 : len(m)-2])
	})
	out = italicRe.ReplaceAllStringFunc(out, func(m string) string {
		return st.Em(m[1 : len(m)-1])
	})
	out = inlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		return st.Code(m[1 : len(m)-1])
	})
	return strings.ReplaceAll(out, "\n", st.Break)
}

// =============================================================================
// SEGMENTATION ENTRY POINT
// =============================================================================

// Segment splits text and formats every prose segment with the styler.
// Code bodies pass through verbatim.
func (st Styler) Segment(text string) []Segment {
	segs := Split(text)
	for i := range segs {
		if segs[i].Kind == KindProse {
			segs[i].Rendered = st.Format(segs[i].Body)
		}
	}
	return segs
}
