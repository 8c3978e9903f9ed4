// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package moderation provides the profanity gate run before a user message
// is stored or sent.
//
// The Detector is an injected capability so the engine is testable with a
// fake. Detection runs on the raw input; the redacted copy is what gets
// stored and transmitted, alongside a flag telling the responder that
// profanity was detected. Attachments are not moderated.
package moderation

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Detector classifies and optionally redacts user text. Implementations
// are stateless per call and perform no network I/O.
type Detector interface {
	// Detect reports whether the text contains disallowed terms.
	Detect(text string) bool
	// Redact returns the text with disallowed terms masked.
	Redact(text string) string
}

// DefaultTerms is the built-in screening list. Configured terms are
// screened in addition to these.
var DefaultTerms = []string{
	"ass", "asshole", "bastard", "bitch", "bollocks", "crap",
	"cunt", "damn", "dick", "fuck", "piss", "prick", "shit",
	"slut", "twat", "whore",
}

// =============================================================================
// WORD LIST DETECTOR
// =============================================================================

// WordList matches a fixed term list against NFKC-folded input, so trivial
// Unicode spoofing (fullwidth forms, case tricks) does not slip through.
type WordList struct {
	terms   []string
	pattern *regexp.Regexp
}

// NewWordList builds a detector from disallowed terms. Empty terms are
// ignored; an empty list detects nothing.
func NewWordList(terms []string) *WordList {
	w := &WordList{}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		w.terms = append(w.terms, foldText(t))
	}
	if len(w.terms) > 0 {
		quoted := make([]string, len(w.terms))
		for i, t := range w.terms {
			quoted[i] = regexp.QuoteMeta(t)
		}
		w.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return w
}

// Detect reports whether any disallowed term occurs in the folded text.
func (w *WordList) Detect(text string) bool {
	if w.pattern == nil {
		return false
	}
	return w.pattern.MatchString(foldText(text))
}

// Redact masks each disallowed term with asterisks, leaving the rest of
// the text untouched. Matching runs on the folded text, the same form
// Detect uses, so a term that is only detectable after folding (fullwidth
// letters, case tricks) is still masked in the raw output. Folding is done
// rune by rune to keep folded offsets mappable back to raw runes.
func (w *WordList) Redact(text string) string {
	if w.pattern == nil {
		return text
	}

	raw := []rune(text)
	folded := make([]rune, 0, len(raw))
	rawIdx := make([]int, 0, len(raw))
	for i, r := range raw {
		for _, fr := range foldText(string(r)) {
			folded = append(folded, fr)
			rawIdx = append(rawIdx, i)
		}
	}

	fs := string(folded)
	matches := w.pattern.FindAllStringIndex(fs, -1)
	if len(matches) == 0 {
		return text
	}

	// Folded byte offset of each folded rune, for translating match spans.
	byteOf := make([]int, len(folded)+1)
	pos := 0
	for i, fr := range folded {
		byteOf[i] = pos
		pos += len(string(fr))
	}
	byteOf[len(folded)] = pos

	mask := make([]bool, len(raw))
	fi := 0
	for _, match := range matches {
		for ; fi < len(folded) && byteOf[fi] < match[0]; fi++ {
		}
		for ; fi < len(folded) && byteOf[fi] < match[1]; fi++ {
			mask[rawIdx[fi]] = true
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for i, r := range raw {
		if mask[i] {
			b.WriteRune('*')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// foldText canonicalizes text for matching: NFKC normalization followed by
// Unicode case folding.
func foldText(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// =============================================================================
// NOP DETECTOR
// =============================================================================

// Nop never detects anything. Used when moderation is disabled and as the
// default in tests.
type Nop struct{}

func (Nop) Detect(string) bool     { return false }
func (Nop) Redact(s string) string { return s }
