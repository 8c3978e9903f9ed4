// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"testing"
)

// markerStyler wraps emphasis spans in visible markers so tests can assert
// exactly which rule fired.
func markerStyler() Styler {
	return Styler{
		Strong: func(s string) string { return "<strong>" + s + "</strong>" },
		Em:     func(s string) string { return "<em>" + s + "</em>" },
		Code:   func(s string) string { return "<code>" + s + "</code>" },
		Break:  "<br />",
	}
}

// =============================================================================
// FENCE SCANNING TESTS
// =============================================================================

func TestSplit_NoFences(t *testing.T) {
	inputs := []string{
		"plain prose with no code at all",
		"",
		"line one\nline two",
		"unterminated ```python\nprint(1)",
	}

	for _, in := range inputs {
		segs := Split(in)
		if len(segs) != 1 {
			t.Fatalf("Split(%q) returned %d segments, want 1", in, len(segs))
		}
		if segs[0].Kind != KindProse {
			t.Errorf("Split(%q) kind = %v, want prose", in, segs[0].Kind)
		}
		if segs[0].Body != in {
			t.Errorf("Split(%q) body = %q, want byte-for-byte input", in, segs[0].Body)
		}
	}
}

func TestSplit_SingleFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kinds    []Kind
		language string
		body     string
	}{
		{
			name:     "fence with surrounding prose",
			input:    "Here you go:\n```python\nprint(1)\n```\nDone.",
			kinds:    []Kind{KindProse, KindCode, KindProse},
			language: "python",
			body:     "print(1)",
		},
		{
			name:     "fence only",
			input:    "```python\nprint(1)\n```",
			kinds:    []Kind{KindCode},
			language: "python",
			body:     "print(1)",
		},
		{
			name:     "no language tag defaults to text",
			input:    "```\nls -la\n```",
			kinds:    []Kind{KindCode},
			language: "text",
			body:     "ls -la",
		},
		{
			name:     "leading fence with trailing prose",
			input:    "```go\nfmt.Println()\n```\nThat prints a newline.",
			kinds:    []Kind{KindCode, KindProse},
			language: "go",
			body:     "fmt.Println()",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segs := Split(tc.input)
			if len(segs) != len(tc.kinds) {
				t.Fatalf("got %d segments, want %d", len(segs), len(tc.kinds))
			}
			for i, k := range tc.kinds {
				if segs[i].Kind != k {
					t.Errorf("segment %d kind = %v, want %v", i, segs[i].Kind, k)
				}
			}
			for _, s := range segs {
				if s.Kind != KindCode {
					continue
				}
				if s.Language != tc.language {
					t.Errorf("language = %q, want %q", s.Language, tc.language)
				}
				if s.Body != tc.body {
					t.Errorf("body = %q, want %q", s.Body, tc.body)
				}
			}
		})
	}
}

func TestSplit_AdjacentFencesOmitEmptySpans(t *testing.T) {
	input := "```a\none\n``````b\ntwo\n```"
	segs := Split(input)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2 (empty interior span omitted)", len(segs))
	}
	for i, want := range []string{"a", "b"} {
		if segs[i].Kind != KindCode || segs[i].Language != want {
			t.Errorf("segment %d = %+v, want code/%s", i, segs[i], want)
		}
	}
}

func TestSplit_CodeBodyVerbatim(t *testing.T) {
	// Emphasis markers inside a fence must survive untouched.
	input := "```python\n# **not bold** and *not italic*\nprint(1)\n```"
	segs := markerStyler().Segment(input)
	if len(segs) != 1 || segs[0].Kind != KindCode {
		t.Fatalf("unexpected segmentation: %+v", segs)
	}
	want := "# **not bold** and *not italic*\nprint(1)"
	if segs[0].Body != want {
		t.Errorf("code body = %q, want %q", segs[0].Body, want)
	}
	if segs[0].Rendered != "" {
		t.Errorf("code segment was formatted: %q", segs[0].Rendered)
	}
}

// =============================================================================
// PROSE PIPELINE TESTS
// =============================================================================

func TestFormat_Pipeline(t *testing.T) {
	st := markerStyler()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "heading consumes marker",
			input: "### Summary",
			want:  "<strong>Summary</strong>",
		},
		{
			name:  "bold",
			input: "a **bold** word",
			want:  "a <strong>bold</strong> word",
		},
		{
			name:  "italic",
			input: "an *italic* word",
			want:  "an <em>italic</em> word",
		},
		{
			name:  "inline code",
			input: "run `nmap -sV` first",
			want:  "run <code>nmap -sV</code> first",
		},
		{
			name:  "newline becomes break",
			input: "one\ntwo",
			want:  "one<br />two",
		},
		{
			name:  "bold inside heading is not reprocessed",
			input: "### Already **strong**",
			want:  "<strong>Already **strong**</strong>",
		},
		{
			name:  "italic nested after bold consumption",
			input: "**bold** then *em*",
			want:  "<strong>bold</strong> then <em>em</em>",
		},
		{
			name:  "heading only at line start",
			input: "not a ### heading",
			want:  "not a ### heading",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := st.Format(tc.input); got != tc.want {
				t.Errorf("Format(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSegment_ProseKeepsRawBody(t *testing.T) {
	input := "### Title\nwith **emphasis**"
	segs := markerStyler().Segment(input)
	if len(segs) != 1 || segs[0].Kind != KindProse {
		t.Fatalf("unexpected segmentation: %+v", segs)
	}
	// Body stays byte-for-byte; Rendered carries the formatted form.
	if segs[0].Body != input {
		t.Errorf("raw body = %q, want %q", segs[0].Body, input)
	}
	want := "<strong>Title</strong><br />with <strong>emphasis</strong>"
	if segs[0].Rendered != want {
		t.Errorf("rendered = %q, want %q", segs[0].Rendered, want)
	}
}
