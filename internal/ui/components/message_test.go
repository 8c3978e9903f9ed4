// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("indigo-mint")
}

func TestRenderMessagePending(t *testing.T) {
	out := RenderMessage(testTheme(), model.NewPendingMessage(), 80)
	if !strings.Contains(out, model.PendingText) {
		t.Errorf("pending placeholder not rendered: %q", out)
	}
}

func TestRenderMessageUserVerbatim(t *testing.T) {
	msg := model.NewUserMessage("check **this** `out`")
	out := RenderMessage(testTheme(), msg, 80)
	// User bodies skip the emphasis pipeline; markers survive.
	if !strings.Contains(out, "**this**") {
		t.Errorf("user body was formatted: %q", out)
	}
}

func TestRenderMessageAssistantEmphasis(t *testing.T) {
	msg := model.NewAssistantMessage("plain **bold** text")
	out := RenderMessage(testTheme(), msg, 80)
	if strings.Contains(out, "**") {
		t.Errorf("bold markers survived formatting: %q", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("bold content lost: %q", out)
	}
}

func TestRenderMessageAssistantCodeFence(t *testing.T) {
	msg := model.NewAssistantMessage("before\n```python\nprint(1)\n```\nafter")
	out := RenderMessage(testTheme(), msg, 80)
	for _, want := range []string{"before", "print(1)", "after", "python"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in rendered message", want)
		}
	}
	if strings.Contains(out, "```") {
		t.Errorf("fence markers leaked into output: %q", out)
	}
}

func TestRenderMessageAttachmentChip(t *testing.T) {
	msg := model.NewUserMessage("")
	msg.Attachment = &model.Attachment{Name: "report.pdf", MimeType: "application/pdf"}
	out := RenderMessage(testTheme(), msg, 80)
	if !strings.Contains(out, "report.pdf") {
		t.Errorf("attachment name missing: %q", out)
	}
}

func TestRenderRevealedOpenFence(t *testing.T) {
	// Mid-reveal the closing fence has not arrived yet; the prefix must
	// still render without markers leaking.
	out := RenderRevealed(testTheme(), "intro\n```go\nfmt.Pr", 80)
	if !strings.Contains(out, "intro") {
		t.Errorf("prose prefix missing: %q", out)
	}
}

func TestWelcomePromptCount(t *testing.T) {
	if len(ExamplePrompts) != 4 {
		t.Fatalf("expected 4 example prompts, got %d", len(ExamplePrompts))
	}
	out := Welcome{Width: 100}.Render(testTheme(), 1)
	for _, p := range ExamplePrompts {
		if !strings.Contains(out, p) {
			t.Errorf("prompt %q missing from welcome block", p)
		}
	}
}

func TestSidebarListsTitles(t *testing.T) {
	convs := []model.Conversation{
		{ID: "conv_b", Title: "Port scanning"},
		{ID: "conv_a", Title: "New Chat"},
	}
	out := Sidebar{Width: 30, Height: 10}.Render(testTheme(), convs, "conv_b", -1)
	if !strings.Contains(out, "Port scanning") || !strings.Contains(out, "New Chat") {
		t.Errorf("sidebar missing titles: %q", out)
	}
}
