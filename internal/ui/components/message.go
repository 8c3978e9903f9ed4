// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/segment"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// ThemedStyler builds the emphasis styler for prose rendering from a theme.
func ThemedStyler(theme *styles.Theme) segment.Styler {
	return segment.Styler{
		Strong: func(s string) string { return theme.ProseStrong.Render(s) },
		Em:     func(s string) string { return theme.ProseEm.Render(s) },
		Code:   func(s string) string { return theme.ProseCode.Render(s) },
		Break:  "\n",
	}
}

// RenderMessage renders one conversation message at the given width.
// Assistant bodies go through segmentation so fenced code is highlighted;
// user bodies render as-is.
func RenderMessage(theme *styles.Theme, msg model.Message, width int) string {
	bubble := theme.AssistantBubble
	if msg.Sender == model.SenderUser {
		bubble = theme.UserBubble
	}

	if msg.Pending {
		return bubble.Render(theme.PendingText.Render(model.PendingText))
	}

	var parts []string
	if msg.Attachment != nil {
		parts = append(parts, theme.AttachmentChip.Render("📎 "+msg.Attachment.Name))
	}

	if msg.Text != "" {
		if msg.Sender == model.SenderAssistant {
			parts = append(parts, renderAssistantBody(theme, msg.Text, width))
		} else {
			parts = append(parts, msg.Text)
		}
	}

	body := strings.Join(parts, "\n")
	if width > 8 {
		bubble = bubble.MaxWidth(width)
	}
	return bubble.Render(body)
}

// RenderRevealed renders a partially revealed assistant body. prefix is
// the revealed rune prefix of the final text; segmentation runs on the
// prefix so an open fence mid-reveal still renders as code.
func RenderRevealed(theme *styles.Theme, prefix string, width int) string {
	bubble := theme.AssistantBubble
	if width > 8 {
		bubble = bubble.MaxWidth(width)
	}
	return bubble.Render(renderAssistantBody(theme, prefix, width))
}

func renderAssistantBody(theme *styles.Theme, text string, width int) string {
	styler := ThemedStyler(theme)
	var out []string
	for _, seg := range styler.Segment(text) {
		switch seg.Kind {
		case segment.KindCode:
			cb := NewCodeBlock(seg)
			if width > 0 {
				cb.MaxWidth = width
			}
			out = append(out, cb.Render(theme))
		default:
			out = append(out, seg.Rendered)
		}
	}
	return strings.Join(out, "\n")
}
