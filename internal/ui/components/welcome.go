// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN / EXAMPLE PROMPTS
// =============================================================================

// ExamplePrompts are the starter prompts offered in a fresh conversation.
var ExamplePrompts = []string{
	"What are the most common web application vulnerabilities?",
	"Explain the MITRE ATT&CK framework.",
	"Write a python script to scan for open ports on a host.",
	"How does a DDoS attack work and how can it be mitigated?",
}

// Welcome renders the example prompt cards shown when a conversation has
// no user turns yet. selected is the keyboard position, -1 for none.
type Welcome struct {
	Width int
}

// Render renders the welcome block.
func (w Welcome) Render(theme *styles.Theme, selected int) string {
	cardWidth := w.Width - 8
	if cardWidth < 24 {
		cardWidth = 24
	}

	var cards []string
	for i, prompt := range ExamplePrompts {
		style := theme.PromptCard
		if i == selected {
			style = theme.PromptCardHi
		}
		cards = append(cards, style.Width(cardWidth).Render(prompt))
	}

	title := theme.WelcomeTitle.Render("Try one of these:")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(cards, "\n"),
	)
}
