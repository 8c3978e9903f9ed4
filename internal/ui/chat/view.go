// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Threadlinee/threatintel-ai/internal/ui/components"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

const sidebarWidth = 28

// =============================================================================
// VIEW
// =============================================================================

func (m Model) renderChat() string {
	if m.width == 0 {
		return "loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	body := m.viewport.View()
	if m.showSidebar {
		sidebar := components.Sidebar{
			Width:  sidebarWidth,
			Height: m.viewport.Height,
		}
		cursor := -1
		if m.focus == focusSidebar {
			cursor = m.sidebarCursor
		}
		panel := sidebar.Render(m.theme, m.store.Conversations(), m.store.ActiveID(), cursor)
		body = lipgloss.JoinHorizontal(lipgloss.Top, panel, body)
	}
	sections = append(sections, body)

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatus())

	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("ThreatIntel AI")

	title := ""
	if active, ok := m.store.Active(); ok {
		title = m.theme.HeaderMeta.Render(util.TruncateRunes(active.GetTitle(), 48))
	}

	line := brand
	if title != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", title)
	}
	return m.theme.Header.Width(m.width).Render(line)
}

func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")
	return m.theme.InputContainer.Width(m.width - 2).Render(prompt + m.input.View())
}

func (m Model) renderStatus() string {
	bar := components.StatusBar{Width: m.width}
	status := ""
	if m.state == StateSending {
		status = components.TypingIndicator(m.theme, m.spinner.View())
	}
	return bar.Render(m.theme, status, m.warning)
}

// renderSearchHits runs an archive query and renders the hit list for
// the viewport. Search failures render as a one-line notice.
func (m Model) renderSearchHits(query string) string {
	hits, err := m.index.Search(query)
	if err != nil {
		return m.theme.ErrorText.Render("search failed: " + err.Error())
	}
	if len(hits) == 0 {
		return m.theme.PendingText.Render("no matches for " + strconv.Quote(query))
	}

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Archive matches"))
	b.WriteString("\n\n")
	for _, hit := range hits {
		b.WriteString(m.theme.ShortcutKey.Render(hit.Title))
		b.WriteString(" ")
		b.WriteString(m.theme.ShortcutDesc.Render(hit.Sender))
		b.WriteString("\n")
		b.WriteString(hit.Snippet)
		b.WriteString("\n\n")
	}
	return b.String()
}

// updateViewport rebuilds the transcript for the active conversation.
// The in-flight reveal, when one exists, replaces the resolved message
// body with the currently visible prefix.
func (m *Model) updateViewport() {
	activeID := m.store.ActiveID()
	if activeID == "" {
		m.viewport.SetContent("")
		return
	}

	width := m.chatWidth() - 2
	if width < 20 {
		width = 20
	}

	msgs := m.store.Messages(activeID)
	revealID := m.revealMsg[activeID]

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if revealID != "" && msg.ID == revealID && m.scheduler.Active(activeID) {
			b.WriteString(components.RenderRevealed(m.theme, m.revealPrefix[activeID], width))
			continue
		}
		b.WriteString(components.RenderMessage(m.theme, msg, width))
	}

	if len(msgs) < 2 && m.state == StateReady {
		selected := -1
		if m.focus == focusPrompts {
			selected = m.promptCursor
		}
		welcome := components.Welcome{Width: width}
		b.WriteString("\n\n")
		b.WriteString(welcome.Render(m.theme, selected))
	}

	m.viewport.SetContent(b.String())
}
