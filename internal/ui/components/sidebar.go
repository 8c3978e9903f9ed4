// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar renders the conversation list, most recent first.
type Sidebar struct {
	Width  int
	Height int
}

// Render renders the sidebar for the given conversations and active ID.
// cursor is the keyboard position within the list; -1 hides it.
func (s Sidebar) Render(theme *styles.Theme, convs []model.Conversation, activeID string, cursor int) string {
	innerWidth := s.Width - 4
	if innerWidth < 8 {
		innerWidth = 8
	}

	var b strings.Builder
	b.WriteString(theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	for i, conv := range convs {
		title := util.TruncateWidth(conv.GetTitle(), innerWidth)
		line := title
		switch {
		case i == cursor:
			line = theme.SidebarItemSelected.Render(title)
		case conv.ID == activeID:
			line = theme.SidebarItemSelected.Render(title)
		default:
			line = theme.SidebarItem.Render(title)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(convs) == 0 {
		b.WriteString(theme.SidebarItem.Render("(empty)"))
		b.WriteString("\n")
	}

	return theme.Sidebar.Width(s.Width).Height(s.Height).Render(b.String())
}
