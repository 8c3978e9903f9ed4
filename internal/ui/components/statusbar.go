// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom status line.
type StatusBar struct {
	Width int
}

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown when nothing else claims the bar.
var DefaultShortcuts = []Shortcut{
	{"ctrl+n", "new"},
	{"ctrl+s", "sidebar"},
	{"ctrl+t", "theme"},
	{"ctrl+f", "search"},
	{"ctrl+c", "quit"},
}

// Render renders the status bar. status takes the left side; a warning,
// when present, replaces the shortcut hints on the right.
func (s StatusBar) Render(theme *styles.Theme, status, warning string) string {
	var right string
	if warning != "" {
		right = theme.WarningText.Render(warning)
	} else {
		hints := make([]string, 0, len(DefaultShortcuts))
		for _, sc := range DefaultShortcuts {
			hints = append(hints, theme.ShortcutKey.Render(sc.Key)+" "+theme.ShortcutDesc.Render(sc.Desc))
		}
		right = strings.Join(hints, "  ")
	}

	left := status
	if s.Width > 0 {
		left = util.TruncateWidth(status, s.Width/2)
	}

	return theme.StatusBar.Width(s.Width).Render(left + "  " + right)
}

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingIndicator renders the in-flight exchange hint next to a spinner
// frame supplied by the caller.
func TypingIndicator(theme *styles.Theme, frame string) string {
	return theme.Spinner.Render(frame) + " " + theme.TypingText.Render("analyst is typing")
}
