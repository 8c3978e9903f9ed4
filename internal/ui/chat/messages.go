// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Threadlinee/threatintel-ai/internal/dispatch"
	"github.com/Threadlinee/threatintel-ai/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// DispatchDoneMsg carries a completed exchange back to the event loop.
type DispatchDoneMsg struct {
	Result dispatch.Result
}

// SessionCreatedMsg is sent after a new conversation is initiated.
type SessionCreatedMsg struct {
	Conversation model.Conversation
}

// SessionDeletedMsg is sent after a conversation is removed.
type SessionDeletedMsg struct {
	ID string
}

// ConfigReloadedMsg carries settings picked up from a live config
// reload. Only presentation settings apply at runtime.
type ConfigReloadedMsg struct {
	Theme string
}

// =============================================================================
// COMMANDS
// =============================================================================

// completeCmd runs the responder exchange off the event loop.
func (m Model) completeCmd(st dispatch.Staged) tea.Cmd {
	d := m.dispatcher
	return func() tea.Msg {
		return DispatchDoneMsg{Result: d.Complete(context.Background(), st)}
	}
}

// newSessionCmd initiates a conversation with the backend. The store
// falls back to a local conversation when initiation fails, so this
// always yields a session.
func (m Model) newSessionCmd() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		conv := s.CreateSession(context.Background())
		return SessionCreatedMsg{Conversation: conv}
	}
}

// deleteSessionCmd removes a conversation. Deleting the last one makes
// the store initiate a replacement, which can block on the backend, so
// it also runs off the event loop.
func (m Model) deleteSessionCmd(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		s.DeleteSession(context.Background(), id)
		return SessionDeletedMsg{ID: id}
	}
}
