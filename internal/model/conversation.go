// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TitleTokens is how many leading whitespace-delimited tokens of the first
// user turn become the conversation title.
const TitleTokens = 5

// DefaultTitle is shown until the first user turn fixes the title.
const DefaultTitle = "New Chat"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the identity of one chat thread. The message sequence
// lives in the session registry, keyed by ID.
type Conversation struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// CreatedAt orders conversations for active-pointer reassignment.
	// Not part of the persisted snapshot shape.
	CreatedAt time.Time `json:"-"`
}

// NewConversation creates a conversation with the given responder-issued ID.
func NewConversation(id string) Conversation {
	return Conversation{
		ID:        id,
		Title:     DefaultTitle,
		CreatedAt: time.Now(),
	}
}

// GetTitle returns the title or the default when unset.
func (c Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return DefaultTitle
}

// =============================================================================
// SNAPSHOT SHAPES
// =============================================================================

// Snapshot is the persisted view of the session registry: the conversation
// list (most recent first) and every message sequence. It is written
// wholesale after each accepted mutation and read exactly once at startup.
type Snapshot struct {
	Conversations          []Conversation       `json:"conversations"`
	MessagesByConversation map[string][]Message `json:"messagesByConversation"`
}

// WellFormed reports whether the snapshot can be restored: a non-empty
// conversation list with its IDs in exact bijection with the registry keys.
func (s Snapshot) WellFormed() bool {
	if len(s.Conversations) == 0 {
		return false
	}
	if len(s.MessagesByConversation) != len(s.Conversations) {
		return false
	}
	for _, c := range s.Conversations {
		if c.ID == "" {
			return false
		}
		if _, ok := s.MessagesByConversation[c.ID]; !ok {
			return false
		}
	}
	return true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// LocalConversationID creates a synthetic conversation ID for conversations
// that never completed the remote initiation exchange.
func LocalConversationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conv_" + hex.EncodeToString(bytes)
}
