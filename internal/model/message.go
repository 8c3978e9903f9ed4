// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"github.com/google/uuid"

	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment describes a file attached to a message. The payload itself
// lives behind Locator; the engine never loads it except at dispatch time.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Locator  string `json:"locator"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// PendingText is the sentinel body of an assistant placeholder that has
// been optimistically appended but not yet reconciled with the responder.
const PendingText = "…"

// Message is a single entry in a conversation. Either Text or Attachment
// is present; a message with an attachment and empty text is rendered as
// attachment-only.
//
// ID is runtime identity used for placeholder resolution; it is not part
// of the persisted snapshot shape and is regenerated on restore.
type Message struct {
	ID         string      `json:"-"`
	Sender     Sender      `json:"sender"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`

	// Pending marks an unresolved assistant placeholder. Ephemeral.
	Pending bool `json:"-"`
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Message {
	return Message{
		ID:     uuid.NewString(),
		Sender: SenderUser,
		Text:   text,
	}
}

// NewAssistantMessage creates an assistant message with final text.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:     uuid.NewString(),
		Sender: SenderAssistant,
		Text:   text,
	}
}

// NewPendingMessage creates the assistant placeholder that trails every
// optimistic user append.
func NewPendingMessage() Message {
	return Message{
		ID:      uuid.NewString(),
		Sender:  SenderAssistant,
		Text:    PendingText,
		Pending: true,
	}
}

// IsAttachmentOnly reports whether the message should render as a bare
// attachment.
func (m Message) IsAttachmentOnly() bool {
	return m.Attachment != nil && m.Text == ""
}

// Preview returns a single-line preview of the message body.
func (m Message) Preview(maxRunes int) string {
	if m.IsAttachmentOnly() {
		return m.Attachment.Name
	}
	return util.TruncateRunes(util.CollapseLines(m.Text), maxRunes)
}
