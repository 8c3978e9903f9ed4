// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns the session registry: the conversation list, every
// message sequence, and the active-conversation pointer.
//
// Invariants maintained by every operation:
//   - the conversation list and the registry keys are in exact bijection
//   - the active pointer references an existing conversation whenever the
//     registry is non-empty
//   - message order within a conversation is insertion order, and the
//     optimistic user/placeholder pair is appended atomically
//
// Every mutation that changes conversations or messages writes the current
// snapshot through the injected persister; persistence failures are
// recorded but never block a mutation.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// InitiateFunc performs the remote session-initiation exchange, returning
// the responder-issued conversation id and greeting.
type InitiateFunc func(ctx context.Context) (id, greeting string, err error)

// Persister receives the full snapshot after each accepted mutation.
// Writes may be coalesced; the final state must eventually be durable.
type Persister interface {
	Persist(model.Snapshot) error
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(model.Snapshot) error

func (f PersisterFunc) Persist(s model.Snapshot) error { return f(s) }

// =============================================================================
// STORE
// =============================================================================

// Store is the session registry. Safe for concurrent use; each exported
// operation is one critical section, so mutations are atomic relative to
// observers.
type Store struct {
	mu sync.Mutex

	// conversations is most-recent-first; head insertion means list order
	// encodes creation recency for active-pointer reassignment.
	conversations []model.Conversation
	registry      map[string][]model.Message
	activeID      string

	initiate InitiateFunc
	persister Persister

	// describe turns an initiation failure into the single assistant
	// message of the fallback conversation.
	describe func(error) string

	lastPersistErr error
}

// Option configures a Store.
type Option func(*Store)

// WithDescribe sets the formatter for initiation-failure fallback text.
func WithDescribe(fn func(error) string) Option {
	return func(s *Store) { s.describe = fn }
}

// New creates an empty store. The persister may be nil (persistence
// disabled, used in tests).
func New(initiate InitiateFunc, persister Persister, opts ...Option) *Store {
	s := &Store{
		registry:  make(map[string][]model.Message),
		initiate:  initiate,
		persister: persister,
		describe: func(err error) string {
			return "Could not start a new chat: " + err.Error()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// CreateSession allocates a new conversation via the remote initiation
// exchange, seeds it with the assistant greeting, inserts it at the head
// of the conversation list and makes it active.
//
// If the exchange fails, a synthetic "connection error" conversation is
// created instead: a local id, exactly one assistant message describing
// the failure, and otherwise a perfectly normal conversation - selectable
// and deletable. Initiation is never retried automatically.
func (s *Store) CreateSession(ctx context.Context) model.Conversation {
	id, greeting, err := s.initiate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var conv model.Conversation
	var seed model.Message
	if err != nil {
		conv = model.NewConversation(model.LocalConversationID())
		seed = model.NewAssistantMessage(s.describe(err))
	} else {
		conv = model.NewConversation(id)
		seed = model.NewAssistantMessage(greeting)
	}

	s.conversations = append([]model.Conversation{conv}, s.conversations...)
	s.registry[conv.ID] = []model.Message{seed}
	s.activeID = conv.ID

	s.persistLocked()
	return conv
}

// SelectSession sets the active pointer. Selecting an id that does not
// exist is a caller error; the store declines to act.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[id]; !ok {
		return
	}
	s.activeID = id
}

// DeleteSession removes a conversation and its message sequence. When the
// deleted conversation was active, the most-recently-created remaining
// conversation becomes active; if none remain, a new session is created.
func (s *Store) DeleteSession(ctx context.Context, id string) {
	s.mu.Lock()

	if _, ok := s.registry[id]; !ok {
		s.mu.Unlock()
		return
	}

	for i, c := range s.conversations {
		if c.ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			break
		}
	}
	delete(s.registry, id)

	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		}
	}

	needNew := wasActive && s.activeID == ""
	s.persistLocked()
	s.mu.Unlock()

	if needNew {
		s.CreateSession(ctx)
	}
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AppendMessage appends one message to a conversation. The first user
// message fixes the conversation title to its first five tokens.
func (s *Store) AppendMessage(id string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[id]; !ok {
		return
	}
	s.appendLocked(id, msg)
	s.persistLocked()
}

// AppendExchange atomically appends the optimistic user message and its
// trailing assistant placeholder. No observer can see the user message
// without the placeholder once a send has begun.
func (s *Store) AppendExchange(id string, user, placeholder model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[id]; !ok {
		return
	}
	s.appendLocked(id, user)
	s.appendLocked(id, placeholder)
	s.persistLocked()
}

// ResolvePlaceholder rewrites a pending placeholder, addressed by the
// message identity captured at append time, with the final text. Reports
// whether the placeholder was found and still pending.
func (s *Store) ResolvePlaceholder(id, messageID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.registry[id]
	if !ok {
		return false
	}
	for i := range msgs {
		if msgs[i].ID == messageID && msgs[i].Pending {
			msgs[i].Text = text
			msgs[i].Pending = false
			s.persistLocked()
			return true
		}
	}
	return false
}

// appendLocked appends and derives the title on the first user message.
// Caller must hold the lock.
func (s *Store) appendLocked(id string, msg model.Message) {
	if msg.Sender == model.SenderUser && msg.Text != "" && !s.hasUserMessageLocked(id) {
		for i := range s.conversations {
			if s.conversations[i].ID == id {
				s.conversations[i].Title = util.FirstTokens(msg.Text, model.TitleTokens)
				break
			}
		}
	}
	s.registry[id] = append(s.registry[id], msg)
}

func (s *Store) hasUserMessageLocked(id string) bool {
	for _, m := range s.registry[id] {
		if m.Sender == model.SenderUser {
			return true
		}
	}
	return false
}

// =============================================================================
// READ ACCESS
// =============================================================================

// ActiveID returns the active conversation id, empty when none exists.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns the active conversation.
func (s *Store) Active() (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == s.activeID {
			return c, true
		}
	}
	return model.Conversation{}, false
}

// Exists reports whether a conversation id is known.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registry[id]
	return ok
}

// Conversations returns a copy of the conversation list, most recent
// first.
func (s *Store) Conversations() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Messages returns a copy of a conversation's message sequence.
func (s *Store) Messages(id string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.registry[id]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// =============================================================================
// SNAPSHOT / RESTORE
// =============================================================================

// Snapshot returns a deep-copied read-only view for persistence.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		Conversations:          make([]model.Conversation, len(s.conversations)),
		MessagesByConversation: make(map[string][]model.Message, len(s.registry)),
	}
	copy(snap.Conversations, s.conversations)
	for id, msgs := range s.registry {
		cp := make([]model.Message, len(msgs))
		copy(cp, msgs)
		snap.MessagesByConversation[id] = cp
	}
	return snap
}

// Restore loads a previously persisted snapshot. A malformed or empty
// snapshot is rejected (returns false), in which case the caller starts a
// fresh session instead. On success the first conversation in the restored
// list becomes active.
func (s *Store) Restore(snap model.Snapshot) bool {
	if !snap.WellFormed() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = make([]model.Conversation, len(snap.Conversations))
	copy(s.conversations, snap.Conversations)
	s.registry = make(map[string][]model.Message, len(snap.MessagesByConversation))
	for id, msgs := range snap.MessagesByConversation {
		cp := make([]model.Message, len(msgs))
		copy(cp, msgs)
		// Message IDs are not persisted; mint fresh ones so restored
		// messages stay addressable.
		for i := range cp {
			cp[i].ID = uuid.NewString()
		}
		s.registry[id] = cp
	}
	s.activeID = s.conversations[0].ID
	return true
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked writes the snapshot through. Best effort: a failed write
// is recorded for the status surface and the next mutation tries again.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	s.lastPersistErr = s.persister.Persist(s.snapshotLocked())
}

// LastPersistError returns the outcome of the most recent write-through.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}
