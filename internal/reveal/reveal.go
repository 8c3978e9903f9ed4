// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal simulates the progressive disclosure of an already
// finalized assistant response.
//
// A reveal is a time-paced sequence of prefixes of increasing length,
// starting at zero and ending at the full length inclusive. Reveals are
// superseded, never queued: starting a new reveal for a conversation
// invalidates the previous one through a per-conversation generation
// counter, so a stale tick can never commit its effect. Reveal is purely a
// presentation concern; the underlying message already holds the full text
// before a reveal begins.
package reveal

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Interval is the fixed delay between reveal steps.
const Interval = 30 * time.Millisecond

// StepSize returns the prefix growth per step for a response of n runes.
// It grows with total length so long responses finish in roughly the same
// wall-clock budget as short ones.
func StepSize(n int) int {
	step := n / 60
	if step < 2 {
		step = 2
	}
	return step
}

// =============================================================================
// CURSOR
// =============================================================================

// Cursor is a single reveal instance over one finalized string. The prefix
// length is counted in runes so multi-byte characters are never split.
type Cursor struct {
	runes []rune
	pos   int
	step  int
}

// NewCursor starts a reveal at prefix length zero.
func NewCursor(text string) *Cursor {
	runes := []rune(text)
	return &Cursor{
		runes: runes,
		step:  StepSize(len(runes)),
	}
}

// Advance grows the prefix by one step, clamped to the full length.
// It reports whether the reveal has completed.
func (c *Cursor) Advance() bool {
	if c.pos >= len(c.runes) {
		return true
	}
	c.pos += c.step
	if c.pos > len(c.runes) {
		c.pos = len(c.runes)
	}
	return c.pos == len(c.runes)
}

// Prefix returns the currently disclosed prefix.
func (c *Cursor) Prefix() string {
	return string(c.runes[:c.pos])
}

// Pos returns the current prefix length in runes.
func (c *Cursor) Pos() int { return c.pos }

// Done reports whether the full length has been disclosed.
func (c *Cursor) Done() bool { return c.pos >= len(c.runes) }

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler owns at most one live reveal per conversation. Each Start
// increments the conversation's generation; a step commits only while its
// generation is still current (last-writer-wins).
type Scheduler struct {
	mu      sync.Mutex
	gens    map[string]uint64
	cursors map[string]*Cursor
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		gens:    make(map[string]uint64),
		cursors: make(map[string]*Cursor),
	}
}

// Start begins a reveal for a conversation, superseding any reveal still
// running for it, and returns the new generation.
func (s *Scheduler) Start(conversationID, text string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[conversationID]++
	s.cursors[conversationID] = NewCursor(text)
	return s.gens[conversationID]
}

// Advance commits one step for the given generation. ok is false when the
// generation has been superseded or cancelled; such a tick must have no
// further effect. When the reveal completes, the cursor is discarded and
// the conversation returns to idle.
func (s *Scheduler) Advance(conversationID string, gen uint64) (prefix string, done, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[conversationID] != gen {
		return "", false, false
	}
	cursor := s.cursors[conversationID]
	if cursor == nil {
		return "", false, false
	}

	done = cursor.Advance()
	prefix = cursor.Prefix()
	if done {
		delete(s.cursors, conversationID)
	}
	return prefix, done, true
}

// Cancel silently invalidates any reveal in progress for a conversation.
// Used when the active conversation changes or is deleted mid-reveal.
func (s *Scheduler) Cancel(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[conversationID]++
	delete(s.cursors, conversationID)
}

// Forget drops all reveal state for a conversation, including its
// generation counter. Used on conversation deletion.
func (s *Scheduler) Forget(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.gens, conversationID)
	delete(s.cursors, conversationID)
}

// Active reports whether a reveal is currently running for a conversation.
func (s *Scheduler) Active(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.cursors[conversationID]
	return ok
}

// Prefix returns the currently disclosed prefix for a conversation, if a
// reveal is running.
func (s *Scheduler) Prefix(conversationID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, ok := s.cursors[conversationID]
	if !ok {
		return "", false
	}
	return cursor.Prefix(), true
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg drives one reveal step. It carries the generation it was
// scheduled under so the update loop can hand it back to Advance, which
// rejects it if superseded.
type TickMsg struct {
	ConversationID string
	Generation     uint64
}

// TickCmd schedules the next reveal step after the fixed interval.
func TickCmd(conversationID string, gen uint64) tea.Cmd {
	return tea.Tick(Interval, func(time.Time) tea.Msg {
		return TickMsg{ConversationID: conversationID, Generation: gen}
	})
}
