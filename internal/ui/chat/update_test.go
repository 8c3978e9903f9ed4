// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Threadlinee/threatintel-ai/internal/api"
	"github.com/Threadlinee/threatintel-ai/internal/dispatch"
	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/moderation"
	"github.com/Threadlinee/threatintel-ai/internal/reveal"
	"github.com/Threadlinee/threatintel-ai/internal/storage"
	"github.com/Threadlinee/threatintel-ai/internal/store"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

type responderFunc func(ctx context.Context, req api.SendRequest) (string, error)

func (f responderFunc) Send(ctx context.Context, req api.SendRequest) (string, error) {
	return f(ctx, req)
}

func newTestModel(t *testing.T) (Model, string) {
	t.Helper()

	var created int
	s := store.New(func(ctx context.Context) (string, string, error) {
		created++
		return fmt.Sprintf("conv_%d", created), "Hello! How can I help?", nil
	}, nil)
	conv := s.CreateSession(context.Background())

	d := dispatch.New(s, responderFunc(func(ctx context.Context, req api.SendRequest) (string, error) {
		return "alpha beta gamma", nil
	}), moderation.NewWordList([]string{"exploitkit"}))

	m := New(styles.NewTheme("indigo-mint"), s, d, nil, true)
	m.width = 100
	m.height = 30
	return m, conv.ID
}

func pressEnter(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

// runExchange executes the command tree from a send until the exchange
// result surfaces.
func runExchange(t *testing.T, cmd tea.Cmd) DispatchDoneMsg {
	t.Helper()

	queue := []tea.Msg{cmd()}
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch v := msg.(type) {
		case tea.BatchMsg:
			for _, c := range v {
				queue = append(queue, c())
			}
		case DispatchDoneMsg:
			return v
		}
	}
	t.Fatal("send produced no exchange result")
	return DispatchDoneMsg{}
}

func TestSendTransitionsToSending(t *testing.T) {
	m, id := newTestModel(t)
	m.input.SetValue("what is CVE-2024-3094?")

	m, cmd := pressEnter(m)
	if m.state != StateSending {
		t.Fatalf("state = %v, want StateSending", m.state)
	}
	if cmd == nil {
		t.Fatal("expected a command to run the exchange")
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	msgs := m.store.Messages(id)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want greeting + user + placeholder", len(msgs))
	}
	if !msgs[2].Pending {
		t.Error("trailing message should be the pending placeholder")
	}
}

func TestSendBlankIgnored(t *testing.T) {
	m, id := newTestModel(t)
	m.input.SetValue("   ")

	m, cmd := pressEnter(m)
	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if cmd != nil {
		t.Error("blank input should not produce a command")
	}
	if got := len(m.store.Messages(id)); got != 1 {
		t.Errorf("got %d messages, want just the greeting", got)
	}
}

func TestDispatchDoneStartsReveal(t *testing.T) {
	m, id := newTestModel(t)
	m.input.SetValue("hi")
	m, _ = pressEnter(m)

	msgs := m.store.Messages(id)
	placeholder := msgs[len(msgs)-1]
	m.store.ResolvePlaceholder(id, placeholder.ID, "alpha beta gamma")

	next, cmd := m.Update(DispatchDoneMsg{Result: dispatch.Result{
		ConversationID: id,
		PlaceholderID:  placeholder.ID,
		Text:           "alpha beta gamma",
	}})
	m = next.(Model)

	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if !m.scheduler.Active(id) {
		t.Error("reveal should be running")
	}
	if m.revealMsg[id] != placeholder.ID {
		t.Errorf("revealMsg = %q, want %q", m.revealMsg[id], placeholder.ID)
	}
	if cmd == nil {
		t.Fatal("expected a tick command")
	}
}

func TestRevealTicksThroughToCompletion(t *testing.T) {
	m, id := newTestModel(t)

	gen := m.scheduler.Start(id, "stream me")
	m.revealMsg[id] = "msg_x"
	m.revealPrefix[id] = ""

	var last string
	finished := false
	for i := 0; i < 100; i++ {
		next, cmd := m.Update(reveal.TickMsg{ConversationID: id, Generation: gen})
		m = next.(Model)
		if cmd == nil {
			finished = true
			break
		}
		prefix := m.revealPrefix[id]
		if len(prefix) < len(last) {
			t.Fatalf("prefix shrank: %q after %q", prefix, last)
		}
		last = prefix
	}

	if !finished {
		t.Fatal("reveal did not complete within the tick budget")
	}
	if last == "" {
		t.Error("no intermediate prefix was ever observed")
	}
	if m.scheduler.Active(id) {
		t.Error("reveal should have completed")
	}
	if _, ok := m.revealMsg[id]; ok {
		t.Error("reveal bookkeeping should be cleared on completion")
	}
	if _, ok := m.revealPrefix[id]; ok {
		t.Error("prefix bookkeeping should be cleared on completion")
	}
}

func TestStaleRevealTickIgnored(t *testing.T) {
	m, id := newTestModel(t)

	m.scheduler.Start(id, "current text")
	m.revealPrefix[id] = "keep"

	next, cmd := m.Update(reveal.TickMsg{ConversationID: id, Generation: 99})
	m = next.(Model)

	if m.revealPrefix[id] != "keep" {
		t.Errorf("stale tick mutated prefix: %q", m.revealPrefix[id])
	}
	if cmd != nil {
		t.Error("stale tick should not reschedule")
	}
}

func TestDispatchFailureSkipsReveal(t *testing.T) {
	m, id := newTestModel(t)

	next, _ := m.Update(DispatchDoneMsg{Result: dispatch.Result{
		ConversationID: id,
		PlaceholderID:  "msg_x",
		Text:           "Could not reach the analysis backend.",
		Failed:         true,
	}})
	m = next.(Model)

	if m.scheduler.Active(id) {
		t.Error("failed exchange must not start a reveal")
	}
	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
}

func TestFlaggedSendSetsWarningAndCleanSendClears(t *testing.T) {
	m, id := newTestModel(t)
	m.input.SetValue("sell me an exploitkit now")

	m, cmd := pressEnter(m)
	if m.warning != screeningWarning {
		t.Fatalf("warning = %q, want %q", m.warning, screeningWarning)
	}

	done := runExchange(t, cmd)
	if !done.Result.FlaggedInput {
		t.Error("exchange result should surface the screening flag")
	}
	next, _ := m.Update(done)
	m = next.(Model)
	m.scheduler.Cancel(id)

	m.input.SetValue("what is a honeypot?")
	m, _ = pressEnter(m)
	if m.warning != "" {
		t.Errorf("clean send should clear the warning, got %q", m.warning)
	}
}

func TestSwitchConversationCancelsReveal(t *testing.T) {
	m, first := newTestModel(t)
	m.store.CreateSession(context.Background())

	active := m.store.ActiveID()
	m.scheduler.Start(active, "a long answer still revealing")
	m.revealMsg[active] = "msg_x"
	m.revealPrefix[active] = "a lo"

	m.focus = focusSidebar
	for i, c := range m.store.Conversations() {
		if c.ID == first {
			m.sidebarCursor = i
		}
	}
	m, _ = pressEnter(m)

	if m.store.ActiveID() != first {
		t.Fatalf("active = %q, want %q", m.store.ActiveID(), first)
	}
	if m.scheduler.Active(active) {
		t.Error("switching away should cancel the reveal")
	}
	if _, ok := m.revealMsg[active]; ok {
		t.Error("reveal bookkeeping should be dropped on switch")
	}
}

func TestSessionDeletedCleansRevealState(t *testing.T) {
	m, id := newTestModel(t)

	m.scheduler.Start(id, "in flight")
	m.revealMsg[id] = "msg_x"
	m.revealPrefix[id] = "in"
	m.sidebarCursor = 5

	next, _ := m.Update(SessionDeletedMsg{ID: id})
	m = next.(Model)

	if m.scheduler.Active(id) {
		t.Error("deletion should forget the reveal")
	}
	if _, ok := m.revealMsg[id]; ok {
		t.Error("revealMsg should be cleared")
	}
	if n := len(m.store.Conversations()); m.sidebarCursor >= n {
		t.Errorf("cursor %d out of range for %d conversations", m.sidebarCursor, n)
	}
}

func TestThemeCycleKey(t *testing.T) {
	m, _ := newTestModel(t)
	before := m.theme.Palette.Name

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)

	if m.theme.Palette.Name == before {
		t.Error("ctrl+t should switch to the next palette")
	}
}

func TestSidebarToggleKey(t *testing.T) {
	m, _ := newTestModel(t)
	m.focus = focusSidebar

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)

	if m.showSidebar {
		t.Error("ctrl+s should hide the sidebar")
	}
	if m.focus != focusInput {
		t.Error("hiding the sidebar should return focus to the input")
	}
}

func TestSearchModeRendersHits(t *testing.T) {
	m, id := newTestModel(t)

	idx, err := storage.OpenIndex(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()
	m.index = idx

	m.store.AppendMessage(id, model.NewUserMessage("scan the host with nmap"))
	if err := idx.Rebuild(m.store.Snapshot()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	m = next.(Model)
	if !m.searchMode {
		t.Fatal("ctrl+f should enter search mode")
	}

	m.input.SetValue("nmap")
	m, _ = pressEnter(m)
	if !strings.Contains(m.viewport.View(), "nmap") {
		t.Error("viewport should show the archive hit")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.searchMode {
		t.Error("esc should leave search mode")
	}
}

func TestViewRendersTranscript(t *testing.T) {
	m, id := newTestModel(t)
	m.store.AppendMessage(id, model.NewUserMessage("show me nmap flags"))
	m.updateViewport()

	view := m.View()
	if !strings.Contains(view, "ThreatIntel AI") {
		t.Error("view should carry the brand header")
	}
	if !strings.Contains(view, "nmap") {
		t.Error("view should include the transcript")
	}
}
