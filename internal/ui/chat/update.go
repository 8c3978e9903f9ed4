// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Threadlinee/threatintel-ai/internal/dispatch"
	"github.com/Threadlinee/threatintel-ai/internal/reveal"
	"github.com/Threadlinee/threatintel-ai/internal/ui/components"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

const (
	screeningWarning = "message redacted by screening"
	inputPlaceholder = "Ask about threats, CVEs, tooling..."
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DispatchDoneMsg:
		return m.handleDispatchDone(msg)

	case reveal.TickMsg:
		return m.handleRevealTick(msg)

	case SessionCreatedMsg:
		m.sidebarCursor = 0
		m.focus = focusInput
		m.input.Focus()
		m.updateViewport()
		return m, textinput.Blink

	case SessionDeletedMsg:
		m.scheduler.Forget(msg.ID)
		delete(m.revealMsg, msg.ID)
		delete(m.revealPrefix, msg.ID)
		if n := len(m.store.Conversations()); m.sidebarCursor >= n && n > 0 {
			m.sidebarCursor = n - 1
		}
		m.updateViewport()
		return m, nil

	case ConfigReloadedMsg:
		if msg.Theme != m.theme.Palette.Name {
			m.theme = m.theme.WithPalette(styles.PaletteByName(msg.Theme))
			m.updateViewport()
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == StateSending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		var cmds []tea.Cmd
		if m.focus == focusInput {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	const (
		headerHeight    = 2
		inputAreaHeight = 3
		statusBarHeight = 2
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	m.viewport.Width = m.chatWidth()
	m.viewport.Height = viewportHeight

	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.updateViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+n":
		if m.state == StateSending {
			return m, nil
		}
		return m, m.newSessionCmd()

	case "ctrl+s":
		m.showSidebar = !m.showSidebar
		if !m.showSidebar && m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		}
		m.viewport.Width = m.chatWidth()
		m.updateViewport()
		return m, nil

	case "ctrl+t":
		m.theme = m.theme.WithPalette(styles.NextPalette(m.theme.Palette.Name))
		m.updateViewport()
		return m, nil

	case "ctrl+f":
		if m.index == nil {
			return m, nil
		}
		if m.searchMode {
			return m.leaveSearch(), nil
		}
		m.searchMode = true
		m.focus = focusInput
		m.input.Reset()
		m.input.Placeholder = "Search the archive..."
		m.input.Focus()
		return m, textinput.Blink

	case "tab":
		return m.cycleFocus(), nil
	}

	if m.searchMode {
		return m.handleSearchKey(msg)
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusPrompts:
		return m.handlePromptKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) cycleFocus() Model {
	order := []focus{focusInput}
	if m.showSidebar {
		order = append(order, focusSidebar)
	}
	if m.freshConversation() {
		order = append(order, focusPrompts)
	}
	for i, f := range order {
		if f == m.focus {
			m.focus = order[(i+1)%len(order)]
			break
		}
	}
	if m.focus == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.store.Conversations()
	switch msg.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
		return m, nil

	case "down", "j":
		if m.sidebarCursor < len(convs)-1 {
			m.sidebarCursor++
		}
		return m, nil

	case "enter":
		if m.sidebarCursor < len(convs) {
			target := convs[m.sidebarCursor].ID
			// Switching away cancels an in-progress reveal; the full
			// text is already in the store, so nothing is lost.
			if prev := m.store.ActiveID(); prev != target {
				m.scheduler.Cancel(prev)
				delete(m.revealMsg, prev)
				delete(m.revealPrefix, prev)
			}
			m.store.SelectSession(target)
			m.focus = focusInput
			m.input.Focus()
			m.updateViewport()
		}
		return m, textinput.Blink

	case "d", "delete", "backspace":
		if m.state == StateSending {
			return m, nil
		}
		if m.sidebarCursor < len(convs) {
			return m, m.deleteSessionCmd(convs[m.sidebarCursor].ID)
		}
		return m, nil

	case "esc":
		m.focus = focusInput
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.promptCursor > 0 {
			m.promptCursor--
		}
		m.updateViewport()
		return m, nil

	case "down", "j":
		if m.promptCursor < len(components.ExamplePrompts)-1 {
			m.promptCursor++
		}
		m.updateViewport()
		return m, nil

	case "enter":
		prompt := components.ExamplePrompts[m.promptCursor]
		m.focus = focusInput
		m.input.Focus()
		return m.send(prompt)

	case "esc":
		m.focus = focusInput
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.leaveSearch(), nil

	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.viewport.SetContent(m.renderSearchHits(query))
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) leaveSearch() Model {
	m.searchMode = false
	m.input.Reset()
	m.input.Placeholder = inputPlaceholder
	m.updateViewport()
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		return m.send(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send stages a turn and kicks off the exchange. Refused turns (blank,
// busy, no session) are dropped without feedback.
func (m Model) send(text string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	st, ok := m.dispatcher.Prepare(dispatch.Input{Text: text})
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.state = StateSending
	if st.Flagged {
		m.warning = screeningWarning
	} else {
		m.warning = ""
	}

	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, m.completeCmd(st))
}

func (m Model) handleDispatchDone(msg DispatchDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	res := msg.Result

	if res.Failed || res.Text == "" {
		// The placeholder already holds the failure description.
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, textinput.Blink
	}

	gen := m.scheduler.Start(res.ConversationID, res.Text)
	m.revealMsg[res.ConversationID] = res.PlaceholderID
	m.revealPrefix[res.ConversationID] = ""
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(textinput.Blink, reveal.TickCmd(res.ConversationID, gen))
}

func (m Model) handleRevealTick(msg reveal.TickMsg) (tea.Model, tea.Cmd) {
	prefix, done, ok := m.scheduler.Advance(msg.ConversationID, msg.Generation)
	if !ok {
		return m, nil
	}

	m.revealPrefix[msg.ConversationID] = prefix
	if msg.ConversationID == m.store.ActiveID() {
		m.updateViewport()
		m.viewport.GotoBottom()
	}

	if done {
		delete(m.revealMsg, msg.ConversationID)
		delete(m.revealPrefix, msg.ConversationID)
		return m, nil
	}
	return m, reveal.TickCmd(msg.ConversationID, msg.Generation)
}

// =============================================================================
// HELPERS
// =============================================================================

func (m Model) chatWidth() int {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// freshConversation reports whether the active conversation has no user
// turns yet, which is when the example prompts are offered.
func (m Model) freshConversation() bool {
	msgs := m.store.Messages(m.store.ActiveID())
	return len(msgs) < 2 && m.state == StateReady
}
