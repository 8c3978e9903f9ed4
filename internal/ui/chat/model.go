// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Threadlinee/threatintel-ai/internal/dispatch"
	"github.com/Threadlinee/threatintel-ai/internal/reveal"
	"github.com/Threadlinee/threatintel-ai/internal/storage"
	"github.com/Threadlinee/threatintel-ai/internal/store"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady   State = iota // Ready for input
	StateSending              // Exchange in flight
)

// focus identifies which pane receives navigation keys.
type focus int

const (
	focusInput focus = iota
	focusSidebar
	focusPrompts
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	// State
	state State
	focus focus

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Engine
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	scheduler  *reveal.Scheduler

	// Archive search, nil when the index is disabled.
	index *storage.ArchiveIndex

	// searchMode repurposes the input line as an archive search box;
	// the viewport shows hits until the mode is left.
	searchMode bool

	// Reveal bookkeeping per conversation: which message is being
	// revealed and how much of it is visible.
	revealMsg    map[string]string
	revealPrefix map[string]string

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Layout
	showSidebar   bool
	sidebarCursor int
	promptCursor  int

	// Transient screening warning, dropped on the next send.
	warning string
}

// New creates the conversation view. index may be nil.
func New(theme *styles.Theme, s *store.Store, d *dispatch.Dispatcher, index *storage.ArchiveIndex, showSidebar bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}

	return Model{
		state:        StateReady,
		focus:        focusInput,
		theme:        theme,
		store:        s,
		dispatcher:   d,
		index:        index,
		scheduler:    reveal.NewScheduler(),
		revealMsg:    make(map[string]string),
		revealPrefix: make(map[string]string),
		viewport:     vp,
		input:        ti,
		spinner:      sp,
		showSidebar:  showSidebar,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// View renders the conversation view.
func (m Model) View() string {
	return m.renderChat()
}

// Theme exposes the active theme, mainly for the status line in main.
func (m Model) Theme() *styles.Theme {
	return m.theme
}
