// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented REPL over the conversation engine.
//
// Handles the "threatintel chat" command, a readline-style alternative
// to the full-screen TUI. Responses render as markdown when stdout is
// a terminal.
//
// Interactive commands:
//   /help, /h           Show available commands
//   /new                Start a new conversation
//   /sessions           List conversations
//   /switch N           Switch to conversation N (from /sessions)
//   /delete N           Delete conversation N
//   /attach PATH [MSG]  Send a file with an optional message
//   /search QUERY       Search the archive
//   /quit, /q           Exit
//   Ctrl+C              Cancel the in-flight exchange
//   Ctrl+D              Exit
package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/Threadlinee/threatintel-ai/internal/dispatch"
	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display, falling back to
// the raw content when rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func displayResponse(response string) {
	if isStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

func isStdoutTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput provides line editing and input history for the REPL.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newReplInput(dataDir string) *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(dataDir, "chat_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	return &replInput{line: line, historyFile: historyFile}
}

func (r *replInput) Read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *replInput) Close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// inflightCancel holds the cancel function of the exchange currently in
// flight. The signal goroutine fires it while the REPL loop swaps it, so
// access goes through an atomic pointer.
type inflightCancel struct {
	fn atomic.Pointer[context.CancelFunc]
}

func (c *inflightCancel) set(cancel context.CancelFunc) {
	c.fn.Store(&cancel)
}

func (c *inflightCancel) clear() {
	c.fn.Store(nil)
}

// fire cancels the in-flight exchange, if any, and reports whether one
// was running.
func (c *inflightCancel) fire() bool {
	cancel := c.fn.Load()
	if cancel == nil {
		return false
	}
	(*cancel)()
	return true
}

// HandleChat runs the line-oriented chat loop.
func HandleChat(app *App) error {
	input := newReplInput(app.DataDir)
	defer input.Close()

	fmt.Println(infoStyle.Render("ThreatIntel AI. Type /help for commands, /quit to exit."))
	printGreeting(app)

	// Ctrl+C during an exchange cancels it; at the prompt it exits.
	var inflight inflightCancel
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if inflight.fire() {
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[cancelled]"))
			}
		}
	}()

	for {
		text, err := input.Read(promptStyle.Render("you> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C; everything else is EOF.
			fmt.Println()
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := handleSlashCommand(app, text); quit {
				return nil
			}
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		inflight.set(cancel)
		res, ok := runExchange(ctx, app, text)
		inflight.clear()
		cancel()
		if !ok {
			continue
		}

		if res.FlaggedInput {
			fmt.Println(warningStyle.Render("message redacted by screening"))
		}
		if res.Failed {
			fmt.Fprintln(os.Stderr, errorStyle.Render(res.Text))
			continue
		}
		displayResponse(res.Text)
	}
}

func runExchange(ctx context.Context, app *App, text string) (dispatch.Result, bool) {
	res, ok := app.Dispatcher.Dispatch(ctx, dispatch.Input{Text: text})
	if !ok {
		fmt.Fprintln(os.Stderr, warningStyle.Render("an exchange is already in flight"))
		return dispatch.Result{}, false
	}
	return res, true
}

func printGreeting(app *App) {
	id := app.Store.ActiveID()
	msgs := app.Store.Messages(id)
	if len(msgs) > 0 && msgs[0].Sender == model.SenderAssistant {
		displayResponse(msgs[0].Text)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func handleSlashCommand(app *App, input string) (quit bool) {
	fields := strings.Fields(input)
	cmd := fields[0]
	arg := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	switch cmd {
	case "/quit", "/q":
		return true

	case "/help", "/h":
		printReplHelp()

	case "/new":
		conv := app.Store.CreateSession(context.Background())
		fmt.Println(infoStyle.Render("started " + conv.ID))
		printGreeting(app)

	case "/sessions":
		printSessionList(app)

	case "/switch":
		if conv, ok := resolveConversation(app, arg); ok {
			app.Store.SelectSession(conv.ID)
			fmt.Println(infoStyle.Render("switched to " + conv.GetTitle()))
		} else {
			fmt.Fprintln(os.Stderr, errorStyle.Render("no such conversation: "+arg))
		}

	case "/delete":
		if conv, ok := resolveConversation(app, arg); ok {
			app.Store.DeleteSession(context.Background(), conv.ID)
			fmt.Println(infoStyle.Render("deleted " + conv.ID))
		} else {
			fmt.Fprintln(os.Stderr, errorStyle.Render("no such conversation: "+arg))
		}

	case "/attach":
		parts := strings.Fields(arg)
		if len(parts) == 0 {
			fmt.Fprintln(os.Stderr, errorStyle.Render("usage: /attach PATH [message]"))
			break
		}
		sendWithAttachment(app, parts[0], strings.Join(parts[1:], " "))

	case "/search":
		if app.Index == nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("search index is disabled"))
			break
		}
		hits, err := app.Index.Search(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("search: "+err.Error()))
			break
		}
		if len(hits) == 0 {
			fmt.Println(infoStyle.Render("no matches"))
			break
		}
		for _, hit := range hits {
			fmt.Printf("%s %s\n",
				commandStyle.Render("["+hit.Title+"]"),
				hit.Snippet)
		}

	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("unknown command: "+cmd))
	}
	return false
}

func sendWithAttachment(app *App, path, text string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("attach: "+err.Error()))
		return
	}

	res, ok := app.Dispatcher.Dispatch(context.Background(), dispatch.Input{
		Text: text,
		Attachment: &model.Attachment{
			Name:     filepath.Base(path),
			MimeType: mime.TypeByExtension(filepath.Ext(path)),
			Locator:  path,
		},
		AttachmentData: data,
	})
	if !ok {
		fmt.Fprintln(os.Stderr, warningStyle.Render("an exchange is already in flight"))
		return
	}
	if res.Failed {
		fmt.Fprintln(os.Stderr, errorStyle.Render(res.Text))
		return
	}
	displayResponse(res.Text)
}

// resolveConversation accepts either a 1-based index from /sessions or a
// conversation id.
func resolveConversation(app *App, arg string) (model.Conversation, bool) {
	convs := app.Store.Conversations()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(convs) {
		return convs[n-1], true
	}
	for _, c := range convs {
		if c.ID == arg {
			return c, true
		}
	}
	return model.Conversation{}, false
}

func printSessionList(app *App) {
	activeID := app.Store.ActiveID()
	for i, c := range app.Store.Conversations() {
		marker := " "
		if c.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s %d. %s (%s)\n",
			marker, i+1, util.TruncateRunes(c.GetTitle(), 48), c.ID)
	}
}

func printReplHelp() {
	help := []struct{ cmd, desc string }{
		{"/help, /h", "Show this help"},
		{"/new", "Start a new conversation"},
		{"/sessions", "List conversations"},
		{"/switch N", "Switch to conversation N"},
		{"/delete N", "Delete conversation N"},
		{"/attach PATH", "Send a file with an optional message"},
		{"/search QUERY", "Search the archive"},
		{"/quit, /q", "Exit"},
	}
	for _, h := range help {
		fmt.Printf("  %s  %s\n", commandStyle.Render(util.PadRight(h.cmd, 16)), h.desc)
	}
}
