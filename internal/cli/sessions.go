// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Archive management for the "sessions" command.
//
// Subcommands:
//   list (default)      List archived conversations
//   search QUERY        Full-text search over the archive index
//   export ID [--out]   Write a conversation as markdown
//   delete ID           Remove a conversation
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Threadlinee/threatintel-ai/internal/model"
)

// HandleSessions dispatches the sessions subcommands.
func HandleSessions(app *App, args Args) error {
	switch args.Subcommand {
	case "", "list":
		return sessionsList(app, args.JSON)
	case "search":
		return sessionsSearch(app, args.Query, args.JSON)
	case "export":
		return sessionsExport(app, args.Query, args.OutPath)
	case "delete":
		return sessionsDelete(app, args.Query)
	default:
		return fmt.Errorf("unknown sessions subcommand: %s", args.Subcommand)
	}
}

// =============================================================================
// LIST
// =============================================================================

type sessionSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Messages int    `json:"messages"`
	Active   bool   `json:"active"`
}

func sessionsList(app *App, asJSON bool) error {
	activeID := app.Store.ActiveID()

	var summaries []sessionSummary
	for _, c := range app.Store.Conversations() {
		summaries = append(summaries, sessionSummary{
			ID:       c.ID,
			Title:    c.GetTitle(),
			Messages: len(app.Store.Messages(c.ID)),
			Active:   c.ID == activeID,
		})
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(summaries)
	}

	for i, s := range summaries {
		marker := " "
		if s.Active {
			marker = "*"
		}
		fmt.Printf("%s %d. %s (%s, %d messages)\n", marker, i+1, s.Title, s.ID, s.Messages)
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

func sessionsSearch(app *App, query string, asJSON bool) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search requires a query")
	}
	if app.Index == nil {
		return fmt.Errorf("search index is disabled (storage.search_index)")
	}

	hits, err := app.Index.Search(query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%s #%d [%s] %s\n", hit.ConversationID, hit.Position, hit.Sender, hit.Snippet)
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

func sessionsExport(app *App, id, outPath string) error {
	conv, ok := resolveConversation(app, id)
	if !ok {
		return fmt.Errorf("no such conversation: %s", id)
	}

	md := exportMarkdown(conv, app.Store.Messages(conv.ID))

	if outPath == "" {
		fmt.Print(md)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(md), 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("exported %s to %s\n", conv.ID, outPath)
	return nil
}

// exportMarkdown renders a conversation transcript as a markdown
// document. Assistant bodies are already markdown and pass through
// unchanged; pending placeholders are skipped.
func exportMarkdown(conv model.Conversation, msgs []model.Message) string {
	var b strings.Builder
	b.WriteString("# " + conv.GetTitle() + "\n\n")

	for _, msg := range msgs {
		if msg.Pending {
			continue
		}
		b.WriteString("## " + msg.Sender.DisplayName() + "\n\n")
		b.WriteString(msg.Text)
		b.WriteString("\n\n")
		if msg.Attachment != nil {
			b.WriteString("_attachment: " + msg.Attachment.Name + "_\n\n")
		}
	}
	return b.String()
}

// =============================================================================
// DELETE
// =============================================================================

func sessionsDelete(app *App, id string) error {
	conv, ok := resolveConversation(app, id)
	if !ok {
		return fmt.Errorf("no such conversation: %s", id)
	}
	app.Store.DeleteSession(context.Background(), conv.ID)
	fmt.Printf("deleted %s\n", conv.ID)
	return nil
}
