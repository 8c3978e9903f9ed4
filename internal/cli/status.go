// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status report for the "status" command.
//
// Sections:
//   Responder:  Base URL, timeout, pacing
//   Screening:  Enabled state and term count
//   Archive:    Data dir, snapshot presence, index state, counts
//   UI:         Theme and layout defaults
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/Threadlinee/threatintel-ai/internal/moderation"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.Emerald).
				MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(14)
)

type statusReport struct {
	Responder struct {
		BaseURL           string `json:"base_url"`
		TimeoutSecs       int    `json:"timeout_secs"`
		RequestsPerMinute int    `json:"requests_per_minute"`
	} `json:"responder"`
	Screening struct {
		Enabled bool `json:"enabled"`
		Terms   int  `json:"terms"`
	} `json:"screening"`
	Archive struct {
		DataDir       string `json:"data_dir"`
		Snapshot      bool   `json:"snapshot"`
		SearchIndex   bool   `json:"search_index"`
		Conversations int    `json:"conversations"`
		Messages      int    `json:"messages"`
	} `json:"archive"`
	UI struct {
		Theme   string `json:"theme"`
		Sidebar bool   `json:"sidebar"`
	} `json:"ui"`
}

// HandleStatus prints the configuration and archive state.
func HandleStatus(app *App, args Args) error {
	var r statusReport
	r.Responder.BaseURL = app.Config.Responder.BaseURL
	r.Responder.TimeoutSecs = app.Config.Responder.TimeoutSecs
	r.Responder.RequestsPerMinute = app.Config.Responder.RequestsPerMinute

	r.Screening.Enabled = app.Config.Screening.Enabled
	if app.Config.Screening.Enabled {
		r.Screening.Terms = len(moderation.DefaultTerms) + len(app.Config.Screening.Terms)
	}

	r.Archive.DataDir = app.DataDir
	_, err := os.Stat(app.Snapshots.Path())
	r.Archive.Snapshot = err == nil
	r.Archive.SearchIndex = app.Index != nil
	for _, c := range app.Store.Conversations() {
		r.Archive.Conversations++
		r.Archive.Messages += len(app.Store.Messages(c.ID))
	}

	r.UI.Theme = app.Config.UI.Theme
	r.UI.Sidebar = app.Config.UI.SidebarVisible

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Println(statusTitleStyle.Render("threatintel status"))

	fmt.Println(sectionStyle.Render("Responder"))
	printField("URL", r.Responder.BaseURL)
	printField("Timeout", fmt.Sprintf("%ds", r.Responder.TimeoutSecs))
	printField("Pacing", fmt.Sprintf("%d req/min", r.Responder.RequestsPerMinute))

	fmt.Println(sectionStyle.Render("Screening"))
	printField("Enabled", fmt.Sprintf("%v", r.Screening.Enabled))
	if r.Screening.Enabled {
		printField("Terms", fmt.Sprintf("%d", r.Screening.Terms))
	}

	fmt.Println(sectionStyle.Render("Archive"))
	printField("Data dir", r.Archive.DataDir)
	printField("Snapshot", fmt.Sprintf("%v", r.Archive.Snapshot))
	printField("Index", fmt.Sprintf("%v", r.Archive.SearchIndex))
	printField("Sessions", fmt.Sprintf("%d conversations, %d messages",
		r.Archive.Conversations, r.Archive.Messages))

	fmt.Println(sectionStyle.Render("UI"))
	printField("Theme", r.UI.Theme)
	printField("Sidebar", fmt.Sprintf("%v", r.UI.Sidebar))

	return nil
}

func printField(label, value string) {
	fmt.Printf("  %s %s\n", labelStyle.Render(label), value)
}
