// threatintel - terminal client for the ThreatIntel AI assistant.
//
// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Threadlinee/threatintel-ai/internal/cli"
	"github.com/Threadlinee/threatintel-ai/internal/config"
	"github.com/Threadlinee/threatintel-ai/internal/ui/chat"
	"github.com/Threadlinee/threatintel-ai/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		cli.PrintUsage()
		os.Exit(2)
	}

	switch args.Command {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	}

	app, err := cli.NewApp(args)
	if err != nil {
		cli.Fatalf("%v", err)
	}
	defer app.Close()

	switch args.Command {
	case cli.CmdChat:
		err = cli.HandleChat(app)
	case cli.CmdSessions:
		err = cli.HandleSessions(app, args)
	case cli.CmdStatus:
		err = cli.HandleStatus(app, args)
	default:
		err = runTUI(app)
	}
	if err != nil {
		cli.Fatalf("%v", err)
	}
}

func runTUI(app *cli.App) error {
	theme := styles.NewTheme(app.Config.UI.Theme)
	m := chat.New(theme, app.Store, app.Dispatcher, app.Index, app.Config.UI.SidebarVisible)

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Presentation settings follow the config file while the TUI runs.
	if path, err := config.PathTOML(); err == nil {
		if w, werr := config.NewWatcher(path, func(cfg *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Theme: cfg.UI.Theme})
		}); werr == nil {
			if w.Watch() == nil {
				defer w.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if err := app.Store.LastPersistError(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: last archive write failed: %v\n", err)
	}
	return nil
}
