// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for threatintel.
//
// The default command launches the TUI. Everything else is a utility
// surface over the same engine: a line-oriented REPL, archive
// management, and a status report.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSessions
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	ConfigPath string
	Theme      string
	JSON       bool
	NoSidebar  bool

	// Command-specific
	Subcommand string
	Query      string
	OutPath    string

	// Raw args remaining after the command keyword
	Raw []string
}

const usageText = `threatintel - terminal client for the ThreatIntel AI assistant

Usage:
  threatintel [command] [flags]

Commands:
  (none)              Launch the interactive TUI
  chat                Line-oriented REPL (no full-screen UI)
  sessions list       List archived conversations
  sessions search Q   Search the conversation archive
  sessions export ID  Export a conversation as markdown
  status              Show configuration and archive status
  version             Print version information
  help                Show this help

Flags:
  --config PATH       Use an explicit config file
  --theme NAME        Override the configured theme preset
  --no-sidebar        Start the TUI with the sidebar hidden
  --json              Machine-readable output (sessions, status)
  --out PATH          Output file for sessions export

Examples:
  threatintel
  threatintel chat
  threatintel sessions search "MITRE"
  threatintel sessions export conv_abc123 --out report.md
  threatintel status --json
`

// Parse parses command-line arguments. Unknown flags are an error;
// unknown commands fall through to help.
func Parse(argv []string) (Args, error) {
	args := Args{Command: CmdTUI}

	rest := make([]string, 0, len(argv))
	i := 0
	for i < len(argv) {
		arg := argv[i]
		if !strings.HasPrefix(arg, "-") {
			rest = append(rest, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value := ""
		if eq := strings.Index(name, "="); eq >= 0 {
			name, value = name[:eq], name[eq+1:]
		}

		switch name {
		case "config", "theme", "out":
			if value == "" {
				if i+1 >= len(argv) {
					return args, fmt.Errorf("flag --%s requires a value", name)
				}
				value = argv[i+1]
				i++
			}
			switch name {
			case "config":
				args.ConfigPath = value
			case "theme":
				args.Theme = value
			case "out":
				args.OutPath = value
			}
		case "json":
			args.JSON = true
		case "no-sidebar":
			args.NoSidebar = true
		case "help", "h":
			args.Command = CmdHelp
		case "version", "V":
			args.Command = CmdVersion
		default:
			return args, fmt.Errorf("unknown flag: %s", arg)
		}
		i++
	}

	if args.Command != CmdTUI {
		return args, nil
	}

	if len(rest) == 0 {
		return args, nil
	}

	switch rest[0] {
	case "chat":
		args.Command = CmdChat
	case "sessions":
		args.Command = CmdSessions
		if len(rest) > 1 {
			args.Subcommand = rest[1]
			args.Query = strings.Join(rest[2:], " ")
		}
	case "status":
		args.Command = CmdStatus
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		return args, fmt.Errorf("unknown command: %s", rest[0])
	}
	args.Raw = rest[1:]
	return args, nil
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("threatintel %s (%s, %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Fatalf prints an error to stderr and exits non-zero.
func Fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(1)
}
