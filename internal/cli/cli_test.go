// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Threadlinee/threatintel-ai/internal/model"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"default is tui", nil, CmdTUI},
		{"chat", []string{"chat"}, CmdChat},
		{"sessions", []string{"sessions"}, CmdSessions},
		{"status", []string{"status"}, CmdStatus},
		{"version keyword", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help keyword", []string{"help"}, CmdHelp},
		{"help flag", []string{"--help"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Parse(tt.argv)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if args.Command != tt.want {
				t.Errorf("Command = %v, want %v", args.Command, tt.want)
			}
		})
	}
}

func TestParseSessionsSubcommand(t *testing.T) {
	args, err := Parse([]string{"sessions", "search", "MITRE", "ATT&CK"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if args.Command != CmdSessions {
		t.Fatalf("Command = %v, want CmdSessions", args.Command)
	}
	if args.Subcommand != "search" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "search")
	}
	if args.Query != "MITRE ATT&CK" {
		t.Errorf("Query = %q, want joined positionals", args.Query)
	}
}

func TestParseFlags(t *testing.T) {
	args, err := Parse([]string{"sessions", "export", "conv_x", "--out", "report.md", "--json"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if args.OutPath != "report.md" {
		t.Errorf("OutPath = %q", args.OutPath)
	}
	if !args.JSON {
		t.Error("JSON flag not set")
	}

	args, err = Parse([]string{"--theme=teal-gold", "--no-sidebar"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if args.Theme != "teal-gold" {
		t.Errorf("Theme = %q", args.Theme)
	}
	if !args.NoSidebar {
		t.Error("NoSidebar flag not set")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]string{"--bogus"}); err == nil {
		t.Error("unknown flag should error")
	}
	if _, err := Parse([]string{"frobnicate"}); err == nil {
		t.Error("unknown command should error")
	}
	if _, err := Parse([]string{"--config"}); err == nil {
		t.Error("flag missing its value should error")
	}
}

func TestInflightCancelFires(t *testing.T) {
	var inflight inflightCancel

	if inflight.fire() {
		t.Error("fire() with nothing in flight should report false")
	}

	ctx, cancel := context.WithCancel(context.Background())
	inflight.set(cancel)
	if !inflight.fire() {
		t.Error("fire() with an exchange in flight should report true")
	}
	if ctx.Err() == nil {
		t.Error("fire() should cancel the in-flight context")
	}

	inflight.clear()
	if inflight.fire() {
		t.Error("fire() after clear() should report false")
	}
}

func TestInflightCancelConcurrent(t *testing.T) {
	var inflight inflightCancel

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_, cancel := context.WithCancel(context.Background())
			inflight.set(cancel)
			inflight.clear()
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			inflight.fire()
		}
	}()
	wg.Wait()
}

func TestExportMarkdown(t *testing.T) {
	conv := model.NewConversation("conv_x")
	msgs := []model.Message{
		model.NewAssistantMessage("Hello! How can I help?"),
		model.NewUserMessage("Explain SQL injection."),
		{
			ID:     "m3",
			Sender: model.SenderUser,
			Text:   "here is the log",
			Attachment: &model.Attachment{
				Name: "access.log", MimeType: "text/plain",
			},
		},
		model.NewPendingMessage(),
	}

	md := exportMarkdown(conv, msgs)

	if !strings.HasPrefix(md, "# ") {
		t.Error("export should start with a title heading")
	}
	if !strings.Contains(md, "Explain SQL injection.") {
		t.Error("user turn missing from export")
	}
	if !strings.Contains(md, "access.log") {
		t.Error("attachment name missing from export")
	}
	if strings.Contains(md, model.PendingText) {
		t.Error("pending placeholder must not be exported")
	}
}
