// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared engine bootstrap for all CLI surfaces.
//
// The TUI, the REPL, and the archive commands all run on the same
// engine: one store, one responder client, one persistence chain.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Threadlinee/threatintel-ai/internal/api"
	"github.com/Threadlinee/threatintel-ai/internal/config"
	"github.com/Threadlinee/threatintel-ai/internal/dispatch"
	"github.com/Threadlinee/threatintel-ai/internal/moderation"
	"github.com/Threadlinee/threatintel-ai/internal/storage"
	"github.com/Threadlinee/threatintel-ai/internal/store"
)

// App bundles the engine pieces shared by every command surface.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Dispatcher *dispatch.Dispatcher
	Client     *api.Client
	Snapshots  *storage.SnapshotStore
	Index      *storage.ArchiveIndex

	// DataDir is the resolved archive directory.
	DataDir string
}

// NewApp loads configuration and assembles the engine. The returned App
// always has an active conversation: a persisted snapshot is restored
// when present, otherwise a fresh session is initiated.
func NewApp(args Args) (*App, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	if args.NoSidebar {
		cfg.UI.SidebarVisible = false
	}

	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		dataDir, err = storage.DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	snapshots := storage.NewSnapshotStoreWithPath(filepath.Join(dataDir, "snapshot.json"))

	var index *storage.ArchiveIndex
	if cfg.Storage.SearchIndex {
		index, err = storage.OpenIndex(filepath.Join(dataDir, "archive.db"))
		if err != nil {
			// The archive index is an acceleration structure; the
			// snapshot remains authoritative, so run without it.
			fmt.Fprintf(os.Stderr, "warning: search index unavailable: %v\n", err)
			index = nil
		}
	}

	var persister store.Persister
	if index != nil {
		persister = &storage.Persister{Blob: snapshots, Index: index}
	} else {
		persister = store.PersisterFunc(snapshots.Write)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Responder.BaseURL,
		Timeout:           time.Duration(cfg.Responder.TimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.Responder.RequestsPerMinute,
	})

	var detector moderation.Detector = moderation.Nop{}
	if cfg.Screening.Enabled {
		terms := append([]string{}, moderation.DefaultTerms...)
		terms = append(terms, cfg.Screening.Terms...)
		detector = moderation.NewWordList(terms)
	}

	s := store.New(client.NewConversation, persister)
	if snap, ok := snapshots.Load(); !ok || !s.Restore(snap) {
		s.CreateSession(context.Background())
	}

	return &App{
		Config:     cfg,
		Store:      s,
		Dispatcher: dispatch.New(s, client, detector),
		Client:     client,
		Snapshots:  snapshots,
		Index:      index,
		DataDir:    dataDir,
	}, nil
}

// Close releases any resources held by the app.
func (a *App) Close() {
	if a.Index != nil {
		a.Index.Close()
	}
}
