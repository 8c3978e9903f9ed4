// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the session registry.
//
// The durable record is a single JSON blob holding the conversation list
// and the full message registry. It is replaced wholesale after each
// accepted mutation (atomic temp-file rename) and read exactly once at
// process start. There is no versioning or migration: any stored shape
// this code cannot restore is treated as absent, and the caller starts a
// fresh session.
//
// Alongside the blob, an optional sqlite index makes message content
// searchable; it is derived data and never the source of truth.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// DefaultDirName is the per-user data directory under $HOME.
const DefaultDirName = ".threatintel"

// snapshotFile is the name of the durable blob inside the data directory.
const snapshotFile = "snapshot.json"

// DataDir returns the per-user data directory, creating it if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, DefaultDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// SnapshotStore reads and writes the durable snapshot blob.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store rooted in the default data directory.
func NewSnapshotStore() (*SnapshotStore, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{path: filepath.Join(dir, snapshotFile)}, nil
}

// NewSnapshotStoreWithPath creates a store writing to a specific file.
func NewSnapshotStoreWithPath(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the blob location.
func (s *SnapshotStore) Path() string { return s.path }

// Write replaces the blob wholesale. The atomic rename means a reader
// never observes a partially written snapshot.
func (s *SnapshotStore) Write(snap model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0644)
}

// Load reads the blob. ok is false when the blob is missing, unreadable,
// or not a well-formed snapshot - all treated identically as "absent".
// Intended to be called exactly once, at startup, before any session
// operation.
func (s *SnapshotStore) Load() (snap model.Snapshot, ok bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return model.Snapshot{}, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, false
	}
	if !snap.WellFormed() {
		return model.Snapshot{}, false
	}
	return snap, true
}
