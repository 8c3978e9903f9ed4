// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Threadlinee/threatintel-ai/internal/config"
	"github.com/Threadlinee/threatintel-ai/internal/storage"
	"github.com/Threadlinee/threatintel-ai/internal/store"
)

// statusJSON runs HandleStatus in JSON mode and decodes its output.
func statusJSON(t *testing.T, app *App) statusReport {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	if err := HandleStatus(app, Args{JSON: true}); err != nil {
		t.Fatalf("HandleStatus() error: %v", err)
	}
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read status output: %v", err)
	}

	var report statusReport
	if err := json.Unmarshal(out, &report); err != nil {
		t.Fatalf("status output is not valid JSON: %v\n%s", err, out)
	}
	return report
}

func TestHandleStatusSnapshotPresence(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snapshot.json")
	app := &App{
		Config:    config.Default(),
		Store:     store.New(nil, nil),
		Snapshots: storage.NewSnapshotStoreWithPath(snapPath),
		DataDir:   dir,
	}

	report := statusJSON(t, app)
	if report.Archive.Snapshot {
		t.Error("Snapshot should be false before anything is written")
	}
	if report.Archive.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", report.Archive.DataDir, dir)
	}

	if err := os.WriteFile(snapPath, []byte("{}"), 0600); err != nil {
		t.Fatalf("write snapshot file: %v", err)
	}

	report = statusJSON(t, app)
	if !report.Archive.Snapshot {
		t.Error("Snapshot should be true once the file exists")
	}
}
