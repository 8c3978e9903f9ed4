// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/Threadlinee/threatintel-ai/internal/model"
	"github.com/Threadlinee/threatintel-ai/internal/util"
)

// ErrIndexClosed is returned after Close.
var ErrIndexClosed = errors.New("archive index is closed")

// =============================================================================
// ARCHIVE INDEX
// =============================================================================

// ArchiveIndex mirrors message content into sqlite for fast search across
// conversations. The index is rebuilt from the snapshot: losing it costs
// nothing but a rebuild, since the JSON blob stays the source of truth.
type ArchiveIndex struct {
	mu sync.Mutex
	db *sql.DB
}

// SearchHit is one matching message.
type SearchHit struct {
	ConversationID string
	Title          string
	Sender         string
	Snippet        string
	Position       int
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL,
	position        INTEGER NOT NULL,
	title           TEXT NOT NULL,
	sender          TEXT NOT NULL,
	content         TEXT NOT NULL,
	PRIMARY KEY (conversation_id, position)
);
CREATE INDEX IF NOT EXISTS idx_messages_content ON messages(content);
`

// OpenIndex opens (creating if needed) the archive index at path.
func OpenIndex(path string) (*ArchiveIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &ArchiveIndex{db: db}, nil
}

// Close releases the database handle.
func (ix *ArchiveIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.db == nil {
		return nil
	}
	err := ix.db.Close()
	ix.db = nil
	return err
}

// Rebuild replaces the whole index with the snapshot contents, in one
// transaction. Called after each write-through; the data is one user's
// chat history, so wholesale replacement stays cheap.
func (ix *ArchiveIndex) Rebuild(snap model.Snapshot) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.db == nil {
		return ErrIndexClosed
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (conversation_id, position, title, sender, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	titles := make(map[string]string, len(snap.Conversations))
	for _, c := range snap.Conversations {
		titles[c.ID] = c.GetTitle()
	}
	for id, msgs := range snap.MessagesByConversation {
		for pos, msg := range msgs {
			if _, err := stmt.Exec(id, pos, titles[id], string(msg.Sender), msg.Text); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Search returns messages containing the query, case-insensitively,
// ordered by conversation and position. An empty query matches nothing.
func (ix *ArchiveIndex) Search(query string) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.db == nil {
		return nil, ErrIndexClosed
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := ix.db.Query(
		`SELECT conversation_id, title, sender, content, position
		 FROM messages
		 WHERE lower(content) LIKE ? ESCAPE '\'
		 ORDER BY conversation_id, position`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var content string
		if err := rows.Scan(&h.ConversationID, &h.Title, &h.Sender, &content, &h.Position); err != nil {
			return nil, err
		}
		h.Snippet = util.TruncateRunes(util.CollapseLines(content), 80)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// =============================================================================
// COMBINED PERSISTER
// =============================================================================

// Persister implements the store's write-through: the blob is written
// first (authoritative), then the index refreshes best-effort - an index
// failure never fails the mutation.
type Persister struct {
	Blob  *SnapshotStore
	Index *ArchiveIndex
}

// Persist writes the snapshot through to disk.
func (p *Persister) Persist(snap model.Snapshot) error {
	if err := p.Blob.Write(snap); err != nil {
		return err
	}
	if p.Index != nil {
		p.Index.Rebuild(snap)
	}
	return nil
}
