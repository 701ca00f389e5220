/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "formdesigner/internal/log"
	"formdesigner/internal/undo"
	"formdesigner/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// WorkDirName holds per-design working data next to the design files.
	WorkDirName = ".fdwork"

	// schemaVersion tracks the workspace schema. Bump it together with a
	// new step in runMigrations.
	schemaVersion = 2

	stackUndo = "undo"
	stackRedo = "redo"
)

// language=SQL
// dialect=SQLite
const insertEntrySQL = `INSERT INTO history(stack, pos, ts, label, blob) VALUES (?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectEntriesSQL = `SELECT stack, ts, label, blob FROM history ORDER BY stack, pos`

// WorkspacePath returns the SQLite file holding the history of the design at designPath.
func WorkspacePath(designPath string) string {
	base := strings.TrimSuffix(filepath.Base(designPath), filepath.Ext(designPath))
	return filepath.Join(filepath.Dir(designPath), WorkDirName, base+".sqlite")
}

// Digest identifies a design file's content so stale histories can be detected.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HistoryStore persists the undo and redo stacks of one design so that
// separate editing sessions continue the same log.
type HistoryStore struct {
	db   *sql.DB
	path string
	l    *slog.Logger
}

// OpenHistory opens or creates the workspace database for designPath.
func OpenHistory(designPath string) (*HistoryStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(
		slog.String("design", designPath),
	)
	if strings.TrimSpace(designPath) == "" {
		return nil, errors.New("design path is required")
	}
	path := WorkspacePath(designPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create workspace dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", WorkDirName, err)
	}

	// Convert to forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("workspace ready", slog.String("path", path))
	return &HistoryStore{db: db, path: path, l: l}, nil
}

// Path returns the workspace database file.
func (s *HistoryStore) Path() string { return s.path }

// Close releases the database.
func (s *HistoryStore) Close() error { return s.db.Close() }

// SaveStacks replaces the stored stacks. digest identifies the design
// content the stacks belong to, see LoadStacks.
func (s *HistoryStore) SaveStacks(ctx context.Context, digest string, undoStack, redoStack []undo.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	write := func(stack string, ss []undo.Snapshot) error {
		for i, sn := range ss {
			if _, err := tx.ExecContext(ctx, insertEntrySQL, stack, i, sn.TS.UTC().Format(time.RFC3339Nano), sn.Label, sn.Blob); err != nil {
				return fmt.Errorf("insert %s entry %d: %w", stack, i, err)
			}
		}
		return nil
	}
	if err := write(stackUndo, undoStack); err != nil {
		return err
	}
	if err := write(stackRedo, redoStack); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES('design_digest', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, digest); err != nil {
		return fmt.Errorf("store digest: %w", err)
	}
	return tx.Commit()
}

// LoadStacks returns the stored stacks, oldest entry first. When digest
// differs from the one stored with the stacks, the design was changed
// outside the editor and empty stacks are returned.
func (s *HistoryStore) LoadStacks(ctx context.Context, digest string) (undoStack, redoStack []undo.Snapshot, err error) {
	var stored string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='design_digest'`).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read digest: %w", err)
	}
	if stored != digest {
		s.l.Info("design changed outside the editor; history discarded")
		return nil, nil, nil
	}

	rows, err := s.db.QueryContext(ctx, selectEntriesSQL)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var stack, tsStr, label string
		var blob []byte
		if err := rows.Scan(&stack, &tsStr, &label, &blob); err != nil {
			return nil, nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		sn := undo.Snapshot{Blob: blob, TS: ts, Label: label}
		if stack == stackRedo {
			redoStack = append(redoStack, sn)
		} else {
			undoStack = append(undoStack, sn)
		}
	}
	return undoStack, redoStack, rows.Err()
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh database: migrations start from zero
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// migrations[i] brings the schema from version i to i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS history (
			id    INTEGER PRIMARY KEY,
			stack TEXT    NOT NULL CHECK(stack IN ('undo','redo')),
			pos   INTEGER NOT NULL,
			ts    TEXT    NOT NULL,
			blob  BLOB    NOT NULL
		);`,
	},
	{
		`ALTER TABLE history ADD COLUMN label TEXT NOT NULL DEFAULT '';`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_history_stack_pos ON history(stack, pos);`,
	},
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for ; cur < schemaVersion && cur < len(migrations); cur++ {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrations[cur] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
	}
	return nil
}

// SchemaVersion reports the schema version recorded in the workspace.
func (s *HistoryStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}
