/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend is the shared design library: named designs published to
// a PostgreSQL database so a team can fetch each other's forms.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"formdesigner/internal/design"
	applog "formdesigner/internal/log"
)

// ErrNotFound is returned when no design has the requested name.
var ErrNotFound = errors.New("design not found in library")

// Entry describes one published design.
type Entry struct {
	Name       string
	Components int
	UpdatedAt  time.Time
}

// Library publishes and fetches designs.
type Library struct {
	db *sql.DB
	l  *slog.Logger
}

// NewLibrary wraps an open database handle. Migrations are not applied.
func NewLibrary(db *sql.DB) *Library {
	return &Library{db: db, l: applog.WithComponent("backend")}
}

// Open connects to the library at dsn and brings its schema up to date.
// A non-empty password overrides the one in dsn.
func Open(ctx context.Context, dsn, password string) (*Library, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if password != "" {
		cfg.Password = password
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewLibrary(db), nil
}

// Close releases the database handle.
func (lb *Library) Close() error { return lb.db.Close() }

// Publish stores data under name, replacing an earlier version. data must
// be a design document that passes schema validation.
func (lb *Library) Publish(ctx context.Context, name string, data []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("design name is required")
	}
	if err := design.Validate(data); err != nil {
		return err
	}
	comps, err := design.Decode(data)
	if err != nil {
		return err
	}
	// language=PostgreSQL
	_, err = lb.db.ExecContext(ctx, `INSERT INTO designs(name, body, components) VALUES($1, $2::jsonb, $3)
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, components = EXCLUDED.components, updated_at = now()`,
		name, string(data), len(comps))
	if err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	lb.l.Info("design published", slog.String("name", name), slog.Int("components", len(comps)))
	return nil
}

// Fetch returns the design document stored under name.
func (lb *Library) Fetch(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := lb.db.QueryRowContext(ctx, `SELECT body::text FROM designs WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	return []byte(body), nil
}

// List returns all published designs, most recently updated first.
func (lb *Library) List(ctx context.Context) ([]Entry, error) {
	rows, err := lb.db.QueryContext(ctx, `SELECT name, components, updated_at FROM designs ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Components, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes name from the library.
func (lb *Library) Delete(ctx context.Context, name string) error {
	res, err := lb.db.ExecContext(ctx, `DELETE FROM designs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
