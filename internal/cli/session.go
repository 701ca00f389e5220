/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"formdesigner/internal/canvas"
	"formdesigner/internal/crash"
	applog "formdesigner/internal/log"
	"formdesigner/internal/storage"
	"formdesigner/internal/undo"
)

// session is one design opened for editing: the file, its workspace
// history and an engine seeded from both.
type session struct {
	a     *app
	ctx   context.Context
	h     *storage.DesignHandle
	hist  *storage.HistoryStore
	eng   *canvas.Engine
	dirty bool
	log   *slog.Logger
}

// openSession loads path and the undo/redo stacks recorded for its
// current content.
func (a *app) openSession(ctx context.Context, path string) (*session, error) {
	h, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	// When Open fell back to a backup the file is unreadable; the empty
	// digest then never matches and stale history is dropped.
	raw, _ := os.ReadFile(path)

	hist, err := storage.OpenHistory(path)
	if err != nil {
		return nil, err
	}
	undoStack, redoStack, err := hist.LoadStacks(ctx, storage.Digest(raw))
	if err != nil {
		_ = hist.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}
	m := undo.NewManager(undo.Config{MaxDepth: a.cfg.Editor.HistoryLimit})
	m.Restore(undoStack, redoStack)

	l := applog.WithOperation(a.log, "edit").With(slog.String("design", path))
	s := &session{
		a:    a,
		ctx:  applog.WithDesign(ctx, path),
		h:    h,
		hist: hist,
		log:  l,
	}
	s.eng = canvas.New(a.reg,
		canvas.WithHistory(m),
		canvas.WithComponents(h.Components),
		canvas.WithLogger(applog.WithComponent("canvas").With(slog.String("design", path))),
	)
	s.eng.Subscribe(func(c canvas.Change) {
		if c.Op == canvas.OpSelect || c.Op == canvas.OpDragging {
			return
		}
		s.dirty = true
		// Keep the handle current so a crash snapshot holds the latest state.
		s.h.Components = s.eng.Components()
	})
	return s, nil
}

// commit writes the design and its history when anything changed.
func (s *session) commit() error {
	if !s.dirty {
		return nil
	}
	s.h.Components = s.eng.Components()
	if err := storage.Save(s.h); err != nil {
		return err
	}
	raw, err := os.ReadFile(s.h.Path)
	if err != nil {
		return err
	}
	u, r := s.eng.History().Stacks()
	if err := s.hist.SaveStacks(s.ctx, storage.Digest(raw), u, r); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if n, err := storage.PruneBackups(s.h, s.a.cfg.Editor.BackupsKeep); err != nil {
		s.log.Warn("prune backups failed", slog.Any("err", err))
	} else if n > 0 {
		s.log.Debug("pruned backups", slog.Int("removed", n))
	}
	s.log.Info("design saved", slog.Int("components", len(s.h.Components)))
	return nil
}

func (s *session) close() {
	if err := s.hist.Close(); err != nil {
		s.log.Warn("close history failed", slog.Any("err", err))
	}
}

// edit opens path, runs fn against the engine and commits the result.
// A panic inside fn leaves a crash report and snapshot next to the design.
func (a *app) edit(ctx context.Context, path string, fn func(s *session) error) error {
	s, err := a.openSession(ctx, path)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.run(fn); err != nil {
		return err
	}
	return s.commit()
}

func (s *session) run(fn func(s *session) error) error {
	defer crash.Recover(s.h)
	return fn(s)
}
