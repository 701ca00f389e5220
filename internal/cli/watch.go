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
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	applog "formdesigner/internal/log"
	"formdesigner/internal/registry"
)

// watchDebounce is how long a burst of writes is left to settle.
const watchDebounce = 150 * time.Millisecond

// CheckResult is the outcome of validating the watched design once.
type CheckResult struct {
	Path     string
	Warnings []string
	Err      error
}

// Watcher re-validates a design file whenever it changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	reg     *registry.Registry
	path    string
	log     *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the directory holding path. Editors often replace
// files by rename, which a watch on the file itself would lose.
func NewWatcher(reg *registry.Registry, path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &Watcher{watcher: fw, reg: reg, path: abs, log: applog.WithComponent("watch")}, nil
}

// Check validates the file right away.
func (w *Watcher) Check() CheckResult {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return CheckResult{Path: w.path, Err: err}
	}
	warnings, err := checkDesign(w.reg, data)
	return CheckResult{Path: w.path, Warnings: warnings, Err: err}
}

// Run delivers a CheckResult to fn after each settled change until ctx is
// done. fn runs on a timer goroutine, one call at a time.
func (w *Watcher) Run(ctx context.Context, fn func(CheckResult)) error {
	defer func() { _ = w.watcher.Close() }()
	var fnMu sync.Mutex
	fire := func() {
		fnMu.Lock()
		defer fnMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		fn(w.Check())
	}
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.log.Debug("design changed", slog.String("op", ev.Op.String()))
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(watchDebounce, fire)
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", slog.Any("err", err))
		}
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-validate a design file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := NewWatcher(a.reg, args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			first := w.Check()
			printCheck(a, args[0], first.Warnings, first.Err)
			a.printf("watching %s (Ctrl+C to stop)\n", args[0])
			return w.Run(ctx, func(r CheckResult) {
				a.printf("%s ", time.Now().Format("15:04:05"))
				printCheck(a, args[0], r.Warnings, r.Err)
			})
		},
	}
}
