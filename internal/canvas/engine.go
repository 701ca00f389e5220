/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package canvas holds the state of a form being designed: the ordered
// component sequence, the selection and an in-flight drag session. All
// structural changes go through the Engine so they land in the undo log.
//
// An Engine is not safe for concurrent use. Callers drive it from a single
// goroutine, the way a UI event loop would.
package canvas

import (
	"errors"
	"log/slog"

	"formdesigner/internal/domain"
	applog "formdesigner/internal/log"
	"formdesigner/internal/registry"
	"formdesigner/internal/undo"
)

var (
	// ErrUnknownComponentType is returned when a type is not registered.
	ErrUnknownComponentType = errors.New("unknown component type")
	// ErrDuplicateID is returned when inserting a component whose id is already placed.
	ErrDuplicateID = errors.New("duplicate component id")
	// ErrReentrantMutation is returned when an observer tries to mutate the
	// engine while a change is being delivered.
	ErrReentrantMutation = errors.New("mutation from inside a change observer")
)

// Engine owns the canvas state.
type Engine struct {
	reg        *registry.Registry
	components []domain.Component
	selected   string
	drag       *DragState

	history *undo.Manager
	newID   func() string
	log     *slog.Logger

	observers  []*observer
	delivering bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryLimit sets how many undo steps are kept (default 50).
func WithHistoryLimit(n int) Option {
	return func(e *Engine) { e.history = undo.NewManager(undo.Config{MaxDepth: n}) }
}

// WithHistory makes the engine record into m, e.g. one restored from disk.
func WithHistory(m *undo.Manager) Option {
	return func(e *Engine) {
		if m != nil {
			e.history = m
		}
	}
}

// WithIDGenerator replaces the id source used for new components.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger sets the logger; the default is the "canvas" component logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithComponents seeds the canvas without recording history, e.g. when a
// design is opened from disk.
func WithComponents(cs []domain.Component) Option {
	return func(e *Engine) { e.components = domain.CloneAll(cs) }
}

// New returns an empty engine bound to reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:     reg,
		history: undo.NewManager(undo.Config{MaxDepth: undo.DefaultMaxDepth}),
		newID:   domain.NewID,
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = applog.WithComponent("canvas")
	}
	return e
}

// Registry returns the registry the engine resolves types against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// History exposes the undo log, e.g. for persisting it between sessions.
func (e *Engine) History() *undo.Manager { return e.history }

// Components returns a deep copy of the sequence in canvas order.
func (e *Engine) Components() []domain.Component { return domain.CloneAll(e.components) }

// Len returns the number of placed components.
func (e *Engine) Len() int { return len(e.components) }

// IndexOf returns the position of id, or -1.
func (e *Engine) IndexOf(id string) int {
	for i := range e.components {
		if e.components[i].ID == id {
			return i
		}
	}
	return -1
}

// Component returns a copy of the component with id.
func (e *Engine) Component(id string) (domain.Component, bool) {
	i := e.IndexOf(id)
	if i < 0 {
		return domain.Component{}, false
	}
	return e.components[i].Clone(), true
}

// SelectedID returns the selected id as stored. It may name a component
// that no longer exists.
func (e *Engine) SelectedID() string { return e.selected }

// Selected resolves the selection; a dangling selection reads as none.
func (e *Engine) Selected() (domain.Component, bool) {
	if e.selected == "" {
		return domain.Component{}, false
	}
	return e.Component(e.selected)
}

// CanUndo reports whether Undo would change anything.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }
