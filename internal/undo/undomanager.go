/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo implements a bounded, linear undo/redo log of canvas snapshots.
package undo

import (
	"sync"
	"time"
)

// DefaultMaxDepth is the number of undo steps kept when Config.MaxDepth is unset.
const DefaultMaxDepth = 50

// Snapshot is an immutable encoded copy of the component sequence.
// Blob content is opaque to the manager; size is estimated as len(Blob).
type Snapshot struct {
	Blob  []byte
	TS    time.Time
	Label string // operation that was about to run, e.g. "remove"
}

// Config controls depth and memory caps.
type Config struct {
	// MaxDepth limits the undo stack; the oldest entries are evicted first.
	MaxDepth int
	// MaxBytes is a soft cap over both stacks; the oldest undo entries are
	// pruned while it is exceeded. 0 disables the cap.
	MaxBytes int
}

// Manager is a linear undo/redo log with no branching: any Push discards
// the redo stack. It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo []Snapshot
	redo []Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &Manager{cfg: cfg}
}

// Push records the state before a mutation and clears the redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Blob = append([]byte(nil), s.Blob...)
	m.undo = append(m.undo, s)
	m.totalBytes += len(s.Blob)
	for _, r := range m.redo {
		m.totalBytes -= len(r.Blob)
	}
	m.redo = nil
	m.enforceCapsLocked()
}

// Undo pops the newest undo snapshot and parks current on the redo stack.
// It returns false and changes nothing when there is nothing to undo.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return Snapshot{}, false
	}
	s := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	current.Blob = append([]byte(nil), current.Blob...)
	m.redo = append(m.redo, current)
	m.totalBytes += len(current.Blob) - len(s.Blob)
	return s, true
}

// Redo pops the newest redo snapshot and parks current on the undo stack.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return Snapshot{}, false
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	current.Blob = append([]byte(nil), current.Blob...)
	m.undo = append(m.undo, current)
	m.totalBytes += len(current.Blob) - len(s.Blob)
	m.enforceCapsLocked()
	return s, true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo, m.totalBytes = nil, nil, 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, undoDepth int, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.undo), len(m.redo)
}

// Stacks returns copies of both stacks, oldest first.
func (m *Manager) Stacks() (undo []Snapshot, redo []Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Snapshot(nil), m.undo...), append([]Snapshot(nil), m.redo...)
}

// Restore replaces both stacks, e.g. with stacks loaded from disk. Caps are
// applied to the result.
func (m *Manager) Restore(undo []Snapshot, redo []Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append([]Snapshot(nil), undo...)
	m.redo = append([]Snapshot(nil), redo...)
	m.totalBytes = 0
	for _, s := range m.undo {
		m.totalBytes += len(s.Blob)
	}
	for _, s := range m.redo {
		m.totalBytes += len(s.Blob)
	}
	m.enforceCapsLocked()
}

func (m *Manager) enforceCapsLocked() {
	if len(m.undo) > m.cfg.MaxDepth {
		// drop the oldest extras
		toDrop := len(m.undo) - m.cfg.MaxDepth
		for i := 0; i < toDrop; i++ {
			m.totalBytes -= len(m.undo[i].Blob)
		}
		m.undo = append([]Snapshot{}, m.undo[toDrop:]...)
	}
	// Memory cap: prune oldest undo entries, never the redo stack
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes && len(m.undo) > 0 {
		m.totalBytes -= len(m.undo[0].Blob)
		m.undo = m.undo[1:]
	}
}
