/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"testing"
	"time"
)

func snap(s string) Snapshot { return Snapshot{Blob: []byte(s), TS: time.Now()} }

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{})
	m.Push(snap("a"))
	m.Push(snap("b"))
	if _, undo, redo := m.Stats(); undo != 2 || redo != 0 {
		t.Fatalf("expected 2 undo and 0 redo, got %d/%d", undo, redo)
	}
	s, ok := m.Undo(snap("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(snap("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if !m.CanUndo() || m.CanRedo() {
		t.Fatalf("unexpected availability after redo")
	}
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Undo(snap("x")); ok {
		t.Fatalf("undo on empty log should fail")
	}
	if _, ok := m.Redo(snap("x")); ok {
		t.Fatalf("redo on empty log should fail")
	}
	if tb, u, r := m.Stats(); tb != 0 || u != 0 || r != 0 {
		t.Fatalf("no-op changed stats: %d %d %d", tb, u, r)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	m.Push(snap("a"))
	m.Undo(snap("b"))
	if !m.CanRedo() {
		t.Fatalf("expected redo after undo")
	}
	m.Push(snap("a2"))
	if m.CanRedo() {
		t.Fatalf("push must discard redo stack")
	}
}

func TestDepthCapEvictsOldest(t *testing.T) {
	m := NewManager(Config{})
	for i := 0; i < DefaultMaxDepth+1; i++ {
		m.Push(snap(fmt.Sprintf("s%d", i)))
	}
	_, undo, _ := m.Stats()
	if undo != DefaultMaxDepth {
		t.Fatalf("expected %d snapshots, got %d", DefaultMaxDepth, undo)
	}
	stack, _ := m.Stacks()
	if string(stack[0].Blob) != "s1" {
		t.Fatalf("oldest snapshot should be evicted, first is %q", stack[0].Blob)
	}
}

func TestMemoryCapPrunesOldest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8})
	m.Push(snap("xxxx"))
	m.Push(snap("yyyy"))
	m.Push(snap("zzzz"))
	tb, undo, _ := m.Stats()
	if tb > 8 || undo != 2 {
		t.Fatalf("expected pruning to 2 entries within 8 bytes, got bytes=%d undo=%d", tb, undo)
	}
}

func TestRestoreAndClear(t *testing.T) {
	m := NewManager(Config{MaxDepth: 2})
	m.Restore([]Snapshot{snap("1"), snap("2"), snap("3")}, []Snapshot{snap("r")})
	u, r := m.Stacks()
	if len(u) != 2 || string(u[0].Blob) != "2" || len(r) != 1 {
		t.Fatalf("restore should apply caps: undo=%d redo=%d", len(u), len(r))
	}
	m.Clear()
	if tb, u2, r2 := m.Stats(); tb != 0 || u2 != 0 || r2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got %d %d %d", tb, u2, r2)
	}
}

func TestPushCopiesBlob(t *testing.T) {
	m := NewManager(Config{})
	b := []byte("abc")
	m.Push(Snapshot{Blob: b})
	b[0] = 'z'
	s, _ := m.Undo(snap("cur"))
	if string(s.Blob) != "abc" {
		t.Fatalf("snapshot mutated through caller slice: %q", s.Blob)
	}
}
