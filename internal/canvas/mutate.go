/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"time"

	"formdesigner/internal/design"
	"formdesigner/internal/domain"
	"formdesigner/internal/undo"
)

// CreateComponent builds a component of type t with the type's defaults
// and a fresh id. The canvas is not changed.
func (e *Engine) CreateComponent(t domain.TypeID) (domain.Component, error) {
	def, ok := e.reg.Definition(t)
	if !ok {
		return domain.Component{}, fmt.Errorf("%w: %q", ErrUnknownComponentType, t)
	}
	bag := map[string]any{
		"label":    def.Name,
		"width":    string(domain.WidthFull),
		"required": false,
		"disabled": false,
	}
	for k, v := range def.Defaults {
		bag[k] = v
	}
	return domain.Component{ID: e.newID(), Type: t, Props: domain.DecodeProps(t, bag)}, nil
}

// Add creates a component of type t, appends it and selects it.
func (e *Engine) Add(t domain.TypeID) (domain.Component, error) {
	return e.AddAt(t, len(e.components))
}

// AddAt creates a component of type t, inserts it at index (clamped to the
// sequence bounds) and selects it. This is a single undo step.
func (e *Engine) AddAt(t domain.TypeID, index int) (domain.Component, error) {
	if err := e.guard(OpInsert); err != nil {
		return domain.Component{}, err
	}
	c, err := e.CreateComponent(t)
	if err != nil {
		return domain.Component{}, err
	}
	if err := e.insert(c, index); err != nil {
		return domain.Component{}, err
	}
	e.selected = c.ID
	e.log.Debug("component added", "id", c.ID, "type", string(t), "index", e.IndexOf(c.ID))
	e.notify(Change{Op: OpInsert, ID: c.ID})
	return c.Clone(), nil
}

// Insert appends an existing component. A missing id is filled in.
// The selection does not change.
func (e *Engine) Insert(c domain.Component) error {
	return e.InsertAt(c, len(e.components))
}

// InsertAt places c at index (clamped to the sequence bounds).
func (e *Engine) InsertAt(c domain.Component, index int) error {
	if err := e.guard(OpInsert); err != nil {
		return err
	}
	c = c.Clone()
	if c.ID == "" {
		c.ID = e.newID()
	}
	if err := e.insert(c, index); err != nil {
		return err
	}
	e.notify(Change{Op: OpInsert, ID: c.ID})
	return nil
}

func (e *Engine) insert(c domain.Component, index int) error {
	if !e.reg.Has(c.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownComponentType, c.Type)
	}
	if e.IndexOf(c.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
	}
	index = clamp(index, 0, len(e.components))
	before := e.snapshot()
	next := make([]domain.Component, 0, len(e.components)+1)
	next = append(next, e.components[:index]...)
	next = append(next, c)
	next = append(next, e.components[index:]...)
	e.components = next
	e.record(OpInsert, before)
	return nil
}

// Remove deletes the component with id and clears the selection if it
// pointed at it. An unknown id leaves the sequence as is but still counts
// as one undo step.
func (e *Engine) Remove(id string) {
	if e.guard(OpRemove) != nil {
		return
	}
	before := e.snapshot()
	if i := e.IndexOf(id); i >= 0 {
		e.components = append(e.components[:i:i], e.components[i+1:]...)
		if e.selected == id {
			e.selected = ""
		}
	}
	e.record(OpRemove, before)
	e.notify(Change{Op: OpRemove, ID: id})
}

// Update shallow-merges partial into the props of id; keys in partial
// win. Values are not checked against the property schema. Every call is
// one undo step, including one for an unknown id or an identical merge.
func (e *Engine) Update(id string, partial map[string]any) {
	if e.guard(OpUpdate) != nil {
		return
	}
	before := e.snapshot()
	if i := e.IndexOf(id); i >= 0 && len(partial) > 0 {
		e.components[i] = e.components[i].Merge(partial)
	}
	e.record(OpUpdate, before)
	e.notify(Change{Op: OpUpdate, ID: id})
}

// Move takes the component at from out of the sequence and reinserts it at
// to, counted against the sequence without it. to is clamped. An
// out-of-range from, or from == to, leaves the order as is but is still
// one undo step.
func (e *Engine) Move(from, to int) {
	if e.guard(OpMove) != nil {
		return
	}
	before := e.snapshot()
	n := len(e.components)
	ch := Change{Op: OpMove, From: from, To: to}
	if from >= 0 && from < n {
		to = clamp(to, 0, n-1)
		c := e.components[from]
		ch.ID, ch.To = c.ID, to
		if to != from {
			rest := append(e.components[:from:from], e.components[from+1:]...)
			next := make([]domain.Component, 0, n)
			next = append(next, rest[:to]...)
			next = append(next, c)
			next = append(next, rest[to:]...)
			e.components = next
		}
	}
	e.record(OpMove, before)
	e.notify(ch)
}

// Select marks id as selected without checking that it exists.
func (e *Engine) Select(id string) {
	if e.guard(OpSelect) != nil || e.selected == id {
		return
	}
	e.selected = id
	e.notify(Change{Op: OpSelect, ID: id})
}

// Deselect clears the selection.
func (e *Engine) Deselect() { e.Select("") }

// Clear removes every component and the selection. On an empty canvas it
// is still one undo step.
func (e *Engine) Clear() {
	if e.guard(OpClear) != nil {
		return
	}
	before := e.snapshot()
	e.components = nil
	e.selected = ""
	e.record(OpClear, before)
	e.notify(Change{Op: OpClear})
}

// ExportJSON renders the canvas as a design document.
func (e *Engine) ExportJSON() (string, error) {
	b, err := design.Encode(e.components)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportJSON replaces the canvas with the design in text and clears the
// selection. It reports false, leaving the state untouched, when text is
// not a design document. Component types are not checked. Every accepted
// import is one undo step, even when it matches the current canvas.
func (e *Engine) ImportJSON(text string) bool {
	if e.guard(OpImport) != nil {
		return false
	}
	cs, err := design.DecodeWithIDs([]byte(text), e.newID)
	if err != nil {
		e.log.Warn("import rejected", "err", err)
		return false
	}
	before := e.snapshot()
	e.components = cs
	e.selected = ""
	e.record(OpImport, before)
	e.log.Info("design imported", "components", len(cs))
	e.notify(Change{Op: OpImport})
	return true
}

// snapshot encodes the current sequence for the undo log.
func (e *Engine) snapshot() []byte {
	b, err := design.Encode(e.components)
	if err != nil {
		// Components only hold JSON values, so this indicates a bug.
		e.log.Error("snapshot encode failed", "err", err)
		return nil
	}
	return b
}

func (e *Engine) record(op Op, before []byte) {
	e.history.Push(undo.Snapshot{Blob: before, TS: time.Now(), Label: string(op)})
}

func (e *Engine) restore(s undo.Snapshot) error {
	cs, err := design.DecodeWithIDs(s.Blob, e.newID)
	if err != nil {
		return err
	}
	e.components = cs
	return nil
}

// Undo restores the state before the most recent change. Selection is
// kept as is and may dangle afterwards.
func (e *Engine) Undo() bool {
	if e.guard(OpUndo) != nil {
		return false
	}
	cur := undo.Snapshot{Blob: e.snapshot(), TS: time.Now(), Label: string(OpUndo)}
	undoStack, redoStack := e.history.Stacks()
	s, ok := e.history.Undo(cur)
	if !ok {
		return false
	}
	if err := e.restore(s); err != nil {
		e.history.Restore(undoStack, redoStack)
		e.log.Error("undo snapshot unreadable", "err", err)
		return false
	}
	e.notify(Change{Op: OpUndo})
	return true
}

// Redo re-applies the most recently undone change.
func (e *Engine) Redo() bool {
	if e.guard(OpRedo) != nil {
		return false
	}
	cur := undo.Snapshot{Blob: e.snapshot(), TS: time.Now(), Label: string(OpRedo)}
	undoStack, redoStack := e.history.Stacks()
	s, ok := e.history.Redo(cur)
	if !ok {
		return false
	}
	if err := e.restore(s); err != nil {
		e.history.Restore(undoStack, redoStack)
		e.log.Error("redo snapshot unreadable", "err", err)
		return false
	}
	e.notify(Change{Op: OpRedo})
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
