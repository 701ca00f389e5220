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
	"formdesigner/internal/dnd"
)

// DragState is the transient drag session. It is never persisted and never
// part of the undo log.
type DragState struct {
	Payload dnd.Payload
	// Over is the last hovered drop target, nil before the first hover.
	Over *dnd.Target
}

// Dragging returns the current drag session, if any.
func (e *Engine) Dragging() (DragState, bool) {
	if e.drag == nil {
		return DragState{}, false
	}
	return *e.drag, true
}

// BeginDrag starts a drag session carrying p. A previous session is dropped.
func (e *Engine) BeginDrag(p dnd.Payload) {
	if e.guard(OpDragging) != nil {
		return
	}
	e.drag = &DragState{Payload: p}
}

// DragOver records the hovered target, e.g. for an insertion marker.
func (e *Engine) DragOver(t dnd.Target) {
	if e.drag == nil {
		return
	}
	e.drag.Over = &t
}

// CancelDrag abandons the session without touching the canvas.
func (e *Engine) CancelDrag() { e.drag = nil }

// Drop ends the session at target and applies the resolved action. New
// components are selected. Payloads naming a component that is no longer
// at its recorded index resolve to no action.
func (e *Engine) Drop(target dnd.Target) (dnd.Action, error) {
	if err := e.guard(OpDragging); err != nil {
		return dnd.NoAction{}, err
	}
	if e.drag == nil {
		return dnd.NoAction{}, nil
	}
	p := e.drag.Payload
	e.drag = nil

	if src, ok := p.(dnd.ExistingComponent); ok {
		if src.Index < 0 || src.Index >= len(e.components) || e.components[src.Index].ID != src.ID {
			e.log.Debug("drop source changed during drag", "id", src.ID, "index", src.Index)
			return dnd.NoAction{}, nil
		}
	}

	act := dnd.Resolve(p, target, len(e.components))
	switch a := act.(type) {
	case dnd.InsertAction:
		if _, err := e.AddAt(a.Type, a.Index); err != nil {
			return dnd.NoAction{}, err
		}
	case dnd.MoveAction:
		e.Move(a.From, a.To)
	}
	return act, nil
}
