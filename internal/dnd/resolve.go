/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package dnd turns drag-and-drop gestures into exact list operations.
// Everything here is pure: a transfer payload captured at drag start and a
// drop target are resolved against the current sequence length into an
// Action, which the canvas engine then applies.
package dnd

import "formdesigner/internal/domain"

// Payload is the data handed from drag start to drop: either NewComponent
// or ExistingComponent.
type Payload interface{ isPayload() }

// NewComponent is dragged from the palette.
type NewComponent struct {
	Type domain.TypeID
}

// ExistingComponent is a placed component being reordered. ID lets the
// engine detect that the source changed between drag start and drop.
type ExistingComponent struct {
	ID    string
	Index int
}

func (NewComponent) isPayload()      {}
func (ExistingComponent) isPayload() {}

// Target is where the pointer was released: the item under the pointer
// and whether the pointer was in its lower half.
type Target struct {
	Index       int
	InsertAfter bool
}

// AfterMidpoint reports whether pointerY lies at or below the vertical
// midpoint of an item spanning [top, top+height).
func AfterMidpoint(pointerY, top, height float64) bool {
	return pointerY >= top+height/2
}

// ItemTarget builds the target for a drop on item index.
func ItemTarget(index int, pointerY, top, height float64) Target {
	return Target{Index: index, InsertAfter: AfterMidpoint(pointerY, top, height)}
}

// AppendTarget is the target for a drop on empty canvas space or past the
// last item of a sequence of length n.
func AppendTarget(n int) Target { return Target{Index: n} }

// Action is the mutation a drop resolves to: InsertAction, MoveAction or NoAction.
type Action interface{ isAction() }

// InsertAction places a new component of Type at Index.
type InsertAction struct {
	Type  domain.TypeID
	Index int
}

// MoveAction moves the component at From to To, To being counted after removal.
type MoveAction struct {
	From int
	To   int
}

// NoAction means the drop changes nothing.
type NoAction struct{}

func (InsertAction) isAction() {}
func (MoveAction) isAction()   {}
func (NoAction) isAction()     {}

// Resolve computes the action for dropping p on t over a sequence of length n.
func Resolve(p Payload, t Target, n int) Action {
	idx := t.Index
	if t.InsertAfter {
		idx++
	}
	idx = clamp(idx, 0, n)

	switch src := p.(type) {
	case NewComponent:
		if src.Type == "" {
			return NoAction{}
		}
		return InsertAction{Type: src.Type, Index: idx}
	case ExistingComponent:
		if src.Index < 0 || src.Index >= n {
			return NoAction{}
		}
		// removing the source shifts everything after it down by one
		to := idx
		if src.Index < idx {
			to--
		}
		if to == src.Index {
			return NoAction{}
		}
		return MoveAction{From: src.Index, To: to}
	default:
		return NoAction{}
	}
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
