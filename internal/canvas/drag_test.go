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
	"errors"
	"testing"

	"formdesigner/internal/dnd"
	"formdesigner/internal/domain"
)

func TestDropNewComponentHonoursMidpoint(t *testing.T) {
	cases := []struct {
		after bool
		want  string
	}{
		{false, "A,c1,B"},
		{true, "A,B,c1"},
	}
	for _, tc := range cases {
		e := newEngine(t, "A", "B")
		e.BeginDrag(dnd.NewComponent{Type: domain.TypeInput})
		act, err := e.Drop(dnd.Target{Index: 1, InsertAfter: tc.after})
		if err != nil {
			t.Fatalf("drop: %v", err)
		}
		if _, ok := act.(dnd.InsertAction); !ok {
			t.Fatalf("expected insert action, got %#v", act)
		}
		if got := order(e); got != tc.want {
			t.Fatalf("after=%v: got %s, want %s", tc.after, got, tc.want)
		}
		if e.SelectedID() != "c1" {
			t.Fatalf("dropped component should be selected")
		}
		if _, ok := e.Dragging(); ok {
			t.Fatalf("drop must end the session")
		}
	}
}

func TestDropOnEmptyCanvas(t *testing.T) {
	e := newEngine(t)
	e.BeginDrag(dnd.NewComponent{Type: domain.TypeGrid})
	if _, err := e.Drop(dnd.AppendTarget(e.Len())); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if e.Len() != 1 {
		t.Fatalf("expected one component")
	}
}

func TestDropExistingReorders(t *testing.T) {
	e := newEngine(t, "A", "B", "C")
	e.BeginDrag(dnd.ExistingComponent{ID: "A", Index: 0})
	e.DragOver(dnd.Target{Index: 2})
	if st, ok := e.Dragging(); !ok || st.Over == nil || st.Over.Index != 2 {
		t.Fatalf("hover target not recorded: %+v", st)
	}
	act, err := e.Drop(dnd.Target{Index: 2, InsertAfter: true})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if act != (dnd.MoveAction{From: 0, To: 2}) {
		t.Fatalf("unexpected action %#v", act)
	}
	if got := order(e); got != "B,C,A" {
		t.Fatalf("got %s", got)
	}
}

func TestDropDanglingSourceIsNoop(t *testing.T) {
	e := newEngine(t, "A", "B", "C")
	e.BeginDrag(dnd.ExistingComponent{ID: "A", Index: 0})
	e.Remove("A")
	depth := undoDepth(e)
	act, err := e.Drop(dnd.Target{Index: 1})
	if err != nil || act != (dnd.NoAction{}) {
		t.Fatalf("expected no action, got %#v, %v", act, err)
	}
	if order(e) != "B,C" || undoDepth(e) != depth {
		t.Fatalf("dangling drop changed state")
	}
}

func TestDropWithoutSessionAndCancel(t *testing.T) {
	e := newEngine(t, "A")
	if act, _ := e.Drop(dnd.Target{}); act != (dnd.NoAction{}) {
		t.Fatalf("drop without session should do nothing")
	}
	e.BeginDrag(dnd.NewComponent{Type: domain.TypeInput})
	e.CancelDrag()
	if act, _ := e.Drop(dnd.Target{}); act != (dnd.NoAction{}) || e.Len() != 1 {
		t.Fatalf("cancelled drag must not drop")
	}
	if e.CanUndo() {
		t.Fatalf("abandoned drag touched history")
	}
}

func TestDropUnknownType(t *testing.T) {
	e := newEngine(t)
	e.BeginDrag(dnd.NewComponent{Type: "rating"})
	if _, err := e.Drop(dnd.AppendTarget(0)); !errors.Is(err, ErrUnknownComponentType) {
		t.Fatalf("expected ErrUnknownComponentType, got %v", err)
	}
	if e.Len() != 0 {
		t.Fatalf("unknown type was placed")
	}
}
