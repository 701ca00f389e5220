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

	"formdesigner/internal/domain"
)

func TestSubscribeReceivesChanges(t *testing.T) {
	e := newEngine(t, "A", "B")
	var got []Change
	unsub := e.Subscribe(func(c Change) { got = append(got, c) })
	e.Move(0, 1)
	e.Select("A")
	e.Remove("missing")
	if len(got) != 3 {
		t.Fatalf("expected 3 changes, got %+v", got)
	}
	if got[0] != (Change{Op: OpMove, ID: "A", From: 0, To: 1}) || got[1].Op != OpSelect {
		t.Fatalf("unexpected changes %+v", got)
	}
	if got[2] != (Change{Op: OpRemove, ID: "missing"}) {
		t.Fatalf("a remove of an unknown id is still a recorded change: %+v", got[2])
	}
	unsub()
	e.Clear()
	if len(got) != 3 {
		t.Fatalf("unsubscribed observer still called")
	}
}

func TestObserverCannotMutate(t *testing.T) {
	e := newEngine(t)
	var addErr error
	var seenLen int
	e.Subscribe(func(c Change) {
		seenLen = e.Len()
		if c.Op == OpInsert {
			_, addErr = e.Add(domain.TypeInput)
			e.Clear()
		}
	})
	if _, err := e.Add(domain.TypeInput); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !errors.Is(addErr, ErrReentrantMutation) {
		t.Fatalf("expected ErrReentrantMutation, got %v", addErr)
	}
	if e.Len() != 1 || seenLen != 1 {
		t.Fatalf("observer mutation leaked: len=%d seen=%d", e.Len(), seenLen)
	}
	if undoDepth(e) != 1 {
		t.Fatalf("rejected mutations must not touch history")
	}
}
