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

// Op names the kind of committed change.
type Op string

const (
	OpInsert   Op = "insert"
	OpRemove   Op = "remove"
	OpUpdate   Op = "update"
	OpMove     Op = "move"
	OpClear    Op = "clear"
	OpImport   Op = "import"
	OpSelect   Op = "select"
	OpUndo     Op = "undo"
	OpRedo     Op = "redo"
	OpDragging Op = "drag"
)

// Change describes one committed change. ID is the affected component when
// there is exactly one; From and To are set for moves.
type Change struct {
	Op       Op
	ID       string
	From, To int
}

type observer struct {
	fn func(Change)
}

// Subscribe registers fn to be called after every committed change and
// returns a function that removes it. Observers may read from the engine;
// mutations from inside fn are rejected.
func (e *Engine) Subscribe(fn func(Change)) (unsubscribe func()) {
	o := &observer{fn: fn}
	e.observers = append(e.observers, o)
	return func() {
		for i, x := range e.observers {
			if x == o {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify(c Change) {
	if len(e.observers) == 0 {
		return
	}
	e.delivering = true
	defer func() { e.delivering = false }()
	for _, o := range append([]*observer(nil), e.observers...) {
		o.fn(c)
	}
}

// guard reports ErrReentrantMutation while observers are running.
func (e *Engine) guard(op Op) error {
	if !e.delivering {
		return nil
	}
	e.log.Warn("rejected mutation from change observer", "op", string(op))
	return ErrReentrantMutation
}
