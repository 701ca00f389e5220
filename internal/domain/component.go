/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Component is one placed component on the canvas.
// ID is assigned once and never changes or gets reused.
type Component struct {
	ID    string
	Type  TypeID
	Props Props
}

type componentJSON struct {
	ID    string         `json:"id"`
	Type  TypeID         `json:"type"`
	Props map[string]any `json:"props"`
}

// MarshalJSON writes {"id","type","props"}; props mirror id and type.
func (c Component) MarshalJSON() ([]byte, error) {
	props := c.Props.Map()
	props[KeyID] = c.ID
	props[KeyType] = string(c.Type)
	return json.Marshal(componentJSON{ID: c.ID, Type: c.Type, Props: props})
}

// UnmarshalJSON accepts {"id","type","props"}. Numbers inside props keep
// their literal form when they land in Extra.
func (c *Component) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("component must be a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var raw componentJSON
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.Type = raw.Type
	c.Props = DecodeProps(raw.Type, raw.Props)
	return nil
}

// Clone returns a deep copy of c.
func (c Component) Clone() Component {
	var out Component
	b, err := c.MarshalJSON()
	if err == nil && out.UnmarshalJSON(b) == nil {
		return out
	}
	// Unreachable for values produced by this package; keep the shallow copy.
	return Component{ID: c.ID, Type: c.Type, Props: c.Props}
}

// Merge returns a copy of c with partial merged into its props.
func (c Component) Merge(partial map[string]any) Component {
	return Component{ID: c.ID, Type: c.Type, Props: c.Props.Merge(c.Type, partial)}
}

// CloneAll deep-copies a component sequence.
func CloneAll(cs []Component) []Component {
	out := make([]Component, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}
