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
	"reflect"
)

// field binds a property key to the Go field holding its value.
type field struct {
	key       string
	ptr       any // pointer to the field
	omitEmpty bool
}

// Props is the property bag of a placed component.
type Props struct {
	Base
	Kind  Kind
	Extra map[string]any
}

// DecodeProps builds Props for type t from a loosely typed bag. Values
// that do not fit the typed field for their key are kept verbatim in Extra,
// leaving the typed field at its default. The reserved id/type keys are dropped.
func DecodeProps(t TypeID, bag map[string]any) Props {
	p := Props{Base: Base{Width: WidthFull}, Kind: NewKind(t)}
	claimed := map[string]bool{KeyID: true, KeyType: true}
	assign := func(fs []field) {
		for _, f := range fs {
			claimed[f.key] = true
			v, ok := bag[f.key]
			if !ok {
				continue
			}
			if !setField(f.ptr, v) {
				if p.Extra == nil {
					p.Extra = map[string]any{}
				}
				p.Extra[f.key] = v
			}
		}
	}
	assign(p.Base.fields())
	if p.Kind != nil {
		assign(p.Kind.fields())
	}
	for k, v := range bag {
		if claimed[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[k] = v
	}
	return p
}

// setField decodes v into the field behind ptr via its JSON form. The field
// is left untouched when v does not fit.
func setField(ptr any, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	tmp := reflect.New(reflect.TypeOf(ptr).Elem())
	if err := json.Unmarshal(b, tmp.Interface()); err != nil {
		return false
	}
	reflect.ValueOf(ptr).Elem().Set(tmp.Elem())
	return true
}

// Map flattens the props into a key/value bag: base fields, kind fields,
// then Extra. Values are plain JSON values (numbers as float64).
func (p Props) Map() map[string]any {
	out := map[string]any{}
	put := func(fs []field) {
		for _, f := range fs {
			b, err := json.Marshal(f.ptr)
			if err != nil {
				continue
			}
			if f.omitEmpty && isEmptyJSON(b) {
				continue
			}
			var v any
			if err := json.Unmarshal(b, &v); err != nil {
				continue
			}
			out[f.key] = v
		}
	}
	base := p.Base
	put(base.fields())
	if p.Kind != nil {
		put(p.Kind.fields())
	}
	for k, v := range p.Extra {
		out[k] = v
	}
	return out
}

// isEmptyJSON treats only null and "" as empty so an explicit 0 survives.
func isEmptyJSON(b []byte) bool {
	switch string(bytes.TrimSpace(b)) {
	case "null", `""`:
		return true
	}
	return false
}

// Get returns the value for key as Map would report it.
func (p Props) Get(key string) (any, bool) {
	v, ok := p.Map()[key]
	return v, ok
}

// Merge returns a copy of p with partial shallow-merged on top; keys in
// partial win. t selects the kind record used to decode the result.
func (p Props) Merge(t TypeID, partial map[string]any) Props {
	m := p.Map()
	for k, v := range partial {
		m[k] = v
	}
	return DecodeProps(t, m)
}
