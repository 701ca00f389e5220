/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package registry holds the table of component types a design may use:
// display metadata, property schema, default values and the render handle
// external renderers dispatch on. A Registry is built once at startup and
// shared read-only by the canvas engine, renderers and property editors.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"formdesigner/internal/domain"
	applog "formdesigner/internal/log"
)

// Category groups component types in the palette.
type Category string

const (
	CategoryBasic    Category = "basic"
	CategoryAdvanced Category = "advanced"
	CategoryLayout   Category = "layout"
)

// Categories lists the palette categories in display order.
var Categories = []Category{CategoryBasic, CategoryAdvanced, CategoryLayout}

// PropertyKind is the declared kind of a configurable property.
type PropertyKind string

const (
	KindString  PropertyKind = "string"
	KindNumber  PropertyKind = "number"
	KindBoolean PropertyKind = "boolean"
	KindSelect  PropertyKind = "select"
	KindColor   PropertyKind = "color"
)

// Choice is one entry of a select-kind property.
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// PropertyDefinition describes one configurable property of a component type.
type PropertyDefinition struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Kind        PropertyKind `json:"type"`
	Default     any          `json:"defaultValue,omitempty"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Step        *float64     `json:"step,omitempty"`
	Options     []Choice     `json:"options,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// ComponentDefinition describes a component type. It must not be modified
// after registration.
type ComponentDefinition struct {
	Type        domain.TypeID        `json:"type"`
	Category    Category             `json:"category"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	Properties  []PropertyDefinition `json:"properties"`
	Defaults    map[string]any       `json:"defaultProps"`
}

// Property returns the schema entry for key.
func (d ComponentDefinition) Property(key string) (PropertyDefinition, bool) {
	for _, p := range d.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return PropertyDefinition{}, false
}

// Validate checks the structural invariants of a definition: unique
// property keys, non-empty options on select properties and default keys
// that are either schema keys or base fields.
func (d ComponentDefinition) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("definition has no type id")
	}
	seen := map[string]bool{}
	for _, p := range d.Properties {
		if p.Key == "" {
			return fmt.Errorf("%s: property with empty key", d.Type)
		}
		if seen[p.Key] {
			return fmt.Errorf("%s: duplicate property %q", d.Type, p.Key)
		}
		seen[p.Key] = true
		if p.Kind == KindSelect && len(p.Options) == 0 {
			return fmt.Errorf("%s: select property %q has no options", d.Type, p.Key)
		}
	}
	for k := range d.Defaults {
		if !seen[k] && !domain.IsBaseKey(k) {
			return fmt.Errorf("%s: default %q is neither a property nor a base field", d.Type, k)
		}
	}
	return nil
}

// RenderHandle is an opaque token naming the rendering capability of a type.
// The registry stores it; only renderers interpret it.
type RenderHandle string

type entry struct {
	def    ComponentDefinition
	handle RenderHandle
}

// Registry maps type ids to definitions and render handles.
// It is safe for concurrent reads.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.TypeID]entry
	order   []domain.TypeID
	log     *slog.Logger
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[domain.TypeID]entry{}, log: applog.WithComponent("registry")}
}

// Register stores def and h under def.Type. A second registration for the
// same type replaces the first (last write wins) and keeps its position in
// the listing order; the replacement is logged as a warning.
func (r *Registry) Register(def ComponentDefinition, h RenderHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Type]; exists {
		r.log.Warn("component type re-registered; previous definition replaced", slog.String("type", string(def.Type)))
	} else {
		r.order = append(r.order, def.Type)
	}
	r.entries[def.Type] = entry{def: def, handle: h}
}

// Definition returns the definition registered for t.
func (r *Registry) Definition(t domain.TypeID) (ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	return e.def, ok
}

// RenderHandle returns the render handle registered for t.
func (r *Registry) RenderHandle(t domain.TypeID) (RenderHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	return e.handle, ok
}

// Has reports whether t is registered.
func (r *Registry) Has(t domain.TypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[t]
	return ok
}

// ByCategory returns the definitions in category c in registration order.
func (r *Registry) ByCategory(c Category) []ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ComponentDefinition
	for _, t := range r.order {
		if e := r.entries[t]; e.def.Category == c {
			out = append(out, e.def)
		}
	}
	return out
}

// All returns every definition in registration order.
func (r *Registry) All() []ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ComponentDefinition, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.entries[t].def)
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Categories returns the categories that hold at least one definition: the
// palette categories in display order, then any others in registration order.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	used := map[Category]bool{}
	var extra []Category
	for _, t := range r.order {
		c := r.entries[t].def.Category
		if !used[c] && !slices.Contains(Categories, c) {
			extra = append(extra, c)
		}
		used[c] = true
	}
	var out []Category
	for _, c := range Categories {
		if used[c] {
			out = append(out, c)
		}
	}
	return append(out, extra...)
}
