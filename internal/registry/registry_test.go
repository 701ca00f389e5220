/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package registry

import (
	"testing"

	"formdesigner/internal/domain"
)

func TestBuiltinDefinitionsAreValid(t *testing.T) {
	for _, d := range BuiltinDefinitions() {
		if err := d.Validate(); err != nil {
			t.Fatalf("builtin %s invalid: %v", d.Type, err)
		}
		if domain.NewKind(d.Type) == nil {
			t.Fatalf("builtin %s has no kind record", d.Type)
		}
	}
}

func TestLookup(t *testing.T) {
	r := Builtin()
	d, ok := r.Definition(domain.TypeSlider)
	if !ok || d.Name != "Slider" || d.Category != CategoryAdvanced {
		t.Fatalf("slider lookup mismatch: ok=%v def=%+v", ok, d)
	}
	h, ok := r.RenderHandle(domain.TypeSlider)
	if !ok || h != HandleSlider {
		t.Fatalf("slider handle mismatch: ok=%v h=%q", ok, h)
	}
	if _, ok := r.Definition("rating"); ok {
		t.Fatalf("unknown type should be absent")
	}
	if _, ok := r.RenderHandle("rating"); ok {
		t.Fatalf("unknown handle should be absent")
	}
}

func TestByCategoryKeepsRegistrationOrder(t *testing.T) {
	r := Builtin()
	basic := r.ByCategory(CategoryBasic)
	want := []domain.TypeID{domain.TypeInput, domain.TypeTextarea, domain.TypeSelect, domain.TypeCheckbox, domain.TypeRadio, domain.TypeSwitch}
	if len(basic) != len(want) {
		t.Fatalf("basic count = %d, want %d", len(basic), len(want))
	}
	for i, d := range basic {
		if d.Type != want[i] {
			t.Fatalf("basic[%d] = %s, want %s", i, d.Type, want[i])
		}
	}
	if got := r.ByCategory(CategoryLayout); len(got) != 1 || got[0].Type != domain.TypeGrid {
		t.Fatalf("layout mismatch: %+v", got)
	}
	if got := r.ByCategory("exotic"); len(got) != 0 {
		t.Fatalf("unknown category should be empty, got %d", len(got))
	}
}

func TestRegisterOverwriteLastWriteWins(t *testing.T) {
	r := New()
	r.Register(ComponentDefinition{Type: "a", Category: CategoryBasic, Name: "first"}, "h1")
	r.Register(ComponentDefinition{Type: "b", Category: CategoryBasic, Name: "second"}, "h2")
	r.Register(ComponentDefinition{Type: "a", Category: CategoryBasic, Name: "replaced"}, "h3")

	d, _ := r.Definition("a")
	h, _ := r.RenderHandle("a")
	if d.Name != "replaced" || h != "h3" {
		t.Fatalf("overwrite not applied: %+v %q", d, h)
	}
	all := r.All()
	if r.Len() != 2 || all[0].Type != "a" || all[1].Type != "b" {
		t.Fatalf("overwrite should keep original slot: %+v", all)
	}
}

func TestValidateRejectsBrokenDefinitions(t *testing.T) {
	cases := []struct {
		name string
		def  ComponentDefinition
	}{
		{"no type", ComponentDefinition{}},
		{"duplicate key", ComponentDefinition{Type: "x", Properties: []PropertyDefinition{{Key: "k", Kind: KindString}, {Key: "k", Kind: KindNumber}}}},
		{"select without options", ComponentDefinition{Type: "x", Properties: []PropertyDefinition{{Key: "k", Kind: KindSelect}}}},
		{"stray default", ComponentDefinition{Type: "x", Defaults: map[string]any{"nope": 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.def.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	ok := ComponentDefinition{Type: "x", Defaults: map[string]any{"label": "L", "width": "full"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("base-field defaults should validate: %v", err)
	}
}

func TestPropertyLookup(t *testing.T) {
	d, _ := Builtin().Definition(domain.TypeTextarea)
	p, ok := d.Property("rows")
	if !ok || p.Kind != KindNumber || p.Min == nil || *p.Min != 1 {
		t.Fatalf("rows property mismatch: %+v", p)
	}
	if _, ok := d.Property("columns"); ok {
		t.Fatalf("textarea should not expose columns")
	}
}

func TestCategoriesInUse(t *testing.T) {
	r := New()
	r.Register(ComponentDefinition{Type: "g", Category: CategoryLayout, Name: "G"}, "h")
	r.Register(ComponentDefinition{Type: "x", Category: "exotic", Name: "X"}, "h")
	r.Register(ComponentDefinition{Type: "i", Category: CategoryBasic, Name: "I"}, "h")
	got := r.Categories()
	want := []Category{CategoryBasic, CategoryLayout, "exotic"}
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("categories = %v, want %v", got, want)
		}
	}
	if n := len(Builtin().Categories()); n != len(Categories) {
		t.Fatalf("builtin categories = %d, want %d", n, len(Categories))
	}
}
