/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package design

import (
	"errors"
	"strings"
	"testing"

	"formdesigner/internal/domain"
)

func sample() []domain.Component {
	return []domain.Component{
		{ID: "a", Type: domain.TypeInput, Props: domain.DecodeProps(domain.TypeInput, map[string]any{"label": "Name"})},
		{ID: "b", Type: domain.TypeSlider, Props: domain.DecodeProps(domain.TypeSlider, map[string]any{"max": 10})},
	}
}

func TestEncodeEmpty(t *testing.T) {
	b, err := Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != "{\n  \"components\": []\n}" {
		t.Fatalf("unexpected empty document: %q", b)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b, err := Encode(sample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b2, err := Encode(got)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if string(b) != string(b2) {
		t.Fatalf("round trip changed document:\n%s\n---\n%s", b, b2)
	}
	if got[0].ID != "a" || got[1].Type != domain.TypeSlider {
		t.Fatalf("unexpected components: %+v", got)
	}
}

func TestDecodeBareArray(t *testing.T) {
	got, err := Decode([]byte(`[{"id":"x","type":"switch","props":{"label":"On"}}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Props.Label != "On" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"not json",
		"",
		"42",
		`{"components": {}}`,
		`{"other": []}`,
		`[1, 2]`,
		`[{"id":"x","type":"input","props":{}}, {"id":"x","type":"input","props":{}}]`,
	}
	for _, in := range cases {
		if _, err := Decode([]byte(in)); !errors.Is(err, ErrMalformedImport) {
			t.Fatalf("input %q: expected ErrMalformedImport, got %v", in, err)
		}
	}
}

func TestDecodeAssignsMissingIDs(t *testing.T) {
	n := 0
	gen := func() string { n++; return "gen" + string(rune('0'+n)) }
	got, err := DecodeWithIDs([]byte(`{"components":[{"type":"input","props":{}},{"id":"","type":"grid","props":{}}]}`), gen)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].ID != "gen1" || got[1].ID != "gen2" {
		t.Fatalf("ids not assigned: %q %q", got[0].ID, got[1].ID)
	}
}

func TestDecodeKeepsUnknownTypes(t *testing.T) {
	got, err := Decode([]byte(`[{"id":"x","type":"rating","props":{"stars":5}}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].Type != "rating" || got[0].Props.Kind != nil {
		t.Fatalf("unexpected component: %+v", got[0])
	}
	if v, ok := got[0].Props.Get("stars"); !ok || v == nil {
		t.Fatalf("extra prop lost")
	}
}

func TestValidate(t *testing.T) {
	b, _ := Encode(sample())
	if err := Validate(b); err != nil {
		t.Fatalf("encoded design should validate: %v", err)
	}
	err := Validate([]byte(`{"components":[{"id":"x","type":"input","props":{"width":"2/3"}}]}`))
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Problems) == 0 {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(ve.Error(), "schema") {
		t.Fatalf("unexpected message %q", ve.Error())
	}
	if err := Validate([]byte("not json")); !errors.Is(err, ErrMalformedImport) {
		t.Fatalf("expected ErrMalformedImport for unreadable input, got %v", err)
	}
}
