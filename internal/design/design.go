/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package design reads and writes form designs: a JSON document of the
// shape {"components": [...]} holding the ordered component sequence.
package design

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"formdesigner/internal/domain"
)

// ErrMalformedImport reports text that is not a design document.
var ErrMalformedImport = errors.New("malformed design document")

//go:embed design.schema.json
var schemaJSON []byte

// Schema returns the JSON schema for design documents.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

type envelope struct {
	Components []domain.Component `json:"components"`
}

// Encode writes components as a pretty-printed design document.
// A nil or empty sequence encodes as {"components": []}.
func Encode(components []domain.Component) ([]byte, error) {
	env := envelope{Components: components}
	if env.Components == nil {
		env.Components = []domain.Component{}
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode design: %w", err)
	}
	return b, nil
}

// Decode parses a design document. Both the wrapped form and a bare array
// of components are accepted. Components without an id get a fresh one.
func Decode(data []byte) ([]domain.Component, error) {
	return DecodeWithIDs(data, domain.NewID)
}

// DecodeWithIDs is Decode with a custom id source for components that lack one.
// Any failure wraps ErrMalformedImport.
func DecodeWithIDs(data []byte, newID func() string) ([]domain.Component, error) {
	raw, err := elements(data)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Component, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for i, r := range raw {
		var c domain.Component
		if err := json.Unmarshal(r, &c); err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrMalformedImport, i, err)
		}
		if strings.TrimSpace(c.ID) == "" {
			c.ID = newID()
		} else if j, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: components %d and %d share id %q", ErrMalformedImport, j, i, c.ID)
		}
		seen[c.ID] = i
		out = append(out, c)
	}
	return out, nil
}

func elements(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedImport)
	}
	switch trimmed[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
		}
		return arr, nil
	case '{':
		var obj struct {
			Components json.RawMessage `json:"components"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
		}
		inner := bytes.TrimSpace(obj.Components)
		if len(inner) == 0 || inner[0] != '[' {
			return nil, fmt.Errorf("%w: components is not an array", ErrMalformedImport)
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(inner, &arr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", ErrMalformedImport)
	}
}

// ValidationError lists schema violations of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "design does not conform to schema: " + strings.Join(e.Problems, "; ")
}

// Validate checks data against the design schema. Violations are reported
// as a *ValidationError; unreadable input as an error wrapping ErrMalformedImport.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range result.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}
