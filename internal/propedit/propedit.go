/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package propedit converts property edits typed as text (CLI arguments,
// text fields) into the values the property schema declares.
package propedit

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"formdesigner/internal/registry"
)

// ErrInvalidValue is wrapped by every conversion failure.
var ErrInvalidValue = errors.New("invalid property value")

var colorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Parse converts raw to a value of the kind def declares.
func Parse(def registry.PropertyDefinition, raw string) (any, error) {
	switch def.Kind {
	case registry.KindNumber:
		return parseNumber(def, raw)
	case registry.KindBoolean:
		b, err := cast.ToBoolE(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidValue, def.Key, raw)
		}
		return b, nil
	case registry.KindSelect:
		for _, o := range def.Options {
			if cast.ToString(o.Value) == raw || strings.EqualFold(o.Label, raw) {
				return o.Value, nil
			}
		}
		return nil, fmt.Errorf("%w: %s: %q is not one of %s", ErrInvalidValue, def.Key, raw, strings.Join(choices(def), ", "))
	case registry.KindColor:
		s := strings.TrimSpace(raw)
		if !colorRe.MatchString(s) {
			return nil, fmt.Errorf("%w: %s: %q is not a #rgb or #rrggbb color", ErrInvalidValue, def.Key, raw)
		}
		return strings.ToLower(s), nil
	default:
		return raw, nil
	}
}

func parseNumber(def registry.PropertyDefinition, raw string) (any, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidValue, def.Key, raw)
	}
	if def.Min != nil && v < *def.Min {
		return nil, fmt.Errorf("%w: %s: %v is below %v", ErrInvalidValue, def.Key, v, *def.Min)
	}
	if def.Max != nil && v > *def.Max {
		return nil, fmt.Errorf("%w: %s: %v is above %v", ErrInvalidValue, def.Key, v, *def.Max)
	}
	if def.Step != nil && *def.Step > 0 {
		base := 0.0
		if def.Min != nil {
			base = *def.Min
		}
		n := (v - base) / *def.Step
		if math.Abs(n-math.Round(n)) > 1e-9 {
			return nil, fmt.Errorf("%w: %s: %v is not a multiple of %v", ErrInvalidValue, def.Key, v, *def.Step)
		}
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v), nil
	}
	return v, nil
}

func choices(def registry.PropertyDefinition) []string {
	out := make([]string, 0, len(def.Options))
	for _, o := range def.Options {
		out = append(out, cast.ToString(o.Value))
	}
	return out
}

// ParseAssignments turns key=value arguments into a partial property bag
// for canvas updates. Keys outside the schema pass through as strings.
func ParseAssignments(def registry.ComponentDefinition, args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, a := range args {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q is not key=value", ErrInvalidValue, a)
		}
		pd, known := def.Property(key)
		if !known {
			out[key] = raw
			continue
		}
		v, err := Parse(pd, raw)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Format renders a property value for display.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []any, map[string]any:
		return fmt.Sprintf("%v", x)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return s
	}
}
