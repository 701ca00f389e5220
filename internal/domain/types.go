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

// This file defines the data model of a form design: placed components and
// their property records. A component's properties are a fixed set of base
// fields plus one kind-specific record per component type. Keys neither of
// them claim are kept in Props.Extra so designs written by newer versions
// survive a load/save cycle unchanged.

// TypeID identifies a component type, e.g. "input" or "grid".
type TypeID string

const (
	TypeInput      TypeID = "input"
	TypeTextarea   TypeID = "textarea"
	TypeSelect     TypeID = "select"
	TypeCheckbox   TypeID = "checkbox"
	TypeRadio      TypeID = "radio"
	TypeSwitch     TypeID = "switch"
	TypeSlider     TypeID = "slider"
	TypeDatePicker TypeID = "date-picker"
	TypeGrid       TypeID = "grid"
)

// Width is an opaque width class. The engine never computes layout from it.
type Width string

const (
	WidthFull    Width = "full"
	WidthHalf    Width = "1/2"
	WidthThird   Width = "1/3"
	WidthQuarter Width = "1/4"
)

// Widths lists the width classes in display order.
var Widths = []Width{WidthFull, WidthHalf, WidthThird, WidthQuarter}

// Fraction maps a width class to its share of a row; unknown classes are full width.
func (w Width) Fraction() float64 {
	switch w {
	case WidthHalf:
		return 0.5
	case WidthThird:
		return 1.0 / 3.0
	case WidthQuarter:
		return 0.25
	default:
		return 1
	}
}

// Orientation of option groups (checkbox, radio).
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Option is one choice of a select, radio or checkbox group.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Base holds the fields every component carries.
type Base struct {
	Label       string `json:"label"`
	Width       Width  `json:"width"`
	Required    bool   `json:"required"`
	Disabled    bool   `json:"disabled"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Reserved property keys mirrored from the component itself.
const (
	KeyID   = "id"
	KeyType = "type"
)

// BaseKeys are the property keys owned by Base or mirrored from the component.
var BaseKeys = []string{"label", "width", "required", "disabled", KeyID, KeyType}

// IsBaseKey reports whether key is a base field.
func IsBaseKey(key string) bool {
	for _, k := range BaseKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (b *Base) fields() []field {
	return []field{
		{key: "label", ptr: &b.Label},
		{key: "width", ptr: &b.Width},
		{key: "required", ptr: &b.Required},
		{key: "disabled", ptr: &b.Disabled},
		{key: "placeholder", ptr: &b.Placeholder, omitEmpty: true},
	}
}

// Kind is the kind-specific property record of a component. The set of
// implementations is closed: InputProps, TextareaProps, SelectProps,
// CheckboxProps, RadioProps, SwitchProps, SliderProps, DatePickerProps and
// GridProps. Components of unknown types carry a nil Kind.
type Kind interface {
	Type() TypeID
	fields() []field
}

type InputProps struct {
	InputType string `json:"inputType"` // text, email, password, number, tel, url
	MaxLength *int   `json:"maxLength,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

func (*InputProps) Type() TypeID { return TypeInput }
func (p *InputProps) fields() []field {
	return []field{
		{key: "inputType", ptr: &p.InputType},
		{key: "maxLength", ptr: &p.MaxLength, omitEmpty: true},
		{key: "minLength", ptr: &p.MinLength, omitEmpty: true},
		{key: "pattern", ptr: &p.Pattern, omitEmpty: true},
	}
}

type TextareaProps struct {
	Rows      int  `json:"rows"`
	MaxLength *int `json:"maxLength,omitempty"`
}

func (*TextareaProps) Type() TypeID { return TypeTextarea }
func (p *TextareaProps) fields() []field {
	return []field{
		{key: "rows", ptr: &p.Rows},
		{key: "maxLength", ptr: &p.MaxLength, omitEmpty: true},
	}
}

type SelectProps struct {
	Options  []Option `json:"options"`
	Multiple bool     `json:"multiple"`
}

func (*SelectProps) Type() TypeID { return TypeSelect }
func (p *SelectProps) fields() []field {
	return []field{
		{key: "options", ptr: &p.Options},
		{key: "multiple", ptr: &p.Multiple},
	}
}

type CheckboxProps struct {
	Options     []Option    `json:"options"`
	Orientation Orientation `json:"orientation"`
}

func (*CheckboxProps) Type() TypeID { return TypeCheckbox }
func (p *CheckboxProps) fields() []field {
	return []field{
		{key: "options", ptr: &p.Options},
		{key: "orientation", ptr: &p.Orientation},
	}
}

type RadioProps struct {
	Options     []Option    `json:"options"`
	Orientation Orientation `json:"orientation"`
}

func (*RadioProps) Type() TypeID { return TypeRadio }
func (p *RadioProps) fields() []field {
	return []field{
		{key: "options", ptr: &p.Options},
		{key: "orientation", ptr: &p.Orientation},
	}
}

type SwitchProps struct {
	DefaultChecked bool `json:"defaultChecked"`
}

func (*SwitchProps) Type() TypeID { return TypeSwitch }
func (p *SwitchProps) fields() []field {
	return []field{{key: "defaultChecked", ptr: &p.DefaultChecked}}
}

type SliderProps struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Step         float64 `json:"step"`
	DefaultValue float64 `json:"defaultValue"`
	ShowValue    bool    `json:"showValue"`
}

func (*SliderProps) Type() TypeID { return TypeSlider }
func (p *SliderProps) fields() []field {
	return []field{
		{key: "min", ptr: &p.Min},
		{key: "max", ptr: &p.Max},
		{key: "step", ptr: &p.Step},
		{key: "defaultValue", ptr: &p.DefaultValue},
		{key: "showValue", ptr: &p.ShowValue},
	}
}

type DatePickerProps struct {
	Format   string `json:"format"`
	ShowTime bool   `json:"showTime"`
}

func (*DatePickerProps) Type() TypeID { return TypeDatePicker }
func (p *DatePickerProps) fields() []field {
	return []field{
		{key: "format", ptr: &p.Format},
		{key: "showTime", ptr: &p.ShowTime},
	}
}

type GridProps struct {
	Columns int `json:"columns"`
	Gap     int `json:"gap"`
}

func (*GridProps) Type() TypeID { return TypeGrid }
func (p *GridProps) fields() []field {
	return []field{
		{key: "columns", ptr: &p.Columns},
		{key: "gap", ptr: &p.Gap},
	}
}

func defaultOptions(n int) []Option {
	labels := []string{"Option 1", "Option 2", "Option 3"}
	out := make([]Option, 0, n)
	for i := 0; i < n && i < len(labels); i++ {
		out = append(out, Option{Label: labels[i], Value: "option" + string(rune('1'+i))})
	}
	return out
}

// NewKind returns the kind record for t populated with its structural
// defaults, or nil when t is not a known component type.
func NewKind(t TypeID) Kind {
	switch t {
	case TypeInput:
		return &InputProps{InputType: "text"}
	case TypeTextarea:
		return &TextareaProps{Rows: 3}
	case TypeSelect:
		return &SelectProps{Options: defaultOptions(3)}
	case TypeCheckbox:
		return &CheckboxProps{Options: defaultOptions(2), Orientation: Vertical}
	case TypeRadio:
		return &RadioProps{Options: defaultOptions(3), Orientation: Vertical}
	case TypeSwitch:
		return &SwitchProps{}
	case TypeSlider:
		return &SliderProps{Min: 0, Max: 100, Step: 1, DefaultValue: 50, ShowValue: true}
	case TypeDatePicker:
		return &DatePickerProps{Format: "YYYY-MM-DD"}
	case TypeGrid:
		return &GridProps{Columns: 2, Gap: 16}
	default:
		return nil
	}
}

// KnownTypes lists every type NewKind understands.
func KnownTypes() []TypeID {
	return []TypeID{TypeInput, TypeTextarea, TypeSelect, TypeCheckbox, TypeRadio, TypeSwitch, TypeSlider, TypeDatePicker, TypeGrid}
}
