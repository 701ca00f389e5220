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

import "formdesigner/internal/domain"

// Render handles of the built-in component types.
const (
	HandleInput      RenderHandle = "builtin/input"
	HandleTextarea   RenderHandle = "builtin/textarea"
	HandleSelect     RenderHandle = "builtin/select"
	HandleCheckbox   RenderHandle = "builtin/checkbox"
	HandleRadio      RenderHandle = "builtin/radio"
	HandleSwitch     RenderHandle = "builtin/switch"
	HandleSlider     RenderHandle = "builtin/slider"
	HandleDatePicker RenderHandle = "builtin/date-picker"
	HandleGrid       RenderHandle = "builtin/grid"
)

func num(v float64) *float64 { return &v }

func labelProp(def string) PropertyDefinition {
	return PropertyDefinition{Key: "label", Label: "Label", Kind: KindString, Default: def, Placeholder: "Enter a label"}
}

func placeholderProp(def string) PropertyDefinition {
	return PropertyDefinition{Key: "placeholder", Label: "Placeholder", Kind: KindString, Default: def, Placeholder: "Enter placeholder text"}
}

func widthProp() PropertyDefinition {
	return PropertyDefinition{Key: "width", Label: "Width", Kind: KindSelect, Default: string(domain.WidthFull), Options: []Choice{
		{Label: "100%", Value: string(domain.WidthFull)},
		{Label: "50%", Value: string(domain.WidthHalf)},
		{Label: "33%", Value: string(domain.WidthThird)},
		{Label: "25%", Value: string(domain.WidthQuarter)},
	}}
}

func orientationProp() PropertyDefinition {
	return PropertyDefinition{Key: "orientation", Label: "Orientation", Kind: KindSelect, Default: string(domain.Vertical), Options: []Choice{
		{Label: "Horizontal", Value: string(domain.Horizontal)},
		{Label: "Vertical", Value: string(domain.Vertical)},
	}}
}

func flagProps() []PropertyDefinition {
	return []PropertyDefinition{
		{Key: "required", Label: "Required", Kind: KindBoolean, Default: false},
		{Key: "disabled", Label: "Disabled", Kind: KindBoolean, Default: false},
	}
}

func props(ps ...PropertyDefinition) []PropertyDefinition {
	return append(ps, flagProps()...)
}

// BuiltinDefinitions returns the definitions of the built-in component types.
func BuiltinDefinitions() []ComponentDefinition {
	return []ComponentDefinition{
		{
			Type: domain.TypeInput, Category: CategoryBasic, Name: "Text Input", Icon: "TextCursorInput",
			Description: "Single-line text input",
			Properties: props(
				labelProp("Text Input"),
				placeholderProp(""),
				PropertyDefinition{Key: "inputType", Label: "Input type", Kind: KindSelect, Default: "text", Options: []Choice{
					{Label: "Text", Value: "text"}, {Label: "Email", Value: "email"}, {Label: "Password", Value: "password"},
					{Label: "Number", Value: "number"}, {Label: "Phone", Value: "tel"}, {Label: "URL", Value: "url"},
				}},
				widthProp(),
				PropertyDefinition{Key: "maxLength", Label: "Max length", Kind: KindNumber, Min: num(0), Max: num(10000)},
			),
			Defaults: map[string]any{"label": "Text Input", "placeholder": "Please enter...", "inputType": "text", "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeTextarea, Category: CategoryBasic, Name: "Textarea", Icon: "AlignLeft",
			Description: "Multi-line text input",
			Properties: props(
				labelProp("Textarea"),
				placeholderProp(""),
				PropertyDefinition{Key: "rows", Label: "Rows", Kind: KindNumber, Default: 3, Min: num(1), Max: num(20)},
				widthProp(),
				PropertyDefinition{Key: "maxLength", Label: "Max length", Kind: KindNumber, Min: num(0), Max: num(10000)},
			),
			Defaults: map[string]any{"label": "Textarea", "placeholder": "Please enter...", "rows": 3, "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeSelect, Category: CategoryBasic, Name: "Select", Icon: "ChevronDown",
			Description: "Drop-down selection",
			Properties: props(
				labelProp("Select"),
				placeholderProp("Please choose..."),
				widthProp(),
			),
			Defaults: map[string]any{"label": "Select", "placeholder": "Please choose...", "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeCheckbox, Category: CategoryBasic, Name: "Checkbox Group", Icon: "CheckSquare",
			Description: "Multiple choice group",
			Properties: props(
				labelProp("Checkbox Group"),
				orientationProp(),
				widthProp(),
			),
			Defaults: map[string]any{"label": "Checkbox Group", "orientation": "vertical", "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeRadio, Category: CategoryBasic, Name: "Radio Group", Icon: "Circle",
			Description: "Single choice group",
			Properties: props(
				labelProp("Radio Group"),
				orientationProp(),
				widthProp(),
			),
			Defaults: map[string]any{"label": "Radio Group", "orientation": "vertical", "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeSwitch, Category: CategoryBasic, Name: "Switch", Icon: "ToggleRight",
			Description: "On/off toggle",
			Properties: props(
				labelProp("Switch"),
				PropertyDefinition{Key: "defaultChecked", Label: "On by default", Kind: KindBoolean, Default: false},
				widthProp(),
			),
			Defaults: map[string]any{"label": "Switch", "defaultChecked": false, "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeSlider, Category: CategoryAdvanced, Name: "Slider", Icon: "SlidersHorizontal",
			Description: "Numeric slider",
			Properties: props(
				labelProp("Slider"),
				PropertyDefinition{Key: "min", Label: "Minimum", Kind: KindNumber, Default: 0, Min: num(0), Max: num(1000)},
				PropertyDefinition{Key: "max", Label: "Maximum", Kind: KindNumber, Default: 100, Min: num(1), Max: num(1000)},
				PropertyDefinition{Key: "step", Label: "Step", Kind: KindNumber, Default: 1, Min: num(1), Max: num(100)},
				PropertyDefinition{Key: "defaultValue", Label: "Default value", Kind: KindNumber, Default: 50, Min: num(0), Max: num(1000)},
				PropertyDefinition{Key: "showValue", Label: "Show value", Kind: KindBoolean, Default: true},
				widthProp(),
			),
			Defaults: map[string]any{"label": "Slider", "min": 0, "max": 100, "step": 1, "defaultValue": 50, "showValue": true, "width": "full", "required": false, "disabled": false},
		},
		{
			Type: domain.TypeDatePicker, Category: CategoryAdvanced, Name: "Date Picker", Icon: "Calendar",
			Description: "Date (and optional time) input",
			Properties: props(
				labelProp("Date Picker"),
				placeholderProp("Pick a date"),
				PropertyDefinition{Key: "format", Label: "Format", Kind: KindString, Default: "YYYY-MM-DD", Placeholder: "YYYY-MM-DD"},
				PropertyDefinition{Key: "showTime", Label: "Include time", Kind: KindBoolean, Default: false},
				widthProp(),
			),
			Defaults: map[string]any{"label": "Date Picker", "placeholder": "Pick a date", "format": "YYYY-MM-DD", "showTime": false, "width": "full"},
		},
		{
			Type: domain.TypeGrid, Category: CategoryLayout, Name: "Grid Layout", Icon: "Columns2",
			Description: "Horizontal multi-column container",
			Properties: []PropertyDefinition{
				{Key: "columns", Label: "Columns", Kind: KindNumber, Default: 2, Min: num(1), Max: num(4)},
				{Key: "gap", Label: "Gap (px)", Kind: KindNumber, Default: 16, Min: num(0), Max: num(100)},
				widthProp(),
			},
			Defaults: map[string]any{"label": "Grid Layout", "columns": 2, "gap": 16, "width": "full"},
		},
	}
}

var builtinHandles = map[domain.TypeID]RenderHandle{
	domain.TypeInput:      HandleInput,
	domain.TypeTextarea:   HandleTextarea,
	domain.TypeSelect:     HandleSelect,
	domain.TypeCheckbox:   HandleCheckbox,
	domain.TypeRadio:      HandleRadio,
	domain.TypeSwitch:     HandleSwitch,
	domain.TypeSlider:     HandleSlider,
	domain.TypeDatePicker: HandleDatePicker,
	domain.TypeGrid:       HandleGrid,
}

// Builtin returns a registry populated with the built-in component types.
func Builtin() *Registry {
	r := New()
	for _, d := range BuiltinDefinitions() {
		r.Register(d, builtinHandles[d.Type])
	}
	return r
}
