/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"math"

	"formdesigner/internal/domain"
	"formdesigner/internal/registry"
)

const (
	gutter   = 8.0
	rowGap   = 12.0
	labelH   = 16.0
	fieldH   = 26.0
	optionH  = 18.0
	fontSize = 10.0
)

var (
	ink      = color.RGBA{R: 33, G: 37, B: 41, A: 255}
	muted    = color.RGBA{R: 134, G: 142, B: 150, A: 255}
	frame    = color.RGBA{R: 173, G: 181, B: 189, A: 255}
	paper    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	accent   = color.RGBA{R: 51, G: 102, B: 204, A: 255}
	warnFill = color.RGBA{R: 255, G: 243, B: 205, A: 255}
)

// Box is a component placed on the preview surface. Coordinates are in
// output units (points for PDF, pixels for PNG) relative to the content origin.
type Box struct {
	X, Y, W, H float64
	Component  domain.Component
	Handle     registry.RenderHandle
}

// Layout packs components into rows, left to right in canvas order. A row
// ends when the next component's width class no longer fits. It returns
// the boxes and the total content height.
func Layout(reg *registry.Registry, comps []domain.Component, width float64) ([]Box, float64) {
	boxes := make([]Box, 0, len(comps))
	var x, y, rowH float64
	for _, c := range comps {
		w := c.Props.Width.Fraction() * width
		if x > 0 && x+w > width+0.5 {
			y += rowH + rowGap
			x, rowH = 0, 0
		}
		h, _ := reg.RenderHandle(c.Type)
		b := Box{X: x, Y: y, W: w, Component: c, Handle: h}
		b.H = heightOf(b)
		rowH = math.Max(rowH, b.H)
		boxes = append(boxes, b)
		x += w
	}
	if len(boxes) == 0 {
		return boxes, 0
	}
	return boxes, y + rowH
}

func heightOf(b Box) float64 {
	switch k := b.Component.Props.Kind.(type) {
	case *domain.TextareaProps:
		rows := k.Rows
		if rows < 1 {
			rows = 1
		}
		return labelH + float64(rows)*14 + 10
	case *domain.CheckboxProps:
		return labelH + optionsHeight(len(k.Options), k.Orientation)
	case *domain.RadioProps:
		return labelH + optionsHeight(len(k.Options), k.Orientation)
	case *domain.SwitchProps:
		return fieldH
	case *domain.GridProps:
		return labelH + 48
	}
	return labelH + fieldH
}

func optionsHeight(n int, o domain.Orientation) float64 {
	if n == 0 {
		return optionH
	}
	if o == domain.Horizontal {
		return optionH
	}
	return float64(n) * optionH
}

// painter is the drawing surface shared by the PDF and PNG renderers.
type painter interface {
	Rect(x, y, w, h float64, stroke color.RGBA, fill *color.RGBA)
	Circle(cx, cy, r float64, stroke color.RGBA, fill *color.RGBA)
	Line(x0, y0, x1, y1 float64, col color.RGBA)
	// Text draws s with its baseline at y.
	Text(x, y float64, s string, col color.RGBA)
}

// drawBox renders one component by its render handle. Handles the
// renderer does not know are drawn as a placeholder.
func drawBox(p painter, b Box) {
	x, w := b.X+gutter/2, b.W-gutter
	y := b.Y
	c := b.Component
	text := ink
	if c.Props.Disabled {
		text = muted
	}
	label := c.Props.Label
	if c.Props.Required {
		label += " *"
	}
	fieldY := y + labelH

	switch b.Handle {
	case registry.HandleInput:
		p.Text(x, y+12, label, text)
		p.Rect(x, fieldY, w, fieldH-4, frame, &paper)
		p.Text(x+6, fieldY+15, c.Props.Placeholder, muted)
	case registry.HandleDatePicker:
		p.Text(x, y+12, label, text)
		p.Rect(x, fieldY, w, fieldH-4, frame, &paper)
		format := ""
		if k, ok := c.Props.Kind.(*domain.DatePickerProps); ok {
			format = k.Format
		}
		p.Text(x+6, fieldY+15, format, muted)
	case registry.HandleTextarea:
		p.Text(x, y+12, label, text)
		p.Rect(x, fieldY, w, b.H-labelH-4, frame, &paper)
		p.Text(x+6, fieldY+15, c.Props.Placeholder, muted)
	case registry.HandleSelect:
		p.Text(x, y+12, label, text)
		p.Rect(x, fieldY, w, fieldH-4, frame, &paper)
		p.Text(x+6, fieldY+15, c.Props.Placeholder, muted)
		p.Line(x+w-16, fieldY+9, x+w-12, fieldY+13, text)
		p.Line(x+w-12, fieldY+13, x+w-8, fieldY+9, text)
	case registry.HandleCheckbox, registry.HandleRadio:
		p.Text(x, y+12, label, text)
		opts, orient := groupOptions(c)
		ox, oy := x, fieldY
		for _, o := range opts {
			if b.Handle == registry.HandleRadio {
				p.Circle(ox+5, oy+7, 5, frame, &paper)
			} else {
				p.Rect(ox, oy+2, 10, 10, frame, &paper)
			}
			p.Text(ox+16, oy+11, o.Label, text)
			if orient == domain.Horizontal {
				ox += 24 + float64(len(o.Label))*6
			} else {
				oy += optionH
			}
		}
	case registry.HandleSwitch:
		on := false
		if k, ok := c.Props.Kind.(*domain.SwitchProps); ok {
			on = k.DefaultChecked
		}
		track := frame
		knobX := x + 7
		if on {
			track = accent
			knobX = x + 21
		}
		p.Rect(x, y+5, 28, 14, track, &track)
		p.Circle(knobX, y+12, 5, paper, &paper)
		p.Text(x+36, y+16, label, text)
	case registry.HandleSlider:
		p.Text(x, y+12, label, text)
		frac := 0.5
		if k, ok := c.Props.Kind.(*domain.SliderProps); ok {
			frac = sliderFraction(*k)
			if k.ShowValue {
				p.Text(x+w-24, y+12, fmt.Sprintf("%g", k.DefaultValue), muted)
			}
		}
		mid := fieldY + fieldH/2 - 2
		p.Line(x, mid, x+w, mid, frame)
		p.Line(x, mid, x+frac*w, mid, accent)
		p.Circle(x+frac*w, mid, 6, accent, &paper)
	case registry.HandleGrid:
		p.Text(x, y+12, label, text)
		cols := 2
		if k, ok := c.Props.Kind.(*domain.GridProps); ok && k.Columns > 0 {
			cols = k.Columns
		}
		p.Rect(x, fieldY, w, b.H-labelH-4, frame, nil)
		for i := 1; i < cols; i++ {
			cx := x + w*float64(i)/float64(cols)
			p.Line(cx, fieldY, cx, b.Y+b.H-4, frame)
		}
	default:
		p.Rect(x, y, w, b.H-4, muted, &warnFill)
		p.Text(x+6, y+16, "Unknown component: "+string(c.Type), ink)
	}
}

func groupOptions(c domain.Component) ([]domain.Option, domain.Orientation) {
	switch k := c.Props.Kind.(type) {
	case *domain.CheckboxProps:
		return k.Options, k.Orientation
	case *domain.RadioProps:
		return k.Options, k.Orientation
	}
	return nil, domain.Vertical
}

func sliderFraction(s domain.SliderProps) float64 {
	if s.Max <= s.Min {
		return 0
	}
	f := (s.DefaultValue - s.Min) / (s.Max - s.Min)
	return math.Min(1, math.Max(0, f))
}
