/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"formdesigner/internal/domain"
	"formdesigner/internal/registry"
)

// PNGOptions controls PNG preview rendering.
// - Width: image width in pixels (default 800)
// - Margin: empty border in pixels (default 24)
// The image height follows from the layout.
type PNGOptions struct {
	Width  int
	Margin int
}

// ExportPNG renders a preview of comps to a PNG file at outPath.
func ExportPNG(reg *registry.Registry, comps []domain.Component, outPath string, opt PNGOptions) error {
	if outPath == "" {
		return errors.New("output path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, reg, comps, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// WritePNG renders a preview of comps as a single PNG image to w.
func WritePNG(w io.Writer, reg *registry.Registry, comps []domain.Component, opt PNGOptions) error {
	img, err := RenderImage(reg, comps, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// RenderImage draws the preview into a new image.
func RenderImage(reg *registry.Registry, comps []domain.Component, opt PNGOptions) (*image.RGBA, error) {
	if reg == nil {
		return nil, errors.New("registry is nil")
	}
	if opt.Width <= 0 {
		opt.Width = 800
	}
	if opt.Margin <= 0 {
		opt.Margin = 24
	}
	contentW := float64(opt.Width - 2*opt.Margin)
	if contentW <= 0 {
		return nil, fmt.Errorf("width %d leaves no room inside margin %d", opt.Width, opt.Margin)
	}
	boxes, total := Layout(reg, comps, contentW)
	height := int(math.Ceil(total)) + 2*opt.Margin

	img := image.NewRGBA(image.Rect(0, 0, opt.Width, height))
	// Background white
	draw.Draw(img, img.Bounds(), &image.Uniform{C: paper}, image.Point{}, draw.Src)

	p := &pngPainter{img: img, dx: float64(opt.Margin), dy: float64(opt.Margin)}
	for _, b := range boxes {
		drawBox(p, b)
	}
	return img, nil
}

type pngPainter struct {
	img    *image.RGBA
	dx, dy float64
}

func (p *pngPainter) px(v, off float64) int { return int(math.Round(v + off)) }

func (p *pngPainter) Rect(x, y, w, h float64, stroke color.RGBA, fill *color.RGBA) {
	x0, y0 := p.px(x, p.dx), p.px(y, p.dy)
	x1, y1 := p.px(x+w, p.dx)-1, p.px(y+h, p.dy)-1
	if fill != nil {
		fillRect(p.img, x0, y0, x1, y1, *fill)
	}
	strokeRect(p.img, x0, y0, x1, y1, stroke)
}

func (p *pngPainter) Circle(cx, cy, r float64, stroke color.RGBA, fill *color.RGBA) {
	cx, cy = cx+p.dx, cy+p.dy
	for y := int(cy - r - 1); y <= int(cy+r+1); y++ {
		for x := int(cx - r - 1); x <= int(cx+r+1); x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			switch {
			case math.Abs(d-r) <= 0.6:
				p.img.SetRGBA(x, y, stroke)
			case d < r && fill != nil:
				p.img.SetRGBA(x, y, *fill)
			}
		}
	}
}

func (p *pngPainter) Line(x0, y0, x1, y1 float64, col color.RGBA) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
	if steps == 0 {
		p.img.SetRGBA(p.px(x0, p.dx), p.px(y0, p.dy), col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.img.SetRGBA(p.px(x0+(x1-x0)*t, p.dx), p.px(y0+(y1-y0)*t, p.dy), col)
	}
}

// Text uses basicfont.Face7x13 so output is deterministic across machines.
func (p *pngPainter) Text(x, y float64, s string, col color.RGBA) {
	if s == "" {
		return
	}
	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(p.px(x, p.dx), p.px(y, p.dy)),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
