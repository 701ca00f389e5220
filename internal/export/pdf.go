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
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"formdesigner/internal/domain"
	"formdesigner/internal/registry"
)

// PDFOptions controls PDF preview rendering.
// Units are points (pt). Zero values select A4 with a half-inch margin.
type PDFOptions struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Title      string
	// IncludeGuides draws the content area as a hairline frame.
	IncludeGuides bool
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		o.PageWidth, o.PageHeight = 595.28, 841.89
	}
	if o.Margin <= 0 {
		o.Margin = 36
	}
	return o
}

// ExportPDF renders a preview of comps to a PDF file at outPath.
func ExportPDF(reg *registry.Registry, comps []domain.Component, outPath string, opt PDFOptions) error {
	if outPath == "" {
		return errors.New("output path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(f, reg, comps, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

// WritePDF renders a preview of comps as PDF to w. Components that do not
// fit on the current page start a new one; a row is never split.
func WritePDF(w io.Writer, reg *registry.Registry, comps []domain.Component, opt PDFOptions) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	opt = opt.withDefaults()
	contentW := opt.PageWidth - 2*opt.Margin
	contentH := opt.PageHeight - 2*opt.Margin

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: opt.PageWidth, Ht: opt.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("formdesigner", false)
	// Built-in Helvetica keeps text vector without embedding
	pdf.SetFont("Helvetica", "", fontSize)

	p := &pdfPainter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	newPage := func(top float64) {
		pdf.AddPage()
		p.dx, p.dy = opt.Margin, opt.Margin-top
		if opt.IncludeGuides {
			pdf.SetDrawColor(255, 0, 0)
			pdf.SetLineWidth(0.2)
			pdf.Rect(opt.Margin, opt.Margin, contentW, contentH, "D")
		}
	}

	boxes, _ := Layout(reg, comps, contentW)
	top := 0.0
	newPage(top)
	for _, b := range boxes {
		if b.Y > top && b.Y+b.H-top > contentH {
			top = b.Y
			newPage(top)
		}
		drawBox(p, b)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfPainter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	dx, dy float64
}

func style(fill *color.RGBA) string {
	if fill == nil {
		return "D"
	}
	return "FD"
}

func (p *pdfPainter) Rect(x, y, w, h float64, stroke color.RGBA, fill *color.RGBA) {
	p.pdf.SetLineWidth(0.5)
	p.pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
	if fill != nil {
		p.pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
	}
	p.pdf.Rect(x+p.dx, y+p.dy, w, h, style(fill))
}

func (p *pdfPainter) Circle(cx, cy, r float64, stroke color.RGBA, fill *color.RGBA) {
	p.pdf.SetLineWidth(0.5)
	p.pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
	if fill != nil {
		p.pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
	}
	p.pdf.Circle(cx+p.dx, cy+p.dy, r, style(fill))
}

func (p *pdfPainter) Line(x0, y0, x1, y1 float64, col color.RGBA) {
	p.pdf.SetLineWidth(1)
	p.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
	p.pdf.Line(x0+p.dx, y0+p.dy, x1+p.dx, y1+p.dy)
}

func (p *pdfPainter) Text(x, y float64, s string, col color.RGBA) {
	if s == "" {
		return
	}
	p.pdf.SetFont("Helvetica", "", fontSize)
	p.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	p.pdf.Text(x+p.dx, y+p.dy, p.tr(s))
}
