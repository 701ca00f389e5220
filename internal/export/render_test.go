/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"formdesigner/internal/domain"
	"formdesigner/internal/registry"
)

func allBuiltins(t *testing.T) []domain.Component {
	t.Helper()
	var out []domain.Component
	for _, d := range registry.BuiltinDefinitions() {
		out = append(out, comp(d.Name, d.Type, domain.WidthHalf))
	}
	return append(out, comp("mystery", "rating", domain.WidthFull))
}

func TestExportPDF_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "preview.pdf")
	if err := ExportPDF(registry.Builtin(), allBuiltins(t), out, PDFOptions{Title: "Preview", IncludeGuides: true}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}

func TestWritePDF_PaginatesLongDesigns(t *testing.T) {
	var comps []domain.Component
	for i := 0; i < 40; i++ {
		comps = append(comps, comp("field", domain.TypeTextarea, domain.WidthFull))
	}
	var one, many bytes.Buffer
	if err := WritePDF(&one, registry.Builtin(), comps[:1], PDFOptions{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WritePDF(&many, registry.Builtin(), comps, PDFOptions{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if n := bytes.Count(many.Bytes(), []byte("/Type /Page\n")); n < 2 {
		t.Fatalf("expected several pages, got %d", n)
	}
	if n := bytes.Count(one.Bytes(), []byte("/Type /Page\n")); n != 1 {
		t.Fatalf("expected one page, got %d", n)
	}
}

func TestExportPNG_DrawsComponents(t *testing.T) {
	out := filepath.Join(t.TempDir(), "preview.png")
	if err := ExportPNG(registry.Builtin(), allBuiltins(t), out, PNGOptions{Width: 640}); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 640 || img.Bounds().Dy() <= 48 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestRenderImage_UnknownComponentPlaceholder(t *testing.T) {
	img, err := RenderImage(registry.Builtin(), []domain.Component{comp("x", "rating", domain.WidthFull)}, PNGOptions{Width: 200, Margin: 10})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// inside the placeholder box, away from the label text
	if got := img.RGBAAt(10+gutter/2+2, 10+30); got != warnFill {
		t.Fatalf("expected placeholder fill at sample point, got %v", got)
	}
}

func TestRenderImage_EmptyDesign(t *testing.T) {
	img, err := RenderImage(registry.Builtin(), nil, PNGOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 48 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(5, 5); got != paper {
		t.Fatalf("background should be white, got %v", got)
	}
}
