/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"formdesigner/internal/design"
	"formdesigner/internal/export"
	"formdesigner/internal/registry"
)

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file> <src|->",
		Short: "Replace the design with the components of another document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				if !s.eng.ImportJSON(string(data)) {
					return fmt.Errorf("%s: %w", args[1], design.ErrMalformedImport)
				}
				a.printf("imported %d components\n", s.eng.Len())
				return nil
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file> [dst]",
		Short: "Write the design document to dst or stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.close()
			text, err := s.eng.ExportJSON()
			if err != nil {
				return err
			}
			if len(args) == 1 || args[1] == "-" {
				a.printf("%s\n", text)
				return nil
			}
			return os.WriteFile(args[1], []byte(text+"\n"), 0o644)
		},
	}
}

// checkDesign validates data against the schema and the registry. It returns
// warnings for components the registry does not know.
func checkDesign(reg *registry.Registry, data []byte) (warnings []string, err error) {
	if err := design.Validate(data); err != nil {
		return nil, err
	}
	cs, err := design.Decode(data)
	if err != nil {
		return nil, err
	}
	for i, c := range cs {
		if !reg.Has(c.Type) {
			warnings = append(warnings, fmt.Sprintf("component %d (%s): unknown type %q", i, c.ID, c.Type))
		}
	}
	return warnings, nil
}

func printCheck(a *app, path string, warnings []string, err error) {
	var ve *design.ValidationError
	switch {
	case errors.As(err, &ve):
		a.printf("%s: invalid\n", path)
		for _, p := range ve.Problems {
			a.printf("  - %s\n", p)
		}
	case err != nil:
		a.printf("%s: %v\n", path, err)
	default:
		a.printf("%s: ok\n", path)
	}
	for _, w := range warnings {
		a.printf("  warning: %s\n", w)
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a design file against the design schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			warnings, err := checkDesign(a.reg, data)
			printCheck(a, args[0], warnings, err)
			if err != nil {
				return errors.New("validation failed")
			}
			return nil
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		title  string
		guides bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "render <file> <out.pdf|out.png>",
		Short: "Render a static preview of the design",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.close()
			comps := s.eng.Components()
			out := args[1]
			switch strings.ToLower(filepath.Ext(out)) {
			case ".pdf":
				if title == "" {
					title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
				err = export.ExportPDF(a.reg, comps, out, export.PDFOptions{Title: title, IncludeGuides: guides})
			case ".png":
				err = export.ExportPNG(a.reg, comps, out, export.PNGOptions{Width: width})
			default:
				return fmt.Errorf("unsupported output format %q (use .pdf or .png)", filepath.Ext(out))
			}
			if err != nil {
				return err
			}
			a.printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "PDF page title (default: design file name)")
	cmd.Flags().BoolVar(&guides, "guides", false, "draw layout guides in the PDF")
	cmd.Flags().IntVar(&width, "width", 0, "PNG width in pixels (default 800)")
	return cmd
}
