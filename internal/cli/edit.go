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
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"formdesigner/internal/dnd"
	"formdesigner/internal/domain"
	"formdesigner/internal/propedit"
	"formdesigner/internal/registry"
	"formdesigner/internal/storage"
)

func newTypesCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered component types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := a.reg.Categories()
			if category != "" {
				if !slices.Contains(cats, registry.Category(category)) {
					return fmt.Errorf("unknown category %q", category)
				}
				cats = []registry.Category{registry.Category(category)}
			}
			for _, c := range cats {
				for _, d := range a.reg.ByCategory(c) {
					a.printf("%-12s %-9s %s\n", d.Type, d.Category, d.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list one category (basic, advanced, layout)")
	return cmd
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty design file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := storage.Create(args[0], nil); err != nil {
				return err
			}
			a.printf("created %s\n", args[0])
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "List the components of a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := storage.Open(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				for _, c := range h.Components {
					b, err := c.MarshalJSON()
					if err != nil {
						return err
					}
					a.printf("%s\n", b)
				}
				return nil
			}
			if len(h.Components) == 0 {
				a.printf("(empty)\n")
				return nil
			}
			for i, c := range h.Components {
				mark := ""
				if !a.reg.Has(c.Type) {
					mark = "  (unknown type)"
				}
				a.printf("%2d  %-34s %-11s %-5s %q%s\n", i, c.ID, c.Type, c.Props.Width, c.Props.Label, mark)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per component")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <file>",
		Short: "Show the undo and redo steps recorded for a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.close()
			u, r := s.eng.History().Stacks()
			size, _, _ := s.eng.History().Stats()
			a.printf("undo: %d  redo: %d  (%d bytes)\n", len(u), len(r), size)
			for i := len(u) - 1; i >= 0; i-- {
				a.printf("  undo %-7s %s\n", u[i].Label, u[i].TS.Local().Format("2006-01-02 15:04:05"))
			}
			for i := len(r) - 1; i >= 0; i-- {
				a.printf("  redo %-7s %s\n", r[i].Label, r[i].TS.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var at int
	var sets []string
	cmd := &cobra.Command{
		Use:   "add <file> <type>",
		Short: "Add a component with its default properties and select it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.TypeID(args[1])
			def, ok := a.reg.Definition(t)
			if !ok {
				return fmt.Errorf("unknown component type %q (see 'formdesigner types')", t)
			}
			partial, err := propedit.ParseAssignments(def, sets)
			if err != nil {
				return err
			}
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				index := s.eng.Len()
				if at >= 0 {
					index = at
				}
				if len(partial) == 0 {
					c, err := s.eng.AddAt(t, index)
					if err != nil {
						return err
					}
					a.printf("%s\n", c.ID)
					return nil
				}
				// One undo step for the component and its initial properties.
				c, err := s.eng.CreateComponent(t)
				if err != nil {
					return err
				}
				c = c.Merge(partial)
				if err := s.eng.InsertAt(c, index); err != nil {
					return err
				}
				s.eng.Select(c.ID)
				a.printf("%s\n", c.ID)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&at, "at", -1, "insert position (default: append)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "initial property as key=value (repeatable)")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <id>",
		Short: "Remove a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				if s.eng.IndexOf(args[1]) < 0 {
					a.printf("no component %s\n", args[1])
					return nil
				}
				s.eng.Remove(args[1])
				a.printf("removed %s\n", args[1])
				return nil
			})
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <file> <from> <to>",
		Short: "Move the component at position from to position to",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				s.eng.Move(from, to)
				return nil
			})
		},
	}
}

// parseSource reads a drop source: "@<id>" for a placed component,
// otherwise a component type from the palette.
func parseSource(s *session, src string) (dnd.Payload, error) {
	if id, ok := strings.CutPrefix(src, "@"); ok {
		i := s.eng.IndexOf(id)
		if i < 0 {
			return nil, fmt.Errorf("no component %s", id)
		}
		return dnd.ExistingComponent{ID: id, Index: i}, nil
	}
	return dnd.NewComponent{Type: domain.TypeID(src)}, nil
}

func newDropCmd(a *app) *cobra.Command {
	var after bool
	cmd := &cobra.Command{
		Use:   "drop <file> <type|@id> <index>",
		Short: "Drop a palette type or a placed component onto the item at index",
		Long: `drop resolves a drag and drop gesture: the source is dropped on the
item at index, before it or, with --after, after it. An index equal to the
number of components drops at the end of the canvas.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				p, err := parseSource(s, args[1])
				if err != nil {
					return err
				}
				s.eng.BeginDrag(p)
				act, err := s.eng.Drop(dnd.Target{Index: index, InsertAfter: after})
				if err != nil {
					return err
				}
				switch x := act.(type) {
				case dnd.InsertAction:
					a.printf("inserted %s at %d: %s\n", x.Type, x.Index, s.eng.SelectedID())
				case dnd.MoveAction:
					a.printf("moved %d to %d\n", x.From, x.To)
				default:
					a.printf("nothing to do\n")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&after, "after", false, "drop after the target item instead of before it")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <id> key=value...",
		Short: "Change properties of a component",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				c, ok := s.eng.Component(args[1])
				if !ok {
					return fmt.Errorf("no component %s", args[1])
				}
				// Unknown types get no schema, so every value passes through.
				def, _ := a.reg.Definition(c.Type)
				partial, err := propedit.ParseAssignments(def, args[2:])
				if err != nil {
					return err
				}
				s.eng.Select(c.ID)
				before, _ := s.eng.ExportJSON()
				s.eng.Update(c.ID, partial)
				if after, _ := s.eng.ExportJSON(); after == before {
					a.printf("no change\n")
				}
				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <file>",
		Short: "Remove every component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				s.eng.Clear()
				return nil
			})
		},
	}
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <file>",
		Short: "Revert the last change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				if !s.eng.Undo() {
					a.printf("nothing to undo\n")
				}
				return nil
			})
		},
	}
}

func newRedoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redo <file>",
		Short: "Re-apply the last undone change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), args[0], func(s *session) error {
				if !s.eng.Redo() {
					a.printf("nothing to redo\n")
				}
				return nil
			})
		},
	}
}
