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
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"formdesigner/internal/backend"
	"formdesigner/internal/design"
	"formdesigner/internal/storage"
)

// withLibrary connects to the shared library for the duration of fn.
func (a *app) withLibrary(ctx context.Context, fn func(ctx context.Context, lb *backend.Library) error) error {
	if a.cfg.Library.DSN == "" {
		return errors.New("no library configured (set library.dsn or FD_PG_DSN)")
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Library.Timeout())
	defer cancel()
	lb, err := backend.Open(ctx, a.cfg.Library.DSN, a.password)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer func() { _ = lb.Close() }()
	return fn(ctx, lb)
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <file> <name>",
		Short: "Publish a design to the shared library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.withLibrary(cmd.Context(), func(ctx context.Context, lb *backend.Library) error {
				if err := lb.Publish(ctx, args[1], data); err != nil {
					return err
				}
				a.printf("published %s as %q\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <name> <file>",
		Short: "Fetch a design from the shared library into a file",
		Long: `fetch writes the published design to file. An existing file is
replaced through the editor so the change can be undone.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			err := a.withLibrary(cmd.Context(), func(ctx context.Context, lb *backend.Library) error {
				var err error
				data, err = lb.Fetch(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(args[1]); statErr != nil {
				cs, err := design.Decode(data)
				if err != nil {
					return err
				}
				if _, err := storage.Create(args[1], cs); err != nil {
					return err
				}
				a.printf("fetched %q into %s\n", args[0], args[1])
				return nil
			}
			return a.edit(cmd.Context(), args[1], func(s *session) error {
				if !s.eng.ImportJSON(string(data)) {
					return fmt.Errorf("library design %q: %w", args[0], design.ErrMalformedImport)
				}
				a.printf("fetched %q into %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the shared design library",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List published designs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(cmd.Context(), func(ctx context.Context, lb *backend.Library) error {
				entries, err := lb.List(ctx)
				if err != nil {
					return err
				}
				for _, e := range entries {
					a.printf("%-24s %3d components  %s\n", e.Name, e.Components, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a published design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(cmd.Context(), func(ctx context.Context, lb *backend.Library) error {
				if err := lb.Delete(ctx, args[0]); err != nil {
					return err
				}
				a.printf("deleted %q\n", args[0])
				return nil
			})
		},
	})
	return cmd
}
