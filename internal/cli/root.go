/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package cli wires the form designer packages into the formdesigner
// command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"formdesigner/internal/config"
	applog "formdesigner/internal/log"
	"formdesigner/internal/registry"
	"formdesigner/internal/telemetry"
	"formdesigner/internal/version"
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfg      config.AppConfig
	password string
	reg      *registry.Registry
	out      io.Writer
	log      *slog.Logger

	// initLogging is false in tests so the global logger is left alone.
	initLogging bool
}

func newApp(out io.Writer) *app {
	return &app{
		cfg:         config.Defaults(),
		reg:         registry.Builtin(),
		out:         out,
		log:         applog.WithComponent("cli"),
		initLogging: true,
	}
}

// load reads the user configuration and applies it to logging and telemetry.
func (a *app) load() error {
	cfg, pw, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg, a.password = cfg, pw
	if a.initLogging {
		applog.Init(cfg.Logging.LogOptions())
		telemetry.NewDefault(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))
	}
	a.log = applog.WithComponent("cli")
	return nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// NewRootCmd builds the command tree writing its results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(newApp(out))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "formdesigner",
		Short:         "Edit form designs from the command line",
		Long:          `formdesigner edits form design files: it places, reorders and configures form components, keeps an undo history per design, validates and renders previews, and shares designs through a PostgreSQL library.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.SetOut(a.out)
	root.SetVersionTemplate("formdesigner {{.Version}}\n")

	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newTypesCmd(a))
	root.AddCommand(newNewCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newRemoveCmd(a))
	root.AddCommand(newMoveCmd(a))
	root.AddCommand(newDropCmd(a))
	root.AddCommand(newSetCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newUndoCmd(a))
	root.AddCommand(newRedoCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newPublishCmd(a))
	root.AddCommand(newFetchCmd(a))
	root.AddCommand(newLibraryCmd(a))
	return root
}

// Execute runs the formdesigner CLI and records one telemetry event for
// the command that ran.
func Execute(ctx context.Context) error {
	root := NewRootCmd(os.Stdout)
	start := time.Now()
	cmd, err := root.ExecuteContextC(ctx)
	if cmd != nil && cmd != root {
		telemetry.Command(cmd.Name(), time.Since(start), err)
		telemetry.Flush(ctx)
	}
	if err != nil {
		applog.WithComponent("cli").Debug("command failed", slog.Any("err", err))
	}
	return err
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printf("formdesigner %s\n", version.String())
			return nil
		},
	}
}
