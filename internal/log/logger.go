/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log sets up the slog logger shared by the form designer. Records
// go to a terse console line (or JSON) and optionally to a rotating JSON
// file, and pick up the design path from the context they are logged with.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"formdesigner/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls Init. FromEnv fills it from
//   - FD_LOG_LEVEL=debug|info|warn|error
//   - FD_LOG_FORMAT=console|json
//   - FD_LOG_FILE=<path> (rotated JSON file in addition to the console)
//   - FD_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	Console   io.Writer // nil means os.Stderr
}

var current atomic.Pointer[slog.Logger]

// L returns the process logger, configuring it from the environment on
// first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return current.Load()
}

// Init replaces the process logger and slog's default.
func Init(opts Options) {
	level := parseLevel(opts.Level)
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}

	var sinks fanout
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		sinks = append(sinks, slog.NewJSONHandler(out, hopts))
	} else {
		sinks = append(sinks, newConsoleHandler(out, level, opts.AddSource))
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		rot := &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(rot, hopts))
	}

	var h slog.Handler = sinks
	if len(sinks) == 1 {
		h = sinks[0]
	}
	l := slog.New(designHandler{h}).With(
		slog.String("app", "formdesigner"),
		slog.String("ver", version.Version),
	)
	current.Store(l)
	slog.SetDefault(l)
}

// FromEnv reads Options from the FD_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     envOr("FD_LOG_LEVEL", "info"),
		Format:    envOr("FD_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(os.Getenv("FD_LOG_SOURCE"), "true"),
		File:      os.Getenv("FD_LOG_FILE"),
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns L tagged with a component name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type designKey struct{}

// WithDesign returns ctx carrying the path of the design being edited.
// Records logged with it get a "design" attribute.
func WithDesign(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, designKey{}, path)
}

// DesignFrom returns the path stored by WithDesign, if any.
func DesignFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	p, _ := ctx.Value(designKey{}).(string)
	return p, p != ""
}

type designHandler struct{ slog.Handler }

func (h designHandler) Handle(ctx context.Context, r slog.Record) error {
	if p, ok := DesignFrom(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("design", p))
	}
	return h.Handler.Handle(ctx, r)
}

func (h designHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return designHandler{h.Handler.WithAttrs(attrs)}
}

func (h designHandler) WithGroup(name string) slog.Handler {
	return designHandler{h.Handler.WithGroup(name)}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// consoleHandler writes one line per record:
//
//	15:04:05 WRN message key=value group.key=value
//
// Attributes added through WithAttrs are rendered once and reused.
type consoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	source bool
	prefix string // open groups, "a.b."
	fixed  []byte
}

func newConsoleHandler(w io.Writer, level slog.Leveler, source bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, source: source}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf := make([]byte, 0, 128)
	buf = ts.AppendFormat(buf, time.TimeOnly)
	buf = append(buf, ' ')
	buf = append(buf, levelTag(r.Level)...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	buf = append(buf, h.fixed...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	if h.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		buf = append(buf, " src="...)
		buf = append(buf, f.File...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(f.Line), 10)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fixed = append([]byte(nil), h.fixed...)
	for _, a := range attrs {
		c.fixed = appendAttr(c.fixed, h.prefix, a)
	}
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, g := range v.Group() {
			buf = appendAttr(buf, prefix, g)
		}
		return buf
	}
	if a.Key == "" {
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	s := v.String()
	if v.Kind() == slog.KindString && (s == "" || strings.ContainsAny(s, " =\"")) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	}
	return "ERR"
}
