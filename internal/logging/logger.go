// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gamelib.
//
// go-gamelib is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gamelib is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gamelib.  If not, see <https://www.gnu.org/licenses/>.

// Package logging builds the slog loggers used by the scanner and the CLI.
//
// Library packages never log; they return errors. The reconciler and the
// command layer receive a *slog.Logger from here, or NewNop in tests.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Standard attribute keys.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldSource    = "source"
	FieldURI       = "uri"
)

// Options describes logger construction parameters.
type Options struct {
	Output io.Writer // Defaults to stderr
	Level  string    // debug, info, warn, or error
	Format string    // console or json
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		handlerOpts.ReplaceAttr = consoleAttr
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
	case "json":
		handlerOpts.ReplaceAttr = jsonAttr
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// ParseLevel maps a level name to a slog level. An empty name is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level: unsupported value %q", level)
	}
}

func consoleAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().Format(time.TimeOnly))
		}
	case slog.SourceKey:
		attr = shortSource(attr)
	}
	return attr
}

func jsonAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		attr = shortSource(attr)
	}
	return attr
}

func shortSource(attr slog.Attr) slog.Attr {
	if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
		attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
	}
	return attr
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(noopHandler{})
}

// NewComponentLogger tags logger with a component attribute. A nil logger
// yields a no-op one.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h noopHandler) WithGroup(string) slog.Handler           { return h }
