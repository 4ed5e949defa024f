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

// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/go-gamelib/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns the default config with every path inside a fresh temp
// directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Catalog = filepath.Join(base, "catalog.db")
	cfg.Paths.LockFile = filepath.Join(base, "gamelib.lock")
	cfg.Paths.SpoolDir = filepath.Join(base, "spool")
	cfg.Logging.Level = "debug"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSource adds a local source to the config.
func WithSource(id, root string) ConfigOption {
	return func(c *config.Config) {
		c.Sources = append(c.Sources, config.Source{ID: id, Kind: "local", Root: root})
	}
}

// WithBatchSize overrides the writer batch size.
func WithBatchSize(n int) ConfigOption {
	return func(c *config.Config) {
		c.Scan.BatchSize = n
	}
}

// BaseDir returns the temp directory backing a config from NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Catalog)
}
