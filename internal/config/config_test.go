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

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/go-gamelib/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")

	cfg, resolved, exists, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved != filepath.Join(tempHome, "missing.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	wantCatalog := filepath.Join(tempHome, ".local", "share", "gamelib", "catalog.db")
	if cfg.Paths.Catalog != wantCatalog {
		t.Fatalf("catalog = %q, want %q", cfg.Paths.Catalog, wantCatalog)
	}
	def := config.Default()
	if cfg.Scan != def.Scan {
		t.Fatalf("scan = %+v, want defaults %+v", cfg.Scan, def.Scan)
	}
	if cfg.Scan.BatchSize != 100 || cfg.Scan.ChecksumMaxBytes != 500_000_000 || cfg.Scan.ArchiveMaxEntries != 4 {
		t.Fatalf("unexpected scan defaults: %+v", cfg.Scan)
	}
	if len(cfg.EnabledSources()) != 0 {
		t.Fatal("expected no sources by default")
	}
}

func TestLoadSources(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeConfig(t, `
[scan]
workers = 8

[logging]
format = "JSON"

[[sources]]
id = "roms"
root = "`+filepath.ToSlash(root)+`"

[[sources]]
id = "usb"
kind = "local"
root = "/mnt/usb"
enabled = false
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Scan.Workers != 8 || cfg.Scan.BatchSize != 100 {
		t.Fatalf("scan = %+v", cfg.Scan)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging.format = %q, want json", cfg.Logging.Format)
	}

	enabled := cfg.EnabledSources()
	if len(enabled) != 1 || enabled[0].ID != "roms" {
		t.Fatalf("EnabledSources() = %+v", enabled)
	}
	if enabled[0].Kind != "local" || enabled[0].Root != filepath.Clean(root) {
		t.Fatalf("source = %+v", enabled[0])
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
[scan]
workers = 0
archive_min_ratio = 1.5

[logging]
level = "chatty"

[[sources]]
id = "a"
root = "/a"

[[sources]]
id = "a"
kind = "ftp"
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("Load accepted an invalid config")
	}
	for _, want := range []string{
		"scan.workers",
		"scan.archive_min_ratio",
		"logging.level",
		`"a" is not unique`,
		`kind "ftp"`,
		"sources[1].root",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[scan\nworkers = ")
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %v, want parse error", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists || len(cfg.EnabledSources()) != 1 || cfg.EnabledSources()[0].ID != "roms" {
		t.Fatalf("sample config = %+v", cfg)
	}
}

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Catalog = filepath.Join(dir, "data", "catalog.db")
	cfg.Paths.LockFile = filepath.Join(dir, "run", "scan.lock")
	cfg.Paths.SpoolDir = filepath.Join(dir, "spool")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, sub := range []string{"data", "run", "spool"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", sub, err)
		}
	}
}
