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

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	Catalog  string `toml:"catalog"`
	LockFile string `toml:"lock_file"`
	SpoolDir string `toml:"spool_dir"` // Empty means the system temp directory
}

// Scan contains tuning for the scan pipeline.
type Scan struct {
	Workers           int     `toml:"workers"`
	ConcurrentSources int     `toml:"concurrent_sources"`
	BatchSize         int     `toml:"batch_size"`
	ChecksumMaxBytes  int64   `toml:"checksum_max_bytes"`
	ArchiveMaxEntries int     `toml:"archive_max_entries"`
	ArchiveMinRatio   float64 `toml:"archive_min_ratio"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Source is one storage location to scan.
type Source struct {
	Enabled *bool  `toml:"enabled"` // Unset means enabled
	ID      string `toml:"id"`
	Kind    string `toml:"kind"`
	Root    string `toml:"root"`
}

// IsEnabled reports whether the source takes part in scans.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Config encapsulates all configuration values for gamelib.
type Config struct {
	Paths   Paths    `toml:"paths"`
	Scan    Scan     `toml:"scan"`
	Logging Logging  `toml:"logging"`
	Sources []Source `toml:"sources"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. An empty path looks in the default
// location and then for gamelib.toml in the working directory; a missing
// file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath) //nolint:gosec // user supplied config path
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("gamelib.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnabledSources returns the sources that take part in scans, in file order.
func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}

// EnsureDirectories creates the directories holding the catalog and lock.
func (c *Config) EnsureDirectories() error {
	for _, p := range []string{c.Paths.Catalog, c.Paths.LockFile} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create directory for %q: %w", p, err)
		}
	}
	if c.Paths.SpoolDir != "" {
		if err := os.MkdirAll(c.Paths.SpoolDir, 0o755); err != nil {
			return fmt.Errorf("create spool directory %q: %w", c.Paths.SpoolDir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
