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
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Every problem found is
// reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Paths.Catalog == "" {
		errs = append(errs, errors.New("paths.catalog must be set"))
	}
	if c.Paths.LockFile == "" {
		errs = append(errs, errors.New("paths.lock_file must be set"))
	}
	errs = append(errs, c.validateScan()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateSources()...)
	return errors.Join(errs...)
}

func (c *Config) validateScan() []error {
	var errs []error
	positive := []struct {
		name  string
		value int
	}{
		{"scan.workers", c.Scan.Workers},
		{"scan.concurrent_sources", c.Scan.ConcurrentSources},
		{"scan.batch_size", c.Scan.BatchSize},
		{"scan.archive_max_entries", c.Scan.ArchiveMaxEntries},
	}
	for _, p := range positive {
		if p.value < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", p.name, p.value))
		}
	}
	if c.Scan.ChecksumMaxBytes < 0 {
		errs = append(errs, errors.New("scan.checksum_max_bytes must not be negative"))
	}
	if c.Scan.ArchiveMinRatio <= 0 || c.Scan.ArchiveMinRatio > 1 {
		errs = append(errs, fmt.Errorf("scan.archive_min_ratio must be in (0, 1], got %g", c.Scan.ArchiveMinRatio))
	}
	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}
	return errs
}

func (c *Config) validateSources() []error {
	var errs []error
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("sources[%d].id must be set", i))
		} else if seen[s.ID] {
			errs = append(errs, fmt.Errorf("sources[%d].id %q is not unique", i, s.ID))
		}
		seen[s.ID] = true
		if s.Kind != defaultSourceKind {
			errs = append(errs, fmt.Errorf("sources[%d].kind %q is not supported", i, s.Kind))
		}
		if s.Root == "" {
			errs = append(errs, fmt.Errorf("sources[%d].root must be set", i))
		}
	}
	return errs
}
