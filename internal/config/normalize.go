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
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.Catalog, err = expandPath(strings.TrimSpace(c.Paths.Catalog)); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if c.Paths.LockFile, err = expandPath(strings.TrimSpace(c.Paths.LockFile)); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	if c.Paths.SpoolDir, err = expandPath(strings.TrimSpace(c.Paths.SpoolDir)); err != nil {
		return fmt.Errorf("paths.spool_dir: %w", err)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	for i := range c.Sources {
		s := &c.Sources[i]
		s.ID = strings.TrimSpace(s.ID)
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		if s.Kind == "" {
			s.Kind = defaultSourceKind
		}
		if s.Root, err = expandPath(strings.TrimSpace(s.Root)); err != nil {
			return fmt.Errorf("sources[%d].root: %w", i, err)
		}
	}
	return nil
}
