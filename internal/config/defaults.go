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
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath        = "~/.config/gamelib/config.toml"
	defaultDataDir           = "~/.local/share/gamelib"
	defaultWorkers           = 4
	defaultConcurrentSources = 2
	defaultBatchSize         = 100
	defaultChecksumMaxBytes  = 500_000_000
	defaultArchiveMaxEntries = 4
	defaultArchiveMinRatio   = 0.9
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultSourceKind        = "local"
)

// Default returns a Config populated with defaults and no sources.
func Default() Config {
	data := dataDir()
	return Config{
		Paths: Paths{
			Catalog:  filepath.Join(data, "catalog.db"),
			LockFile: filepath.Join(data, "scan.lock"),
		},
		Scan: Scan{
			Workers:           defaultWorkers,
			ConcurrentSources: defaultConcurrentSources,
			BatchSize:         defaultBatchSize,
			ChecksumMaxBytes:  defaultChecksumMaxBytes,
			ArchiveMaxEntries: defaultArchiveMaxEntries,
			ArchiveMinRatio:   defaultArchiveMinRatio,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func dataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "gamelib")
	}
	return defaultDataDir
}
