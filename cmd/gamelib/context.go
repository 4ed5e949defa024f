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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ZaparooProject/go-gamelib/internal/config"
	"github.com/ZaparooProject/go-gamelib/internal/logging"
	"github.com/ZaparooProject/go-gamelib/storage"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger from config, with flag overrides.
func (c *commandContext) logger(out io.Writer) (*slog.Logger, error) {
	level, format := "", ""
	if c.config != nil {
		level, format = c.config.Logging.Level, c.config.Logging.Format
	}
	if v := strings.TrimSpace(c.flags.logLevel); v != "" {
		level = v
	}
	if v := strings.TrimSpace(c.flags.logFormat); v != "" {
		format = v
	}
	logger, err := logging.New(logging.Options{Output: out, Level: level, Format: format})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return logger, nil
}

// sources builds the enabled sources of the configuration.
func sources(cfg *config.Config) []storage.Source {
	enabled := cfg.EnabledSources()
	out := make([]storage.Source, 0, len(enabled))
	for _, s := range enabled {
		if storage.Kind(s.Kind) != storage.KindLocal {
			continue
		}
		out = append(out, storage.NewLocal(s.ID, s.Root, nil))
	}
	return out
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
