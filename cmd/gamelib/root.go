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
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags
	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "gamelib",
		Short:         "Identify game images and catalog game libraries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format override (console, json)")

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newIdentifyCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
