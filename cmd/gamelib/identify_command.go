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

	"github.com/spf13/cobra"

	"github.com/ZaparooProject/go-gamelib"
)

type identifyResult struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	System   string `json:"system,omitempty"`
	Serial   string `json:"serial,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Entry    string `json:"entry,omitempty"`
	Size     int64  `json:"size"`
	Error    string `json:"error,omitempty"`
}

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "identify <file>...",
		Short: "Identify game files without touching the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := []gamelib.Option{
				gamelib.WithChecksumMaxBytes(cfg.Scan.ChecksumMaxBytes),
				gamelib.WithSpoolDir(cfg.Paths.SpoolDir),
			}

			var (
				results []identifyResult
				failed  int
			)
			for _, path := range args {
				res := identifyResult{Path: path}
				file, err := gamelib.IdentifyFile(cmd.Context(), path, opts...)
				if err != nil {
					res.Error = err.Error()
					failed++
				} else {
					res.Name = file.Name
					res.Title = file.Title()
					res.System = string(file.System)
					res.Serial = file.Serial
					res.Checksum = file.Checksum
					res.Entry = file.Entry
					res.Size = file.Size
				}
				results = append(results, res)
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				printIdentifyResults(cmd, results)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be identified", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func printIdentifyResults(cmd *cobra.Command, results []identifyResult) {
	headers := []string{"File", "System", "Serial", "Checksum", "Entry"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Path, r.Error)
			continue
		}
		system := r.System
		if system == "" {
			system = "unknown"
		}
		rows = append(rows, []string{r.Path, system, r.Serial, r.Checksum, r.Entry})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
}
