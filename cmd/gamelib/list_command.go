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
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZaparooProject/go-gamelib"
	"github.com/ZaparooProject/go-gamelib/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		systemFlag string
		sourceFlag string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			filter := catalog.Filter{SourceID: strings.TrimSpace(sourceFlag), Limit: limit}
			if s := strings.TrimSpace(systemFlag); s != "" {
				system, err := gamelib.SystemFromString(s)
				if err != nil {
					return err
				}
				filter.System = system
			}

			store, err := catalog.Open(cfg.Paths.Catalog)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			headers := []string{"Title", "System", "Serial", "Checksum", "Source", "URI"}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Title, string(e.System), e.Serial, e.Checksum, e.SourceID, e.URI})
			}

			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				fmt.Fprintln(out, renderCSV(headers, rows))
				return nil
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "Catalog is empty")
				return nil
			}
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFlag, "system", "", "Only list games of this system")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Only list games of this source")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of games to list")
	return cmd
}
