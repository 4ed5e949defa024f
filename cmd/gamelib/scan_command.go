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
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ZaparooProject/go-gamelib/catalog"
	"github.com/ZaparooProject/go-gamelib/classifier"
	"github.com/ZaparooProject/go-gamelib/internal/config"
	"github.com/ZaparooProject/go-gamelib/library"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the configured sources into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lock := flock.New(cfg.Paths.LockFile)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another scan is already running (lock %s)", cfg.Paths.LockFile)
			}
			defer func() { _ = lock.Unlock() }()

			store, err := catalog.Open(cfg.Paths.Catalog)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			lib := library.New(store, newClassifier(cfg), library.Options{
				Logger:            logger,
				Workers:           cfg.Scan.Workers,
				ConcurrentSources: cfg.Scan.ConcurrentSources,
				BatchSize:         cfg.Scan.BatchSize,
			})
			report, scanErr := lib.Index(cmd.Context(), sources(cfg))
			if report != nil {
				if jsonOutput {
					if err := writeJSON(cmd, reportView(report)); err != nil {
						return err
					}
				} else {
					printReport(cmd.OutOrStdout(), report)
				}
			}
			return scanErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan report as JSON")
	return cmd
}

func newClassifier(cfg *config.Config) *classifier.Classifier {
	return classifier.New(classifier.Options{
		SpoolDir:          cfg.Paths.SpoolDir,
		ChecksumMaxBytes:  cfg.Scan.ChecksumMaxBytes,
		ArchiveMaxEntries: cfg.Scan.ArchiveMaxEntries,
		ArchiveMinRatio:   cfg.Scan.ArchiveMinRatio,
	})
}

type scanReport struct {
	RunID    string `json:"run_id"`
	State    string `json:"state"`
	Started  string `json:"started_at"`
	Finished string `json:"finished_at,omitempty"`
	Sources  int    `json:"sources"`
	Listed   int    `json:"listed"`
	Inserted int    `json:"inserted"`
	Touched  int    `json:"touched"`
	Failed   int    `json:"failed"`
	Deleted  int    `json:"deleted"`
	Swept    bool   `json:"swept"`
}

func reportView(r *library.Report) scanReport {
	view := scanReport{
		RunID:    r.RunID,
		State:    r.State.String(),
		Started:  r.StartedAt.UTC().Format(time.RFC3339),
		Sources:  r.Sources,
		Listed:   r.Listed,
		Inserted: r.Inserted,
		Touched:  r.Touched,
		Failed:   r.Failed,
		Deleted:  r.Deleted,
		Swept:    r.Swept,
	}
	if !r.Finished.IsZero() {
		view.Finished = r.Finished.UTC().Format(time.RFC3339)
	}
	return view
}

func printReport(out io.Writer, r *library.Report) {
	rows := [][]string{
		{"Run", r.RunID},
		{"State", r.State.String()},
		{"Sources", fmt.Sprint(r.Sources)},
		{"Listed", fmt.Sprint(r.Listed)},
		{"Inserted", fmt.Sprint(r.Inserted)},
		{"Touched", fmt.Sprint(r.Touched)},
		{"Failed", fmt.Sprint(r.Failed)},
		{"Deleted", fmt.Sprint(r.Deleted)},
		{"Swept", yesNo(r.Swept)},
		{"Duration", r.Duration().Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Scan", ""}, rows, []columnAlignment{alignLeft, alignRight}))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
