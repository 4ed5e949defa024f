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

// Package library keeps the catalog in step with the game sources.
//
// An indexing run lists every source, classifies the games it has not seen
// before, and marks the ones it has. Once all sources were listed in full,
// games that were not seen during the run are swept from the catalog. A run
// that could not list a source, was cancelled, or failed to write never
// sweeps, so a transient failure cannot empty the catalog.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ZaparooProject/go-gamelib/catalog"
	"github.com/ZaparooProject/go-gamelib/classifier"
	"github.com/ZaparooProject/go-gamelib/internal/logging"
	"github.com/ZaparooProject/go-gamelib/storage"
)

// Catalog is the persistence the reconciler needs. *catalog.Store
// implements it.
type Catalog interface {
	Apply(ctx context.Context, batch catalog.Batch) error
	KnownURIs(ctx context.Context, sourceID string) (map[string]struct{}, error)
	Stale(ctx context.Context, before time.Time) ([]string, error)
	StaleDataFiles(ctx context.Context, before time.Time) ([]string, error)
	Delete(ctx context.Context, uris []string) (int, error)
	DeleteDataFiles(ctx context.Context, uris []string) (int, error)
}

// Classifier identifies a group of files. *classifier.Classifier
// implements it.
type Classifier interface {
	Classify(ctx context.Context, src storage.Opener, group storage.Group) (*classifier.File, error)
}

// Defaults for Options.
const (
	DefaultWorkers           = 4
	DefaultConcurrentSources = 2
	DefaultBatchSize         = 100
)

// Options tune an indexing run. Zero values take the defaults.
type Options struct {
	Logger            *slog.Logger
	Now               func() time.Time
	Workers           int // Classification workers per source
	ConcurrentSources int
	BatchSize         int // Results per catalog transaction
}

// Library runs indexing against a catalog. Runs are serialized.
type Library struct {
	store      Catalog
	classifier Classifier
	logger     *slog.Logger
	now        func() time.Time
	opts       Options
	run        sync.Mutex
	state      atomic.Int32
}

// New returns a Library writing to store.
func New(store Catalog, c Classifier, opts Options) *Library {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.ConcurrentSources <= 0 {
		opts.ConcurrentSources = DefaultConcurrentSources
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Library{
		store:      store,
		classifier: c,
		logger:     logging.NewComponentLogger(logger, "library"),
		now:        now,
		opts:       opts,
	}
}

// State returns the phase of the current or last run.
func (l *Library) State() State {
	return State(l.state.Load())
}

func (l *Library) setState(s State) {
	l.state.Store(int32(s))
}

// result is one classified or recognized game on its way to the writer.
type result struct {
	game  *catalog.Game
	touch *catalog.Touch
}

// Index runs a full scan of sources and reconciles the catalog with it.
//
// The report is returned even when the run fails. Source enumeration
// failures are returned as *ScanError; cancellation returns the context's
// error. Batches written before a failure stay in the catalog.
func (l *Library) Index(ctx context.Context, sources []storage.Source) (*Report, error) {
	if !l.run.TryLock() {
		return nil, ErrRunning
	}
	defer l.run.Unlock()

	start := l.now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: start,
		Sources:   len(sources),
		State:     StateScanning,
	}
	logger := l.logger.With(logging.String(logging.FieldRunID, report.RunID))
	l.setState(StateScanning)
	logger.Info("scan started", logging.Int("sources", len(sources)))

	fail := func(err error) (*Report, error) {
		l.setState(StateFailed)
		report.State = StateFailed
		report.Finished = l.now()
		logger.Error("scan failed",
			logging.Error(err),
			logging.Int("inserted", report.Inserted),
			logging.Int("touched", report.Touched),
			logging.Int("failed", report.Failed),
		)
		return report, err
	}

	sourceErrs, writeErr := l.scan(ctx, sources, start, report, logger)
	switch {
	case ctx.Err() != nil:
		return fail(ctx.Err())
	case writeErr != nil:
		return fail(writeErr)
	case len(sourceErrs) > 0:
		return fail(&ScanError{Sources: sourceErrs})
	}

	l.setState(StateReconciling)
	report.State = StateReconciling
	deleted, err := l.sweep(ctx, start)
	if err != nil {
		return fail(err)
	}
	report.Deleted = deleted
	report.Swept = true

	l.setState(StateDone)
	report.State = StateDone
	report.Finished = l.now()
	logger.Info("scan finished",
		logging.Int("listed", report.Listed),
		logging.Int("inserted", report.Inserted),
		logging.Int("touched", report.Touched),
		logging.Int("failed", report.Failed),
		logging.Int("deleted", report.Deleted),
		logging.Duration("duration", report.Duration()),
	)
	return report, nil
}

// scan lists and classifies every source while a single writer persists the
// results. It returns once all sources are done and the writer has flushed.
func (l *Library) scan(
	ctx context.Context,
	sources []storage.Source,
	start time.Time,
	report *Report,
	logger *slog.Logger,
) ([]*SourceError, error) {
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result, l.opts.BatchSize)
	var writeErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeErr = l.write(pctx, results, start, report)
		if writeErr != nil {
			cancel()
		}
	}()

	var (
		mu         sync.Mutex
		sourceErrs []*SourceError
		listed     atomic.Int64
		failed     atomic.Int64
	)
	var g errgroup.Group
	g.SetLimit(l.opts.ConcurrentSources)
	for _, src := range sources {
		g.Go(func() error {
			srcLogger := logger.With(logging.String(logging.FieldSource, src.ID()))
			counts, err := l.scanSource(pctx, src, results, srcLogger)
			listed.Add(int64(counts.listed))
			failed.Add(int64(counts.failed))
			if err != nil {
				if pctx.Err() != nil {
					return nil
				}
				srcLogger.Error("source scan failed", logging.Error(err))
				mu.Lock()
				sourceErrs = append(sourceErrs, &SourceError{SourceID: src.ID(), Err: err})
				mu.Unlock()
				return nil
			}
			srcLogger.Info("source scanned",
				logging.Int("listed", counts.listed),
				logging.Int("failed", counts.failed),
			)
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-writerDone

	report.Listed = int(listed.Load())
	report.Failed = int(failed.Load())
	return sourceErrs, writeErr
}

type sourceCounts struct {
	listed int
	failed int
}

// scanSource lists one source and feeds its games to results through a
// bounded pool of classification workers.
func (l *Library) scanSource(
	ctx context.Context,
	src storage.Source,
	results chan<- result,
	logger *slog.Logger,
) (sourceCounts, error) {
	var counts sourceCounts

	var files []storage.RawFile
	err := src.Walk(ctx, func(f storage.RawFile) error {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // cancellation is returned as is
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return counts, fmt.Errorf("list: %w", err)
	}
	groups := storage.GroupFiles(files, storage.ReadLines(ctx, src))
	counts.listed = len(groups)

	known, err := l.store.KnownURIs(ctx, src.ID())
	if err != nil {
		return counts, fmt.Errorf("load known games: %w", err)
	}

	jobs := make(chan storage.Group, l.opts.Workers*2)
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for range l.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				r, ok := l.process(ctx, src, group, known, logger)
				if !ok {
					if ctx.Err() == nil {
						failed.Add(1)
					}
					continue
				}
				select {
				case results <- r:
				case <-ctx.Done():
				}
			}
		}()
	}

dispatch:
	for _, group := range groups {
		select {
		case jobs <- group:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	counts.failed = int(failed.Load())
	if err := ctx.Err(); err != nil {
		return counts, err //nolint:wrapcheck // cancellation is returned as is
	}
	return counts, nil
}

// process turns one group into a writer result. ok is false when the group
// could not be classified.
func (l *Library) process(
	ctx context.Context,
	src storage.Source,
	group storage.Group,
	known map[string]struct{},
	logger *slog.Logger,
) (result, bool) {
	uri := group.Primary.URI
	if _, ok := known[uri]; ok {
		return result{touch: &catalog.Touch{URI: uri, DataFiles: dataFiles(group)}}, true
	}

	file, err := l.classifier.Classify(ctx, src, group)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("classify failed",
				logging.String(logging.FieldURI, uri),
				logging.Error(err),
			)
		}
		return result{}, false
	}
	logger.Debug("classified",
		logging.String(logging.FieldURI, uri),
		logging.String("system", string(file.System)),
		logging.String("serial", file.Serial),
	)
	game := newGame(src.ID(), group, file)
	return result{game: &game}, true
}

func newGame(sourceID string, group storage.Group, file *classifier.File) catalog.Game {
	return catalog.Game{DataFiles: dataFiles(group), Entry: catalog.Entry{
		SourceID:      sourceID,
		URI:           file.SourceURI,
		FileName:      file.Name,
		Title:         file.Title(),
		System:        file.System,
		Serial:        file.Serial,
		Checksum:      file.Checksum,
		ContainerPath: file.ContainerPath,
		Size:          file.Size,
	}}
}

func dataFiles(group storage.Group) []catalog.DataFile {
	var out []catalog.DataFile
	for _, df := range group.DataFiles {
		out = append(out, catalog.DataFile{URI: df.URI, FileName: df.Name, Path: df.Path})
	}
	return out
}

// write is the single catalog writer. It applies results in batches and
// counts what it wrote into report.
func (l *Library) write(ctx context.Context, results <-chan result, start time.Time, report *Report) error {
	var batch catalog.Batch
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		batch.At = l.now()
		if batch.At.Before(start) {
			batch.At = start
		}
		if err := l.store.Apply(ctx, batch); err != nil {
			return err //nolint:wrapcheck // Apply wraps
		}
		report.Inserted += len(batch.Upserts)
		report.Touched += len(batch.Touches)
		batch = catalog.Batch{}
		return nil
	}

	for r := range results {
		if r.game != nil {
			batch.Upserts = append(batch.Upserts, *r.game)
		} else {
			batch.Touches = append(batch.Touches, *r.touch)
		}
		if batch.Len() >= l.opts.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil //nolint:nilerr // cancellation is reported by Index
	}
	return flush()
}

// sweep removes games and data files not seen since start.
func (l *Library) sweep(ctx context.Context, start time.Time) (int, error) {
	stale, err := l.store.Stale(ctx, start)
	if err != nil {
		return 0, fmt.Errorf("select stale games: %w", err)
	}
	deleted, err := l.store.Delete(ctx, stale)
	if err != nil {
		return 0, fmt.Errorf("sweep games: %w", err)
	}

	staleFiles, err := l.store.StaleDataFiles(ctx, start)
	if err != nil {
		return deleted, fmt.Errorf("select stale data files: %w", err)
	}
	if _, err := l.store.DeleteDataFiles(ctx, staleFiles); err != nil {
		return deleted, fmt.Errorf("sweep data files: %w", err)
	}
	return deleted, nil
}
