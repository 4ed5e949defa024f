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

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const upsertGameSQL = `INSERT INTO games (
    source_id, uri, file_name, title, system, serial, checksum,
    container_path, size, last_indexed_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(uri) DO UPDATE SET
    source_id = excluded.source_id,
    file_name = excluded.file_name,
    title = excluded.title,
    system = excluded.system,
    serial = excluded.serial,
    checksum = excluded.checksum,
    container_path = excluded.container_path,
    size = excluded.size,
    last_indexed_at = excluded.last_indexed_at
RETURNING id`

const upsertDataFileSQL = `INSERT INTO data_files (
    game_id, uri, file_name, path, last_indexed_at
) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(uri) DO UPDATE SET
    game_id = excluded.game_id,
    file_name = excluded.file_name,
    path = excluded.path,
    last_indexed_at = excluded.last_indexed_at`

// Apply writes a batch in one transaction. Upserted games keep their
// original CreatedAt. Touches of URIs that are not in the catalog are
// ignored.
func (s *Store) Apply(ctx context.Context, batch Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	at := toUnixNano(batch.At)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertGames(ctx, tx, batch.Upserts, at); err != nil {
			return err
		}
		return touchGames(ctx, tx, batch.Touches, at)
	})
	if err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

func upsertGames(ctx context.Context, tx *sql.Tx, games []Game, at int64) error {
	if len(games) == 0 {
		return nil
	}
	gameStmt, err := tx.PrepareContext(ctx, upsertGameSQL)
	if err != nil {
		return fmt.Errorf("prepare game upsert: %w", err)
	}
	defer gameStmt.Close()
	fileStmt, err := tx.PrepareContext(ctx, upsertDataFileSQL)
	if err != nil {
		return fmt.Errorf("prepare data file upsert: %w", err)
	}
	defer fileStmt.Close()

	for _, game := range games {
		e := game.Entry
		var id int64
		err := gameStmt.QueryRowContext(ctx,
			e.SourceID,
			e.URI,
			e.FileName,
			e.Title,
			nullableString(string(e.System)),
			nullableString(e.Serial),
			nullableString(e.Checksum),
			nullableString(e.ContainerPath),
			e.Size,
			at,
			at,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", e.URI, err)
		}
		for _, df := range game.DataFiles {
			if _, err := fileStmt.ExecContext(ctx, id, df.URI, df.FileName, df.Path, at); err != nil {
				return fmt.Errorf("upsert data file %s: %w", df.URI, err)
			}
		}
	}
	return nil
}

func touchGames(ctx context.Context, tx *sql.Tx, touches []Touch, at int64) error {
	if len(touches) == 0 {
		return nil
	}
	gameStmt, err := tx.PrepareContext(ctx, `UPDATE games SET last_indexed_at = ? WHERE uri = ? RETURNING id`)
	if err != nil {
		return fmt.Errorf("prepare touch: %w", err)
	}
	defer gameStmt.Close()
	fileStmt, err := tx.PrepareContext(ctx, upsertDataFileSQL)
	if err != nil {
		return fmt.Errorf("prepare data file upsert: %w", err)
	}
	defer fileStmt.Close()

	for _, touch := range touches {
		var id int64
		err := gameStmt.QueryRowContext(ctx, at, touch.URI).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("touch %s: %w", touch.URI, err)
		}
		for _, df := range touch.DataFiles {
			if _, err := fileStmt.ExecContext(ctx, id, df.URI, df.FileName, df.Path, at); err != nil {
				return fmt.Errorf("upsert data file %s: %w", df.URI, err)
			}
		}
	}
	return nil
}

// Stale returns the URIs of games last indexed before the given time.
func (s *Store) Stale(ctx context.Context, before time.Time) ([]string, error) {
	return s.uris(ctx, `SELECT uri FROM games WHERE last_indexed_at < ? ORDER BY uri`, toUnixNano(before))
}

// StaleDataFiles returns the URIs of data files last indexed before the
// given time.
func (s *Store) StaleDataFiles(ctx context.Context, before time.Time) ([]string, error) {
	return s.uris(ctx, `SELECT uri FROM data_files WHERE last_indexed_at < ? ORDER BY uri`, toUnixNano(before))
}

// Delete removes the games with the given URIs, and their data files, in one
// transaction. It returns the number of games removed.
func (s *Store) Delete(ctx context.Context, uris []string) (int, error) {
	n, err := s.deleteByURI(ctx, `DELETE FROM games WHERE uri = ?`, uris)
	if err != nil {
		return 0, fmt.Errorf("delete games: %w", err)
	}
	return n, nil
}

// DeleteDataFiles removes the data files with the given URIs in one
// transaction. It returns the number of rows removed.
func (s *Store) DeleteDataFiles(ctx context.Context, uris []string) (int, error) {
	n, err := s.deleteByURI(ctx, `DELETE FROM data_files WHERE uri = ?`, uris)
	if err != nil {
		return 0, fmt.Errorf("delete data files: %w", err)
	}
	return n, nil
}

func (s *Store) deleteByURI(ctx context.Context, query string, uris []string) (int, error) {
	if len(uris) == 0 {
		return 0, nil
	}
	var deleted int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		deleted = 0
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare delete: %w", err)
		}
		defer stmt.Close()

		for _, uri := range uris {
			res, err := stmt.ExecContext(ctx, uri)
			if err != nil {
				return fmt.Errorf("delete %s: %w", uri, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			deleted += int(n)
		}
		return nil
	})
	return deleted, err
}

// KnownURIs returns the set of game URIs recorded for a source.
func (s *Store) KnownURIs(ctx context.Context, sourceID string) (map[string]struct{}, error) {
	list, err := s.uris(ctx, `SELECT uri FROM games WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(list))
	for _, uri := range list {
		known[uri] = struct{}{}
	}
	return known, nil
}

func (s *Store) uris(ctx context.Context, query string, args ...any) ([]string, error) {
	var out []string
	err := retryOnBusy(ctx, func() error {
		out = out[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query uris: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var uri string
			if err := rows.Scan(&uri); err != nil {
				return fmt.Errorf("scan uri: %w", err)
			}
			out = append(out, uri)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate uris: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
