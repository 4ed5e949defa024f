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
	"strings"

	"github.com/ZaparooProject/go-gamelib/identifier"
)

const entryColumns = "id, source_id, uri, file_name, title, system, serial, checksum, container_path, size, last_indexed_at, created_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		e             Entry
		system        sql.NullString
		serial        sql.NullString
		checksum      sql.NullString
		containerPath sql.NullString
		lastIndexed   int64
		created       int64
	)
	if err := scanner.Scan(
		&e.ID,
		&e.SourceID,
		&e.URI,
		&e.FileName,
		&e.Title,
		&system,
		&serial,
		&checksum,
		&containerPath,
		&e.Size,
		&lastIndexed,
		&created,
	); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}
	e.System = identifier.System(system.String)
	e.Serial = serial.String
	e.Checksum = checksum.String
	e.ContainerPath = containerPath.String
	e.LastIndexedAt = fromUnixNano(lastIndexed)
	e.CreatedAt = fromUnixNano(created)
	return &e, nil
}

// Get returns the game with the given URI, or nil when there is none.
func (s *Store) Get(ctx context.Context, uri string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM games WHERE uri = ?`, uri)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return entry, nil
}

// List returns the games matching filter ordered by system, then title.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if filter.SourceID != "" {
		where = append(where, "source_id = ?")
		args = append(args, filter.SourceID)
	}
	if filter.System != identifier.SystemUnknown {
		where = append(where, "system = ?")
		args = append(args, string(filter.System))
	}

	query := `SELECT ` + entryColumns + ` FROM games`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY system, title, uri`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return entries, nil
}

// DataFiles returns the data files of a game ordered by path.
func (s *Store) DataFiles(ctx context.Context, gameID int64) ([]DataFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, uri, file_name, path, last_indexed_at
        FROM data_files WHERE game_id = ? ORDER BY path`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list data files: %w", err)
	}
	defer rows.Close()

	var files []DataFile
	for rows.Next() {
		var (
			df          DataFile
			lastIndexed int64
		)
		if err := rows.Scan(&df.ID, &df.GameID, &df.URI, &df.FileName, &df.Path, &lastIndexed); err != nil {
			return nil, fmt.Errorf("scan data file: %w", err)
		}
		df.LastIndexedAt = fromUnixNano(lastIndexed)
		files = append(files, df)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data files: %w", err)
	}
	return files, nil
}

// Count returns the number of games in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}
