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
	"time"

	"github.com/ZaparooProject/go-gamelib/identifier"
)

// Entry is a game row in the catalog. Optional fields are empty when the
// game could not be identified.
type Entry struct {
	LastIndexedAt time.Time
	CreatedAt     time.Time
	SourceID      string
	URI           string
	FileName      string
	Title         string
	System        identifier.System
	Serial        string
	Checksum      string
	ContainerPath string
	ID            int64
	Size          int64
}

// DataFile is a companion file of a grouped game, such as a track
// referenced by a cue sheet or a disc listed in a playlist.
type DataFile struct {
	LastIndexedAt time.Time
	URI           string
	FileName      string
	Path          string
	ID            int64
	GameID        int64
}

// Game is an entry together with its data files, as written by Apply.
type Game struct {
	DataFiles []DataFile
	Entry     Entry
}

// Batch is one unit of catalog writes. It is applied in a single
// transaction.
type Batch struct {
	// At is stamped as last_indexed_at on every row the batch writes or
	// touches.
	At time.Time

	// Upserts are inserted, or replace the row with the same URI.
	Upserts []Game

	// Touches mark games that are still present.
	Touches []Touch
}

// Touch marks a known game as seen. Its data files are upserted, so files
// that no longer belong to the game are left stale.
type Touch struct {
	URI       string
	DataFiles []DataFile
}

// Len returns the number of results in the batch.
func (b Batch) Len() int {
	return len(b.Upserts) + len(b.Touches)
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	SourceID string
	System   identifier.System
	Limit    int
}
