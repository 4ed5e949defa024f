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

package archive_test

import (
	"testing"

	"github.com/ZaparooProject/go-gamelib/archive"
)

func TestFindGame(t *testing.T) {
	t.Parallel()

	entry := func(name string, packed int64) archive.Entry {
		return archive.Entry{Name: name, CompressedSize: packed}
	}

	tests := []struct {
		name      string
		wantEntry string
		entries   []archive.Entry
		container int64
		wantOK    bool
	}{
		{
			name:      "ratio 0.95 selected",
			entries:   []archive.Entry{entry("game.bin", 950)},
			container: 1000,
			wantEntry: "game.bin",
			wantOK:    true,
		},
		{
			name:      "ratio 0.8 rejected",
			entries:   []archive.Entry{entry("game.bin", 800)},
			container: 1000,
		},
		{
			name:      "exactly at threshold rejected",
			entries:   []archive.Entry{entry("game.bin", 900)},
			container: 1000,
		},
		{
			name:      "small extras before the game",
			entries:   []archive.Entry{entry("readme.txt", 10), entry("cover.png", 30), entry("game.iso", 955)},
			container: 1000,
			wantEntry: "game.iso",
			wantOK:    true,
		},
		{
			name: "game beyond the checked entries",
			entries: []archive.Entry{
				entry("a.txt", 1), entry("b.txt", 1), entry("c.txt", 1), entry("d.txt", 1),
				entry("game.iso", 990),
			},
			container: 1000,
		},
		{
			name:      "empty container",
			entries:   []archive.Entry{entry("game.bin", 950)},
			container: 0,
		},
		{
			name:      "unknown packed size",
			entries:   []archive.Entry{entry("game.bin", 0)},
			container: 1000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := archive.FindGame(tt.entries, tt.container, archive.MaxCheckedEntries, archive.MinGameRatio)
			if ok != tt.wantOK || got.Name != tt.wantEntry {
				t.Errorf("FindGame() = %q, %v; want %q, %v", got.Name, ok, tt.wantEntry, tt.wantOK)
			}
		})
	}
}
