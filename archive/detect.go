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

package archive

// Defaults for the single-game heuristic.
const (
	// MaxCheckedEntries is how many leading entries are considered.
	MaxCheckedEntries = 4

	// MinGameRatio is the share of the container an entry must exceed to be
	// taken as the game it wraps.
	MinGameRatio = 0.9
)

// FindGame picks the entry that makes up nearly all of a container: the
// first of the leading maxEntries entries whose CompressedSize divided by
// containerSize is strictly greater than threshold. Containers that hold a
// game plus a few small extras qualify; collections do not.
//
// Entries past maxEntries are never considered, so a multi-disc archive
// whose game sits further down is treated as a plain file.
func FindGame(entries []Entry, containerSize int64, maxEntries int, threshold float64) (Entry, bool) {
	if containerSize <= 0 {
		return Entry{}, false
	}
	for i, e := range entries {
		if i >= maxEntries {
			break
		}
		if e.CompressedSize <= 0 {
			continue
		}
		if float64(e.CompressedSize)/float64(containerSize) > threshold {
			return e, true
		}
	}
	return Entry{}, false
}
