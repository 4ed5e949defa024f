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

package storage

import (
	"bufio"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
)

// Group is one game as stored: a primary file plus the companion files it
// references, such as the tracks of a cue sheet or the discs of a playlist.
type Group struct {
	Primary   RawFile
	DataFiles []RawFile
}

// IsIndex reports whether f only references other files.
func IsIndex(f RawFile) bool {
	switch f.Ext() {
	case "cue", "m3u":
		return true
	default:
		return false
	}
}

// Target returns the file whose content identifies the group: the primary,
// or for cue sheets and playlists the first data file that is not itself an
// index. ok is false when an index references nothing that was listed.
func (g Group) Target() (RawFile, bool) {
	if !IsIndex(g.Primary) {
		return g.Primary, true
	}
	for _, f := range g.DataFiles {
		if !IsIndex(f) {
			return f, true
		}
	}
	return RawFile{}, false
}

// LineReader returns the text lines of an index file.
type LineReader func(f RawFile) ([]string, error)

// maxIndexSize bounds how much of a cue sheet or playlist is read.
const maxIndexSize = 1 << 20

// ReadLines returns a LineReader that opens files through o.
func ReadLines(ctx context.Context, o Opener) LineReader {
	return func(f RawFile) ([]string, error) {
		if f.Size > maxIndexSize {
			return nil, fmt.Errorf("%s: index file of %d bytes too large", f.Path, f.Size)
		}
		file, err := o.Open(ctx, f)
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		var lines []string
		sc := bufio.NewScanner(file)
		for sc.Scan() {
			lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		return lines, nil
	}
}

// GroupFiles folds companion files into the games that reference them.
//
// A cue sheet absorbs the files named by its FILE lines and a .bin sharing
// its stem. A playlist absorbs the files it lists, along with anything those
// absorbed. Each file joins at most one group; every file not absorbed forms
// a group of its own. Index files that cannot be read stay on their own.
// Groups are ordered by primary path.
func GroupFiles(files []RawFile, readLines LineReader) []Group {
	byPath := make(map[string]int, len(files))
	for i, f := range files {
		byPath[strings.ToLower(f.Path)] = i
	}

	owner := make([]int, len(files))
	for i := range owner {
		owner[i] = -1
	}
	members := make(map[int][]int)

	lookup := func(dir, rel string) (int, bool) {
		i, ok := byPath[strings.ToLower(path.Join(dir, rel))]
		return i, ok
	}
	claim := func(primary, i int) bool {
		if i == primary || owner[i] >= 0 || files[i].Ext() == "m3u" {
			return false
		}
		owner[i] = primary
		members[primary] = append(members[primary], i)
		return true
	}

	// Cue sheets first, so playlists listing them take their tracks along.
	for i, f := range files {
		if f.Ext() != "cue" {
			continue
		}
		lines, err := readLines(f)
		if err != nil {
			continue
		}
		for _, name := range append(CueFiles(lines), f.Stem()+".bin") {
			if j, ok := lookup(f.ParentPath, name); ok {
				claim(i, j)
			}
		}
	}
	for i, f := range files {
		if f.Ext() != "m3u" {
			continue
		}
		lines, err := readLines(f)
		if err != nil {
			continue
		}
		for _, name := range PlaylistEntries(lines) {
			j, ok := lookup(f.ParentPath, name)
			if !ok || !claim(i, j) {
				continue
			}
			for _, k := range members[j] {
				owner[k] = i
				members[i] = append(members[i], k)
			}
			delete(members, j)
		}
	}

	groups := make([]Group, 0, len(files))
	for i, f := range files {
		if owner[i] >= 0 {
			continue
		}
		g := Group{Primary: f}
		for _, j := range members[i] {
			g.DataFiles = append(g.DataFiles, files[j])
		}
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b Group) int { return strings.Compare(a.Primary.Path, b.Primary.Path) })
	return groups
}

// CueFiles returns the file names referenced by FILE lines of a cue sheet.
func CueFiles(lines []string) []string {
	var names []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 5 || !strings.EqualFold(line[:5], "FILE ") {
			continue
		}
		rest := strings.TrimSpace(line[5:])
		var name string
		if strings.HasPrefix(rest, `"`) {
			end := strings.Index(rest[1:], `"`)
			if end < 0 {
				continue
			}
			name = rest[1 : end+1]
		} else if fields := strings.Fields(rest); len(fields) > 0 {
			name = fields[0]
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// PlaylistEntries returns the non-comment entries of an m3u playlist.
func PlaylistEntries(lines []string) []string {
	var entries []string
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, strings.ReplaceAll(line, `\`, "/"))
	}
	return entries
}
