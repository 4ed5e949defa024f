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

// Package archive lists and opens the entries of ZIP, 7z, and RAR
// containers, and decides whether a container wraps a single game.
package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Kind is a supported container format.
type Kind int

// Container formats. KindNone marks files that are not containers.
const (
	KindNone Kind = iota
	KindZip
	KindSevenZip
	KindRAR
)

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindSevenZip:
		return "7z"
	case KindRAR:
		return "rar"
	default:
		return "none"
	}
}

// KindOf returns the container format implied by the extension of name.
func KindOf(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		return KindZip
	case ".7z":
		return KindSevenZip
	case ".rar":
		return KindRAR
	default:
		return KindNone
	}
}

// IsArchiveExtension checks if an extension is a supported archive format.
// The leading dot is optional.
func IsArchiveExtension(ext string) bool {
	return KindOf("x."+strings.TrimPrefix(ext, ".")) != KindNone
}

// Entry describes one file stored in a container.
type Entry struct {
	Name           string // Full path within the container
	CompressedSize int64  // Bytes the entry occupies in the container
	Size           int64  // Uncompressed size
	CRC32          uint32
	HasCRC         bool // CRC32 comes from the container metadata
}

// Archive provides read access to the entries of a container.
type Archive interface {
	// Entries returns the file entries in declared order, directories
	// excluded.
	Entries() []Entry

	// Open opens the named entry for sequential reading.
	Open(name string) (io.ReadCloser, error)

	// Close releases the container.
	Close() error
}

// Open parses the container held in r. name selects the format by its
// extension and labels errors; size is the container length.
func Open(name string, r io.ReaderAt, size int64) (Archive, error) {
	switch KindOf(name) {
	case KindZip:
		return openZIP(name, r, size)
	case KindSevenZip:
		return openSevenZip(name, r, size)
	case KindRAR:
		return openRAR(name, r, size)
	default:
		return nil, FormatError{Format: filepath.Ext(name)}
	}
}

// findEntry returns the index of the entry named name, compared
// case-insensitively with forward slashes.
func findEntry(entries []Entry, name string) int {
	name = filepath.ToSlash(name)
	for i, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

func notFound(archive, name string) error {
	return fmt.Errorf("open entry: %w", EntryNotFoundError{Archive: archive, Entry: name})
}
