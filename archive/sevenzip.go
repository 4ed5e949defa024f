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

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

type sevenZipArchive struct {
	name    string
	entries []Entry
	files   []*sevenzip.File
}

// openSevenZip lists a 7z container. Entries are compressed in solid
// blocks, so there is no per-entry packed size. Each entry is credited with
// the container size times its share of the total uncompressed size; a
// lone entry is credited with the whole container.
func openSevenZip(name string, r io.ReaderAt, size int64) (*sevenZipArchive, error) {
	reader, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open 7z archive: %w", err)
	}

	sza := &sevenZipArchive{name: name}
	var total uint64
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		sza.files = append(sza.files, file)
		total += file.UncompressedSize
	}

	for _, file := range sza.files {
		var share int64
		if total > 0 {
			share = int64(float64(size) * float64(file.UncompressedSize) / float64(total))
		}
		sza.entries = append(sza.entries, Entry{
			Name:           file.Name,
			CompressedSize: share,
			Size:           int64(file.UncompressedSize), //nolint:gosec // sizes fit in int64
			CRC32:          file.CRC32,
			HasCRC:         file.CRC32 != 0,
		})
	}
	return sza, nil
}

func (sza *sevenZipArchive) Entries() []Entry {
	return sza.entries
}

func (sza *sevenZipArchive) Open(name string) (io.ReadCloser, error) {
	i := findEntry(sza.entries, name)
	if i < 0 {
		return nil, notFound(sza.name, name)
	}
	rc, err := sza.files[i].Open()
	if err != nil {
		return nil, fmt.Errorf("open file in 7z: %w", err)
	}
	return rc, nil
}

func (*sevenZipArchive) Close() error {
	return nil
}
