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

	"github.com/klauspost/compress/zip"
)

type zipArchive struct {
	reader  *zip.Reader
	name    string
	entries []Entry
	files   []*zip.File
}

func openZIP(name string, r io.ReaderAt, size int64) (*zipArchive, error) {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open ZIP archive: %w", err)
	}

	za := &zipArchive{reader: reader, name: name}
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		za.files = append(za.files, file)
		za.entries = append(za.entries, Entry{
			Name:           file.Name,
			CompressedSize: int64(file.CompressedSize64),   //nolint:gosec // sizes fit in int64
			Size:           int64(file.UncompressedSize64), //nolint:gosec // sizes fit in int64
			CRC32:          file.CRC32,
			HasCRC:         true,
		})
	}
	return za, nil
}

func (za *zipArchive) Entries() []Entry {
	return za.entries
}

func (za *zipArchive) Open(name string) (io.ReadCloser, error) {
	i := findEntry(za.entries, name)
	if i < 0 {
		return nil, notFound(za.name, name)
	}
	rc, err := za.files[i].Open()
	if err != nil {
		return nil, fmt.Errorf("open file in ZIP: %w", err)
	}
	return rc, nil
}

func (*zipArchive) Close() error {
	return nil
}
