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
	"errors"
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// rarArchive reads a RAR container. RAR is sequential, so every Open walks
// the headers again from the start of the section.
type rarArchive struct {
	src     io.ReaderAt
	name    string
	entries []Entry
	size    int64
}

func openRAR(name string, r io.ReaderAt, size int64) (*rarArchive, error) {
	ra := &rarArchive{src: r, name: name, size: size}
	err := ra.walk(func(header *rardecode.FileHeader, _ *rardecode.Reader) bool {
		ra.entries = append(ra.entries, Entry{
			Name:           header.Name,
			CompressedSize: header.PackedSize,
			Size:           header.UnPackedSize,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return ra, nil
}

// walk calls fn for each file header until fn returns false.
func (ra *rarArchive) walk(fn func(*rardecode.FileHeader, *rardecode.Reader) bool) error {
	reader, err := rardecode.NewReader(io.NewSectionReader(ra.src, 0, ra.size))
	if err != nil {
		return fmt.Errorf("create RAR reader: %w", err)
	}
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read RAR header: %w", err)
		}
		if header.IsDir {
			continue
		}
		if !fn(header, reader) {
			return nil
		}
	}
}

func (ra *rarArchive) Entries() []Entry {
	return ra.entries
}

func (ra *rarArchive) Open(name string) (io.ReadCloser, error) {
	i := findEntry(ra.entries, name)
	if i < 0 {
		return nil, notFound(ra.name, name)
	}

	var found io.Reader
	err := ra.walk(func(header *rardecode.FileHeader, reader *rardecode.Reader) bool {
		if header.Name == ra.entries[i].Name {
			found = reader
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, notFound(ra.name, name)
	}
	return io.NopCloser(found), nil
}

func (*rarArchive) Close() error {
	return nil
}
