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

package classifier

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// readerAt is a stream that also supports random access.
type readerAt interface {
	io.Reader
	io.ReaderAt
}

// randomAccess returns r as a readerAt, spooling it to a temp file when it
// does not implement io.ReaderAt. cleanup must be called when done.
func (c *Classifier) randomAccess(r io.Reader) (readerAt, func(), error) {
	if ra, ok := r.(readerAt); ok {
		return ra, func() {}, nil
	}
	return c.spool(r)
}

// spool copies r to a temp file, positioned at its start.
func (c *Classifier) spool(r io.Reader) (readerAt, func(), error) {
	if c.opts.SpoolDir != "" {
		if err := c.opts.Fs.MkdirAll(c.opts.SpoolDir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create spool directory: %w", err)
		}
	}
	tmp, err := afero.TempFile(c.opts.Fs, c.opts.SpoolDir, "gamelib-spool-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create spool file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = c.opts.Fs.Remove(tmp.Name())
	}
	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("spool: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("rewind spool: %w", err)
	}
	return tmp, cleanup, nil
}
