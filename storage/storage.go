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

// Package storage defines the file sources a scan lists games from, and
// groups multi-file games such as cue sheets and playlists.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// Kind names a source implementation in configuration.
type Kind string

// Source kinds.
const (
	KindLocal Kind = "local"
)

// RawFile is a file as listed by a source, before any analysis.
type RawFile struct {
	Name       string // Base name
	URI        string // Globally unique handle, such as a file:// URL
	Path       string // Slash-separated path within the source
	ParentPath string // Path of the containing directory
	Size       int64
}

// Ext returns the lower-cased extension of the file name without the dot.
func (f RawFile) Ext() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
}

// Stem returns the file name without its extension.
func (f RawFile) Stem() string {
	return strings.TrimSuffix(f.Name, path.Ext(f.Name))
}

// File is an open file. Implementations that also satisfy io.ReaderAt
// spare callers from spooling random-access formats to disk.
type File interface {
	io.ReadCloser
}

// Opener opens listed files for reading.
type Opener interface {
	Open(ctx context.Context, f RawFile) (File, error)
}

// Source is a place games are listed from.
type Source interface {
	Opener

	// ID identifies the source in the catalog and in logs.
	ID() string

	// Walk calls fn for every file in the source. Each call lists the source
	// afresh. An error from fn, or a failure to enumerate the source, stops
	// the walk and is returned.
	Walk(ctx context.Context, fn func(RawFile) error) error
}
