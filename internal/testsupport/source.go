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

package testsupport

import (
	"context"
	"path"
	"testing"

	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-gamelib/storage"
)

// MemRoot is the directory MemSource files live under.
const MemRoot = "/games"

// MemSource is a local source over an in-memory filesystem.
type MemSource struct {
	*storage.Local
	Fs afero.Fs
}

// NewMemSource returns a source whose files are the given contents, keyed by
// slash-separated path relative to MemRoot.
func NewMemSource(t testing.TB, id string, files map[string][]byte) *MemSource {
	t.Helper()

	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(MemRoot, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", MemRoot, err)
	}
	src := &MemSource{Local: storage.NewLocal(id, MemRoot, fsys), Fs: fsys}
	for name, data := range files {
		src.Put(t, name, data)
	}
	return src
}

// Put creates or replaces a file.
func (m *MemSource) Put(t testing.TB, name string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(m.Fs, path.Join(MemRoot, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// Remove deletes a file.
func (m *MemSource) Remove(t testing.TB, name string) {
	t.Helper()
	if err := m.Fs.Remove(path.Join(MemRoot, name)); err != nil {
		t.Fatalf("remove %s: %v", name, err)
	}
}

// URI returns the URI the source assigns to a file.
func (m *MemSource) URI(t testing.TB, name string) string {
	t.Helper()
	var uri string
	target := path.Join(MemRoot, name)
	err := m.Walk(context.Background(), func(f storage.RawFile) error {
		if path.Join(MemRoot, f.Path) == target {
			uri = f.URI
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if uri == "" {
		t.Fatalf("no file %s in source", name)
	}
	return uri
}
