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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Local lists the regular files below a directory of an afero filesystem.
type Local struct {
	fs   afero.Fs
	id   string
	root string
}

// NewLocal returns a source rooted at root. A nil fs means the operating
// system filesystem.
func NewLocal(id, root string, fsys afero.Fs) *Local {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Local{fs: fsys, id: id, root: filepath.Clean(root)}
}

// ID returns the source id.
func (l *Local) ID() string {
	return l.id
}

// Root returns the directory the source lists.
func (l *Local) Root() string {
	return l.root
}

// Walk lists regular files in lexical order. Hidden files and directories
// are skipped.
func (l *Local) Walk(ctx context.Context, fn func(RawFile) error) error {
	info, err := l.fs.Stat(l.root)
	if err != nil {
		return fmt.Errorf("stat source root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source root %s: %w", l.root, errNotDir)
	}

	err = afero.Walk(l.fs, l.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p != l.root && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return fn(l.rawFile(p, info.Size()))
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", l.root, err)
	}
	return nil
}

// Stat returns the listing of one regular file, given by its slash-separated
// path within the source.
func (l *Local) Stat(name string) (RawFile, error) {
	p := filepath.Join(l.root, filepath.FromSlash(name))
	info, err := l.fs.Stat(p)
	if err != nil {
		return RawFile{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return RawFile{}, fmt.Errorf("%s: %w", name, errNotRegular)
	}
	return l.rawFile(p, info.Size()), nil
}

// ReadDir lists the regular files directly inside dir, a slash-separated
// path within the source. Hidden files are skipped.
func (l *Local) ReadDir(dir string) ([]RawFile, error) {
	p := filepath.Join(l.root, filepath.FromSlash(dir))
	infos, err := afero.ReadDir(l.fs, p)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []RawFile
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), ".") || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, l.rawFile(filepath.Join(p, info.Name()), info.Size()))
	}
	return files, nil
}

var (
	errNotDir     = errors.New("not a directory")
	errNotRegular = errors.New("not a regular file")
)

func (l *Local) rawFile(p string, size int64) RawFile {
	rel, err := filepath.Rel(l.root, p)
	if err != nil {
		rel = p
	}
	rel = filepath.ToSlash(rel)
	parent := filepath.ToSlash(filepath.Dir(rel))
	if parent == "." {
		parent = ""
	}
	return RawFile{
		Name:       filepath.Base(p),
		URI:        fileURI(p),
		Path:       rel,
		ParentPath: parent,
		Size:       size,
	}
}

// Open opens f, which must have been listed by this source. The returned
// File also implements io.ReaderAt.
func (l *Local) Open(_ context.Context, f RawFile) (File, error) {
	p := filepath.Join(l.root, filepath.FromSlash(f.Path))
	file, err := l.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}

func fileURI(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String()
}
