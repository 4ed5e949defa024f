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

// Package gamelib identifies game images and keeps a catalog of them.
//
// The root package offers one-off identification of local files. Scanning
// whole libraries into a catalog is done by the library package, driven by
// the gamelib command.
package gamelib

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-gamelib/classifier"
	"github.com/ZaparooProject/go-gamelib/identifier"
	"github.com/ZaparooProject/go-gamelib/storage"
)

// File is an alias for classifier.File for convenience.
type File = classifier.File

// System is an alias for identifier.System for convenience.
type System = identifier.System

// Re-export system constants for convenience.
const (
	System3DS    = identifier.System3DS
	SystemPSP    = identifier.SystemPSP
	SystemPSX    = identifier.SystemPSX
	SystemSegaCD = identifier.SystemSegaCD
)

// AllSystems is a list of all supported systems.
var AllSystems = identifier.AllSystems

// Option configures IdentifyFile.
type Option func(*classifier.Options)

// WithFs reads files from fsys instead of the operating system.
func WithFs(fsys afero.Fs) Option {
	return func(o *classifier.Options) {
		o.Fs = fsys
	}
}

// WithChecksumMaxBytes sets the size from which files are not checksummed.
func WithChecksumMaxBytes(n int64) Option {
	return func(o *classifier.Options) {
		o.ChecksumMaxBytes = n
	}
}

// WithSpoolDir sets where streams needing random access are spooled.
func WithSpoolDir(dir string) Option {
	return func(o *classifier.Options) {
		o.SpoolDir = dir
	}
}

// IdentifyFile classifies the file at path. Cue sheets and playlists are
// identified through the files they reference in the same directory.
func IdentifyFile(ctx context.Context, filePath string, opts ...Option) (*File, error) {
	var options classifier.Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Fs == nil {
		options.Fs = afero.NewOsFs()
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	src := storage.NewLocal("file", filepath.Dir(abs), options.Fs)
	f, err := src.Stat(filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	group := storage.Group{Primary: f}
	if storage.IsIndex(f) {
		group, err = indexGroup(ctx, src, f)
		if err != nil {
			return nil, err
		}
	}

	result, err := classifier.New(options).Classify(ctx, src, group)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}
	return result, nil
}

// indexGroup groups a cue sheet or playlist with its siblings.
func indexGroup(ctx context.Context, src *storage.Local, index storage.RawFile) (storage.Group, error) {
	siblings, err := src.ReadDir(index.ParentPath)
	if err != nil {
		return storage.Group{}, fmt.Errorf("list siblings: %w", err)
	}
	for _, g := range storage.GroupFiles(siblings, storage.ReadLines(ctx, src)) {
		if g.Primary.URI == index.URI {
			return g, nil
		}
	}
	// Claimed by a playlist in the same directory.
	return storage.Group{Primary: index}, nil
}

// SystemFromString parses a system name into a System. It is
// case-insensitive and accepts common alternative names.
func SystemFromString(name string) (System, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	switch key {
	case "3DS", "N3DS", "NINTENDO3DS":
		return System3DS, nil
	case "PSP", "PLAYSTATIONPORTABLE":
		return SystemPSP, nil
	case "PSX", "PS1", "PLAYSTATION", "PLAYSTATION1":
		return SystemPSX, nil
	case "SEGACD", "MEGACD", "SCD", "MCD":
		return SystemSegaCD, nil
	}
	return identifier.SystemUnknown, fmt.Errorf("unknown system: %q", name)
}

// SupportedSystems returns the names of all supported systems.
func SupportedSystems() []string {
	result := make([]string, len(AllSystems))
	for i, s := range AllSystems {
		result[i] = string(s)
	}
	return result
}
