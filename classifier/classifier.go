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

// Package classifier turns listed files into identified games.
//
// A file is classified by sniffing its content with the identifier package.
// Archives that wrap a single game are looked into; everything else is
// identified as is. When no serial is found a CRC32 checksum is computed
// instead, so that the game can still be matched against a database.
// Archives that record CRC32 per entry always supply it.
package classifier

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/ZaparooProject/go-gamelib/archive"
	"github.com/ZaparooProject/go-gamelib/identifier"
	"github.com/ZaparooProject/go-gamelib/storage"
)

// DefaultChecksumMaxBytes is the size from which files are no longer
// checksummed.
const DefaultChecksumMaxBytes int64 = 500_000_000

// File is a classified game.
type File struct {
	Name          string            // File name, or the entry name for archived games
	Checksum      string            // CRC32 as 8 upper-case hex digits, empty if not computed
	Serial        string            // Empty if not found
	System        identifier.System // Zero if unknown
	SourceURI     string            // URI of the listed file the game was found in
	ContainerPath string            // Source path of the archive holding the game
	Entry         string            // Archive entry name of the game
	Size          int64             // Size of the identified content
}

// Title is the display title derived from the file name.
func (f *File) Title() string {
	return Title(f.Name)
}

// Title strips the extension from a file name and normalizes it to NFC.
func Title(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	return strings.TrimSpace(norm.NFC.String(stem))
}

// Options tune classification. Zero values take the defaults.
type Options struct {
	// Fs holds spooled copies of streams that need random access. It
	// defaults to the OS filesystem.
	Fs afero.Fs

	// SpoolDir is where spooled copies are created. Empty means the system
	// temp directory.
	SpoolDir string

	// ChecksumMaxBytes is the exclusive upper bound on the size of files
	// that get a checksum.
	ChecksumMaxBytes int64

	// ArchiveMaxEntries and ArchiveMinRatio parameterize
	// archive.FindGame.
	ArchiveMaxEntries int
	ArchiveMinRatio   float64
}

// Classifier classifies files. It is safe for concurrent use.
type Classifier struct {
	opts Options
}

// New returns a Classifier with the given options.
func New(opts Options) *Classifier {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.ChecksumMaxBytes <= 0 {
		opts.ChecksumMaxBytes = DefaultChecksumMaxBytes
	}
	if opts.ArchiveMaxEntries <= 0 {
		opts.ArchiveMaxEntries = archive.MaxCheckedEntries
	}
	if opts.ArchiveMinRatio <= 0 {
		opts.ArchiveMinRatio = archive.MinGameRatio
	}
	return &Classifier{opts: opts}
}

// Classify identifies the game a group of files makes up. Cue sheets and
// playlists are identified through their first data file, but the result
// keeps the URI and name of the index file.
//
// Content that cannot be identified is not an error: the result simply has
// no system or serial. Errors are *FileError and mean the file could not be
// read.
func (c *Classifier) Classify(ctx context.Context, src storage.Opener, group storage.Group) (*File, error) {
	primary := group.Primary
	if err := ctx.Err(); err != nil {
		return nil, &FileError{URI: primary.URI, Err: err}
	}

	target, ok := group.Target()
	if !ok {
		return &File{Name: primary.Name, Size: primary.Size, SourceURI: primary.URI}, nil
	}

	f := &File{Name: primary.Name, Size: target.Size, SourceURI: primary.URI}
	if archive.IsArchiveExtension(target.Ext()) {
		found, err := c.classifyArchive(ctx, src, target, f)
		if err != nil {
			return nil, &FileError{URI: primary.URI, Err: err}
		}
		if found {
			return f, nil
		}
	}

	if err := c.classifyStandalone(ctx, src, target, f); err != nil {
		return nil, &FileError{URI: primary.URI, Err: err}
	}
	return f, nil
}

func (c *Classifier) classifyStandalone(ctx context.Context, src storage.Opener, target storage.RawFile, f *File) error {
	info, err := c.identify(ctx, src, target)
	if err != nil {
		return err
	}
	f.Serial = info.Serial
	f.System = info.System

	if !c.wantChecksum(f.Serial, target.Size) {
		return nil
	}
	sum, err := c.checksum(ctx, src, target)
	if err != nil {
		return err
	}
	f.Checksum = sum
	return nil
}

func (c *Classifier) identify(ctx context.Context, src storage.Opener, target storage.RawFile) (identifier.DiskInfo, error) {
	rc, err := src.Open(ctx, target)
	if err != nil {
		return identifier.DiskInfo{}, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if identifier.NeedsRandomAccess(target.Name) {
		ra, cleanup, err := c.randomAccess(rc)
		if err != nil {
			return identifier.DiskInfo{}, err
		}
		defer cleanup()
		r = ra
	}

	info, err := identifier.Identify(target.Name, r, target.Size)
	if err != nil {
		return identifier.DiskInfo{}, fmt.Errorf("identify: %w", err)
	}
	return info, nil
}

func (c *Classifier) wantChecksum(serial string, size int64) bool {
	return serial == "" && size < c.opts.ChecksumMaxBytes
}

func (c *Classifier) checksum(ctx context.Context, src storage.Opener, target storage.RawFile) (string, error) {
	rc, err := src.Open(ctx, target)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer rc.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: rc}); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return formatCRC(h.Sum32()), nil
}

func formatCRC(sum uint32) string {
	return fmt.Sprintf("%08X", sum)
}

// ctxReader stops a long copy once ctx is done.
type ctxReader struct {
	ctx context.Context //nolint:containedctx // scoped to one copy
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err //nolint:wrapcheck // cancellation is returned as is
	}
	return r.r.Read(p) //nolint:wrapcheck // passthrough
}
