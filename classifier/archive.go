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
	"context"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"path"

	"github.com/ZaparooProject/go-gamelib/archive"
	"github.com/ZaparooProject/go-gamelib/identifier"
	"github.com/ZaparooProject/go-gamelib/storage"
)

// classifyArchive looks for a single game inside an archive and fills f from
// it. found is false when the container is unreadable as an archive or does
// not wrap a single game; the caller then classifies it as a plain file.
// Only failures to read the listed file itself are returned as errors.
func (c *Classifier) classifyArchive(ctx context.Context, src storage.Opener, target storage.RawFile, f *File) (bool, error) {
	rc, err := src.Open(ctx, target)
	if err != nil {
		return false, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	ra, cleanup, err := c.randomAccess(rc)
	if err != nil {
		return false, err
	}
	defer cleanup()

	arc, err := archive.Open(target.Name, ra, target.Size)
	if err != nil {
		return false, nil //nolint:nilerr // not a readable container; treat as a plain file
	}
	defer arc.Close()

	entry, ok := archive.FindGame(arc.Entries(), target.Size, c.opts.ArchiveMaxEntries, c.opts.ArchiveMinRatio)
	if !ok {
		return false, nil
	}

	info, sum, err := c.identifyEntry(ctx, arc, entry)
	if err != nil {
		return false, nil //nolint:nilerr // damaged entry; fall back to the container
	}

	f.Name = path.Base(entry.Name)
	f.Size = entry.Size
	f.Entry = entry.Name
	f.ContainerPath = target.Path
	f.Serial = info.Serial
	f.System = info.System
	f.Checksum = sum
	return true, nil
}

// identifyEntry identifies an archive entry and returns its checksum.
// Formats that record CRC32 per entry supply it as is. Otherwise the entry
// is hashed while it is read, subject to the same gating as plain files.
func (c *Classifier) identifyEntry(ctx context.Context, arc archive.Archive, entry archive.Entry) (identifier.DiskInfo, string, error) {
	rc, err := arc.Open(entry.Name)
	if err != nil {
		return identifier.DiskInfo{}, "", fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	var (
		r io.Reader = &ctxReader{ctx: ctx, r: rc}
		h hash.Hash32
	)
	if !entry.HasCRC {
		h = crc32.NewIEEE()
		r = io.TeeReader(r, h)
	}

	var info identifier.DiskInfo
	if identifier.NeedsRandomAccess(entry.Name) {
		ra, cleanup, err := c.spool(r)
		if err != nil {
			return identifier.DiskInfo{}, "", err
		}
		defer cleanup()
		info, err = identifier.Identify(entry.Name, ra, entry.Size)
		if err != nil {
			return identifier.DiskInfo{}, "", fmt.Errorf("identify entry: %w", err)
		}
	} else {
		info, err = identifier.Identify(entry.Name, r, entry.Size)
		if err != nil {
			return identifier.DiskInfo{}, "", fmt.Errorf("identify entry: %w", err)
		}
	}

	if entry.HasCRC {
		return info, formatCRC(entry.CRC32), nil
	}
	if !c.wantChecksum(info.Serial, entry.Size) {
		return info, "", nil
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return identifier.DiskInfo{}, "", fmt.Errorf("checksum entry: %w", err)
	}
	return info, formatCRC(h.Sum32()), nil
}
