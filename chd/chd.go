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

// Package chd reads CHD (Compressed Hunks of Data) images, MAME's
// compressed disc format, far enough to stream their decompressed sectors.
//
// Only the hunk data is decoded; metadata such as track layouts is not
// parsed, and images that depend on a parent CHD cannot be read.
package chd

import (
	"fmt"
	"io"
)

// Disc is an opened CHD image.
type Disc struct {
	r        io.ReaderAt
	header   *Header
	entries  []hunkEntry
	decoders [4]decoder
}

// Open parses the header and hunk map of the CHD image in r. size is the
// image length in bytes, or -1 when unknown.
func Open(r io.ReaderAt, size int64) (*Disc, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	//nolint:gosec // MapOffset compared against a known size only
	if size >= 0 && int64(header.MapOffset) > size {
		return nil, fmt.Errorf("%w: map offset %d beyond end of %d byte file", ErrInvalidHeader, header.MapOffset, size)
	}

	entries, err := readMap(r, header)
	if err != nil {
		return nil, fmt.Errorf("read hunk map: %w", err)
	}

	d := &Disc{r: r, header: header, entries: entries}
	if header.Version >= 5 {
		for i, tag := range header.Compressors {
			if tag == CodecNone {
				continue
			}
			// Unknown codecs only fail the hunks that use them.
			d.decoders[i], _ = newDecoder(tag, header.HunkBytes)
		}
	} else if header.Compression == v4CompressionZlib || header.Compression == v4CompressionZlibP {
		d.decoders[0] = deflateDecoder{}
	}
	return d, nil
}

// Header returns the parsed image header.
func (d *Disc) Header() *Header {
	return d.header
}

// NumHunks returns the number of hunks in the image.
func (d *Disc) NumHunks() int {
	return len(d.entries)
}

// ReadHunk returns the decompressed contents of hunk i.
func (d *Disc) ReadHunk(i int) ([]byte, error) {
	return d.readHunk(i, 0)
}

// maxSelfRefs bounds chains of hunks that copy other hunks.
const maxSelfRefs = 16

func (d *Disc) readHunk(i, depth int) ([]byte, error) {
	if i < 0 || i >= len(d.entries) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidHunk, i, len(d.entries))
	}
	e := d.entries[i]
	dst := make([]byte, d.header.HunkBytes)

	switch e.kind {
	case hunkZero:
		return dst, nil
	case hunkRaw:
		//nolint:gosec // offsets come from the hunk map and are checked by ReadAt
		if _, err := d.r.ReadAt(dst, int64(e.offset)); err != nil && err != io.EOF {
			return nil, fmt.Errorf("read hunk %d: %w", i, err)
		}
		return dst, nil
	case hunkMini:
		for off := 0; off < len(dst); off += 8 {
			for b := 0; b < 8 && off+b < len(dst); b++ {
				dst[off+b] = byte(e.offset >> (56 - 8*b))
			}
		}
		return dst, nil
	case hunkSelf:
		if depth >= maxSelfRefs {
			return nil, fmt.Errorf("%w: self reference chain at hunk %d", ErrInvalidHunk, i)
		}
		return d.readHunk(int(e.offset), depth+1) //nolint:gosec // validated by readHunk
	case hunkParent:
		return nil, fmt.Errorf("%w: hunk %d", ErrParentRequired, i)
	default:
		dec := d.decoders[e.kind]
		if dec == nil {
			return nil, fmt.Errorf("%w: hunk %d uses codec slot %d", ErrUnsupportedCodec, i, e.kind)
		}
		src := make([]byte, e.length)
		//nolint:gosec // offsets come from the hunk map and are checked by ReadAt
		if _, err := d.r.ReadAt(src, int64(e.offset)); err != nil && err != io.EOF {
			return nil, fmt.Errorf("read hunk %d: %w", i, err)
		}
		if err := dec.decode(dst, src); err != nil {
			return nil, fmt.Errorf("hunk %d: %w", i, err)
		}
		return dst, nil
	}
}

// Reader streams the image from the first hunk. CD images yield raw 2352
// byte sectors with subcode removed; other images yield their logical bytes.
func (d *Disc) Reader() io.Reader {
	return &hunkStream{disc: d, remaining: d.logicalSize()}
}

func (d *Disc) logicalSize() int64 {
	//nolint:gosec // LogicalBytes bounded by MaxNumHunks * MaxHunkBytes
	size := int64(d.header.LogicalBytes)
	if d.header.IsCD() {
		size = size / cdFrameSize * cdSectorSize
	}
	return size
}

type hunkStream struct {
	disc      *Disc
	buf       []byte
	next      int
	remaining int64
}

func (s *hunkStream) Read(p []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}
	if len(s.buf) == 0 {
		if s.next >= s.disc.NumHunks() {
			return 0, io.EOF
		}
		hunk, err := s.disc.ReadHunk(s.next)
		if err != nil {
			return 0, err
		}
		s.next++
		s.buf = s.disc.sectorData(hunk)
	}

	n := copy(p, s.buf)
	if int64(n) > s.remaining {
		n = int(s.remaining)
	}
	s.buf = s.buf[n:]
	s.remaining -= int64(n)
	return n, nil
}

// sectorData drops the subcode of each frame in a CD hunk.
func (d *Disc) sectorData(hunk []byte) []byte {
	if !d.header.IsCD() {
		return hunk
	}
	out := make([]byte, 0, len(hunk)/cdFrameSize*cdSectorSize)
	for off := 0; off+cdFrameSize <= len(hunk); off += cdFrameSize {
		out = append(out, hunk[off:off+cdSectorSize]...)
	}
	return out
}
