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

package chd

import (
	"encoding/binary"
	"fmt"
	"io"
)

var chdMagic = [8]byte{'M', 'C', 'o', 'm', 'p', 'r', 'H', 'D'}

// Header sizes by version.
const (
	headerSizeV3 = 120
	headerSizeV4 = 108
	headerSizeV5 = 124
)

// V3/V4 compression types.
const (
	v4CompressionNone  = 0
	v4CompressionZlib  = 1
	v4CompressionZlibP = 2
)

// Header is the fixed part of a CHD file.
type Header struct {
	Compressors  [4]uint32 // V5 codec tags, zero when unused
	LogicalBytes uint64
	MapOffset    uint64
	MetaOffset   uint64
	Version      uint32
	Length       uint32
	HunkBytes    uint32
	UnitBytes    uint32
	TotalHunks   uint32
	Compression  uint32 // V3/V4 compression type
}

// field is one big-endian integer of a versioned header layout.
type field struct {
	dst    any
	offset int
}

func (h *Header) layout() []field {
	switch h.Version {
	case 3:
		return []field{
			{&h.Compression, 0x14},
			{&h.TotalHunks, 0x18},
			{&h.LogicalBytes, 0x1C},
			{&h.MetaOffset, 0x24},
			{&h.HunkBytes, 0x4C},
		}
	case 4:
		return []field{
			{&h.Compression, 0x14},
			{&h.TotalHunks, 0x18},
			{&h.LogicalBytes, 0x1C},
			{&h.MetaOffset, 0x24},
			{&h.HunkBytes, 0x2C},
		}
	default:
		return []field{
			{&h.Compressors[0], 0x10},
			{&h.Compressors[1], 0x14},
			{&h.Compressors[2], 0x18},
			{&h.Compressors[3], 0x1C},
			{&h.LogicalBytes, 0x20},
			{&h.MapOffset, 0x28},
			{&h.MetaOffset, 0x30},
			{&h.HunkBytes, 0x38},
			{&h.UnitBytes, 0x3C},
		}
	}
}

func readHeader(r io.ReaderAt) (*Header, error) {
	prefix := make([]byte, 16)
	if _, err := r.ReadAt(prefix, 0); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if [8]byte(prefix[:8]) != chdMagic {
		return nil, ErrInvalidMagic
	}

	h := &Header{
		Length:  binary.BigEndian.Uint32(prefix[8:12]),
		Version: binary.BigEndian.Uint32(prefix[12:16]),
	}

	var want uint32
	switch h.Version {
	case 3:
		want = headerSizeV3
	case 4:
		want = headerSizeV4
	case 5:
		want = headerSizeV5
	default:
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Length < want {
		return nil, fmt.Errorf("%w: V%d header of %d bytes", ErrInvalidHeader, h.Version, h.Length)
	}

	buf := make([]byte, want)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for _, f := range h.layout() {
		switch dst := f.dst.(type) {
		case *uint32:
			*dst = binary.BigEndian.Uint32(buf[f.offset:])
		case *uint64:
			*dst = binary.BigEndian.Uint64(buf[f.offset:])
		}
	}

	if h.Version < 5 {
		// V3/V4 maps follow the header; units are CD frames when hunks are
		// whole multiples of one.
		h.MapOffset = uint64(h.Length)
		if h.HunkBytes%cdFrameSize == 0 {
			h.UnitBytes = cdFrameSize
		} else {
			h.UnitBytes = h.HunkBytes
		}
	}

	if h.HunkBytes == 0 || h.HunkBytes > MaxHunkBytes {
		return nil, fmt.Errorf("%w: hunk size %d", ErrInvalidHeader, h.HunkBytes)
	}
	if h.UnitBytes == 0 || h.HunkBytes%h.UnitBytes != 0 {
		return nil, fmt.Errorf("%w: unit size %d", ErrInvalidHeader, h.UnitBytes)
	}
	return h, nil
}

// NumHunks returns the number of hunks covering LogicalBytes.
func (h *Header) NumHunks() uint32 {
	if h.TotalHunks > 0 {
		return h.TotalHunks
	}
	//nolint:gosec // bounded by MaxNumHunks check at map parse
	return uint32((h.LogicalBytes + uint64(h.HunkBytes) - 1) / uint64(h.HunkBytes))
}

// Compressed reports whether hunks may be stored compressed.
func (h *Header) Compressed() bool {
	if h.Version >= 5 {
		return h.Compressors[0] != CodecNone
	}
	return h.Compression != v4CompressionNone
}

// IsCD reports whether units are raw CD frames with subcode.
func (h *Header) IsCD() bool {
	return h.UnitBytes == cdFrameSize
}
