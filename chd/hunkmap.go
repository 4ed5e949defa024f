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

// hunkKind says where a hunk's bytes live.
type hunkKind uint8

const (
	hunkCodec0 hunkKind = iota // compressed with Compressors[0..3]
	hunkCodec1
	hunkCodec2
	hunkCodec3
	hunkRaw    // stored uncompressed
	hunkSelf   // copy of another hunk, offset is its index
	hunkParent // stored in a parent image
	hunkZero   // never written, all zeros
	hunkMini   // 8 byte pattern repeated, held in offset
)

// V5 compressed map symbols beyond the plain kinds above.
const (
	v5RLESmall = 7
	v5RLELarge = 8
	v5Self0    = 9
	v5Self1    = 10
	v5ParSelf  = 11
	v5Par0     = 12
	v5Par1     = 13
)

// V3/V4 map entry types, held in the low nibble of the flags byte.
const (
	v4EntryCompressed   = 1
	v4EntryUncompressed = 2
	v4EntryMini         = 3
	v4EntrySelf         = 4
	v4EntryParent       = 5
)

type hunkEntry struct {
	offset uint64
	length uint32
	kind   hunkKind
}

func readMap(r io.ReaderAt, h *Header) ([]hunkEntry, error) {
	n := h.NumHunks()
	if n > MaxNumHunks {
		return nil, fmt.Errorf("%w: %d hunks", ErrInvalidHeader, n)
	}
	switch {
	case h.Version < 5:
		return readMapV4(r, h, n)
	case h.Compressed():
		return readMapV5(r, h, n)
	default:
		return readMapV5Raw(r, h, n)
	}
}

// readMapV4 decodes the fixed 16 byte entries of V3/V4 images.
func readMapV4(r io.ReaderAt, h *Header, n uint32) ([]hunkEntry, error) {
	const entrySize = 16
	raw := make([]byte, int(n)*entrySize)
	//nolint:gosec // MapOffset is the header length for V3/V4
	if _, err := r.ReadAt(raw, int64(h.MapOffset)); err != nil {
		return nil, fmt.Errorf("read V%d map: %w", h.Version, err)
	}

	entries := make([]hunkEntry, n)
	for i := range entries {
		e := raw[i*entrySize : (i+1)*entrySize]
		offset := binary.BigEndian.Uint64(e[0:8])
		length := uint32(binary.BigEndian.Uint16(e[12:14])) | uint32(e[14])<<16

		var kind hunkKind
		switch e[15] & 0x0F {
		case v4EntryCompressed:
			kind = hunkCodec0
		case v4EntryUncompressed:
			kind = hunkRaw
		case v4EntryMini:
			kind = hunkMini
		case v4EntrySelf:
			kind = hunkSelf
		case v4EntryParent:
			kind = hunkParent
		default:
			return nil, fmt.Errorf("%w: hunk %d has map type %d", ErrInvalidHeader, i, e[15]&0x0F)
		}
		entries[i] = hunkEntry{offset: offset, length: length, kind: kind}
	}
	return entries, nil
}

// readMapV5Raw decodes the map of an uncompressed V5 image: one big-endian
// uint32 per hunk giving its position in units of HunkBytes.
func readMapV5Raw(r io.ReaderAt, h *Header, n uint32) ([]hunkEntry, error) {
	raw := make([]byte, int(n)*4)
	//nolint:gosec // MapOffset comes from the header and is checked by ReadAt
	if _, err := r.ReadAt(raw, int64(h.MapOffset)); err != nil {
		return nil, fmt.Errorf("read V5 map: %w", err)
	}

	entries := make([]hunkEntry, n)
	for i := range entries {
		block := binary.BigEndian.Uint32(raw[i*4:])
		if block == 0 {
			entries[i] = hunkEntry{kind: hunkZero}
			continue
		}
		entries[i] = hunkEntry{
			offset: uint64(block) * uint64(h.HunkBytes),
			length: h.HunkBytes,
			kind:   hunkRaw,
		}
	}
	return entries, nil
}

// readMapV5 decodes a Huffman compressed V5 map. The 16 byte map header
// holds the compressed length, the file offset of the first hunk, a CRC and
// the bit widths of the length, self and parent fields.
func readMapV5(r io.ReaderAt, h *Header, n uint32) ([]hunkEntry, error) {
	mh := make([]byte, 16)
	//nolint:gosec // MapOffset comes from the header and is checked by ReadAt
	if _, err := r.ReadAt(mh, int64(h.MapOffset)); err != nil {
		return nil, fmt.Errorf("read V5 map header: %w", err)
	}

	compLen := binary.BigEndian.Uint32(mh[0:4])
	if compLen > MaxCompMapLen {
		return nil, fmt.Errorf("%w: compressed map of %d bytes", ErrInvalidHeader, compLen)
	}
	next := uint64(mh[4])<<40 | uint64(mh[5])<<32 | uint64(binary.BigEndian.Uint32(mh[6:10]))
	lengthBits, selfBits, parentBits := uint(mh[12]), uint(mh[13]), uint(mh[14])
	if lengthBits > 32 || selfBits > 32 || parentBits > 32 {
		return nil, fmt.Errorf("%w: map field widths %d/%d/%d", ErrInvalidHeader, lengthBits, selfBits, parentBits)
	}

	data := make([]byte, compLen)
	//nolint:gosec // see above
	if _, err := r.ReadAt(data, int64(h.MapOffset)+16); err != nil {
		return nil, fmt.Errorf("read V5 map: %w", err)
	}

	br := newBitReader(data)
	tree := newHuffman(16, 8)
	if err := tree.importRLE(br); err != nil {
		return nil, fmt.Errorf("%w: map tree: %w", ErrInvalidHeader, err)
	}

	kinds, err := decodeMapKinds(br, tree, n)
	if err != nil {
		return nil, err
	}

	unitsPerHunk := uint64(h.HunkBytes / h.UnitBytes)
	entries := make([]hunkEntry, n)
	var lastSelf, lastParent uint64
	for i, sym := range kinds {
		e := &entries[i]
		switch sym {
		case uint8(hunkCodec0), uint8(hunkCodec1), uint8(hunkCodec2), uint8(hunkCodec3):
			e.kind = hunkKind(sym)
			e.length = br.read(lengthBits)
			if e.length > MaxHunkBytes {
				return nil, fmt.Errorf("%w: hunk %d has compressed length %d", ErrInvalidHeader, i, e.length)
			}
			e.offset = next
			next += uint64(e.length)
			br.read(16) // crc16
		case uint8(hunkRaw):
			e.kind = hunkRaw
			e.length = h.HunkBytes
			e.offset = next
			next += uint64(e.length)
			br.read(16) // crc16
		case uint8(hunkSelf):
			lastSelf = uint64(br.read(selfBits))
			e.kind, e.offset = hunkSelf, lastSelf
		case uint8(hunkParent):
			lastParent = uint64(br.read(parentBits))
			e.kind, e.offset = hunkParent, lastParent
		case v5Self0:
			e.kind, e.offset = hunkSelf, lastSelf
		case v5Self1:
			lastSelf++
			e.kind, e.offset = hunkSelf, lastSelf
		case v5ParSelf:
			lastParent = uint64(i) * unitsPerHunk
			e.kind, e.offset = hunkParent, lastParent
		case v5Par0:
			e.kind, e.offset = hunkParent, lastParent
		case v5Par1:
			lastParent += unitsPerHunk
			e.kind, e.offset = hunkParent, lastParent
		default:
			return nil, fmt.Errorf("%w: hunk %d has map symbol %d", ErrInvalidHeader, i, sym)
		}
	}
	return entries, nil
}

// decodeMapKinds expands the run-length coded per-hunk symbols.
func decodeMapKinds(br *bitReader, tree *huffman, n uint32) ([]uint8, error) {
	kinds := make([]uint8, n)
	var last uint8
	repeat := 0
	for i := range kinds {
		if repeat > 0 {
			kinds[i] = last
			repeat--
			continue
		}
		sym, ok := tree.decode(br)
		if !ok {
			return nil, fmt.Errorf("%w: bad map code at hunk %d", ErrInvalidHeader, i)
		}
		switch sym {
		case v5RLESmall:
			s, _ := tree.decode(br)
			kinds[i] = last
			repeat = 2 + int(s)
		case v5RLELarge:
			hi, _ := tree.decode(br)
			lo, _ := tree.decode(br)
			kinds[i] = last
			repeat = 2 + 16 + int(hi)<<4 + int(lo)
		default:
			kinds[i] = sym
			last = sym
		}
	}
	return kinds, nil
}
