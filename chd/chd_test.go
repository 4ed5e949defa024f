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
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestOpenRejectsBadImages(t *testing.T) {
	t.Parallel()

	valid := buildRawCDImage([][]byte{fill(2*cdFrameSize, 1)})

	badVersion := bytes.Clone(valid)
	binary.BigEndian.PutUint32(badVersion[12:], 9)

	badHunk := bytes.Clone(valid)
	binary.BigEndian.PutUint32(badHunk[0x38:], 0)

	badUnit := bytes.Clone(valid)
	binary.BigEndian.PutUint32(badUnit[0x3C:], 1000)

	tests := []struct {
		want error
		name string
		data []byte
	}{
		{name: "magic", data: append([]byte("NotACHD!"), valid[8:]...), want: ErrInvalidMagic},
		{name: "version", data: badVersion, want: ErrUnsupportedVersion},
		{name: "hunk size", data: badHunk, want: ErrInvalidHeader},
		{name: "unit size", data: badUnit, want: ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Open(bytes.NewReader(tt.data), int64(len(tt.data)))
			if !errors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenMapBeyondFile(t *testing.T) {
	t.Parallel()

	img := buildRawCDImage([][]byte{fill(2*cdFrameSize, 1)})
	_, err := Open(bytes.NewReader(img), 64)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Open() error = %v, want ErrInvalidHeader", err)
	}
}

func TestRawCDImageReader(t *testing.T) {
	t.Parallel()

	first := fill(2*cdFrameSize, 7)
	third := fill(2*cdFrameSize, 90)
	img := buildRawCDImage([][]byte{first, nil, third})

	disc, err := Open(bytes.NewReader(img), int64(len(img)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !disc.Header().IsCD() {
		t.Fatal("IsCD() = false for 2448 byte units")
	}
	if disc.NumHunks() != 3 {
		t.Fatalf("NumHunks() = %d, want 3", disc.NumHunks())
	}

	got, err := io.ReadAll(disc.Reader())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	var want []byte
	for _, hunk := range [][]byte{first, make([]byte, 2*cdFrameSize), third} {
		want = append(want, hunk[:cdSectorSize]...)
		want = append(want, hunk[cdFrameSize:cdFrameSize+cdSectorSize]...)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Reader() returned %d bytes, want %d matching sector bytes", len(got), len(want))
	}
}

func TestV4ZlibImage(t *testing.T) {
	t.Parallel()

	const hunkBytes = 1000
	packed := fill(hunkBytes, 3)
	stored := fill(hunkBytes, 200)
	img := buildV4Image(hunkBytes, []v4Entry{
		{kind: v4EntryCompressed, data: deflateBytes(t, packed)},
		{kind: v4EntryUncompressed, data: stored},
		{kind: v4EntryMini, mini: 0x0102030405060708},
		{kind: v4EntrySelf, self: 0},
		{kind: v4EntryParent},
	})

	disc, err := Open(bytes.NewReader(img), int64(len(img)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if disc.Header().IsCD() {
		t.Error("IsCD() = true for 1000 byte hunks")
	}

	mini := make([]byte, hunkBytes)
	for i := range mini {
		mini[i] = byte(i%8) + 1
	}

	tests := []struct {
		name  string
		want  []byte
		index int
	}{
		{name: "compressed", index: 0, want: packed},
		{name: "uncompressed", index: 1, want: stored},
		{name: "mini", index: 2, want: mini},
		{name: "self", index: 3, want: packed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := disc.ReadHunk(tt.index)
			if err != nil {
				t.Fatalf("ReadHunk(%d) error = %v", tt.index, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ReadHunk(%d) content mismatch", tt.index)
			}
		})
	}

	if _, err := disc.ReadHunk(4); !errors.Is(err, ErrParentRequired) {
		t.Errorf("ReadHunk(parent) error = %v, want ErrParentRequired", err)
	}
	if _, err := disc.ReadHunk(5); !errors.Is(err, ErrInvalidHunk) {
		t.Errorf("ReadHunk(5) error = %v, want ErrInvalidHunk", err)
	}
}

func TestV5CompressedMap(t *testing.T) {
	t.Parallel()

	const hunkBytes = 1024
	packed := fill(hunkBytes, 11)
	stored := fill(hunkBytes, 150)
	compressed := deflateBytes(t, packed)

	var w bitWriter
	writeFlatTree(&w)
	for _, sym := range []uint32{uint32(hunkCodec0), uint32(hunkRaw), uint32(hunkSelf), v5Self0} {
		w.write(sym, 4)
	}
	w.write(uint32(len(compressed)), 24) // codec0 length
	w.write(0, 16)                       // codec0 crc
	w.write(0, 16)                       // raw crc
	w.write(0, 8)                        // self index
	mapData := w.bytes()

	mapOffset := uint64(headerSizeV5)
	dataStart := mapOffset + 16 + uint64(len(mapData))

	img := v5Header(v5Fields{
		compressors: [4]uint32{CodecZlib},
		logical:     4 * hunkBytes,
		mapOffset:   mapOffset,
		hunkBytes:   hunkBytes,
		unitBytes:   hunkBytes,
	})
	mh := make([]byte, 16)
	binary.BigEndian.PutUint32(mh[0:], uint32(len(mapData)))
	binary.BigEndian.PutUint32(mh[6:], uint32(dataStart))
	mh[12], mh[13], mh[14] = 24, 8, 8
	img = append(img, mh...)
	img = append(img, mapData...)
	img = append(img, compressed...)
	img = append(img, stored...)

	disc, err := Open(bytes.NewReader(img), int64(len(img)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := io.ReadAll(disc.Reader())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := bytes.Join([][]byte{packed, stored, packed, packed}, nil)
	if !bytes.Equal(got, want) {
		t.Errorf("Reader() returned %d bytes, want %d matching bytes", len(got), len(want))
	}
}

// v5MapImage builds a V5 image header followed by a compressed map with a
// single codec0 hunk of the given length.
func v5MapImage(length uint32, lengthBits uint8) []byte {
	var w bitWriter
	writeFlatTree(&w)
	w.write(uint32(hunkCodec0), 4)
	w.write(length, uint(min(lengthBits, 32)))
	w.write(0, 16) // crc
	mapData := w.bytes()

	mapOffset := uint64(headerSizeV5)
	img := v5Header(v5Fields{
		compressors: [4]uint32{CodecZlib},
		logical:     1024,
		mapOffset:   mapOffset,
		hunkBytes:   1024,
		unitBytes:   1024,
	})
	mh := make([]byte, 16)
	binary.BigEndian.PutUint32(mh[0:], uint32(len(mapData)))
	binary.BigEndian.PutUint32(mh[6:], uint32(mapOffset+16+uint64(len(mapData))))
	mh[12], mh[13], mh[14] = lengthBits, 8, 8
	img = append(img, mh...)
	return append(img, mapData...)
}

func TestV5MapRejectsOversizedHunks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		length     uint32
		lengthBits uint8
	}{
		{name: "length above hunk limit", length: 0xFFFFFFFF, lengthBits: 32},
		{name: "length just above hunk limit", length: MaxHunkBytes + 1, lengthBits: 25},
		{name: "field wider than 32 bits", length: 1, lengthBits: 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img := v5MapImage(tt.length, tt.lengthBits)
			_, err := Open(bytes.NewReader(img), int64(len(img)))
			if !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("Open() error = %v, want ErrInvalidHeader", err)
			}
		})
	}
}

func TestDecodeMapKindsRunLength(t *testing.T) {
	t.Parallel()

	var w bitWriter
	writeFlatTree(&w)
	w.write(uint32(hunkRaw), 4)
	w.write(v5RLESmall, 4)
	w.write(3, 4) // repeat 2+3 more
	w.write(uint32(hunkCodec1), 4)

	br := newBitReader(w.bytes())
	tree := newHuffman(16, 8)
	if err := tree.importRLE(br); err != nil {
		t.Fatalf("importRLE() error = %v", err)
	}

	kinds, err := decodeMapKinds(br, tree, 8)
	if err != nil {
		t.Fatalf("decodeMapKinds() error = %v", err)
	}
	want := []uint8{4, 4, 4, 4, 4, 4, 4, 1}
	if !bytes.Equal(kinds, want) {
		t.Errorf("decodeMapKinds() = %v, want %v", kinds, want)
	}
}
