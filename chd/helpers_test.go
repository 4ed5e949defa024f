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
	"testing"

	"github.com/klauspost/compress/flate"
)

// bitWriter packs MSB-first bit fields, the inverse of bitReader.
type bitWriter struct {
	buf   []byte
	acc   uint64
	nbits uint
}

func (w *bitWriter) write(v uint32, n uint) {
	w.acc = w.acc<<n | uint64(v)&(uint64(1)<<n-1)
	w.nbits += n
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.acc>>(w.nbits-8)))
		w.nbits -= 8
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		return append(w.buf, byte(w.acc<<(8-w.nbits)))
	}
	return w.buf
}

// writeFlatTree emits a 16 symbol map tree in which every code is 4 bits,
// so symbol s is coded as the nibble s.
func writeFlatTree(w *bitWriter) {
	w.write(1, 4)  // escape
	w.write(4, 4)  // length
	w.write(13, 4) // run of 16
}

func deflateBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}
	return buf.Bytes()
}

func fill(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%251)
	}
	return b
}

type v5Fields struct {
	compressors [4]uint32
	logical     uint64
	mapOffset   uint64
	hunkBytes   uint32
	unitBytes   uint32
}

func v5Header(f v5Fields) []byte {
	h := make([]byte, headerSizeV5)
	copy(h, chdMagic[:])
	binary.BigEndian.PutUint32(h[8:], headerSizeV5)
	binary.BigEndian.PutUint32(h[12:], 5)
	for i, c := range f.compressors {
		binary.BigEndian.PutUint32(h[0x10+4*i:], c)
	}
	binary.BigEndian.PutUint64(h[0x20:], f.logical)
	binary.BigEndian.PutUint64(h[0x28:], f.mapOffset)
	binary.BigEndian.PutUint32(h[0x38:], f.hunkBytes)
	binary.BigEndian.PutUint32(h[0x3C:], f.unitBytes)
	return h
}

// buildRawCDImage lays out an uncompressed V5 CD image whose second hunk
// was never written.
func buildRawCDImage(hunks [][]byte) []byte {
	const hunkBytes = 2 * cdFrameSize
	img := v5Header(v5Fields{
		logical:   uint64(len(hunks)) * hunkBytes,
		mapOffset: headerSizeV5,
		hunkBytes: hunkBytes,
		unitBytes: cdFrameSize,
	})
	mapBytes := make([]byte, 4*len(hunks))
	img = append(img, mapBytes...)

	block := uint32(1)
	for i, hunk := range hunks {
		if hunk == nil {
			continue
		}
		for len(img) < int(block)*hunkBytes {
			img = append(img, 0)
		}
		binary.BigEndian.PutUint32(img[headerSizeV5+4*i:], block)
		img = append(img, hunk...)
		block++
	}
	return img
}

type v4Entry struct {
	data   []byte
	mini   uint64
	self   uint64
	kind   byte
}

// buildV4Image lays out a zlib compressed V4 image.
func buildV4Image(hunkBytes uint32, entries []v4Entry) []byte {
	img := make([]byte, headerSizeV4)
	copy(img, chdMagic[:])
	binary.BigEndian.PutUint32(img[8:], headerSizeV4)
	binary.BigEndian.PutUint32(img[12:], 4)
	binary.BigEndian.PutUint32(img[0x14:], v4CompressionZlib)
	binary.BigEndian.PutUint32(img[0x18:], uint32(len(entries)))
	binary.BigEndian.PutUint64(img[0x1C:], uint64(len(entries))*uint64(hunkBytes))
	binary.BigEndian.PutUint32(img[0x2C:], hunkBytes)

	mapStart := len(img)
	img = append(img, make([]byte, 16*len(entries))...)
	for i, e := range entries {
		m := img[mapStart+16*i : mapStart+16*(i+1)]
		m[15] = e.kind
		switch e.kind {
		case v4EntryMini:
			binary.BigEndian.PutUint64(m, e.mini)
		case v4EntrySelf:
			binary.BigEndian.PutUint64(m, e.self)
		default:
			binary.BigEndian.PutUint64(m, uint64(len(img)))
			binary.BigEndian.PutUint16(m[12:], uint16(len(e.data)))
			m[14] = byte(len(e.data) >> 16)
			img = append(img, e.data...)
		}
	}
	return img
}
