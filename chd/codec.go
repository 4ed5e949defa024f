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
	"fmt"
)

// Codec tags are four ASCII characters packed big-endian.
const (
	CodecNone   uint32 = 0
	CodecZlib   uint32 = 0x7a6c6962 // "zlib"
	CodecLZMA   uint32 = 0x6c7a6d61 // "lzma"
	CodecHuff   uint32 = 0x68756666 // "huff"
	CodecFLAC   uint32 = 0x666c6163 // "flac"
	CodecZstd   uint32 = 0x7a737464 // "zstd"
	CodecCDZlib uint32 = 0x63647a6c // "cdzl"
	CodecCDLZMA uint32 = 0x63646c7a // "cdlz"
	CodecCDFLAC uint32 = 0x6364666c // "cdfl"
	CodecCDZstd uint32 = 0x63647a73 // "cdzs"
)

// CD frame geometry.
const (
	cdSectorSize  = 2352
	cdSubcodeSize = 96
	cdFrameSize   = cdSectorSize + cdSubcodeSize
)

var cdSyncHeader = [12]byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// decoder expands one compressed hunk. dst has the exact decompressed size;
// a decoder that produces less leaves the tail zeroed.
type decoder interface {
	decode(dst, src []byte) error
}

// CodecName renders a codec tag as its four character name.
func CodecName(tag uint32) string {
	if tag == CodecNone {
		return "none"
	}
	return string([]byte{byte(tag >> 24), byte(tag >> 16), byte(tag >> 8), byte(tag)})
}

// newDecoder builds the decoder for a V5 codec tag.
func newDecoder(tag, hunkBytes uint32) (decoder, error) {
	frames := int(hunkBytes / cdFrameSize)
	sectorBytes := uint32(frames * cdSectorSize) //nolint:gosec // bounded by MaxHunkBytes

	switch tag {
	case CodecZlib:
		return deflateDecoder{}, nil
	case CodecLZMA:
		return &lzmaDecoder{dictSize: lzmaDictSize(hunkBytes)}, nil
	case CodecZstd:
		return &zstdDecoder{}, nil
	case CodecFLAC:
		return &flacDecoder{blockSize: flacBlockSize(hunkBytes, 2048)}, nil
	case CodecCDZlib:
		return &cdDecoder{base: deflateDecoder{}, subcode: deflateDecoder{}}, nil
	case CodecCDLZMA:
		return &cdDecoder{base: &lzmaDecoder{dictSize: lzmaDictSize(sectorBytes)}, subcode: deflateDecoder{}}, nil
	case CodecCDZstd:
		return &cdDecoder{base: &zstdDecoder{}, subcode: &zstdDecoder{}}, nil
	case CodecCDFLAC:
		return &cdFLACDecoder{blockSize: flacBlockSize(sectorBytes, cdSectorSize)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, CodecName(tag))
	}
}

// cdDecoder handles the CD codecs that pair a base codec for sector data
// with a second codec for subcode. The compressed hunk starts with a bitmap
// of frames whose sync header and ECC were stripped, followed by the length
// of the base stream in 2 bytes (3 for hunks of 64KiB or more).
type cdDecoder struct {
	base    decoder
	subcode decoder
}

func (d *cdDecoder) decode(dst, src []byte) error {
	frames := len(dst) / cdFrameSize
	eccBytes := (frames + 7) / 8
	lenBytes := 2
	if len(dst) >= 65536 {
		lenBytes = 3
	}
	start := eccBytes + lenBytes
	if len(src) < start {
		return fmt.Errorf("%w: CD hunk header truncated", ErrDecompressFailed)
	}

	baseLen := 0
	for _, b := range src[eccBytes:start] {
		baseLen = baseLen<<8 | int(b)
	}
	if start+baseLen > len(src) {
		return fmt.Errorf("%w: CD base length %d exceeds hunk", ErrDecompressFailed, baseLen)
	}

	sectors := make([]byte, frames*cdSectorSize)
	if err := d.base.decode(sectors, src[start:start+baseLen]); err != nil {
		return err
	}
	subcode := make([]byte, frames*cdSubcodeSize)
	if rest := src[start+baseLen:]; len(rest) > 0 {
		// Subcode is never needed to read data sectors; a damaged stream
		// leaves it zeroed.
		_ = d.subcode.decode(subcode, rest)
	}

	interleaveFrames(dst, sectors, subcode, src[:eccBytes])
	return nil
}

// interleaveFrames lays sectors and subcode out as consecutive frames,
// restoring the sync header of frames flagged in ecc. ECC bytes themselves
// are not regenerated.
func interleaveFrames(dst, sectors, subcode, ecc []byte) {
	for i := 0; (i+1)*cdFrameSize <= len(dst); i++ {
		frame := dst[i*cdFrameSize : (i+1)*cdFrameSize]
		copy(frame[:cdSectorSize], sectors[i*cdSectorSize:])
		copy(frame[cdSectorSize:], subcode[i*cdSubcodeSize:])
		if ecc != nil && ecc[i/8]&(1<<(i%8)) != 0 {
			copy(frame, cdSyncHeader[:])
		}
	}
}
