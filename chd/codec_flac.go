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
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// CHD stores FLAC frames without the stream header; the decoder is primed
// with a STREAMINFO block for 16-bit stereo at 44.1kHz.
func flacStreamHeader(blockSize uint16) []byte {
	h := make([]byte, 42)
	copy(h, "fLaC")
	h[4] = 0x80 // last metadata block, type STREAMINFO
	h[7] = 34
	binary.BigEndian.PutUint16(h[8:], blockSize)
	binary.BigEndian.PutUint16(h[10:], blockSize)
	// 20 bits sample rate, 3 bits channels-1, 5 bits bits-per-sample-1,
	// 36 bits sample count (unknown).
	binary.BigEndian.PutUint64(h[18:], uint64(44100)<<44|uint64(1)<<41|uint64(15)<<36)
	return h
}

// flacBlockSize is a quarter of the input halved until it fits max.
func flacBlockSize(size, maxSize uint32) uint16 {
	bs := size / 4
	for bs > maxSize {
		bs /= 2
	}
	return uint16(bs) //nolint:gosec // bs <= maxSize <= 2352
}

// decodeFLAC writes interleaved 16-bit samples of the stream into dst.
func decodeFLAC(blockSize uint16, data, dst []byte, bigEndian bool) error {
	stream, err := flac.New(io.MultiReader(bytes.NewReader(flacStreamHeader(blockSize)), bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("%w: flac: %w", ErrDecompressFailed, err)
	}
	defer func() { _ = stream.Close() }()

	order := binary.ByteOrder(binary.LittleEndian)
	if bigEndian {
		order = binary.BigEndian
	}

	off := 0
	for off < len(dst) {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: flac frame: %w", ErrDecompressFailed, err)
		}
		if len(f.Subframes) < 2 {
			return fmt.Errorf("%w: flac: %d channels", ErrDecompressFailed, len(f.Subframes))
		}
		for i := 0; i < f.Subframes[0].NSamples && off+4 <= len(dst); i++ {
			order.PutUint16(dst[off:], uint16(f.Subframes[0].Samples[i]))   //nolint:gosec // 16-bit samples
			order.PutUint16(dst[off+2:], uint16(f.Subframes[1].Samples[i])) //nolint:gosec // 16-bit samples
			off += 4
		}
	}
	return nil
}

// flacDecoder handles "flac" hunks, whose first byte selects the sample
// byte order.
type flacDecoder struct {
	blockSize uint16
}

func (d *flacDecoder) decode(dst, src []byte) error {
	if len(src) == 0 {
		return fmt.Errorf("%w: flac: empty hunk", ErrDecompressFailed)
	}
	var bigEndian bool
	switch src[0] {
	case 'B':
		bigEndian = true
	case 'L':
	default:
		return fmt.Errorf("%w: flac: bad byte order marker %#x", ErrDecompressFailed, src[0])
	}
	return decodeFLAC(d.blockSize, src[1:], dst, bigEndian)
}

// cdFLACDecoder handles "cdfl" hunks: audio sectors in FLAC followed by
// deflated subcode. The FLAC decoder reads ahead, so the subcode boundary is
// unknown and subcode is left zeroed.
type cdFLACDecoder struct {
	blockSize uint16
}

func (d *cdFLACDecoder) decode(dst, src []byte) error {
	frames := len(dst) / cdFrameSize
	sectors := make([]byte, frames*cdSectorSize)
	if err := decodeFLAC(d.blockSize, src, sectors, true); err != nil {
		return err
	}
	interleaveFrames(dst, sectors, make([]byte, frames*cdSubcodeSize), nil)
	return nil
}
