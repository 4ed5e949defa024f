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
	"fmt"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaDecoder handles headerless LZMA hunks. The encoder settings are fixed
// (lc=3, lp=0, pb=2) and the dictionary is sized from the hunk length, so a
// classic .lzma header is synthesized in front of the data.
type lzmaDecoder struct {
	dictSize uint32
}

const lzmaProps = 3 + 0*9 + 2*45 // lc + lp*9 + pb*45

func (d *lzmaDecoder) decode(dst, src []byte) error {
	header := make([]byte, 13)
	header[0] = lzmaProps
	binary.LittleEndian.PutUint32(header[1:5], d.dictSize)
	binary.LittleEndian.PutUint64(header[5:13], uint64(len(dst)))

	lr, err := lzma.NewReader(bytes.NewReader(append(header, src...)))
	if err != nil {
		return fmt.Errorf("%w: lzma: %w", ErrDecompressFailed, err)
	}
	return readInto(lr, dst, "lzma")
}

// lzmaDictSize mirrors the LZMA SDK's property normalization for a given
// input size: the smallest 2<<i or 3<<i that holds it.
func lzmaDictSize(size uint32) uint32 {
	for i := uint32(11); i <= 30; i++ {
		if size <= 2<<i {
			return 2 << i
		}
		if size <= 3<<i {
			return 3 << i
		}
	}
	return 1 << 26
}
