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

	"github.com/klauspost/compress/zstd"
)

// zstdDecoder handles "zstd" hunks and the zstd halves of "cdzs".
type zstdDecoder struct {
	dec *zstd.Decoder
}

func (d *zstdDecoder) decode(dst, src []byte) error {
	if d.dec == nil {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("%w: zstd init: %w", ErrDecompressFailed, err)
		}
		d.dec = dec
	}

	out, err := d.dec.DecodeAll(src, dst[:0])
	if err != nil {
		return fmt.Errorf("%w: zstd: %w", ErrDecompressFailed, err)
	}
	if len(out) > len(dst) {
		return fmt.Errorf("%w: zstd: %d bytes exceed hunk", ErrDecompressFailed, len(out))
	}
	copy(dst, out)
	return nil
}
