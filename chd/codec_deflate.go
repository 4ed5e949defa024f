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
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateDecoder handles "zlib" hunks, which are raw deflate streams
// without a zlib wrapper.
type deflateDecoder struct{}

func (deflateDecoder) decode(dst, src []byte) error {
	fr := flate.NewReader(bytes.NewReader(src))
	defer func() { _ = fr.Close() }()
	return readInto(fr, dst, "deflate")
}

// readInto fills dst from r, accepting a stream that ends early.
func readInto(r io.Reader, dst []byte, codec string) error {
	if _, err := io.ReadFull(r, dst); err != nil &&
		!errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrDecompressFailed, codec, err)
	}
	return nil
}
