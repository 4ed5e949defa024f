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

package identifier

import (
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-gamelib/chd"
	"github.com/ZaparooProject/go-gamelib/internal/binary"
)

// ErrRandomAccess is returned when an image format needs an io.ReaderAt but
// was handed a plain stream.
var ErrRandomAccess = errors.New("identifier: format requires random access")

// NeedsRandomAccess reports whether Identify requires r to implement
// io.ReaderAt for files named name.
func NeedsRandomAccess(name string) bool {
	return Extension(name) == "chd"
}

// identifyCHD decompresses the first HeaderSize bytes of raw sectors and runs
// the generic disc path on them. Images that fail to parse are reported as
// unknown rather than as errors.
func identifyCHD(r io.Reader, size int64) (DiskInfo, error) {
	ra, ok := r.(io.ReaderAt)
	if !ok {
		return DiskInfo{}, ErrRandomAccess
	}

	disc, err := chd.Open(ra, size)
	if err != nil {
		return DiskInfo{}, nil //nolint:nilerr // not a CHD we can read
	}

	header, err := binary.ReadHeader(disc.Reader(), HeaderSize)
	if err != nil {
		if errors.Is(err, chd.ErrDecompressFailed) || errors.Is(err, chd.ErrUnsupportedCodec) ||
			errors.Is(err, chd.ErrParentRequired) {
			return DiskInfo{}, nil
		}
		return DiskInfo{}, fmt.Errorf("read CHD sectors: %w", err)
	}
	return identifyDiscHeader(header), nil
}
