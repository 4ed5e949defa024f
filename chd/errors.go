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

import "errors"

// Allocation limits guarding against hostile images.
const (
	// MaxCompMapLen is the largest compressed V5 map accepted (100MB).
	MaxCompMapLen = 100 * 1024 * 1024

	// MaxNumHunks is the largest hunk count accepted (~200GB of CD data).
	MaxNumHunks = 10_000_000

	// MaxHunkBytes is the largest hunk accepted.
	MaxHunkBytes = 16 * 1024 * 1024
)

// Errors returned while parsing or decoding a CHD image.
var (
	ErrInvalidMagic       = errors.New("invalid CHD magic: expected MComprHD")
	ErrInvalidHeader      = errors.New("invalid CHD header")
	ErrUnsupportedVersion = errors.New("unsupported CHD version")
	ErrUnsupportedCodec   = errors.New("unsupported compression codec")
	ErrInvalidHunk        = errors.New("invalid hunk index")
	ErrDecompressFailed   = errors.New("decompression failed")
	ErrParentRequired     = errors.New("hunk stored in parent CHD")
)
