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
	"io"

	"github.com/ZaparooProject/go-gamelib/internal/binary"
)

// The 3DS product code sits at a fixed place in the NCCH partition header of
// a .3ds dump, so it is read directly instead of searched for.
const (
	n3dsSerialOffset = 0x1150
	n3dsSerialSize   = 10
)

func identify3DS(r io.Reader) (DiskInfo, error) {
	header, err := binary.ReadHeader(r, n3dsSerialOffset+n3dsSerialSize)
	if err != nil {
		return DiskInfo{}, err
	}
	raw := binary.SliceAt(header, n3dsSerialOffset, n3dsSerialSize)
	if raw == nil {
		return DiskInfo{System: System3DS}, nil
	}
	return DiskInfo{Serial: binary.CleanString(raw), System: System3DS}, nil
}
