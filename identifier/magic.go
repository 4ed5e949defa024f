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

import "github.com/ZaparooProject/go-gamelib/internal/binary"

// MagicNumber is a byte pattern expected at a fixed offset of an image.
type MagicNumber struct {
	Pattern []byte
	Offset  int64
	System  System
}

// MagicNumbers is the disc detection table. Order matters: the first entry
// that matches wins. PSX is listed before PSP because both place their volume
// marker at 0x8008.
var MagicNumbers = []MagicNumber{
	{Offset: 0x0010, Pattern: []byte("SEGADISCSYSTEM"), System: SystemSegaCD},
	{Offset: 0x8008, Pattern: []byte("PLAYSTATION"), System: SystemPSX},
	{Offset: 0x9320, Pattern: []byte("PLAYSTATION"), System: SystemPSX},
	{Offset: 0x8008, Pattern: []byte("PSP GAME"), System: SystemPSP},
}

// DetectSystem returns the system of the first entry in table whose pattern
// is found in header at the entry's offset, or SystemUnknown.
func DetectSystem(header []byte, table []MagicNumber) System {
	for _, m := range table {
		if binary.HasPatternAt(header, m.Offset, m.Pattern) {
			return m.System
		}
	}
	return SystemUnknown
}
