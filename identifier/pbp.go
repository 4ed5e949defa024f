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
	"fmt"
	"io"
	"slices"
)

// PBPHeaderSize is how much of an EBOOT.PBP is searched for a serial.
const PBPHeaderSize = 2 * 1024 * 1024

// identifyPBP searches a PBP container for PSX or PSP serials. The system is
// taken from the family of the prefix that matched.
func identifyPBP(r io.Reader, size int64) (DiskInfo, error) {
	if size >= 0 && size < PBPHeaderSize {
		return DiskInfo{}, nil
	}

	prefixes := make([]string, 0, len(pspPrefixes)+len(psxPrefixes))
	prefixes = append(prefixes, pspPrefixes...)
	prefixes = append(prefixes, psxPrefixes...)

	m, err := searchSerial(r, PBPHeaderSize, prefixes, playStationSerialSize, NormalizePlayStation)
	if err != nil {
		return DiskInfo{}, fmt.Errorf("search PBP serial: %w", err)
	}
	if !m.ok {
		return DiskInfo{}, nil
	}

	info := DiskInfo{Serial: m.serial}
	switch {
	case slices.Contains(psxPrefixes, m.prefix):
		info.System = SystemPSX
	case slices.Contains(pspPrefixes, m.prefix):
		info.System = SystemPSP
	}
	return info, nil
}
