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
	"regexp"
	"strings"

	"github.com/ZaparooProject/go-gamelib/internal/binary"
)

// Sega CD header layout, relative to the start of a raw track image.
const (
	segaCDSerialOffset = 0x193
	segaCDSerialSize   = 16
	segaCDRegionOffset = 0x200

	// segaCDEuropeRegion marks PAL releases, whose serials carry a "-50"
	// suffix regardless of what the header says.
	segaCDEuropeRegion = 'E'
	segaCDEuropeSuffix = "50"
	// segaCDNoSuffix is printed on discs that have no suffix.
	segaCDNoSuffix = "00"
)

var segaCDSerialRegex = regexp.MustCompile(`([A-Z]+)?-?([0-9]+) ?-?([0-9]*)`)

// segaCDInfo reads the serial and region byte of a Sega CD header.
func segaCDInfo(header []byte) DiskInfo {
	raw := binary.SliceAt(header, segaCDSerialOffset, segaCDSerialSize)
	region := binary.SliceAt(header, segaCDRegionOffset, 1)
	if raw == nil || region == nil {
		return DiskInfo{System: SystemSegaCD}
	}
	return DiskInfo{
		Serial: SegaCDSerial(binary.ASCII(raw), region[0]),
		System: SystemSegaCD,
	}
}

// SegaCDSerial builds the canonical serial from the raw header field and
// region byte: "MK-4407 -00" becomes "MK-4407", or "MK-4407-50" for a
// European disc.
func SegaCDSerial(raw string, region byte) string {
	var prefix, number, suffix string
	if m := segaCDSerialRegex.FindStringSubmatch(raw); m != nil {
		prefix, number, suffix = m[1], m[2], m[3]
	}

	if region == segaCDEuropeRegion {
		suffix = segaCDEuropeSuffix
	}
	if suffix == segaCDNoSuffix {
		suffix = ""
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, number, suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
