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

// Package identifier recovers a system tag and serial from game images by
// sniffing their headers.
//
// Dispatch is by file extension. Disc images are matched against an ordered
// table of magic numbers and then handed to a per-system serial extractor.
// Identification never fails because a serial could not be parsed: the result
// simply carries the detected system with an empty serial.
package identifier

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-gamelib/internal/binary"
)

// System identifies a console platform.
type System string

// Supported systems. The zero value means the system is unknown.
const (
	SystemUnknown System = ""
	System3DS     System = "3DS"
	SystemPSP     System = "PSP"
	SystemPSX     System = "PSX"
	SystemSegaCD  System = "SegaCD"
)

// AllSystems lists every system identification can report.
var AllSystems = []System{
	System3DS,
	SystemPSP,
	SystemPSX,
	SystemSegaCD,
}

// ParseSystem converts a case-insensitive system name to a System.
func ParseSystem(s string) (System, error) {
	for _, sys := range AllSystems {
		if strings.EqualFold(string(sys), s) {
			return sys, nil
		}
	}
	return SystemUnknown, fmt.Errorf("unknown system: %s", s)
}

// HeaderSize is the number of leading bytes read from a disc image for
// magic number detection and serial search.
const HeaderSize = 64 * 1024

// DiskInfo is the outcome of identification. Empty fields are unknown; a
// known System with an empty Serial is a valid result.
type DiskInfo struct {
	Serial string
	System System
}

// Known reports whether anything was identified.
func (d DiskInfo) Known() bool {
	return d.System != SystemUnknown || d.Serial != ""
}

// Identify inspects the image read from r. name is only used for its
// extension; size is the full length of the image, or -1 when unknown.
//
// Unrecognized extensions return an empty DiskInfo without touching r. The
// error is non-nil only when reading r fails.
func Identify(name string, r io.Reader, size int64) (DiskInfo, error) {
	switch Extension(name) {
	case "iso", "bin", "img":
		return identifyDisc(r)
	case "pbp":
		return identifyPBP(r, size)
	case "3ds":
		return identify3DS(r)
	case "chd":
		return identifyCHD(r, size)
	default:
		return DiskInfo{}, nil
	}
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// identifyDisc is the generic disc path shared by raw images and the
// decompressed head of CHD images.
func identifyDisc(r io.Reader) (DiskInfo, error) {
	header, err := binary.ReadHeader(r, HeaderSize)
	if err != nil {
		return DiskInfo{}, err
	}
	return identifyDiscHeader(header), nil
}

func identifyDiscHeader(header []byte) DiskInfo {
	system := DetectSystem(header, MagicNumbers)
	switch system {
	case SystemSegaCD:
		return segaCDInfo(header)
	case SystemPSX:
		return playStationInfo(header, SystemPSX, psxPrefixes)
	case SystemPSP:
		return playStationInfo(header, SystemPSP, pspPrefixes)
	default:
		return DiskInfo{System: system}
	}
}
