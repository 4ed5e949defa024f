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

// psxPrefixes are the product code prefixes printed on PlayStation discs.
var psxPrefixes = []string{
	"CPCS", "SCES", "SIPS", "SLKA", "SLPS", "SLUS", "ESPM", "SLED", "SCPS",
	"SCAJ", "PAPX", "SLES", "HPS", "LSP", "SLPM", "SCUS", "SCED",
}

// pspPrefixes are the product code prefixes of PSP UMDs and PSN titles.
var pspPrefixes = []string{
	"ULES", "ULUS", "ULJS", "ULEM", "ULUM", "ULJM", "ULKS", "ULAS",
	"UCES", "UCUS", "UCJS", "UCAS",
	"NPEH", "NPUH", "NPJH", "NPEG", "NPEX", "NPUG", "NPJG", "NPJJ",
	"NPHG", "NPEZ", "NPUZ", "NPJZ", "NPUF", "NPUX",
}

// playStationInfo extracts the serial of a PSX or PSP disc from its header.
// Headers shorter than HeaderSize are not searched.
func playStationInfo(header []byte, system System, prefixes []string) DiskInfo {
	if len(header) < HeaderSize {
		return DiskInfo{System: system}
	}
	serial, ok := FindSerial(prefixes, header, playStationSerialSize, NormalizePlayStation)
	if !ok {
		return DiskInfo{System: system}
	}
	return DiskInfo{Serial: serial, System: system}
}
