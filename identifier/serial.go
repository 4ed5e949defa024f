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
	"bytes"
	"io"
	"regexp"
	"slices"

	"github.com/ZaparooProject/go-gamelib/internal/binary"
)

const (
	// SerialWindowSize is the window length used when searching for serials.
	SerialWindowSize = 8 * 1024

	// playStationSerialSize is the longest raw PlayStation serial, such as
	// "SLUS_007.19;".
	playStationSerialSize = 12
)

// Normalizer turns a raw candidate into a canonical serial. It reports false
// when the candidate is not a serial.
type Normalizer func(raw string) (string, bool)

// FindSerial searches header for the first serial starting with one of
// prefixes. For every occurrence, in order of byte offset, resultSize bytes
// are decoded as ASCII and passed to normalize; the first accepted candidate
// is returned.
func FindSerial(prefixes []string, header []byte, resultSize int, normalize Normalizer) (string, bool) {
	m, _ := searchSerial(bytes.NewReader(header), int64(len(header)), prefixes, resultSize, normalize)
	return m.serial, m.ok
}

type serialMatch struct {
	serial string
	prefix string
	ok     bool
}

type candidate struct {
	offset int
	prefix string
}

// searchSerial runs the windowed search over at most limit bytes of r.
// Candidates cut off by the end of a window are skipped: the window stride
// leaves room for resultSize bytes, so they reappear whole in the next window.
func searchSerial(r io.Reader, limit int64, prefixes []string, resultSize int, normalize Normalizer) (serialMatch, error) {
	needles := make([][]byte, len(prefixes))
	for i, p := range prefixes {
		needles[i] = []byte(p)
	}

	seq, errFn := binary.WindowsErr(r, SerialWindowSize, SerialWindowSize-resultSize, limit)
	for window := range seq {
		var found []candidate
		for i, needle := range needles {
			for _, off := range binary.IndexAll(window, needle) {
				found = append(found, candidate{offset: off, prefix: prefixes[i]})
			}
		}
		slices.SortStableFunc(found, func(a, b candidate) int { return a.offset - b.offset })

		for _, c := range found {
			raw := binary.SliceAt(window, int64(c.offset), resultSize)
			if raw == nil {
				continue
			}
			if serial, ok := normalize(binary.ASCII(raw)); ok {
				return serialMatch{serial: serial, prefix: c.prefix, ok: true}, nil
			}
		}
	}
	return serialMatch{}, errFn()
}

var (
	psSerialRegex       = regexp.MustCompile(`^([A-Z]+)-?([0-9]+)`)
	psSerialDottedRegex = regexp.MustCompile(`^([A-Z]+)_?([0-9]{3})\.([0-9]{2})`)
)

// NormalizePlayStation canonicalizes PlayStation style serials:
// "SCES00001" and "SCES-00001" become "SCES-00001", "SLUS_007.19" becomes
// "SLUS-00719". Already normalized serials are returned unchanged.
func NormalizePlayStation(raw string) (string, bool) {
	if m := psSerialRegex.FindStringSubmatch(raw); m != nil {
		return m[1] + "-" + m[2], true
	}
	if m := psSerialDottedRegex.FindStringSubmatch(raw); m != nil {
		return m[1] + "-" + m[2] + m[3], true
	}
	return "", false
}
