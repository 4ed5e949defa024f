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

// Package binary provides byte-level helpers shared by the identifiers and
// container readers: bounded header reads, pattern matching at fixed offsets,
// ASCII decoding, and a sliding window scanner over forward-only streams.
package binary

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadHeader reads up to n bytes from the start of r.
// A stream shorter than n yields a short header, not an error.
func ReadHeader(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return buf[:got], nil
}

// HasPatternAt reports whether buf holds pattern at offset.
// Offsets outside buf never match.
func HasPatternAt(buf []byte, offset int64, pattern []byte) bool {
	if offset < 0 || len(pattern) == 0 {
		return false
	}
	end := offset + int64(len(pattern))
	if end > int64(len(buf)) {
		return false
	}
	for i, c := range pattern {
		if buf[offset+int64(i)] != c {
			return false
		}
	}
	return true
}

// SliceAt returns n bytes of buf starting at offset, or nil when the range
// does not fit.
func SliceAt(buf []byte, offset int64, n int) []byte {
	if offset < 0 || n < 0 || offset+int64(n) > int64(len(buf)) {
		return nil
	}
	return buf[offset : offset+int64(n)]
}

// ASCII decodes b as US-ASCII. Bytes above 0x7F become '?'.
func ASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c > 0x7F {
			sb.WriteByte('?')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// CleanString converts bytes to a string, cutting at the first NUL and
// trimming surrounding whitespace.
func CleanString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return strings.TrimSpace(ASCII(b))
}

// IndexAll returns every offset at which needle occurs in haystack,
// overlapping matches included.
func IndexAll(haystack, needle []byte) []int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return nil
	}
	var hits []int
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i] == needle[0] && HasPatternAt(haystack, int64(i), needle) {
			hits = append(hits, i)
		}
	}
	return hits
}
