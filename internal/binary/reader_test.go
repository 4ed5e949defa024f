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

package binary

import "testing"

func TestHasPatternAt(t *testing.T) {
	t.Parallel()

	buf := []byte("xxPLAYSTATIONxx")

	tests := []struct {
		name    string
		pattern string
		offset  int64
		want    bool
	}{
		{"match", "PLAYSTATION", 2, true},
		{"wrong offset", "PLAYSTATION", 1, false},
		{"runs past end", "PLAYSTATIONxxx", 2, false},
		{"negative offset", "xx", -1, false},
		{"empty pattern", "", 0, false},
		{"offset past end", "x", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HasPatternAt(buf, tt.offset, []byte(tt.pattern)); got != tt.want {
				t.Errorf("HasPatternAt(%q, %d) = %v, want %v", tt.pattern, tt.offset, got, tt.want)
			}
		})
	}
}

func TestASCII(t *testing.T) {
	t.Parallel()

	if got := ASCII([]byte{'S', 'L', 0xE9, 'S'}); got != "SL?S" {
		t.Errorf("ASCII() = %q, want %q", got, "SL?S")
	}
}

func TestCleanString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("CTR-P-AXCE"), "CTR-P-AXCE"},
		{[]byte("ABC \x00\x00"), "ABC"},
		{[]byte("  AB\x00CD"), "AB"},
		{[]byte{}, ""},
	}

	for _, tt := range tests {
		if got := CleanString(tt.in); got != tt.want {
			t.Errorf("CleanString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIndexAll(t *testing.T) {
	t.Parallel()

	got := IndexAll([]byte("SLUSxxSLUSLUS"), []byte("SLUS"))
	want := []int{0, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("IndexAll() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IndexAll()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSliceAt(t *testing.T) {
	t.Parallel()

	buf := []byte("0123456789")
	if got := string(SliceAt(buf, 2, 3)); got != "234" {
		t.Errorf("SliceAt(2, 3) = %q, want %q", got, "234")
	}
	if got := SliceAt(buf, 8, 3); got != nil {
		t.Errorf("SliceAt(8, 3) = %q, want nil", got)
	}
}
