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
	"testing"
)

func TestSegaCDSerialRegionOverride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    []byte
		want   string
		region byte
	}{
		{name: "europe forces 50", raw: []byte("MK-4407 -00     "), region: 'E', want: "MK-4407-50"},
		{name: "europe replaces suffix", raw: []byte("MK-4407 -01     "), region: 'E', want: "MK-4407-50"},
		{name: "00 dropped outside europe", raw: []byte("MK-4407 -00     "), region: 'U', want: "MK-4407"},
		{name: "other suffix kept", raw: []byte("T-127015-01     "), region: 'J', want: "T-127015-01"},
		{name: "no suffix", raw: []byte("G-6014          "), region: 'J', want: "G-6014"},
		{name: "no prefix", raw: []byte("4407 -00        "), region: 'U', want: "4407"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SegaCDSerial(string(tt.raw), tt.region); got != tt.want {
				t.Errorf("SegaCDSerial(%q, %q) = %q, want %q", tt.raw, tt.region, got, tt.want)
			}
		})
	}
}

// segaCDHeader lays out the fields read from a raw Sega CD track.
func segaCDHeader(serial string, region byte) []byte {
	header := make([]byte, 0x300)
	copy(header[0x10:], "SEGADISCSYSTEM  ")
	copy(header[0x100:], "SEGA MEGA CD    ")
	copy(header[segaCDSerialOffset:], serial)
	header[segaCDRegionOffset] = region
	return header
}

func TestIdentifySegaCD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   DiskInfo
	}{
		{
			name:   "europe",
			header: segaCDHeader("MK-4407 -00", 'E'),
			want:   DiskInfo{Serial: "MK-4407-50", System: SystemSegaCD},
		},
		{
			name:   "usa",
			header: segaCDHeader("MK-4407 -00", 'U'),
			want:   DiskInfo{Serial: "MK-4407", System: SystemSegaCD},
		},
		{
			name:   "header ends before region byte",
			header: segaCDHeader("MK-4407 -00", 'U')[:0x1A0],
			want:   DiskInfo{System: SystemSegaCD},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Identify("sonic.bin", bytes.NewReader(tt.header), int64(len(tt.header)))
			if err != nil {
				t.Fatalf("Identify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Identify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
