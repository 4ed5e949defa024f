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

package chd

import "testing"

func TestBitReader(t *testing.T) {
	t.Parallel()

	br := newBitReader([]byte{0b1011_0010, 0xFF})
	if got := br.read(1); got != 1 {
		t.Errorf("read(1) = %d, want 1", got)
	}
	if got := br.peek(3); got != 0b011 {
		t.Errorf("peek(3) = %03b, want 011", got)
	}
	if got := br.read(7); got != 0b0110010 {
		t.Errorf("read(7) = %07b, want 0110010", got)
	}
	if got := br.read(8); got != 0xFF {
		t.Errorf("read(8) = %#x, want 0xff", got)
	}
	if got := br.read(12); got != 0 {
		t.Errorf("read past end = %d, want 0", got)
	}
}

func TestHuffmanBuild(t *testing.T) {
	t.Parallel()

	// Symbol 0 is coded 1, symbols 1 and 2 are coded 00 and 01.
	h := newHuffman(3, 8)
	h.bits = []uint8{1, 2, 2}
	if err := h.build(); err != nil {
		t.Fatalf("build() error = %v", err)
	}

	var w bitWriter
	w.write(0b1, 1)
	w.write(0b00, 2)
	w.write(0b01, 2)
	w.write(0b1, 1)
	br := newBitReader(w.bytes())

	for i, want := range []uint8{0, 1, 2, 0} {
		sym, ok := h.decode(br)
		if !ok || sym != want {
			t.Errorf("decode #%d = %d, %v; want %d", i, sym, ok, want)
		}
	}
}

func TestHuffmanRejectsOversubscribedTree(t *testing.T) {
	t.Parallel()

	h := newHuffman(3, 8)
	h.bits = []uint8{1, 1, 1}
	if err := h.build(); err == nil {
		t.Error("build() accepted three 1-bit codes")
	}
}
