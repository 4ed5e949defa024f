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

import (
	"errors"
	"fmt"
)

var errHuffmanTree = errors.New("inconsistent huffman tree")

// bitReader reads MSB-first bit fields. Reads past the end yield zero bits.
type bitReader struct {
	data  []byte
	pos   int
	acc   uint64
	nbits uint
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

// peek returns the next n bits (n <= 32) without consuming them.
func (b *bitReader) peek(n uint) uint32 {
	for b.nbits < n {
		var c byte
		if b.pos < len(b.data) {
			c = b.data[b.pos]
			b.pos++
		}
		b.acc = b.acc<<8 | uint64(c)
		b.nbits += 8
	}
	//nolint:gosec // masked to n <= 32 bits
	return uint32((b.acc >> (b.nbits - n)) & (uint64(1)<<n - 1))
}

func (b *bitReader) read(n uint) uint32 {
	v := b.peek(n)
	b.nbits -= n
	return v
}

// huffman is a canonical Huffman decoder as used by CHD V5 hunk maps.
type huffman struct {
	bits    []uint8  // code length per symbol
	lookup  []uint16 // symbol<<5 | length, indexed by the next maxBits bits
	maxBits uint
}

func newHuffman(numCodes int, maxBits uint) *huffman {
	return &huffman{
		bits:    make([]uint8, numCodes),
		lookup:  make([]uint16, 1<<maxBits),
		maxBits: maxBits,
	}
}

// importRLE reads the run-length encoded code lengths that precede a map.
func (h *huffman) importRLE(br *bitReader) error {
	width := uint(3)
	switch {
	case h.maxBits >= 16:
		width = 5
	case h.maxBits >= 8:
		width = 4
	}

	for i := 0; i < len(h.bits); {
		v := br.read(width)
		if v != 1 {
			h.bits[i] = uint8(v) //nolint:gosec // width <= 5 bits
			i++
			continue
		}
		// 1 escapes either a literal 1 or a run of the following length.
		v = br.read(width)
		if v == 1 {
			h.bits[i] = 1
			i++
			continue
		}
		run := int(br.read(width)) + 3
		for ; run > 0 && i < len(h.bits); run-- {
			h.bits[i] = uint8(v) //nolint:gosec // width <= 5 bits
			i++
		}
	}
	return h.build()
}

// build assigns canonical codes, longest first, and fills the lookup table.
func (h *huffman) build() error {
	var histo [33]uint32
	for _, n := range h.bits {
		if uint(n) > h.maxBits {
			return fmt.Errorf("%w: code length %d", errHuffmanTree, n)
		}
		histo[n]++
	}

	var start uint32
	for length := 32; length > 0; length-- {
		next := (start + histo[length]) >> 1
		if length != 1 && next*2 != start+histo[length] {
			return errHuffmanTree
		}
		histo[length] = start
		start = next
	}

	clear(h.lookup)
	for sym, n := range h.bits {
		if n == 0 {
			continue
		}
		code := histo[n]
		histo[n]++
		shift := h.maxBits - uint(n)
		first, last := code<<shift, (code+1)<<shift
		if int(last) > len(h.lookup) {
			return errHuffmanTree
		}
		for i := first; i < last; i++ {
			h.lookup[i] = uint16(sym)<<5 | uint16(n) //nolint:gosec // sym < numCodes
		}
	}
	return nil
}

// decode reads one symbol. ok is false for bit patterns no code covers.
func (h *huffman) decode(br *bitReader) (sym uint8, ok bool) {
	entry := h.lookup[br.peek(h.maxBits)]
	n := uint(entry & 0x1F)
	if n == 0 {
		return 0, false
	}
	br.nbits -= n
	return uint8(entry >> 5), true //nolint:gosec // sym < numCodes
}
