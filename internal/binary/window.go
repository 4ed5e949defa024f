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

import (
	"errors"
	"io"
	"iter"
)

// Windows returns a lazy sequence of overlapping windows read from r.
//
// Each window is size bytes long and starts stride bytes after the previous
// one, so a pattern of up to size-stride bytes always lies wholly inside at
// least one window. The last window is shorter when the stream or the limit
// ends first. At most limit bytes are read from r, which needs no Seek: the
// overlap is kept in an internal buffer.
//
// The yielded slice is reused between iterations. Read errors other than EOF
// end the sequence early; use [WindowsErr] to observe them.
func Windows(r io.Reader, size, stride int, limit int64) iter.Seq[[]byte] {
	seq, _ := WindowsErr(r, size, stride, limit)
	return seq
}

// WindowsErr is [Windows] plus a function reporting the read error, if any,
// that stopped the sequence. The error function is meaningful once the
// sequence has been consumed.
func WindowsErr(r io.Reader, size, stride int, limit int64) (seq iter.Seq[[]byte], errFn func() error) {
	if stride <= 0 || stride > size {
		panic("binary: window stride must be in (0, size]")
	}

	var readErr error
	seq = func(yield func([]byte) bool) {
		w := &window{r: r, buf: make([]byte, size), limit: limit}
		for pos := int64(0); pos < limit; pos += int64(stride) {
			if err := w.fill(); err != nil {
				readErr = err
				return
			}
			if w.n == 0 || !yield(w.buf[:w.n]) {
				return
			}
			if w.done() && stride >= w.n {
				return
			}
			w.advance(stride)
		}
	}
	return seq, func() error { return readErr }
}

type window struct {
	r     io.Reader
	buf   []byte
	n     int   // valid bytes in buf
	read  int64 // bytes consumed from r
	limit int64
	eof   bool
}

// fill tops the buffer up to its capacity without crossing the limit.
func (w *window) fill() error {
	if w.eof {
		return nil
	}
	want := int64(len(w.buf) - w.n)
	if rem := w.limit - w.read; want > rem {
		want = rem
	}
	if want <= 0 {
		return nil
	}
	got, err := io.ReadFull(w.r, w.buf[w.n:w.n+int(want)])
	w.n += got
	w.read += int64(got)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		w.eof = true
	case err != nil:
		return err //nolint:wrapcheck // surfaced verbatim through WindowsErr
	}
	return nil
}

// done reports whether no further bytes can be read.
func (w *window) done() bool {
	return w.eof || w.read >= w.limit
}

// advance drops the first stride bytes, keeping the overlap.
func (w *window) advance(stride int) {
	if stride >= w.n {
		w.n = 0
		return
	}
	copy(w.buf, w.buf[stride:w.n])
	w.n -= stride
}
