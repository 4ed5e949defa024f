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

package archive_test

import (
	"bytes"
	"errors"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/ZaparooProject/go-gamelib/archive"
)

type zipFile struct {
	name string
	data []byte
}

// createTestZIP builds a ZIP archive in memory with files in the given
// order. Entries are stored uncompressed so their packed sizes are known.
func createTestZIP(t *testing.T, files ...zipFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := writer.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Store})
		if err != nil {
			t.Fatalf("create file in zip: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestOpenZIP(t *testing.T) {
	t.Parallel()

	game := bytes.Repeat([]byte("GAME"), 1000)
	data := createTestZIP(t,
		zipFile{name: "Game (USA).bin", data: game},
		zipFile{name: "readme.txt", data: []byte("hello")},
	)

	arc, err := archive.Open("Game (USA).zip", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = arc.Close() }()

	entries := arc.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() returned %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.Name != "Game (USA).bin" || first.Size != int64(len(game)) {
		t.Errorf("entries[0] = %+v", first)
	}
	if first.CompressedSize != int64(len(game)) {
		t.Errorf("stored entry CompressedSize = %d, want %d", first.CompressedSize, len(game))
	}
	if !first.HasCRC || first.CRC32 != crc32.ChecksumIEEE(game) {
		t.Errorf("entries[0] CRC = %08X (has %v), want %08X", first.CRC32, first.HasCRC, crc32.ChecksumIEEE(game))
	}

	rc, err := arc.Open("game (usa).BIN")
	if err != nil {
		t.Fatalf("Open(entry) error = %v", err)
	}
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !bytes.Equal(got, game) {
		t.Error("entry content mismatch")
	}

	_, err = arc.Open("missing.bin")
	var notFound archive.EntryNotFoundError
	if !errors.As(err, &notFound) || notFound.Entry != "missing.bin" {
		t.Errorf("Open(missing) error = %v, want EntryNotFoundError", err)
	}
}

func TestOpenZIPSkipsDirectories(t *testing.T) {
	t.Parallel()

	data := createTestZIP(t,
		zipFile{name: "disc/"},
		zipFile{name: "disc/game.iso", data: []byte("iso")},
	)
	arc, err := archive.Open("set.zip", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	entries := arc.Entries()
	if len(entries) != 1 || entries[0].Name != "disc/game.iso" {
		t.Errorf("Entries() = %+v, want only disc/game.iso", entries)
	}
}

func TestOpenRejectsInvalidContainers(t *testing.T) {
	t.Parallel()

	junk := bytes.Repeat([]byte{0x5A}, 512)
	tests := []struct {
		name       string
		wantFormat bool
	}{
		{name: "broken.zip"},
		{name: "broken.7z"},
		{name: "broken.rar"},
		{name: "game.tar", wantFormat: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			arc, err := archive.Open(tt.name, bytes.NewReader(junk), int64(len(junk)))
			if err == nil {
				_ = arc.Close()
				t.Fatal("Open() returned nil error")
			}
			var formatErr archive.FormatError
			if errors.As(err, &formatErr) != tt.wantFormat {
				t.Errorf("Open() error = %v, FormatError expected: %v", err, tt.wantFormat)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want archive.Kind
	}{
		{"game.zip", archive.KindZip},
		{"GAME.ZIP", archive.KindZip},
		{"game.7z", archive.KindSevenZip},
		{"game.rar", archive.KindRAR},
		{"game.iso", archive.KindNone},
		{"zip", archive.KindNone},
	}
	for _, tt := range tests {
		if got := archive.KindOf(tt.name); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsArchiveExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want bool
	}{
		{".zip", true},
		{".ZIP", true},
		{".7z", true},
		{".rar", true},
		{"zip", true},
		{"7Z", true},
		{".tar", false},
		{"tar", false},
		{".gz", false},
		{".txt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := archive.IsArchiveExtension(tt.ext); got != tt.want {
			t.Errorf("IsArchiveExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}
