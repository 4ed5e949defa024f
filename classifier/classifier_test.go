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

package classifier_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-gamelib/classifier"
	"github.com/ZaparooProject/go-gamelib/identifier"
	"github.com/ZaparooProject/go-gamelib/internal/testsupport"
	"github.com/ZaparooProject/go-gamelib/storage"
)

// psxImage returns a disc image with the PLAYSTATION marker and, when serial
// is not empty, a serial inside the searched header.
func psxImage(serial string) []byte {
	data := make([]byte, identifier.HeaderSize+2048)
	copy(data[0x8008:], "PLAYSTATION")
	if serial != "" {
		copy(data[0xA000:], serial)
	}
	return data
}

func crcOf(data []byte) string {
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE(data))
}

type zipFile struct {
	name string
	data []byte
}

func storedZIP(t *testing.T, files ...zipFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Store})
		if err != nil {
			t.Fatalf("create %s: %v", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("write %s: %v", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// groups lists src and groups its files, keyed by primary path.
func groups(t *testing.T, src storage.Source) map[string]storage.Group {
	t.Helper()

	ctx := context.Background()
	var files []storage.RawFile
	if err := src.Walk(ctx, func(f storage.RawFile) error {
		files = append(files, f)
		return nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	out := make(map[string]storage.Group)
	for _, g := range storage.GroupFiles(files, storage.ReadLines(ctx, src)) {
		out[g.Primary.Path] = g
	}
	return out
}

func newClassifier(opts classifier.Options) *classifier.Classifier {
	if opts.Fs == nil {
		opts.Fs = afero.NewMemMapFs()
	}
	return classifier.New(opts)
}

func TestClassifyStandalone(t *testing.T) {
	t.Parallel()

	noSerial := psxImage("")
	src := testsupport.NewMemSource(t, "roms", map[string][]byte{
		"psx/Final Fantasy VII.iso": psxImage("SLUS_007.00;1"),
		"psx/Homebrew.iso":          noSerial,
		"misc/notes.txt":            []byte("hello"),
	})
	g := groups(t, src)

	tests := []struct {
		path string
		want classifier.File
	}{
		{
			path: "psx/Final Fantasy VII.iso",
			want: classifier.File{Name: "Final Fantasy VII.iso", Serial: "SLUS-00700", System: identifier.SystemPSX},
		},
		{
			path: "psx/Homebrew.iso",
			want: classifier.File{Name: "Homebrew.iso", System: identifier.SystemPSX, Checksum: crcOf(noSerial)},
		},
		{
			path: "misc/notes.txt",
			want: classifier.File{Name: "notes.txt", Checksum: crcOf([]byte("hello"))},
		},
	}

	c := newClassifier(classifier.Options{})
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			group := g[tt.path]
			got, err := c.Classify(context.Background(), src, group)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			tt.want.Size = group.Primary.Size
			tt.want.SourceURI = group.Primary.URI
			if *got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestClassifyChecksumGating(t *testing.T) {
	t.Parallel()

	data := psxImage("")
	size := int64(len(data))
	src := testsupport.NewMemSource(t, "roms", map[string][]byte{"game.iso": data})
	group := groups(t, src)["game.iso"]

	tests := []struct {
		name    string
		max     int64
		wantSum bool
	}{
		{"below limit", size + 1, true},
		{"at limit", size, false},
		{"above limit", size - 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClassifier(classifier.Options{ChecksumMaxBytes: tt.max})
			got, err := c.Classify(context.Background(), src, group)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if (got.Checksum != "") != tt.wantSum {
				t.Errorf("Checksum = %q, want present = %v", got.Checksum, tt.wantSum)
			}
		})
	}
}

func TestClassifySerialSuppressesChecksum(t *testing.T) {
	t.Parallel()

	src := testsupport.NewMemSource(t, "roms", map[string][]byte{"game.iso": psxImage("SCES_008.67;1")})
	got, err := newClassifier(classifier.Options{}).Classify(context.Background(), src, groups(t, src)["game.iso"])
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Serial != "SCES-00867" || got.Checksum != "" {
		t.Errorf("Classify() = %+v, want serial and no checksum", *got)
	}
}

func TestClassifyZIP(t *testing.T) {
	t.Parallel()

	withSerial := psxImage("SLUS_007.00;1")
	noSerial := psxImage("")
	half := bytes.Repeat([]byte{0xAB}, 40000)
	junk := []byte("this is not a zip file at all")

	collection := storedZIP(t, zipFile{"a.bin", half}, zipFile{"b.bin", half})
	src := testsupport.NewMemSource(t, "roms", map[string][]byte{
		"serial.zip":     storedZIP(t, zipFile{"FF7 (USA).bin", withSerial}),
		"plain.zip":      storedZIP(t, zipFile{"sub/Homebrew.bin", noSerial}, zipFile{"readme.txt", []byte("hi")}),
		"collection.zip": collection,
		"broken.zip":     junk,
	})
	g := groups(t, src)

	tests := []struct {
		path string
		want classifier.File
	}{
		{
			path: "serial.zip",
			want: classifier.File{
				Name: "FF7 (USA).bin", Entry: "FF7 (USA).bin", ContainerPath: "serial.zip",
				Serial: "SLUS-00700", System: identifier.SystemPSX, Checksum: crcOf(withSerial),
				Size: int64(len(withSerial)),
			},
		},
		{
			path: "plain.zip",
			want: classifier.File{
				Name: "Homebrew.bin", Entry: "sub/Homebrew.bin", ContainerPath: "plain.zip",
				System: identifier.SystemPSX, Checksum: crcOf(noSerial), Size: int64(len(noSerial)),
			},
		},
		{
			path: "collection.zip",
			want: classifier.File{Name: "collection.zip", Checksum: crcOf(collection), Size: int64(len(collection))},
		},
		{
			path: "broken.zip",
			want: classifier.File{Name: "broken.zip", Checksum: crcOf(junk), Size: int64(len(junk))},
		},
	}

	c := newClassifier(classifier.Options{})
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			group := g[tt.path]
			got, err := c.Classify(context.Background(), src, group)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			tt.want.SourceURI = group.Primary.URI
			if *got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestClassifySevenZipAndRAR(t *testing.T) {
	t.Parallel()

	// Both containers hold readme.txt followed by game.bin, a 32 KiB image
	// without a serial whose CRC32 is 07A406E8.
	files := make(map[string][]byte)
	for _, name := range []string{"game.7z", "game.rar"} {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatalf("read fixture: %v", err)
		}
		files[name] = data
	}
	src := testsupport.NewMemSource(t, "roms", files)
	g := groups(t, src)

	tests := []struct {
		name         string
		path         string
		maxBytes     int64
		wantChecksum string
	}{
		{name: "7z entry CRC", path: "game.7z", wantChecksum: "07A406E8"},
		{name: "rar streamed CRC", path: "game.rar", wantChecksum: "07A406E8"},
		{name: "7z entry CRC ignores ceiling", path: "game.7z", maxBytes: 1000, wantChecksum: "07A406E8"},
		{name: "rar streamed CRC gated", path: "game.rar", maxBytes: 1000, wantChecksum: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClassifier(classifier.Options{ChecksumMaxBytes: tt.maxBytes})
			group := g[tt.path]
			got, err := c.Classify(context.Background(), src, group)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			want := classifier.File{
				Name: "game.bin", Entry: "game.bin", ContainerPath: tt.path,
				Checksum: tt.wantChecksum, SourceURI: group.Primary.URI, Size: 32768,
			}
			if *got != want {
				t.Errorf("Classify() = %+v, want %+v", *got, want)
			}
		})
	}
}

func TestClassifyCueSheet(t *testing.T) {
	t.Parallel()

	src := testsupport.NewMemSource(t, "roms", map[string][]byte{
		"Game.cue":           []byte("FILE \"Game (Track 1).bin\" BINARY\n  TRACK 01 MODE2/2352\n"),
		"Game (Track 1).bin": psxImage("SLUS_007.00;1"),
		"Empty.cue":          []byte("REM nothing here\n"),
	})
	g := groups(t, src)
	c := newClassifier(classifier.Options{})

	cue := g["Game.cue"]
	got, err := c.Classify(context.Background(), src, cue)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Name != "Game.cue" || got.SourceURI != cue.Primary.URI {
		t.Errorf("Classify() name/uri = %q/%q, want the cue sheet's", got.Name, got.SourceURI)
	}
	if got.Serial != "SLUS-00700" || got.System != identifier.SystemPSX {
		t.Errorf("Classify() = %+v, want the track's serial", *got)
	}

	empty, err := c.Classify(context.Background(), src, g["Empty.cue"])
	if err != nil {
		t.Fatalf("Classify(empty) error = %v", err)
	}
	if empty.System != identifier.SystemUnknown || empty.Checksum != "" {
		t.Errorf("Classify(empty) = %+v, want nothing identified", *empty)
	}
}

// streamOpener serves files as plain streams without io.ReaderAt.
type streamOpener map[string][]byte

func (o streamOpener) Open(_ context.Context, f storage.RawFile) (storage.File, error) {
	data, ok := o[f.Path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", f.Path, afero.ErrFileNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestClassifySpoolsStreams(t *testing.T) {
	t.Parallel()

	data := storedZIP(t, zipFile{"game.bin", psxImage("SLUS_007.00;1")})
	opener := streamOpener{"game.zip": data}
	spool := afero.NewMemMapFs()
	c := classifier.New(classifier.Options{Fs: spool, SpoolDir: "/spool"})

	group := storage.Group{Primary: storage.RawFile{
		Name: "game.zip", Path: "game.zip", URI: "mem:///game.zip", Size: int64(len(data)),
	}}
	got, err := c.Classify(context.Background(), opener, group)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Serial != "SLUS-00700" || got.Entry != "game.bin" {
		t.Errorf("Classify() = %+v, want the zipped game", *got)
	}

	left, err := afero.ReadDir(spool, "/spool")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("spool directory holds %d files after Classify, want 0", len(left))
	}
}

func TestClassifyOpenError(t *testing.T) {
	t.Parallel()

	group := storage.Group{Primary: storage.RawFile{Name: "gone.iso", Path: "gone.iso", URI: "mem:///gone.iso", Size: 10}}
	_, err := newClassifier(classifier.Options{}).Classify(context.Background(), streamOpener{}, group)

	var fe *classifier.FileError
	if !errors.As(err, &fe) {
		t.Fatalf("Classify() error = %v, want *FileError", err)
	}
	if fe.URI != "mem:///gone.iso" {
		t.Errorf("FileError.URI = %q", fe.URI)
	}
	if !errors.Is(err, afero.ErrFileNotFound) {
		t.Errorf("Classify() error = %v, want it to wrap the open failure", err)
	}
}

func TestClassifyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	group := storage.Group{Primary: storage.RawFile{Name: "a.iso", Path: "a.iso", URI: "mem:///a.iso"}}
	_, err := newClassifier(classifier.Options{}).Classify(ctx, streamOpener{"a.iso": nil}, group)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Classify() error = %v, want context.Canceled", err)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Final Fantasy VII (USA).bin": "Final Fantasy VII (USA)",
		"  spaced .iso":               "spaced",
		"Poke\u0301mon.zip":           "Pok\u00e9mon",
		"noext":                       "noext",
	}
	for name, want := range tests {
		if got := classifier.Title(name); got != want {
			t.Errorf("Title(%q) = %q, want %q", name, got, want)
		}
	}
}
