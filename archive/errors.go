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

package archive

import "fmt"

// FormatError indicates an unsupported or invalid archive format.
type FormatError struct {
	Format string
	Reason string
}

func (e FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported archive format %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("unsupported archive format: %s", e.Format)
}

// EntryNotFoundError indicates an entry was not found in the archive.
type EntryNotFoundError struct {
	Archive string
	Entry   string
}

func (e EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry %q not found in archive %q", e.Entry, e.Archive)
}
