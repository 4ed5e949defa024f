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

package testsupport

import (
	"testing"

	"github.com/ZaparooProject/go-gamelib/catalog"
	"github.com/ZaparooProject/go-gamelib/internal/config"
)

// MustOpenStore opens the catalog named by cfg and closes it when the test
// ends. A nil cfg uses NewConfig.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	if cfg == nil {
		cfg = NewConfig(t)
	}
	store, err := catalog.Open(cfg.Paths.Catalog)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
