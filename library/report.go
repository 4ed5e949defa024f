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

package library

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// State is the phase of an indexing run.
type State int32

// Run states. A run moves from Idle through Scanning and Reconciling to Done,
// or to Failed from any phase.
const (
	StateIdle State = iota
	StateScanning
	StateReconciling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateReconciling:
		return "reconciling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Report summarizes an indexing run.
type Report struct {
	StartedAt time.Time
	Finished  time.Time
	RunID     string
	State     State
	Sources   int // Sources scanned
	Listed    int // Games listed, after grouping
	Inserted  int // Games classified and written
	Touched   int // Games already known and kept
	Failed    int // Games that could not be classified
	Deleted   int // Games removed by the sweep
	Swept     bool
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.StartedAt)
}

// SourceError reports a source that could not be enumerated.
type SourceError struct {
	Err      error
	SourceID string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.SourceID, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ScanError collects the source failures of a run. A run with a ScanError
// never removes anything from the catalog.
type ScanError struct {
	Sources []*SourceError
}

func (e *ScanError) Error() string {
	msgs := make([]string, len(e.Sources))
	for i, s := range e.Sources {
		msgs[i] = s.Error()
	}
	return "scan failed: " + strings.Join(msgs, "; ")
}

func (e *ScanError) Unwrap() []error {
	errs := make([]error, len(e.Sources))
	for i, s := range e.Sources {
		errs[i] = s
	}
	return errs
}

// ErrRunning is returned by Index when another run is in progress.
var ErrRunning = errors.New("index already running")
