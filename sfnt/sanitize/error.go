// seehuhn.de/go/sfntsan - a sanitizer for untrusted OpenType/TrueType fonts
// Copyright (C) 2024 The sfntsan Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package sanitize

import "errors"

// ErrReject is the sentinel every RejectError wraps, for callers that
// only care about the boolean pass/fail outcome and use
// errors.Is(err, ErrReject).
var ErrReject = errors.New("font rejected")

// RejectError is the single error kind this package ever returns on
// failure: there is no taxonomy distinguishing malformed-but-safe
// input from actively malicious input. Table names the tag that
// failed validation, or "" for a container-level failure (bad
// version, bad directory, missing required table).
type RejectError struct {
	Table  string
	Reason string
}

func (e *RejectError) Error() string {
	if e.Table == "" {
		return "reject: " + e.Reason
	}
	return "reject: " + e.Table + ": " + e.Reason
}

// Unwrap lets errors.Is(err, ErrReject) succeed for any RejectError.
func (e *RejectError) Unwrap() error {
	return ErrReject
}

func reject(table, reason string) error {
	return &RejectError{Table: table, Reason: reason}
}

func rejectf(table string, err error) error {
	return &RejectError{Table: table, Reason: err.Error()}
}
