// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cieerrors provides the structured error taxonomy shared by every
// core component (graph store, vector index, algorithms, retrieval). A
// *cieerrors.Error carries a Kind from a small closed set so that callers
// (CLI, MCP tool dispatch, tests) can switch on failure class without
// string-matching messages.
package cieerrors

import (
	"errors"
	"fmt"
)

// Kind is a closed tag identifying a class of failure.
type Kind string

const (
	NotFound          Kind = "not_found"
	InvalidArgument   Kind = "invalid_argument"
	Incompatible      Kind = "incompatible"
	Corrupted         Kind = "corrupted"
	MissingEndpoint   Kind = "missing_endpoint"
	TimedOut          Kind = "timed_out"
	Cancelled         Kind = "cancelled"
	OverflowTruncated Kind = "overflow_truncated"
	IOError           Kind = "io_error"
	Internal          Kind = "internal"
)

// Error is the uniform error envelope returned by core operations. Data
// carries machine-readable context (e.g. the offending node key) without
// forcing every caller to parse the message.
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error of the given kind with no wrapped cause.
func New(kind Kind, message string, data map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Data: data}
}

// Wrap constructs an *Error of the given kind wrapping an underlying error.
func Wrap(kind Kind, message string, err error, data map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Data: data, Err: err}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and Internal
// otherwise. Useful for uniform logging/exit-code mapping at the boundary.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Internal
}
