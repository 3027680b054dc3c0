/*
 * errors.go, part of gomdtools.
 *
 *
 * Copyright 2026 The gomdtools Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package md

import (
	"errors"
	"fmt"
	"strings"
)

// The error kinds. Use errors.Is(err, md.ErrFormat) and so on to tell them apart.
var (
	// ErrValidation marks bad arguments, detected before any file is touched.
	ErrValidation = errors.New("validation error")
	// ErrFormat marks a binary layout mismatch or a truncated binary block.
	ErrFormat = errors.New("format error")
	// ErrSizeMismatch marks two snapshots with different atom counts.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrRankCount marks a timestep with fewer shards than declared ranks.
	ErrRankCount = errors.New("rank count error")
	// ErrMissingBoxBounds marks a Dump snapshot without box bounds.
	ErrMissingBoxBounds = errors.New("missing box bounds")
	// ErrIO marks an unreadable or unwritable path.
	ErrIO = errors.New("io error")
	// ErrParse marks an ill-formed text line.
	ErrParse = errors.New("parse error")
)

// Error is the general structure for errors in this module. It fulfills TrajError.
// The kind is one of the Err* sentinels, and err, if not nil, is the underlying cause.
type Error struct {
	kind     error
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
	err      error
}

// Errorf returns a new Error of the given kind, for the given file (which can be empty),
// raised in caller.
func Errorf(kind error, filename, caller, format string, args ...any) *Error {
	return &Error{
		kind:     kind,
		message:  fmt.Sprintf(format, args...),
		filename: filename,
		deco:     []string{caller},
		critical: kind != ErrValidation,
	}
}

// WrapError returns an Error of the given kind that wraps err.
func WrapError(kind error, filename, caller string, err error) *Error {
	e := Errorf(kind, filename, caller, "%s", err.Error())
	e.err = err
	return e
}

func (E *Error) Error() string {
	if E.filename == "" {
		return fmt.Sprintf("%s: %s", E.kind, E.message)
	}
	return fmt.Sprintf("%s: file %s: %s", E.kind, E.filename, E.message)
}

// Is reports whether target is the kind of E.
func (E *Error) Is(target error) bool {
	return target == E.kind
}

func (E *Error) Unwrap() error {
	return E.err
}

// Decorate adds the name of a caller to the error and returns the whole trail.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Trail returns the callers the error went through, innermost first.
func (E *Error) Trail() string {
	return strings.Join(E.deco, " <- ")
}

// FileName returns the file to which the error is associated.
func (E *Error) FileName() string { return E.filename }

// Critical returns true if the error aborts the processing of a file.
func (E *Error) Critical() bool { return E.critical }

// Kind returns the sentinel for the kind of error.
func (E *Error) Kind() error { return E.kind }

// Decorate is a helper that adds caller to err if err is a Decorater, and returns err.
// Other errors are returned untouched.
func Decorate(err error, caller string) error {
	var d Decorater
	if errors.As(err, &d) {
		d.Decorate(caller)
	}
	return err
}
