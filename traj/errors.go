/*
 * errors.go, part of xmol.
 *
 * Copyright 2024 The xmol authors
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

package traj

import (
	"errors"
	"fmt"
)

// Error is the error type of the trajectory layer.
type Error struct {
	message  string
	filename string //the file with problems, or empty if none.
	deco     []string
	critical bool
	cause    error
}

func (err Error) Error() string {
	if err.filename == "" {
		return "trajectory error: " + err.message
	}
	return fmt.Sprintf("trajectory file %s error: %s", err.filename, err.message)
}

// Decorate adds the name of a caller to the error and returns the whole list.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Unwrap returns the error this one was built from, if any.
func (err Error) Unwrap() error { return err.cause }

// FileName returns the file the error is associated to, if any.
func (err Error) FileName() string { return err.filename }

// Critical is true when the trajectory can't be used after the error.
func (err Error) Critical() bool { return err.critical }

// errDecorate adds caller to err if it is an *Error, or wraps err in a new one.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return &Error{message: err.Error(), deco: []string{caller}, critical: true, cause: err}
}

const (
	ErrNoFiles      = "no trajectory files given"
	ErrNoTopology   = "no topology: give one, or use a first file that carries one"
	ErrAtomMismatch = "atom count mismatch"
)
