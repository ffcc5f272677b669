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

package xmol

import (
	"fmt"
	"strings"
)

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
// Each call to Decorate appends the name of a function in the calling stack (optionally "FunctionName: Extra info")
// and returns the resulting slice. An empty string just returns the current slice.
type Error interface {
	Error() string
	Decorate(string) []string
}

// decoration is embedded in every error type of the package.
type decoration struct {
	deco []string
}

// Decorate adds the caller to the decoration slice and returns it.
func (d *decoration) Decorate(dec string) []string {
	if dec != "" {
		d.deco = append(d.deco, dec)
	}
	return d.deco
}

func (d *decoration) trail() string {
	if len(d.deco) == 0 {
		return ""
	}
	return " (" + strings.Join(d.deco, " <- ") + ")"
}

// DeadFrameAccessError is returned when a smart handle is used after the Frame
// it pointed into was closed, or after the handle itself was closed.
type DeadFrameAccessError struct {
	decoration
	Op string
}

func (E *DeadFrameAccessError) Error() string {
	return fmt.Sprintf("xmol: %s: access through a handle whose frame is dead%s", E.Op, E.trail())
}

// DeadObserverAccessError signals that a notification with the NotifyAny policy
// found an observer which was already marked as deleted. It means the growth or
// teardown sequence is wrong, not that the user did something wrong.
type DeadObserverAccessError struct {
	decoration
	Observer any
}

func (E *DeadObserverAccessError) Error() string {
	return fmt.Sprintf("xmol: observer %p already dead%s", E.Observer, E.trail())
}

// SpanSplitError is returned by a smart span whose contiguous range was
// broken by an insertion in its interior. The span must be derived again
// from its parent.
type SpanSplitError struct {
	decoration
	Op string
}

func (E *SpanSplitError) Error() string {
	return fmt.Sprintf("xmol: %s: span was split by an insertion%s", E.Op, E.trail())
}

// DanglingSelectionError is returned by a smart selection when one of the
// frames it holds elements from was closed. Clear resets the selection.
type DanglingSelectionError struct {
	decoration
	Op string
}

func (E *DanglingSelectionError) Error() string {
	return fmt.Sprintf("xmol: %s: selection references a dead frame%s", E.Op, E.trail())
}

// DeletedElementError is returned when a smart handle reaches an element that
// was deleted from a frame which is still alive.
type DeletedElementError struct {
	decoration
	Op    string
	Index int
}

func (E *DeletedElementError) Error() string {
	return fmt.Sprintf("xmol: %s: element %d was deleted%s", E.Op, E.Index, E.trail())
}

// OutOfRangeError is returned for indexes (or slice bounds) outside a span or selection.
type OutOfRangeError struct {
	decoration
	Index int
	Len   int
}

func (E *OutOfRangeError) Error() string {
	return fmt.Sprintf("xmol: index %d out of range [0,%d)%s", E.Index, E.Len, E.trail())
}

// errDecorate decorates err with the caller's name if err implements Error,
// otherwise it wraps err.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// Panics are reserved for violations of the observer protocol and of the frame
// invariants, which mean that the program is wrong.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrObserverTwice      = PanicMsg("xmol: observer registered twice")
	ErrObserverUnknown    = PanicMsg("xmol: removing an observer which is not registered")
	ErrClosedFrame        = PanicMsg("xmol: mutation of a closed frame")
	ErrForeignParent      = PanicMsg("xmol: parent reference belongs to another frame")
	ErrDeletedParent      = PanicMsg("xmol: parent record was deleted")
	ErrInvalidRef         = PanicMsg("xmol: zero-value reference")
	ErrShapeMismatch      = PanicMsg("xmol: coordinate matrix does not match the number of atoms")
	ErrInvariantViolation = PanicMsg("xmol: frame invariants violated")
)
