/*
 * smartspan.go, part of xmol.
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

import "fmt"

// SmartSpan is a span registered on its frame. It keeps covering the same
// elements while the frame grows, as long as no element is inserted between
// its first and its last one. When that happens the span is split: it no longer
// describes a contiguous range and every access returns a *SpanSplitError.
// A split span stays split, derive a fresh one from the parent element.
// A SmartSpan must be released with Close.
type SmartSpan[R element[R]] struct {
	frame      *Frame
	begin, end int
	split      bool
	dead       bool
}

type (
	SmartAtomSpan     = SmartSpan[AtomRef]
	SmartResidueSpan  = SmartSpan[ResidueRef]
	SmartMoleculeSpan = SmartSpan[MoleculeRef]
	SmartCoordSpan    = SmartSpan[CoordRef]
)

func newSmartSpan[R element[R]](s Span[R]) *SmartSpan[R] {
	if s.frame == nil {
		panic(ErrInvalidRef)
	}
	S := &SmartSpan[R]{frame: s.frame, begin: s.begin, end: s.end}
	if s.frame.closed {
		S.dead = true
		return S
	}
	var z R
	s.frame.registry(z.kind()).AddObserver(S)
	return S
}

func (S *SmartSpan[R]) onElementsMove(f *Frame, begin, end, shift int) {
	if S.split {
		return
	}
	in := func(i int) bool { return i >= begin && i < end }
	if S.begin == S.end {
		if in(S.begin) {
			S.begin += shift
			S.end += shift
		}
		return
	}
	first, last := in(S.begin), in(S.end-1)
	switch {
	case first && last:
		S.begin += shift
		S.end += shift
	case first != last:
		S.split = true
		f.log.Debug("smart span split", "array", kindName[R](), "begin", S.begin, "end", S.end)
	}
}

func (S *SmartSpan[R]) onFrameMove(from, to *Frame) { S.frame = to }

func (S *SmartSpan[R]) onFrameDelete(f *Frame) { S.dead = true }

func (S *SmartSpan[R]) check(op string) error {
	if S.dead {
		return &DeadFrameAccessError{Op: op}
	}
	if S.split {
		return &SpanSplitError{Op: op}
	}
	return nil
}

// Span returns the plain span, valid until the next growth of the frame.
func (S *SmartSpan[R]) Span() (Span[R], error) {
	if err := S.check("Span"); err != nil {
		return Span[R]{}, err
	}
	return Span[R]{frame: S.frame, begin: S.begin, end: S.end}, nil
}

// Len returns the number of elements in the span.
func (S *SmartSpan[R]) Len() (int, error) {
	if err := S.check("Len"); err != nil {
		return 0, err
	}
	return S.end - S.begin, nil
}

// At returns the ith element of the span.
func (S *SmartSpan[R]) At(i int) (R, error) {
	s, err := S.Span()
	if err != nil {
		var z R
		return z, err
	}
	return s.At(i)
}

// Refs returns the elements of the span.
func (S *SmartSpan[R]) Refs() ([]R, error) {
	s, err := S.Span()
	if err != nil {
		return nil, err
	}
	return s.Refs(), nil
}

// Split is true once an insertion broke the span.
func (S *SmartSpan[R]) Split() bool { return S.split }

// Alive is false once the frame was closed or the span itself was closed.
func (S *SmartSpan[R]) Alive() bool { return !S.dead }

// Close unregisters the span from its frame. Closing twice does nothing.
func (S *SmartSpan[R]) Close() {
	if !S.dead && S.frame != nil {
		var z R
		S.frame.registry(z.kind()).RemoveObserver(S)
	}
	S.dead = true
	S.frame = nil
}

// TakeFrom makes S track what o tracked and releases o.
func (S *SmartSpan[R]) TakeFrom(o *SmartSpan[R]) {
	if S == o {
		return
	}
	S.Close()
	S.frame, S.begin, S.end, S.split, S.dead = o.frame, o.begin, o.end, o.split, o.dead
	S.dead = S.dead || S.frame == nil
	if !o.dead && o.frame != nil {
		var z R
		o.frame.registry(z.kind()).MoveObserver(o, S)
	}
	o.frame, o.dead = nil, true
}

func (S *SmartSpan[R]) String() string {
	switch {
	case S.dead:
		return fmt.Sprintf("Smart%sSpan(dead)", kindName[R]())
	case S.split:
		return fmt.Sprintf("Smart%sSpan(split)", kindName[R]())
	}
	return fmt.Sprintf("Smart%sSpan[%d,%d)", kindName[R](), S.begin, S.end)
}
