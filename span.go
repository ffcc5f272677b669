/*
 * span.go, part of xmol.
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
	"iter"

	"gonum.org/v1/gonum/mat"

	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

// Span is a contiguous [begin,end) range of elements of one frame array.
// Like plain references, spans are not updated when the frame grows.
// The zero Span is empty and belongs to no frame.
type Span[R element[R]] struct {
	frame      *Frame
	begin, end int
}

type (
	AtomSpan     = Span[AtomRef]
	ResidueSpan  = Span[ResidueRef]
	MoleculeSpan = Span[MoleculeRef]
	CoordSpan    = Span[CoordRef]
)

// Frame returns the frame the span lives in, nil for the zero span.
func (S Span[R]) Frame() *Frame { return S.frame }

// Bounds returns the [begin,end) indexes of the span in the frame array.
func (S Span[R]) Bounds() (int, int) { return S.begin, S.end }

// Len returns the number of elements in the span.
func (S Span[R]) Len() int { return S.end - S.begin }

// Empty is true for a span without elements.
func (S Span[R]) Empty() bool { return S.end <= S.begin }

// At returns the ith element of the span.
func (S Span[R]) At(i int) (R, error) {
	var z R
	if i < 0 || i >= S.Len() {
		return z, &OutOfRangeError{Index: i, Len: S.Len()}
	}
	return z.at(S.frame, S.begin+i), nil
}

// Refs returns the elements of the span as a slice.
func (S Span[R]) Refs() []R {
	var z R
	ret := make([]R, 0, S.Len())
	for i := S.begin; i < S.end; i++ {
		ret = append(ret, z.at(S.frame, i))
	}
	return ret
}

// All iterates over the position in the span and the element.
func (S Span[R]) All() iter.Seq2[int, R] {
	return func(yield func(int, R) bool) {
		var z R
		for i := S.begin; i < S.end; i++ {
			if !yield(i-S.begin, z.at(S.frame, i)) {
				return
			}
		}
	}
}

// Contains is true if r lives in the span.
func (S Span[R]) Contains(r R) bool {
	return S.frame != nil && r.Frame() == S.frame && r.Index() >= S.begin && r.Index() < S.end
}

// Index returns the position of r in the span.
func (S Span[R]) Index(r R) (int, bool) {
	if !S.Contains(r) {
		return -1, false
	}
	return r.Index() - S.begin, true
}

// clamp resolves slice bounds Python-style for non-negative values: bounds past
// the end are clamped to the length.
func clamp(start, stop, n int) (int, int, error) {
	if start < 0 {
		return 0, 0, &OutOfRangeError{Index: start, Len: n}
	}
	if stop < 0 {
		return 0, 0, &OutOfRangeError{Index: stop, Len: n}
	}
	start, stop = min(start, n), min(stop, n)
	if stop < start {
		stop = start
	}
	return start, stop, nil
}

// Slice returns the sub span [start,stop). Bounds past the end are clamped,
// negative bounds give an *OutOfRangeError.
func (S Span[R]) Slice(start, stop int) (Span[R], error) {
	start, stop, err := clamp(start, stop, S.Len())
	if err != nil {
		return Span[R]{}, errDecorate(err, "Slice")
	}
	return Span[R]{frame: S.frame, begin: S.begin + start, end: S.begin + stop}, nil
}

// Stride returns every step-th element in [start,stop) as a selection. step must be positive.
func (S Span[R]) Stride(start, stop, step int) (Selection[R], error) {
	if step <= 0 {
		return Selection[R]{}, errDecorate(&OutOfRangeError{Index: step, Len: S.Len()}, "Stride: step")
	}
	start, stop, err := clamp(start, stop, S.Len())
	if err != nil {
		return Selection[R]{}, errDecorate(err, "Stride")
	}
	var z R
	refs := make([]R, 0, (stop-start+step-1)/step)
	for i := start; i < stop; i += step {
		refs = append(refs, z.at(S.frame, S.begin+i))
	}
	return Selection[R]{refs: refs}, nil
}

// Filter returns the elements of the span for which pred is true, skipping deleted ones.
func (S Span[R]) Filter(pred func(R) bool) Selection[R] {
	var z R
	var refs []R
	for i := S.begin; i < S.end; i++ {
		r := z.at(S.frame, i)
		if !r.Deleted() && pred(r) {
			refs = append(refs, r)
		}
	}
	return Selection[R]{refs: refs}
}

// Selection returns all the elements of the span as a selection.
func (S Span[R]) Selection() Selection[R] {
	return Selection[R]{refs: S.Refs()}
}

// Atoms returns the atoms covered by the span.
func (S Span[R]) Atoms() AtomSpan {
	if S.frame == nil {
		return AtomSpan{}
	}
	var z R
	b, e := z.atomRange(S.frame, S.begin, S.end)
	return AtomSpan{frame: S.frame, begin: b, end: e}
}

// Coords returns the coordinates of the atoms covered by the span.
func (S Span[R]) Coords() CoordSpan {
	a := S.Atoms()
	return CoordSpan{frame: a.frame, begin: a.begin, end: a.end}
}

// Residues returns the residues covered by the span. For an atom span these
// are the residues with at least one atom in it.
func (S Span[R]) Residues() ResidueSpan {
	if S.frame == nil {
		return ResidueSpan{}
	}
	var z R
	b, e := z.residueRange(S.frame, S.begin, S.end)
	return ResidueSpan{frame: S.frame, begin: b, end: e}
}

// Molecules returns the molecules covered by the span.
func (S Span[R]) Molecules() MoleculeSpan {
	if S.frame == nil {
		return MoleculeSpan{}
	}
	var z R
	b, e := z.moleculeRange(S.frame, S.begin, S.end)
	return MoleculeSpan{frame: S.frame, begin: b, end: e}
}

// Values returns the coordinates of the atoms covered by the span as a Nx3 matrix.
// The matrix is a view on the frame storage: writing to it moves the atoms.
// The view is invalidated by any growth of the frame.
func (S Span[R]) Values() *v3.Matrix {
	a := S.Atoms()
	if a.Empty() {
		return v3.Empty()
	}
	c := a.frame.coords[3*a.begin : 3*a.end : 3*a.end]
	return v3.Dense2Matrix(mat.NewDense(a.Len(), 3, c))
}

// SetValues copies m into the coordinates of the atoms covered by the span.
// It panics if m does not have one row per atom.
func (S Span[R]) SetValues(m *v3.Matrix) {
	a := S.Atoms()
	if m.NVecs() != a.Len() {
		panic(ErrShapeMismatch)
	}
	for i := 0; i < a.Len(); i++ {
		c := a.frame.coords[3*(a.begin+i):]
		c[0], c[1], c[2] = m.At(i, 0), m.At(i, 1), m.At(i, 2)
	}
}

// Intersect returns the elements present in both spans. Spans of
// different frames do not intersect.
func (S Span[R]) Intersect(o Span[R]) Span[R] {
	if S.frame != o.frame {
		return Span[R]{}
	}
	b, e := max(S.begin, o.begin), min(S.end, o.end)
	if e < b {
		e = b
	}
	return Span[R]{frame: S.frame, begin: b, end: e}
}

// Union returns the elements present in either span.
func (S Span[R]) Union(o Span[R]) Selection[R] {
	return S.Selection().Union(o.Selection())
}

// Difference returns the elements of S which are not in o.
func (S Span[R]) Difference(o Span[R]) Selection[R] {
	return S.Selection().Difference(o.Selection())
}

// Smart returns a span which follows its elements while the frame grows.
func (S Span[R]) Smart() *SmartSpan[R] {
	return newSmartSpan(S)
}

func (S Span[R]) String() string {
	return fmt.Sprintf("%sSpan[%d,%d)", kindName[R](), S.begin, S.end)
}
