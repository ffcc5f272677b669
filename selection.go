/*
 * selection.go, part of xmol.
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
	"slices"

	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

// Selection is a sorted set of elements, possibly from several frames.
// Elements are ordered by frame serial, then by index, and never repeated.
// Selections are values: the set operations return new selections, except
// the *With methods, which change the receiver.
type Selection[R element[R]] struct {
	refs []R
}

type (
	AtomSelection     = Selection[AtomRef]
	ResidueSelection  = Selection[ResidueRef]
	MoleculeSelection = Selection[MoleculeRef]
	CoordSelection    = Selection[CoordRef]
)

// NewSelection returns the selection of the given elements, sorted and without duplicates.
// It panics on a zero reference.
func NewSelection[R element[R]](refs ...R) Selection[R] {
	s := slices.Clone(refs)
	for _, r := range s {
		if r.Frame() == nil {
			panic(ErrInvalidRef)
		}
	}
	slices.SortFunc(s, compareRefs[R])
	return Selection[R]{refs: slices.Compact(s)}
}

// Len returns the number of elements in the selection.
func (S Selection[R]) Len() int { return len(S.refs) }

// Empty is true for a selection without elements.
func (S Selection[R]) Empty() bool { return len(S.refs) == 0 }

// At returns the ith element of the selection.
func (S Selection[R]) At(i int) (R, error) {
	if i < 0 || i >= len(S.refs) {
		var z R
		return z, &OutOfRangeError{Index: i, Len: len(S.refs)}
	}
	return S.refs[i], nil
}

// Refs returns a copy of the elements of the selection.
func (S Selection[R]) Refs() []R { return slices.Clone(S.refs) }

// All iterates over the position in the selection and the element.
func (S Selection[R]) All() iter.Seq2[int, R] {
	return slices.All(S.refs)
}

// Index returns the position of r in the selection.
func (S Selection[R]) Index(r R) (int, bool) {
	i, ok := slices.BinarySearchFunc(S.refs, r, compareRefs[R])
	if !ok {
		return -1, false
	}
	return i, true
}

// Contains is true if r is in the selection.
func (S Selection[R]) Contains(r R) bool {
	_, ok := S.Index(r)
	return ok
}

// Frames returns the distinct frames of the selection, in selection order.
func (S Selection[R]) Frames() []*Frame {
	var ret []*Frame
	for _, r := range S.refs {
		if n := len(ret); n == 0 || ret[n-1] != r.Frame() {
			ret = append(ret, r.Frame())
		}
	}
	return ret
}

// Slice returns the elements in [start,stop). Bounds past the end are clamped,
// negative bounds give an *OutOfRangeError.
func (S Selection[R]) Slice(start, stop int) (Selection[R], error) {
	return S.Stride(start, stop, 1)
}

// Stride returns every step-th element in [start,stop). step must be positive.
func (S Selection[R]) Stride(start, stop, step int) (Selection[R], error) {
	if step <= 0 {
		return Selection[R]{}, errDecorate(&OutOfRangeError{Index: step, Len: len(S.refs)}, "Stride: step")
	}
	start, stop, err := clamp(start, stop, len(S.refs))
	if err != nil {
		return Selection[R]{}, errDecorate(err, "Stride")
	}
	refs := make([]R, 0, (stop-start+step-1)/step)
	for i := start; i < stop; i += step {
		refs = append(refs, S.refs[i])
	}
	return Selection[R]{refs: refs}, nil
}

// Filter returns the elements of the selection for which pred is true, skipping deleted ones.
func (S Selection[R]) Filter(pred func(R) bool) Selection[R] {
	var refs []R
	for _, r := range S.refs {
		if !r.Deleted() && pred(r) {
			refs = append(refs, r)
		}
	}
	return Selection[R]{refs: refs}
}

// Union returns the elements present in S or in o.
func (S Selection[R]) Union(o Selection[R]) Selection[R] {
	return Selection[R]{refs: mergeUnion(S.refs, o.refs)}
}

// Difference returns the elements of S not present in o.
func (S Selection[R]) Difference(o Selection[R]) Selection[R] {
	return Selection[R]{refs: mergeDifference(S.refs, o.refs)}
}

// Intersect returns the elements present in both S and o.
func (S Selection[R]) Intersect(o Selection[R]) Selection[R] {
	return Selection[R]{refs: mergeIntersection(S.refs, o.refs)}
}

// UnionWith adds the elements of o to S.
func (S *Selection[R]) UnionWith(o Selection[R]) { S.refs = mergeUnion(S.refs, o.refs) }

// SubtractWith removes the elements of o from S.
func (S *Selection[R]) SubtractWith(o Selection[R]) { S.refs = mergeDifference(S.refs, o.refs) }

// IntersectWith keeps in S only the elements also in o.
func (S *Selection[R]) IntersectWith(o Selection[R]) { S.refs = mergeIntersection(S.refs, o.refs) }

// Atoms returns the atoms of the elements of the selection.
func (S Selection[R]) Atoms() AtomSelection {
	var z R
	return project[R, AtomRef](S.refs, z.atomRange)
}

// Coords returns the coordinates of the atoms of the elements of the selection.
func (S Selection[R]) Coords() CoordSelection {
	var z R
	return project[R, CoordRef](S.refs, z.atomRange)
}

// Residues returns the residues of the elements of the selection, without repetitions.
func (S Selection[R]) Residues() ResidueSelection {
	var z R
	return project[R, ResidueRef](S.refs, z.residueRange)
}

// Molecules returns the molecules of the elements of the selection, without repetitions.
func (S Selection[R]) Molecules() MoleculeSelection {
	var z R
	return project[R, MoleculeRef](S.refs, z.moleculeRange)
}

// Values returns a copy of the coordinates of the atoms of the selection, one row per atom.
func (S Selection[R]) Values() *v3.Matrix {
	atoms := S.Atoms().refs
	m := v3.Zeros(len(atoms))
	eachFrameRun(atoms, func(f *Frame, start int, idx []int) {
		m.View(start, len(idx)).SomeVecs(f.Atoms().Values(), idx)
	})
	return m
}

// SetValues copies m into the coordinates of the atoms of the selection.
// It panics if m does not have one row per atom.
func (S Selection[R]) SetValues(m *v3.Matrix) {
	atoms := S.Atoms().refs
	if m.NVecs() != len(atoms) {
		panic(ErrShapeMismatch)
	}
	eachFrameRun(atoms, func(f *Frame, start int, idx []int) {
		f.Atoms().Values().SetVecs(m.View(start, len(idx)), idx)
	})
}

// eachFrameRun calls fn once per frame of the sorted atoms, with the position
// of the first atom of that frame in atoms and the atom indexes in the frame.
func eachFrameRun(atoms []AtomRef, fn func(f *Frame, start int, idx []int)) {
	for start := 0; start < len(atoms); {
		f := atoms[start].frame
		idx := make([]int, 0, len(atoms)-start)
		end := start
		for ; end < len(atoms) && atoms[end].frame == f; end++ {
			idx = append(idx, atoms[end].index)
		}
		fn(f, start, idx)
		start = end
	}
}

// Smart returns a selection which follows its elements while their frames grow.
func (S Selection[R]) Smart() *SmartSelection[R] {
	return newSmartSelection(S.refs)
}

func (S Selection[R]) String() string {
	return fmt.Sprintf("%sSelection(%d)", kindName[R](), len(S.refs))
}

// project maps each element to the [b,e) range given by rangeOf and collects the
// elements of kind P in those ranges. Input order makes the output sorted, so
// repetitions can only be adjacent.
func project[R element[R], P element[P]](refs []R, rangeOf func(f *Frame, b, e int) (int, int)) Selection[P] {
	var z P
	out := make([]P, 0, len(refs))
	for _, r := range refs {
		f := r.Frame()
		b, e := rangeOf(f, r.Index(), r.Index()+1)
		for j := b; j < e; j++ {
			p := z.at(f, j)
			if n := len(out); n > 0 && out[n-1] == p {
				continue
			}
			out = append(out, p)
		}
	}
	return Selection[P]{refs: out}
}

//The merges assume both inputs sorted and free of repetitions.

func mergeUnion[R element[R]](a, b []R) []R {
	out := make([]R, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := compareRefs(a[i], b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func mergeDifference[R element[R]](a, b []R) []R {
	out := make([]R, 0, len(a))
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) {
			out = append(out, a[i:]...)
			break
		}
		switch c := compareRefs(a[i], b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	return out
}

func mergeIntersection[R element[R]](a, b []R) []R {
	out := make([]R, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := compareRefs(a[i], b[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
