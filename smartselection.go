/*
 * smartselection.go, part of xmol.
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
	"slices"
)

// SelectionState tells whether a smart selection can still be used.
type SelectionState int

const (
	SelectionOK SelectionState = iota
	//one of the frames of the selection was closed.
	SelectionHasDanglingReferences
)

func (s SelectionState) String() string {
	if s == SelectionOK {
		return "ok"
	}
	return "dangling"
}

// SmartSelection is a selection registered on every frame it holds elements
// from, exactly once per frame. It follows its elements while the frames grow
// and move. If one of the frames is closed the selection becomes dangling:
// every access returns a *DanglingSelectionError until Clear is called.
// A SmartSelection must be released with Close.
type SmartSelection[R element[R]] struct {
	refs   []R
	frames map[*Frame]int //number of elements per observed frame
	state  SelectionState
}

type (
	SmartAtomSelection     = SmartSelection[AtomRef]
	SmartResidueSelection  = SmartSelection[ResidueRef]
	SmartMoleculeSelection = SmartSelection[MoleculeRef]
	SmartCoordSelection    = SmartSelection[CoordRef]
)

// newSmartSelection takes sorted, repetition-free refs.
func newSmartSelection[R element[R]](refs []R) *SmartSelection[R] {
	S := &SmartSelection[R]{}
	S.rebind(slices.Clone(refs))
	return S
}

// rebind sets the elements of S to refs, registering S on the frames it did
// not observe yet and unregistering it from those it no longer needs.
func (S *SmartSelection[R]) rebind(refs []R) {
	var z R
	counts := make(map[*Frame]int)
	for _, r := range refs {
		f := r.Frame()
		if f.closed {
			S.state = SelectionHasDanglingReferences
			continue
		}
		counts[f]++
	}
	for f := range counts {
		if _, ok := S.frames[f]; !ok {
			f.registry(z.kind()).AddObserver(S)
		}
	}
	for f := range S.frames {
		if _, ok := counts[f]; !ok {
			f.registry(z.kind()).RemoveObserver(S)
		}
	}
	S.refs = refs
	S.frames = counts
}

func (S *SmartSelection[R]) onElementsMove(f *Frame, begin, end, shift int) {
	var z R
	//elements of f are contiguous and sorted by index in refs.
	lo, _ := slices.BinarySearchFunc(S.refs, z.at(f, begin), compareRefs[R])
	for i := lo; i < len(S.refs) && S.refs[i].Frame() == f && S.refs[i].Index() < end; i++ {
		S.refs[i] = z.at(f, S.refs[i].Index()+shift)
	}
}

func (S *SmartSelection[R]) onFrameMove(from, to *Frame) {
	var z R
	for i, r := range S.refs {
		if r.Frame() == from {
			S.refs[i] = z.at(to, r.Index())
		}
	}
	S.frames[to] = S.frames[from]
	delete(S.frames, from)
}

func (S *SmartSelection[R]) onFrameDelete(f *Frame) {
	S.state = SelectionHasDanglingReferences
	delete(S.frames, f)
}

func (S *SmartSelection[R]) check(op string) error {
	if S.state != SelectionOK {
		return &DanglingSelectionError{Op: op}
	}
	return nil
}

// State returns the state of the selection.
func (S *SmartSelection[R]) State() SelectionState { return S.state }

// Selection returns the current elements as a plain selection, valid until the next growth.
func (S *SmartSelection[R]) Selection() (Selection[R], error) {
	if err := S.check("Selection"); err != nil {
		return Selection[R]{}, err
	}
	return Selection[R]{refs: slices.Clone(S.refs)}, nil
}

// Len returns the number of elements in the selection.
func (S *SmartSelection[R]) Len() (int, error) {
	if err := S.check("Len"); err != nil {
		return 0, err
	}
	return len(S.refs), nil
}

// At returns the ith element of the selection.
func (S *SmartSelection[R]) At(i int) (R, error) {
	var z R
	if err := S.check("At"); err != nil {
		return z, err
	}
	if i < 0 || i >= len(S.refs) {
		return z, &OutOfRangeError{Index: i, Len: len(S.refs)}
	}
	r := S.refs[i]
	if r.Deleted() {
		return z, &DeletedElementError{Op: "At", Index: r.Index()}
	}
	return r, nil
}

// Refs returns the elements of the selection. It fails if any of them was deleted.
func (S *SmartSelection[R]) Refs() ([]R, error) {
	if err := S.check("Refs"); err != nil {
		return nil, err
	}
	for _, r := range S.refs {
		if r.Deleted() {
			return nil, &DeletedElementError{Op: "Refs", Index: r.Index()}
		}
	}
	return slices.Clone(S.refs), nil
}

// Frames returns the frames the selection is registered on, in selection order.
func (S *SmartSelection[R]) Frames() []*Frame {
	return Selection[R]{refs: S.refs}.Frames()
}

// Filter returns the elements for which pred is true, skipping deleted ones.
func (S *SmartSelection[R]) Filter(pred func(R) bool) (Selection[R], error) {
	if err := S.check("Filter"); err != nil {
		return Selection[R]{}, err
	}
	return Selection[R]{refs: S.refs}.Filter(pred), nil
}

// UnionWith adds the elements of o, registering on new frames as needed.
func (S *SmartSelection[R]) UnionWith(o Selection[R]) error {
	if err := S.check("UnionWith"); err != nil {
		return err
	}
	S.rebind(mergeUnion(S.refs, o.refs))
	return nil
}

// SubtractWith removes the elements of o, unregistering from frames left without elements.
func (S *SmartSelection[R]) SubtractWith(o Selection[R]) error {
	if err := S.check("SubtractWith"); err != nil {
		return err
	}
	S.rebind(mergeDifference(S.refs, o.refs))
	return nil
}

// IntersectWith keeps only the elements also in o, unregistering from frames left without elements.
func (S *SmartSelection[R]) IntersectWith(o Selection[R]) error {
	if err := S.check("IntersectWith"); err != nil {
		return err
	}
	S.rebind(mergeIntersection(S.refs, o.refs))
	return nil
}

// DropDeleted removes the deleted elements from the selection.
func (S *SmartSelection[R]) DropDeleted() error {
	if err := S.check("DropDeleted"); err != nil {
		return err
	}
	refs := make([]R, 0, len(S.refs))
	for _, r := range S.refs {
		if !r.Deleted() {
			refs = append(refs, r)
		}
	}
	S.rebind(refs)
	return nil
}

// Copy returns an independent smart selection with the same elements.
func (S *SmartSelection[R]) Copy() (*SmartSelection[R], error) {
	if err := S.check("Copy"); err != nil {
		return nil, err
	}
	return newSmartSelection(S.refs), nil
}

// TakeFrom makes S hold the elements and registrations of o, leaving o empty.
// Whatever S held before is released.
func (S *SmartSelection[R]) TakeFrom(o *SmartSelection[R]) {
	if S == o {
		return
	}
	S.Clear()
	var z R
	for f := range o.frames {
		f.registry(z.kind()).MoveObserver(o, S)
	}
	S.refs, S.frames, S.state = o.refs, o.frames, o.state
	o.refs, o.frames, o.state = nil, nil, SelectionOK
}

// Clear empties the selection, releases its registrations and resets its state.
func (S *SmartSelection[R]) Clear() {
	S.rebind(nil)
	S.state = SelectionOK
}

// Close releases the registrations of the selection. It is the same as Clear.
func (S *SmartSelection[R]) Close() { S.Clear() }

func (S *SmartSelection[R]) String() string {
	return fmt.Sprintf("Smart%sSelection(%d, %s)", kindName[R](), len(S.refs), S.state)
}
