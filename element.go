/*
 * element.go, part of xmol.
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

import "cmp"

// element is satisfied by the four plain reference types: AtomRef, ResidueRef,
// MoleculeRef and CoordRef. Spans, selections and smart handles are generic over it.
// The unexported methods do not use the receiver, so they can be called on a zero value.
type element[R any] interface {
	comparable
	Frame() *Frame
	Index() int
	Deleted() bool

	//at builds the reference to element i of f.
	at(f *Frame, i int) R
	//kind is the frame array the element lives in.
	kind() arrayKind
	//the [b,e) range of elements of f mapped to atom, residue and molecule indexes.
	atomRange(f *Frame, b, e int) (int, int)
	residueRange(f *Frame, b, e int) (int, int)
	moleculeRange(f *Frame, b, e int) (int, int)
}

// compareRefs is the total order of references: by frame serial, then by index.
func compareRefs[R element[R]](a, b R) int {
	if c := cmp.Compare(serialOf(a.Frame()), serialOf(b.Frame())); c != 0 {
		return c
	}
	return cmp.Compare(a.Index(), b.Index())
}

func serialOf(f *Frame) uint64 {
	if f == nil {
		return 0
	}
	return f.serial
}

// kindName is used in String methods.
func kindName[R element[R]]() string {
	var z R
	return z.kind().label()
}
