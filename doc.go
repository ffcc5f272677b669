/*
 * doc.go, part of xmol.
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

/*
Package xmol keeps molecular structures in flat arrays and hands out references
to them which stay correct while the structure grows.

A Frame owns four arrays: atoms, residues, molecules and coordinates. Molecules
own contiguous blocks of residues and residues own contiguous blocks of atoms.
Elements are reached through four families of handles:

	AtomRef, ResidueRef, MoleculeRef, CoordRef      plain references
	SmartAtomRef, ..., SmartCoordRef                references that track their element
	AtomSpan, ResidueSpan, ...                      contiguous ranges
	SmartAtomSpan, ...                              ranges that track their elements
	AtomSelection, ...                              sorted sets, possibly from several frames
	SmartAtomSelection, ...                         sets that track their elements

Plain handles are values and are only valid until the next growth of their frame.
Smart handles register on the frame, are updated by it when elements move and
report a typed error once the frame is closed. They must be released with Close.

Building a structure:

	f := xmol.NewFrame()
	m := f.AddMolecule()
	m.SetName("A")
	r := f.AddResidue(m)
	r.SetName("GLY")
	a := f.AddAtom(r)
	a.SetName("CA")
	ca := f.Atoms().Filter(xmol.AtomName("CA"))

Building with the xmoldebug tag checks the frame invariants after every growth operation.
*/
package xmol
