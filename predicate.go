/*
 * predicate.go, part of xmol.
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

import "slices"

//Predicates are plain functions, so they can be passed directly to the
//Filter methods of spans and selections, and combined with And, Or, Xor and Not.

// AtomPredicate selects atoms.
type AtomPredicate func(AtomRef) bool

func (P AtomPredicate) And(o AtomPredicate) AtomPredicate {
	return func(a AtomRef) bool { return P(a) && o(a) }
}

func (P AtomPredicate) Or(o AtomPredicate) AtomPredicate {
	return func(a AtomRef) bool { return P(a) || o(a) }
}

func (P AtomPredicate) Xor(o AtomPredicate) AtomPredicate {
	return func(a AtomRef) bool { return P(a) != o(a) }
}

func (P AtomPredicate) Not() AtomPredicate {
	return func(a AtomRef) bool { return !P(a) }
}

// AtomName is true for atoms called any of names.
func AtomName(names ...string) AtomPredicate {
	return func(a AtomRef) bool { return slices.Contains(names, a.Name()) }
}

// AtomIDs is true for atoms with any of the given ids.
func AtomIDs(ids ...AtomID) AtomPredicate {
	return func(a AtomRef) bool { return slices.Contains(ids, a.ID()) }
}

// ResiduePredicate selects residues.
type ResiduePredicate func(ResidueRef) bool

func (P ResiduePredicate) And(o ResiduePredicate) ResiduePredicate {
	return func(r ResidueRef) bool { return P(r) && o(r) }
}

func (P ResiduePredicate) Or(o ResiduePredicate) ResiduePredicate {
	return func(r ResidueRef) bool { return P(r) || o(r) }
}

func (P ResiduePredicate) Xor(o ResiduePredicate) ResiduePredicate {
	return func(r ResidueRef) bool { return P(r) != o(r) }
}

func (P ResiduePredicate) Not() ResiduePredicate {
	return func(r ResidueRef) bool { return !P(r) }
}

// Atoms lifts P to atoms: an atom is selected if its residue is.
func (P ResiduePredicate) Atoms() AtomPredicate {
	return func(a AtomRef) bool { return P(a.Residue()) }
}

// ResidueName is true for residues called any of names.
func ResidueName(names ...string) ResiduePredicate {
	return func(r ResidueRef) bool { return slices.Contains(names, r.Name()) }
}

// ResidueIDs is true for residues with any of the given ids.
func ResidueIDs(ids ...ResidueID) ResiduePredicate {
	return func(r ResidueRef) bool { return slices.Contains(ids, r.ID()) }
}

// ResidueSerials is true for residues whose serial is any of the given ones, whatever the insertion code.
func ResidueSerials(serials ...int) ResiduePredicate {
	return func(r ResidueRef) bool { return slices.Contains(serials, r.ID().Serial) }
}

// MoleculePredicate selects molecules.
type MoleculePredicate func(MoleculeRef) bool

func (P MoleculePredicate) And(o MoleculePredicate) MoleculePredicate {
	return func(m MoleculeRef) bool { return P(m) && o(m) }
}

func (P MoleculePredicate) Or(o MoleculePredicate) MoleculePredicate {
	return func(m MoleculeRef) bool { return P(m) || o(m) }
}

func (P MoleculePredicate) Xor(o MoleculePredicate) MoleculePredicate {
	return func(m MoleculeRef) bool { return P(m) != o(m) }
}

func (P MoleculePredicate) Not() MoleculePredicate {
	return func(m MoleculeRef) bool { return !P(m) }
}

// Residues lifts P to residues: a residue is selected if its molecule is.
func (P MoleculePredicate) Residues() ResiduePredicate {
	return func(r ResidueRef) bool { return P(r.Molecule()) }
}

// Atoms lifts P to atoms: an atom is selected if its molecule is.
func (P MoleculePredicate) Atoms() AtomPredicate {
	return func(a AtomRef) bool { return P(a.Molecule()) }
}

// MoleculeName is true for molecules called any of names.
func MoleculeName(names ...string) MoleculePredicate {
	return func(m MoleculeRef) bool { return slices.Contains(names, m.Name()) }
}
