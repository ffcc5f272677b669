/*
 * refs.go, part of xmol.
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

//Plain references are (frame, index) pairs. They are cheap values, but they are
//not updated when the frame grows: after an insertion before them they point
//to a different element. Use the Smart variants to keep track of an element.

// AtomRef is a plain reference to an atom.
type AtomRef struct {
	frame *Frame
	index int
}

func (A AtomRef) rec() *baseAtom { return &A.frame.atoms[A.index] }

// Frame returns the frame the atom lives in.
func (A AtomRef) Frame() *Frame { return A.frame }

// Index returns the position of the atom in the frame atom array.
func (A AtomRef) Index() int { return A.index }

// Name returns the atom name.
func (A AtomRef) Name() string { return A.rec().name }

// SetName sets the atom name.
func (A AtomRef) SetName(name string) { A.rec().name = name }

// ID returns the atom serial number.
func (A AtomRef) ID() AtomID { return A.rec().id }

// SetID sets the atom serial number.
func (A AtomRef) SetID(id AtomID) { A.rec().id = id }

// Mass returns the atom mass.
func (A AtomRef) Mass() float64 { return A.rec().mass }

// SetMass sets the atom mass.
func (A AtomRef) SetMass(m float64) { A.rec().mass = m }

// VdwRadius returns the van der Waals radius of the atom.
func (A AtomRef) VdwRadius() float64 { return A.rec().vdw }

// SetVdwRadius sets the van der Waals radius of the atom.
func (A AtomRef) SetVdwRadius(r float64) { A.rec().vdw = r }

// R returns the atom position.
func (A AtomRef) R() XYZ { return A.Coord().Get() }

// SetR sets the atom position.
func (A AtomRef) SetR(r XYZ) { A.Coord().Set(r) }

// Coord returns a reference to the coordinate of the atom.
func (A AtomRef) Coord() CoordRef { return CoordRef(A) }

// Residue returns the residue the atom belongs to.
func (A AtomRef) Residue() ResidueRef {
	return ResidueRef{frame: A.frame, index: A.rec().residue}
}

// Molecule returns the molecule the atom belongs to.
func (A AtomRef) Molecule() MoleculeRef { return A.Residue().Molecule() }

// Deleted is true if the atom was deleted from its frame.
func (A AtomRef) Deleted() bool { return A.rec().deleted }

// Smart returns a reference which stays on this atom while the frame grows.
func (A AtomRef) Smart() *SmartAtomRef {
	return &SmartAtomRef{newSmartRef(A)}
}

func (A AtomRef) String() string {
	if A.frame == nil {
		return "Atom(nil)"
	}
	return fmt.Sprintf("Atom(%s %d #%d)", A.Name(), A.ID(), A.index)
}

func (AtomRef) at(f *Frame, i int) AtomRef              { return AtomRef{frame: f, index: i} }
func (AtomRef) kind() arrayKind                         { return atomArray }
func (AtomRef) atomRange(f *Frame, b, e int) (int, int) { return b, e }
func (AtomRef) residueRange(f *Frame, b, e int) (int, int) {
	return f.atomsToResidues(b, e)
}
func (AtomRef) moleculeRange(f *Frame, b, e int) (int, int) {
	return f.residuesToMolecules(f.atomsToResidues(b, e))
}

// ResidueRef is a plain reference to a residue.
type ResidueRef struct {
	frame *Frame
	index int
}

func (R ResidueRef) rec() *baseResidue { return &R.frame.residues[R.index] }

// Frame returns the frame the residue lives in.
func (R ResidueRef) Frame() *Frame { return R.frame }

// Index returns the position of the residue in the frame residue array.
func (R ResidueRef) Index() int { return R.index }

// Name returns the residue name.
func (R ResidueRef) Name() string { return R.rec().name }

// SetName sets the residue name.
func (R ResidueRef) SetName(name string) { R.rec().name = name }

// ID returns the residue id.
func (R ResidueRef) ID() ResidueID { return R.rec().id }

// SetID sets the residue id.
func (R ResidueRef) SetID(id ResidueID) { R.rec().id = id }

// Len returns the number of atoms in the residue.
func (R ResidueRef) Len() int { return R.rec().atoms.len() }

// Empty is true for a residue without atoms.
func (R ResidueRef) Empty() bool { return R.Len() == 0 }

// Atoms returns the span of atoms of the residue.
func (R ResidueRef) Atoms() AtomSpan {
	s := R.rec().atoms
	return AtomSpan{frame: R.frame, begin: s.begin, end: s.end}
}

// Coords returns the span of coordinates of the atoms of the residue.
func (R ResidueRef) Coords() CoordSpan {
	s := R.rec().atoms
	return CoordSpan{frame: R.frame, begin: s.begin, end: s.end}
}

// Atom returns the first (non deleted) atom of the residue called name.
func (R ResidueRef) Atom(name string) (AtomRef, bool) {
	s := R.rec().atoms
	for i := s.begin; i < s.end; i++ {
		a := R.frame.atoms[i]
		if a.name == name && !a.deleted {
			return AtomRef{frame: R.frame, index: i}, true
		}
	}
	return AtomRef{}, false
}

// Molecule returns the molecule the residue belongs to.
func (R ResidueRef) Molecule() MoleculeRef {
	return MoleculeRef{frame: R.frame, index: R.rec().molecule}
}

// Next returns the residue after R in the same molecule, if any.
func (R ResidueRef) Next() (ResidueRef, bool) {
	m := R.frame.molecules[R.rec().molecule]
	if R.index+1 >= m.residues.end {
		return ResidueRef{}, false
	}
	return ResidueRef{frame: R.frame, index: R.index + 1}, true
}

// Prev returns the residue before R in the same molecule, if any.
func (R ResidueRef) Prev() (ResidueRef, bool) {
	m := R.frame.molecules[R.rec().molecule]
	if R.index-1 < m.residues.begin {
		return ResidueRef{}, false
	}
	return ResidueRef{frame: R.frame, index: R.index - 1}, true
}

// Deleted is true if the residue was deleted from its frame.
func (R ResidueRef) Deleted() bool { return R.rec().deleted }

// Smart returns a reference which stays on this residue while the frame grows.
func (R ResidueRef) Smart() *SmartResidueRef {
	return &SmartResidueRef{newSmartRef(R)}
}

func (R ResidueRef) String() string {
	if R.frame == nil {
		return "Residue(nil)"
	}
	return fmt.Sprintf("Residue(%s %s #%d)", R.Name(), R.ID(), R.index)
}

func (ResidueRef) at(f *Frame, i int) ResidueRef { return ResidueRef{frame: f, index: i} }
func (ResidueRef) kind() arrayKind               { return residueArray }
func (ResidueRef) atomRange(f *Frame, b, e int) (int, int) {
	return f.residuesToAtoms(b, e)
}
func (ResidueRef) residueRange(f *Frame, b, e int) (int, int) { return b, e }
func (ResidueRef) moleculeRange(f *Frame, b, e int) (int, int) {
	return f.residuesToMolecules(b, e)
}

// MoleculeRef is a plain reference to a molecule.
type MoleculeRef struct {
	frame *Frame
	index int
}

func (M MoleculeRef) rec() *baseMolecule { return &M.frame.molecules[M.index] }

// Frame returns the frame the molecule lives in.
func (M MoleculeRef) Frame() *Frame { return M.frame }

// Index returns the position of the molecule in the frame molecule array.
func (M MoleculeRef) Index() int { return M.index }

// Name returns the molecule name (the chain name, in PDB parlance).
func (M MoleculeRef) Name() string { return M.rec().name }

// SetName sets the molecule name.
func (M MoleculeRef) SetName(name string) { M.rec().name = name }

// Len returns the number of residues in the molecule.
func (M MoleculeRef) Len() int { return M.rec().residues.len() }

// Empty is true for a molecule without residues.
func (M MoleculeRef) Empty() bool { return M.Len() == 0 }

// Residues returns the span of residues of the molecule.
func (M MoleculeRef) Residues() ResidueSpan {
	s := M.rec().residues
	return ResidueSpan{frame: M.frame, begin: s.begin, end: s.end}
}

// Atoms returns the span of atoms of all the residues of the molecule.
func (M MoleculeRef) Atoms() AtomSpan {
	b, e := M.frame.residuesToAtoms(M.rec().residues.begin, M.rec().residues.end)
	return AtomSpan{frame: M.frame, begin: b, end: e}
}

// Coords returns the span of coordinates of all the atoms of the molecule.
func (M MoleculeRef) Coords() CoordSpan {
	b, e := M.frame.residuesToAtoms(M.rec().residues.begin, M.rec().residues.end)
	return CoordSpan{frame: M.frame, begin: b, end: e}
}

// Residue returns the first (non deleted) residue of the molecule with the given id.
func (M MoleculeRef) Residue(id ResidueID) (ResidueRef, bool) {
	s := M.rec().residues
	for i := s.begin; i < s.end; i++ {
		r := M.frame.residues[i]
		if r.id == id && !r.deleted {
			return ResidueRef{frame: M.frame, index: i}, true
		}
	}
	return ResidueRef{}, false
}

// Deleted is true if the molecule was deleted from its frame.
func (M MoleculeRef) Deleted() bool { return M.rec().deleted }

// Smart returns a reference which stays on this molecule while the frame grows.
func (M MoleculeRef) Smart() *SmartMoleculeRef {
	return &SmartMoleculeRef{newSmartRef(M)}
}

func (M MoleculeRef) String() string {
	if M.frame == nil {
		return "Molecule(nil)"
	}
	return fmt.Sprintf("Molecule(%s #%d)", M.Name(), M.index)
}

func (MoleculeRef) at(f *Frame, i int) MoleculeRef { return MoleculeRef{frame: f, index: i} }
func (MoleculeRef) kind() arrayKind                { return moleculeArray }
func (MoleculeRef) atomRange(f *Frame, b, e int) (int, int) {
	return f.residuesToAtoms(f.moleculesToResidues(b, e))
}
func (MoleculeRef) residueRange(f *Frame, b, e int) (int, int) {
	return f.moleculesToResidues(b, e)
}
func (MoleculeRef) moleculeRange(f *Frame, b, e int) (int, int) { return b, e }

// CoordRef is a plain reference to the coordinate of an atom. It shares the index of the atom.
type CoordRef struct {
	frame *Frame
	index int
}

// Frame returns the frame the coordinate lives in.
func (C CoordRef) Frame() *Frame { return C.frame }

// Index returns the position of the coordinate, the same as the index of its atom.
func (C CoordRef) Index() int { return C.index }

// Get returns the coordinate.
func (C CoordRef) Get() XYZ {
	c := C.frame.coords[3*C.index : 3*C.index+3]
	return XYZ{c[0], c[1], c[2]}
}

// Set overwrites the coordinate.
func (C CoordRef) Set(r XYZ) {
	c := C.frame.coords[3*C.index : 3*C.index+3]
	c[0], c[1], c[2] = r.X, r.Y, r.Z
}

// Atom returns the atom of the coordinate.
func (C CoordRef) Atom() AtomRef { return AtomRef(C) }

// Deleted is true if the atom of the coordinate was deleted.
func (C CoordRef) Deleted() bool { return C.frame.atoms[C.index].deleted }

// Smart returns a reference which stays on this coordinate while the frame grows.
func (C CoordRef) Smart() *SmartCoordRef {
	return &SmartCoordRef{newSmartRef(C)}
}

func (C CoordRef) String() string {
	if C.frame == nil {
		return "Coord(nil)"
	}
	return fmt.Sprintf("Coord(%s #%d)", C.Get(), C.index)
}

func (CoordRef) at(f *Frame, i int) CoordRef             { return CoordRef{frame: f, index: i} }
func (CoordRef) kind() arrayKind                         { return coordArray }
func (CoordRef) atomRange(f *Frame, b, e int) (int, int) { return b, e }
func (CoordRef) residueRange(f *Frame, b, e int) (int, int) {
	return f.atomsToResidues(b, e)
}
func (CoordRef) moleculeRange(f *Frame, b, e int) (int, int) {
	return f.residuesToMolecules(f.atomsToResidues(b, e))
}
