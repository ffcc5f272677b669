/*
 * smartref.go, part of xmol.
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

// SmartRef is a reference registered on its frame, which keeps pointing to the
// same element while the frame grows, and which follows the storage when the
// frame content is moved to another Frame. Once the frame is closed every
// access returns a *DeadFrameAccessError.
// A SmartRef must be released with Close. The zero value is not usable,
// get one from the Smart method of a plain reference.
type SmartRef[R element[R]] struct {
	frame *Frame
	index int
	dead  bool
}

func newSmartRef[R element[R]](r R) *SmartRef[R] {
	f := r.Frame()
	if f == nil {
		panic(ErrInvalidRef)
	}
	S := &SmartRef[R]{frame: f, index: r.Index()}
	if f.closed {
		S.dead = true
		return S
	}
	f.registry(r.kind()).AddObserver(S)
	return S
}

func (S *SmartRef[R]) onElementsMove(f *Frame, begin, end, shift int) {
	if S.index >= begin && S.index < end {
		S.index += shift
	}
}

func (S *SmartRef[R]) onFrameMove(from, to *Frame) { S.frame = to }

func (S *SmartRef[R]) onFrameDelete(f *Frame) { S.dead = true }

func (S *SmartRef[R]) check(op string) error {
	if S.dead {
		return &DeadFrameAccessError{Op: op}
	}
	var z R
	if z.at(S.frame, S.index).Deleted() {
		return &DeletedElementError{Op: op, Index: S.index}
	}
	return nil
}

// Ref returns the plain reference to the element, valid until the next growth of the frame.
func (S *SmartRef[R]) Ref() (R, error) {
	var z R
	if err := S.check("Ref"); err != nil {
		return z, err
	}
	return z.at(S.frame, S.index), nil
}

// Frame returns the frame the element currently lives in.
func (S *SmartRef[R]) Frame() (*Frame, error) {
	if S.dead {
		return nil, &DeadFrameAccessError{Op: "Frame"}
	}
	return S.frame, nil
}

// Index returns the current index of the element in its frame array.
func (S *SmartRef[R]) Index() (int, error) {
	if S.dead {
		return -1, &DeadFrameAccessError{Op: "Index"}
	}
	return S.index, nil
}

// Alive is false once the frame was closed or the reference itself was closed.
func (S *SmartRef[R]) Alive() bool { return !S.dead }

// Deleted is true if the element was deleted from its frame.
func (S *SmartRef[R]) Deleted() (bool, error) {
	if S.dead {
		return false, &DeadFrameAccessError{Op: "Deleted"}
	}
	var z R
	return z.at(S.frame, S.index).Deleted(), nil
}

// Close unregisters the reference from its frame. After Close the reference
// behaves as if its frame was closed. Closing twice does nothing.
func (S *SmartRef[R]) Close() {
	if !S.dead && S.frame != nil {
		var z R
		S.frame.registry(z.kind()).RemoveObserver(S)
	}
	S.dead = true
	S.frame = nil
}

// TakeFrom makes S track what o tracked and releases o.
// Whatever S was tracking before is released.
func (S *SmartRef[R]) TakeFrom(o *SmartRef[R]) {
	if S == o {
		return
	}
	S.Close()
	S.frame, S.index, S.dead = o.frame, o.index, o.dead
	S.dead = S.dead || S.frame == nil
	if !o.dead && o.frame != nil {
		var z R
		o.frame.registry(z.kind()).MoveObserver(o, S)
	}
	o.frame, o.dead = nil, true
}

func (S *SmartRef[R]) String() string {
	if S.dead {
		return fmt.Sprintf("Smart%sRef(dead)", kindName[R]())
	}
	return fmt.Sprintf("Smart%sRef(#%d)", kindName[R](), S.index)
}

// SmartAtomRef is a smart reference to an atom.
type SmartAtomRef struct {
	*SmartRef[AtomRef]
}

func (S SmartAtomRef) ref(op string) (AtomRef, error) {
	if err := S.check(op); err != nil {
		return AtomRef{}, err
	}
	return AtomRef{frame: S.frame, index: S.index}, nil
}

// Name returns the atom name.
func (S SmartAtomRef) Name() (string, error) {
	a, err := S.ref("Name")
	if err != nil {
		return "", err
	}
	return a.Name(), nil
}

// SetName sets the atom name.
func (S SmartAtomRef) SetName(name string) error {
	a, err := S.ref("SetName")
	if err != nil {
		return err
	}
	a.SetName(name)
	return nil
}

// ID returns the atom serial number.
func (S SmartAtomRef) ID() (AtomID, error) {
	a, err := S.ref("ID")
	if err != nil {
		return 0, err
	}
	return a.ID(), nil
}

// SetID sets the atom serial number.
func (S SmartAtomRef) SetID(id AtomID) error {
	a, err := S.ref("SetID")
	if err != nil {
		return err
	}
	a.SetID(id)
	return nil
}

// Mass returns the atom mass.
func (S SmartAtomRef) Mass() (float64, error) {
	a, err := S.ref("Mass")
	if err != nil {
		return 0, err
	}
	return a.Mass(), nil
}

// SetMass sets the atom mass.
func (S SmartAtomRef) SetMass(m float64) error {
	a, err := S.ref("SetMass")
	if err != nil {
		return err
	}
	a.SetMass(m)
	return nil
}

// VdwRadius returns the van der Waals radius of the atom.
func (S SmartAtomRef) VdwRadius() (float64, error) {
	a, err := S.ref("VdwRadius")
	if err != nil {
		return 0, err
	}
	return a.VdwRadius(), nil
}

// SetVdwRadius sets the van der Waals radius of the atom.
func (S SmartAtomRef) SetVdwRadius(r float64) error {
	a, err := S.ref("SetVdwRadius")
	if err != nil {
		return err
	}
	a.SetVdwRadius(r)
	return nil
}

// R returns the atom position.
func (S SmartAtomRef) R() (XYZ, error) {
	a, err := S.ref("R")
	if err != nil {
		return XYZ{}, err
	}
	return a.R(), nil
}

// SetR sets the atom position.
func (S SmartAtomRef) SetR(r XYZ) error {
	a, err := S.ref("SetR")
	if err != nil {
		return err
	}
	a.SetR(r)
	return nil
}

// Residue returns a plain reference to the residue of the atom.
func (S SmartAtomRef) Residue() (ResidueRef, error) {
	a, err := S.ref("Residue")
	if err != nil {
		return ResidueRef{}, err
	}
	return a.Residue(), nil
}

// Coord returns a plain reference to the coordinate of the atom.
func (S SmartAtomRef) Coord() (CoordRef, error) {
	a, err := S.ref("Coord")
	if err != nil {
		return CoordRef{}, err
	}
	return a.Coord(), nil
}

// Molecule returns a plain reference to the molecule of the atom.
func (S SmartAtomRef) Molecule() (MoleculeRef, error) {
	a, err := S.ref("Molecule")
	if err != nil {
		return MoleculeRef{}, err
	}
	return a.Molecule(), nil
}

// SmartResidueRef is a smart reference to a residue.
type SmartResidueRef struct {
	*SmartRef[ResidueRef]
}

func (S SmartResidueRef) ref(op string) (ResidueRef, error) {
	if err := S.check(op); err != nil {
		return ResidueRef{}, err
	}
	return ResidueRef{frame: S.frame, index: S.index}, nil
}

// Name returns the residue name.
func (S SmartResidueRef) Name() (string, error) {
	r, err := S.ref("Name")
	if err != nil {
		return "", err
	}
	return r.Name(), nil
}

// SetName sets the residue name.
func (S SmartResidueRef) SetName(name string) error {
	r, err := S.ref("SetName")
	if err != nil {
		return err
	}
	r.SetName(name)
	return nil
}

// ID returns the residue id.
func (S SmartResidueRef) ID() (ResidueID, error) {
	r, err := S.ref("ID")
	if err != nil {
		return ResidueID{}, err
	}
	return r.ID(), nil
}

// SetID sets the residue id.
func (S SmartResidueRef) SetID(id ResidueID) error {
	r, err := S.ref("SetID")
	if err != nil {
		return err
	}
	r.SetID(id)
	return nil
}

// Atoms returns the current atom span of the residue.
func (S SmartResidueRef) Atoms() (AtomSpan, error) {
	r, err := S.ref("Atoms")
	if err != nil {
		return AtomSpan{}, err
	}
	return r.Atoms(), nil
}

// Molecule returns a plain reference to the molecule of the residue.
func (S SmartResidueRef) Molecule() (MoleculeRef, error) {
	r, err := S.ref("Molecule")
	if err != nil {
		return MoleculeRef{}, err
	}
	return r.Molecule(), nil
}

// Coords returns the current coordinate span of the residue.
func (S SmartResidueRef) Coords() (CoordSpan, error) {
	r, err := S.ref("Coords")
	if err != nil {
		return CoordSpan{}, err
	}
	return r.Coords(), nil
}

// Len returns the number of atoms of the residue.
func (S SmartResidueRef) Len() (int, error) {
	r, err := S.ref("Len")
	if err != nil {
		return 0, err
	}
	return r.Len(), nil
}

// Next returns the following residue of the same molecule, if any.
func (S SmartResidueRef) Next() (ResidueRef, bool, error) {
	r, err := S.ref("Next")
	if err != nil {
		return ResidueRef{}, false, err
	}
	n, ok := r.Next()
	return n, ok, nil
}

// Prev returns the preceding residue of the same molecule, if any.
func (S SmartResidueRef) Prev() (ResidueRef, bool, error) {
	r, err := S.ref("Prev")
	if err != nil {
		return ResidueRef{}, false, err
	}
	p, ok := r.Prev()
	return p, ok, nil
}

// Atom returns the first atom of the residue called name.
func (S SmartResidueRef) Atom(name string) (AtomRef, bool, error) {
	r, err := S.ref("Atom")
	if err != nil {
		return AtomRef{}, false, err
	}
	a, ok := r.Atom(name)
	return a, ok, nil
}

// SmartMoleculeRef is a smart reference to a molecule.
type SmartMoleculeRef struct {
	*SmartRef[MoleculeRef]
}

func (S SmartMoleculeRef) ref(op string) (MoleculeRef, error) {
	if err := S.check(op); err != nil {
		return MoleculeRef{}, err
	}
	return MoleculeRef{frame: S.frame, index: S.index}, nil
}

// Name returns the molecule name.
func (S SmartMoleculeRef) Name() (string, error) {
	m, err := S.ref("Name")
	if err != nil {
		return "", err
	}
	return m.Name(), nil
}

// SetName sets the molecule name.
func (S SmartMoleculeRef) SetName(name string) error {
	m, err := S.ref("SetName")
	if err != nil {
		return err
	}
	m.SetName(name)
	return nil
}

// Residues returns the current residue span of the molecule.
func (S SmartMoleculeRef) Residues() (ResidueSpan, error) {
	m, err := S.ref("Residues")
	if err != nil {
		return ResidueSpan{}, err
	}
	return m.Residues(), nil
}

// Atoms returns the current atom span of the molecule.
func (S SmartMoleculeRef) Atoms() (AtomSpan, error) {
	m, err := S.ref("Atoms")
	if err != nil {
		return AtomSpan{}, err
	}
	return m.Atoms(), nil
}

// Coords returns the current coordinate span of the molecule.
func (S SmartMoleculeRef) Coords() (CoordSpan, error) {
	m, err := S.ref("Coords")
	if err != nil {
		return CoordSpan{}, err
	}
	return m.Coords(), nil
}

// Len returns the number of residues of the molecule.
func (S SmartMoleculeRef) Len() (int, error) {
	m, err := S.ref("Len")
	if err != nil {
		return 0, err
	}
	return m.Len(), nil
}

// Residue returns the residue of the molecule with the given id.
func (S SmartMoleculeRef) Residue(id ResidueID) (ResidueRef, bool, error) {
	m, err := S.ref("Residue")
	if err != nil {
		return ResidueRef{}, false, err
	}
	r, ok := m.Residue(id)
	return r, ok, nil
}

// SmartCoordRef is a smart reference to the coordinate of an atom.
type SmartCoordRef struct {
	*SmartRef[CoordRef]
}

func (S SmartCoordRef) ref(op string) (CoordRef, error) {
	if err := S.check(op); err != nil {
		return CoordRef{}, err
	}
	return CoordRef{frame: S.frame, index: S.index}, nil
}

// Get returns the coordinate.
func (S SmartCoordRef) Get() (XYZ, error) {
	c, err := S.ref("Get")
	if err != nil {
		return XYZ{}, err
	}
	return c.Get(), nil
}

// Set overwrites the coordinate.
func (S SmartCoordRef) Set(r XYZ) error {
	c, err := S.ref("Set")
	if err != nil {
		return err
	}
	c.Set(r)
	return nil
}

// Atom returns a plain reference to the atom of the coordinate.
func (S SmartCoordRef) Atom() (AtomRef, error) {
	c, err := S.ref("Atom")
	if err != nil {
		return AtomRef{}, err
	}
	return c.Atom(), nil
}
