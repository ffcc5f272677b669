/*
 * frame.go, part of xmol.
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
	"log/slog"
	"slices"
	"sync/atomic"
)

// arrayKind names one of the flat arrays of a Frame.
type arrayKind int

const (
	atomArray arrayKind = iota
	residueArray
	moleculeArray
	coordArray
	nArrays
)

func (k arrayKind) String() string {
	switch k {
	case atomArray:
		return "atoms"
	case residueArray:
		return "residues"
	case moleculeArray:
		return "molecules"
	case coordArray:
		return "coords"
	}
	return "unknown"
}

// label is the element name used in String methods.
func (k arrayKind) label() string {
	switch k {
	case atomArray:
		return "Atom"
	case residueArray:
		return "Residue"
	case moleculeArray:
		return "Molecule"
	case coordArray:
		return "Coord"
	}
	return "Element"
}

// span is a [begin,end) range of indexes into one of the arrays.
type span struct {
	begin, end int
}

func (s span) len() int { return s.end - s.begin }

type baseAtom struct {
	name    string
	id      AtomID
	mass    float64
	vdw     float64
	residue int //index of the owning residue
	deleted bool
}

type baseResidue struct {
	name     string
	id       ResidueID
	atoms    span
	molecule int //index of the owning molecule
	deleted  bool
}

type baseMolecule struct {
	name     string
	residues span
	deleted  bool
}

// frameObserver is implemented by every smart handle. The frame calls it when
// elements of the observed array move, when the frame storage is handed over to
// another Frame and when the frame is closed.
type frameObserver interface {
	//elements formerly in [begin,end) are now at [begin+shift,end+shift)
	onElementsMove(f *Frame, begin, end, shift int)
	onFrameMove(from, to *Frame)
	onFrameDelete(f *Frame)
}

var frameSerials atomic.Uint64

func nextSerial() uint64 {
	return frameSerials.Add(1)
}

// Frame owns all the atoms, residues, molecules and coordinates of one structural snapshot.
// Atoms, residues and molecules live in flat arrays. Each molecule owns a contiguous
// block of residues, and each residue a contiguous block of atoms, so the whole frame
// is one gapless concatenation: molecule 0's residues, each with its atoms, then molecule 1's, etc.
// Coordinates are kept in a packed array parallel to the atoms, 3 numbers per atom.
//
// A Frame is not safe for concurrent use.
type Frame struct {
	Index int      //position of the frame in its trajectory
	Time  float64  //simulation time, if known
	Cell  UnitCell //periodic box

	atoms     []baseAtom
	coords    []float64
	residues  []baseResidue
	molecules []baseMolecule

	serial    uint64
	observers [nArrays]Observable[frameObserver]
	closed    bool
	log       *slog.Logger
}

// FrameOption configures a new Frame.
type FrameOption func(*Frame)

// WithLogger sets the logger the frame reports storage relocations and
// lifecycle events to. By default nothing is logged.
func WithLogger(l *slog.Logger) FrameOption {
	return func(F *Frame) {
		if l != nil {
			F.log = l
		}
	}
}

// NewFrame returns an empty frame.
func NewFrame(opts ...FrameOption) *Frame {
	F := &Frame{serial: nextSerial(), log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(F)
	}
	return F
}

func (F *Frame) String() string {
	if F == nil {
		return "Frame(nil)"
	}
	if F.closed {
		return "Frame(closed)"
	}
	return fmt.Sprintf("Frame(index=%d molecules=%d residues=%d atoms=%d)", F.Index, len(F.molecules), len(F.residues), len(F.atoms))
}

// Alive returns false once the frame has been closed.
func (F *Frame) Alive() bool {
	return F != nil && !F.closed
}

// NAtoms returns the number of atoms (and of coordinates) in the frame.
func (F *Frame) NAtoms() int { return len(F.atoms) }

// NResidues returns the number of residues in the frame.
func (F *Frame) NResidues() int { return len(F.residues) }

// NMolecules returns the number of molecules in the frame.
func (F *Frame) NMolecules() int { return len(F.molecules) }

// Atoms returns a span over all the atoms of the frame.
func (F *Frame) Atoms() AtomSpan {
	return AtomSpan{frame: F, begin: 0, end: len(F.atoms)}
}

// Residues returns a span over all the residues of the frame.
func (F *Frame) Residues() ResidueSpan {
	return ResidueSpan{frame: F, begin: 0, end: len(F.residues)}
}

// Molecules returns a span over all the molecules of the frame.
func (F *Frame) Molecules() MoleculeSpan {
	return MoleculeSpan{frame: F, begin: 0, end: len(F.molecules)}
}

// Coords returns a span over all the coordinates of the frame, in atom order.
func (F *Frame) Coords() CoordSpan {
	return CoordSpan{frame: F, begin: 0, end: len(F.atoms)}
}

// MoleculeByName returns the first (non deleted) molecule called name.
func (F *Frame) MoleculeByName(name string) (MoleculeRef, bool) {
	for i := range F.molecules {
		if F.molecules[i].name == name && !F.molecules[i].deleted {
			return MoleculeRef{frame: F, index: i}, true
		}
	}
	return MoleculeRef{}, false
}

func (F *Frame) registry(k arrayKind) *Observable[frameObserver] {
	return &F.observers[k]
}

func (F *Frame) mustBeOpen() {
	if F.closed {
		panic(ErrClosedFrame)
	}
}

// owns panics unless the record reached through f belongs to F.
func (F *Frame) owns(f *Frame) {
	if f == nil {
		panic(ErrInvalidRef)
	}
	if f != F {
		panic(ErrForeignParent)
	}
}

// relocated logs a change of the backing storage of an array. Spans and references
// hold indexes, so a relocation does not need to be broadcast.
func (F *Frame) relocated(k arrayKind, oldcap, newcap int) {
	if oldcap != newcap {
		F.log.Debug("frame storage relocated", "array", k.String(), "serial", F.serial, "oldcap", oldcap, "newcap", newcap)
	}
}

// notifyMove tells the observers of array k that the elements in [begin,end) moved by shift.
// A failure here means a dead observer is still registered on a live frame, which
// is a bug in the frame itself, so it panics with the typed error.
func (F *Frame) notifyMove(k arrayKind, begin, end, shift int) {
	if begin >= end || shift == 0 {
		return
	}
	err := F.observers[k].Notify(NotifyAny, func(o frameObserver) {
		o.onElementsMove(F, begin, end, shift)
	})
	if err != nil {
		panic(errDecorate(err, "notifyMove: "+k.String()))
	}
}

// AddMolecule appends an empty molecule to the frame and returns a reference to it.
func (F *Frame) AddMolecule() MoleculeRef {
	F.mustBeOpen()
	pos := len(F.residues)
	oldcap := cap(F.molecules)
	F.molecules = append(F.molecules, baseMolecule{residues: span{pos, pos}})
	F.relocated(moleculeArray, oldcap, cap(F.molecules))
	F.debugCheck()
	return MoleculeRef{frame: F, index: len(F.molecules) - 1}
}

// AddResidue adds an empty residue at the end of molecule m. The residue is inserted
// right after the last residue of m, which may be in the middle of the residue array:
// residues of the following molecules move one place forward and their observers are told so.
func (F *Frame) AddResidue(m MoleculeRef) ResidueRef {
	F.mustBeOpen()
	F.owns(m.frame)
	if F.molecules[m.index].deleted {
		panic(ErrDeletedParent)
	}
	pos := F.molecules[m.index].residues.end
	old := len(F.residues)
	atpos := F.residueAtomBoundary(pos)
	oldcap := cap(F.residues)
	F.residues = slices.Insert(F.residues, pos, baseResidue{atoms: span{atpos, atpos}, molecule: m.index})
	F.relocated(residueArray, oldcap, cap(F.residues))
	F.molecules[m.index].residues.end++
	for i := m.index + 1; i < len(F.molecules); i++ {
		F.molecules[i].residues.begin++
		F.molecules[i].residues.end++
	}
	//atoms are ordered by residue, the ones from atpos on belong to residues that moved.
	for i := atpos; i < len(F.atoms); i++ {
		F.atoms[i].residue++
	}
	F.notifyMove(residueArray, pos, old, 1)
	F.debugCheck()
	return ResidueRef{frame: F, index: pos}
}

// AddAtom adds an atom at the end of residue r, and its coordinate (zeroed) at the same
// index of the coordinate array. Atoms of the following residues move one place forward.
func (F *Frame) AddAtom(r ResidueRef) AtomRef {
	F.mustBeOpen()
	F.owns(r.frame)
	if F.residues[r.index].deleted {
		panic(ErrDeletedParent)
	}
	pos := F.residues[r.index].atoms.end
	old := len(F.atoms)
	oldcap, oldccap := cap(F.atoms), cap(F.coords)
	F.atoms = slices.Insert(F.atoms, pos, baseAtom{residue: r.index})
	F.coords = slices.Insert(F.coords, 3*pos, 0, 0, 0)
	F.relocated(atomArray, oldcap, cap(F.atoms))
	F.relocated(coordArray, oldccap, cap(F.coords))
	F.residues[r.index].atoms.end++
	for i := r.index + 1; i < len(F.residues); i++ {
		F.residues[i].atoms.begin++
		F.residues[i].atoms.end++
	}
	F.notifyMove(atomArray, pos, old, 1)
	F.notifyMove(coordArray, pos, old, 1)
	F.debugCheck()
	return AtomRef{frame: F, index: pos}
}

// ReserveAtoms makes room for n atoms (and coordinates) in total, without adding any.
func (F *Frame) ReserveAtoms(n int) {
	F.mustBeOpen()
	if n <= cap(F.atoms) {
		return
	}
	oldcap := cap(F.atoms)
	F.atoms = slices.Grow(F.atoms, n-len(F.atoms))
	F.coords = slices.Grow(F.coords, 3*n-len(F.coords))
	F.relocated(atomArray, oldcap, cap(F.atoms))
}

// ReserveResidues makes room for n residues in total, without adding any.
func (F *Frame) ReserveResidues(n int) {
	F.mustBeOpen()
	if n <= cap(F.residues) {
		return
	}
	oldcap := cap(F.residues)
	F.residues = slices.Grow(F.residues, n-len(F.residues))
	F.relocated(residueArray, oldcap, cap(F.residues))
}

// ReserveMolecules makes room for n molecules in total, without adding any.
func (F *Frame) ReserveMolecules(n int) {
	F.mustBeOpen()
	if n <= cap(F.molecules) {
		return
	}
	oldcap := cap(F.molecules)
	F.molecules = slices.Grow(F.molecules, n-len(F.molecules))
	F.relocated(moleculeArray, oldcap, cap(F.molecules))
}

// Copy returns a deep copy of the frame. Observers are not copied: smart handles
// keep following the original.
func (F *Frame) Copy() *Frame {
	F.mustBeOpen()
	N := &Frame{
		Index:     F.Index,
		Time:      F.Time,
		Cell:      F.Cell,
		atoms:     slices.Clone(F.atoms),
		coords:    slices.Clone(F.coords),
		residues:  slices.Clone(F.residues),
		molecules: slices.Clone(F.molecules),
		serial:    nextSerial(),
		log:       F.log,
	}
	return N
}

// MoveFrom hands the whole content of src, including its observers, over to F.
// Whatever F held before is dropped: its observers are told F died. Observers
// of src are told their frame is now F. src is left empty and usable.
func (F *Frame) MoveFrom(src *Frame) *Frame {
	if F == src {
		return F
	}
	F.mustBeOpen()
	src.mustBeOpen()
	F.broadcastDelete()
	for k := range F.observers {
		F.observers[k] = Observable[frameObserver]{}
	}
	F.Index, F.Time, F.Cell = src.Index, src.Time, src.Cell
	F.atoms, F.coords, F.residues, F.molecules = src.atoms, src.coords, src.residues, src.molecules
	F.serial = src.serial
	for k := range F.observers {
		F.observers[k].takeFrom(&src.observers[k])
	}
	src.Index, src.Time, src.Cell = 0, 0, UnitCell{}
	src.atoms, src.coords, src.residues, src.molecules = nil, nil, nil, nil
	src.serial = nextSerial()
	for k := range F.observers {
		err := F.observers[k].Notify(NotifyAny, func(o frameObserver) { o.onFrameMove(src, F) })
		if err != nil {
			panic(errDecorate(err, "MoveFrom"))
		}
	}
	F.log.Debug("frame moved", "serial", F.serial, "atoms", len(F.atoms))
	return F
}

// Move returns a new Frame holding the content and observers of F, and leaves F empty.
func (F *Frame) Move() *Frame {
	return NewFrame(WithLogger(F.log)).MoveFrom(F)
}

// broadcastDelete tells every live observer that the frame content is gone,
// then marks them as deleted. It never fails.
func (F *Frame) broadcastDelete() {
	for k := range F.observers {
		F.observers[k].Notify(NotifyAliveOnly, func(o frameObserver) { o.onFrameDelete(F) })
		F.observers[k].forEach(func(o frameObserver, _ ObserverState) {
			F.observers[k].MarkAsDeleted(o)
		})
	}
}

// Close destroys the frame. Every smart handle into it switches to a dead state and
// reports a *DeadFrameAccessError on its next access. Closing twice does nothing.
func (F *Frame) Close() error {
	if F.closed {
		return nil
	}
	F.broadcastDelete()
	F.closed = true
	F.atoms, F.coords, F.residues, F.molecules = nil, nil, nil, nil
	F.log.Debug("frame closed", "serial", F.serial)
	return nil
}

// DeleteAtom flags atom a as deleted. Storage is not compacted, the atom keeps its slot.
func (F *Frame) DeleteAtom(a AtomRef) {
	F.mustBeOpen()
	F.owns(a.frame)
	F.atoms[a.index].deleted = true
}

// DeleteResidue flags residue r and all its atoms as deleted.
func (F *Frame) DeleteResidue(r ResidueRef) {
	F.mustBeOpen()
	F.owns(r.frame)
	res := &F.residues[r.index]
	res.deleted = true
	for i := res.atoms.begin; i < res.atoms.end; i++ {
		F.atoms[i].deleted = true
	}
}

// DeleteMolecule flags molecule m, its residues and their atoms as deleted.
func (F *Frame) DeleteMolecule(m MoleculeRef) {
	F.mustBeOpen()
	F.owns(m.frame)
	mol := &F.molecules[m.index]
	mol.deleted = true
	for i := mol.residues.begin; i < mol.residues.end; i++ {
		F.DeleteResidue(ResidueRef{frame: F, index: i})
	}
}

// Check verifies the frame invariants: coordinates and atoms have the same length,
// molecules partition the residues in order, residues partition the atoms in order
// and every back-index points to the record whose range contains it.
func (F *Frame) Check() error {
	if F.closed {
		return nil
	}
	if len(F.coords) != 3*len(F.atoms) {
		return fmt.Errorf("%w: %d atoms but %d coordinate values", ErrInvariantViolation, len(F.atoms), len(F.coords))
	}
	next := 0
	for i, m := range F.molecules {
		if m.residues.begin != next || m.residues.end < m.residues.begin {
			return fmt.Errorf("%w: molecule %d residues [%d,%d), expected to start at %d", ErrInvariantViolation, i, m.residues.begin, m.residues.end, next)
		}
		for j := m.residues.begin; j < m.residues.end; j++ {
			if F.residues[j].molecule != i {
				return fmt.Errorf("%w: residue %d points to molecule %d instead of %d", ErrInvariantViolation, j, F.residues[j].molecule, i)
			}
		}
		next = m.residues.end
	}
	if next != len(F.residues) {
		return fmt.Errorf("%w: molecules cover %d of %d residues", ErrInvariantViolation, next, len(F.residues))
	}
	next = 0
	for i, r := range F.residues {
		if r.atoms.begin != next || r.atoms.end < r.atoms.begin {
			return fmt.Errorf("%w: residue %d atoms [%d,%d), expected to start at %d", ErrInvariantViolation, i, r.atoms.begin, r.atoms.end, next)
		}
		for j := r.atoms.begin; j < r.atoms.end; j++ {
			if F.atoms[j].residue != i {
				return fmt.Errorf("%w: atom %d points to residue %d instead of %d", ErrInvariantViolation, j, F.atoms[j].residue, i)
			}
		}
		next = r.atoms.end
	}
	if next != len(F.atoms) {
		return fmt.Errorf("%w: residues cover %d of %d atoms", ErrInvariantViolation, next, len(F.atoms))
	}
	return nil
}

func (F *Frame) debugCheck() {
	if !debugChecks {
		return
	}
	if err := F.Check(); err != nil {
		panic(err)
	}
}

//Range projections between the arrays. They rely on the partition invariants.

// residueAtomBoundary is the first atom of residue r, or the number of atoms if r is past the end.
func (F *Frame) residueAtomBoundary(r int) int {
	if r < len(F.residues) {
		return F.residues[r].atoms.begin
	}
	return len(F.atoms)
}

func (F *Frame) moleculeResidueBoundary(m int) int {
	if m < len(F.molecules) {
		return F.molecules[m].residues.begin
	}
	return len(F.residues)
}

func (F *Frame) atomsToResidues(b, e int) (int, int) {
	if b >= e {
		r := len(F.residues)
		if b < len(F.atoms) {
			r = F.atoms[b].residue
		}
		return r, r
	}
	return F.atoms[b].residue, F.atoms[e-1].residue + 1
}

func (F *Frame) residuesToAtoms(b, e int) (int, int) {
	if b >= e {
		a := F.residueAtomBoundary(b)
		return a, a
	}
	return F.residues[b].atoms.begin, F.residues[e-1].atoms.end
}

func (F *Frame) residuesToMolecules(b, e int) (int, int) {
	if b >= e {
		m := len(F.molecules)
		if b < len(F.residues) {
			m = F.residues[b].molecule
		}
		return m, m
	}
	return F.residues[b].molecule, F.residues[e-1].molecule + 1
}

func (F *Frame) moleculesToResidues(b, e int) (int, int) {
	if b >= e {
		r := F.moleculeResidueBoundary(b)
		return r, r
	}
	return F.molecules[b].residues.begin, F.molecules[e-1].residues.end
}
