/*
 * json.go, part of xmol.
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

package chemjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

// Atom is a ready-to-serialize container for an atom.
type Atom struct {
	Name      string  `json:"name"`
	ID        int     `json:"id"`
	Mass      float64 `json:"mass,omitempty"`
	VdwRadius float64 `json:"vdw_radius,omitempty"`
	Deleted   bool    `json:"deleted,omitempty"`
}

// Residue is a ready-to-serialize container for a residue and its atoms.
type Residue struct {
	Name    string `json:"name"`
	ID      int    `json:"id"`
	ICode   string `json:"icode,omitempty"`
	Atoms   []Atom `json:"atoms"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Molecule is a ready-to-serialize container for a molecule and its residues.
type Molecule struct {
	Name     string    `json:"name"`
	Residues []Residue `json:"residues"`
	Deleted  bool      `json:"deleted,omitempty"`
}

// Topology is the molecule/residue/atom tree of a frame, without coordinates.
type Topology struct {
	Molecules []Molecule `json:"molecules"`
}

// FrameData carries the per-frame information: coordinates, index, time and box.
type FrameData struct {
	Index  int       `json:"index"`
	Time   float64   `json:"time,omitempty"`
	Cell   []float64 `json:"cell,omitempty"`
	Coords []float64 `json:"coords"`
}

// NewTopology collects the topology of f.
func NewTopology(f *xmol.Frame) *Topology {
	T := &Topology{Molecules: make([]Molecule, 0, f.NMolecules())}
	for _, m := range f.Molecules().All() {
		jm := Molecule{Name: m.Name(), Deleted: m.Deleted(), Residues: make([]Residue, 0, m.Len())}
		for _, r := range m.Residues().All() {
			id := r.ID()
			jr := Residue{Name: r.Name(), ID: id.Serial, Deleted: r.Deleted(), Atoms: make([]Atom, 0, r.Len())}
			if id.ICode != 0 && id.ICode != ' ' {
				jr.ICode = string(id.ICode)
			}
			for _, a := range r.Atoms().All() {
				jr.Atoms = append(jr.Atoms, Atom{Name: a.Name(), ID: int(a.ID()), Mass: a.Mass(), VdwRadius: a.VdwRadius(), Deleted: a.Deleted()})
			}
			jm.Residues = append(jm.Residues, jr)
		}
		T.Molecules = append(T.Molecules, jm)
	}
	return T
}

// NAtoms returns the number of atoms in the topology.
func (T *Topology) NAtoms() int {
	n := 0
	for _, m := range T.Molecules {
		for _, r := range m.Residues {
			n += len(r.Atoms)
		}
	}
	return n
}

// NResidues returns the number of residues in the topology.
func (T *Topology) NResidues() int {
	n := 0
	for _, m := range T.Molecules {
		n += len(m.Residues)
	}
	return n
}

// Frame builds a new frame with the topology, all coordinates set to zero.
func (T *Topology) Frame(opts ...xmol.FrameOption) *xmol.Frame {
	f := xmol.NewFrame(opts...)
	f.ReserveAtoms(T.NAtoms())
	f.ReserveResidues(T.NResidues())
	f.ReserveMolecules(len(T.Molecules))
	var deleted []func()
	for _, jm := range T.Molecules {
		m := f.AddMolecule()
		m.SetName(jm.Name)
		for _, jr := range jm.Residues {
			r := f.AddResidue(m)
			r.SetName(jr.Name)
			id := xmol.NewResidueID(jr.ID)
			if jr.ICode != "" {
				id.ICode = jr.ICode[0]
			}
			r.SetID(id)
			for _, ja := range jr.Atoms {
				a := f.AddAtom(r)
				a.SetName(ja.Name)
				a.SetID(xmol.AtomID(ja.ID))
				a.SetMass(ja.Mass)
				a.SetVdwRadius(ja.VdwRadius)
				if ja.Deleted {
					deleted = append(deleted, func() { f.DeleteAtom(a) })
				}
			}
			if jr.Deleted {
				deleted = append(deleted, func() { f.DeleteResidue(r) })
			}
		}
		if jm.Deleted {
			deleted = append(deleted, func() { f.DeleteMolecule(m) })
		}
	}
	//molecules are appended, so the plain refs above are still valid here.
	for _, d := range deleted {
		d()
	}
	return f
}

// MarshalTopology serializes the topology of f.
func MarshalTopology(f *xmol.Frame) ([]byte, error) {
	b, err := json.Marshal(NewTopology(f))
	if err != nil {
		return nil, NewError("MarshalTopology", err)
	}
	return b, nil
}

// UnmarshalTopology builds a frame from a serialized topology.
func UnmarshalTopology(data []byte, opts ...xmol.FrameOption) (*xmol.Frame, error) {
	T := new(Topology)
	if err := json.Unmarshal(data, T); err != nil {
		return nil, NewError("UnmarshalTopology", err)
	}
	return T.Frame(opts...), nil
}

// NewFrameData collects index, time, box and coordinates of f.
func NewFrameData(f *xmol.Frame) *FrameData {
	d := &FrameData{Index: f.Index, Time: f.Time, Coords: make([]float64, 0, 3*f.NAtoms())}
	if !f.Cell.Empty() {
		d.Cell = f.Cell.Box()
	}
	for _, c := range f.Coords().All() {
		r := c.Get()
		d.Coords = append(d.Coords, r.X, r.Y, r.Z)
	}
	return d
}

// Apply sets index, time, box and coordinates of f. f must have as many atoms as D has coordinates.
func (D *FrameData) Apply(f *xmol.Frame) error {
	m, err := v3.NewMatrix(D.Coords)
	if err != nil {
		return NewError("FrameData.Apply", err)
	}
	if m.NVecs() != f.NAtoms() {
		return NewError("FrameData.Apply", fmt.Errorf("%d coordinates for a frame of %d atoms", m.NVecs(), f.NAtoms()))
	}
	f.Atoms().SetValues(m)
	f.Index, f.Time = D.Index, D.Time
	f.Cell = xmol.UnitCellFromBox(D.Cell)
	return nil
}

// EncodeFrame encodes index, time, box and coordinates of f with enc.
func EncodeFrame(f *xmol.Frame, enc *json.Encoder) error {
	if err := enc.Encode(NewFrameData(f)); err != nil {
		return NewError("EncodeFrame", err)
	}
	return nil
}

// DecodeFrame decodes one frame from dec into f, which must have the right number of atoms.
func DecodeFrame(dec *json.Decoder, f *xmol.Frame) error {
	D := new(FrameData)
	if err := dec.Decode(D); err != nil {
		if err == io.EOF {
			return err
		}
		return NewError("DecodeFrame", err)
	}
	if err := D.Apply(f); err != nil {
		return errDecorate(err, "DecodeFrame")
	}
	return nil
}

// SendMolecule writes the topology of f followed by the frames in order, one JSON document per line.
// If no frames are given, f itself is sent as the only frame.
func SendMolecule(f *xmol.Frame, out io.Writer, frames ...*xmol.Frame) error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(NewTopology(f)); err != nil {
		return NewError("SendMolecule", err)
	}
	if len(frames) == 0 {
		frames = []*xmol.Frame{f}
	}
	for _, fr := range frames {
		if fr.NAtoms() != f.NAtoms() {
			return NewError("SendMolecule", fmt.Errorf("frame %d has %d atoms, expected %d", fr.Index, fr.NAtoms(), f.NAtoms()))
		}
		if err := EncodeFrame(fr, enc); err != nil {
			return errDecorate(err, "SendMolecule")
		}
	}
	return nil
}

// DecodeMolecule reads what SendMolecule writes. It returns one frame per
// frame in the stream, all with the same topology.
func DecodeMolecule(stream *bufio.Reader, opts ...xmol.FrameOption) ([]*xmol.Frame, error) {
	dec := json.NewDecoder(stream)
	T := new(Topology)
	if err := dec.Decode(T); err != nil {
		return nil, NewError("DecodeMolecule", err)
	}
	ref := T.Frame(opts...)
	var ret []*xmol.Frame
	for {
		f := ref.Copy()
		err := DecodeFrame(dec, f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return ret, errDecorate(err, fmt.Sprintf("DecodeMolecule: frame %d", len(ret)))
		}
		ret = append(ret, f)
	}
	if len(ret) == 0 {
		ret = append(ret, ref)
	}
	return ret, nil
}

// EncodeCoords encodes a set of coordinates, one vector per JSON document.
func EncodeCoords(coords *v3.Matrix, enc *json.Encoder) error {
	c := new(jsonCoords)
	t := make([]float64, 3)
	for i := 0; i < coords.NVecs(); i++ {
		c.Coords = vecRow(coords, t, i)
		if err := enc.Encode(c); err != nil {
			return NewError("EncodeCoords", err)
		}
	}
	return nil
}

// DecodeCoords decodes natoms vectors written by EncodeCoords.
func DecodeCoords(dec *json.Decoder, natoms int) (*v3.Matrix, error) {
	raw := make([]float64, 0, 3*natoms)
	c := new(jsonCoords)
	for i := 0; i < natoms; i++ {
		if err := dec.Decode(c); err != nil {
			return nil, NewError("DecodeCoords", err)
		}
		if len(c.Coords) != 3 {
			return nil, NewError("DecodeCoords", fmt.Errorf("vector %d has %d components", i, len(c.Coords)))
		}
		raw = append(raw, c.Coords...)
	}
	m, err := v3.NewMatrix(raw)
	if err != nil {
		return nil, NewError("DecodeCoords", err)
	}
	return m, nil
}

type jsonCoords struct {
	Coords []float64
}

func vecRow(m *v3.Matrix, dst []float64, i int) []float64 {
	dst[0], dst[1], dst[2] = m.At(i, 0), m.At(i, 1), m.At(i, 2)
	return dst
}

// Error is an easily JSON-serializable error type.
type Error struct {
	deco     []string
	Function string //which go function gave the error
	Message  string //the error itself
}

// NewError takes an error and the name of the failing function and creates a json-marshal-able error.
func NewError(function string, err error) *Error {
	return &Error{Function: function, Message: err.Error(), deco: []string{function}}
}

// Error implements the error interface.
func (J *Error) Error() string {
	return fmt.Sprintf("chemjson: %s: %s", strings.Join(J.deco, " <- "), J.Message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

// Marshal serializes the error. Panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - "))
	}
	return ret
}

func errDecorate(err error, caller string) error {
	if e, ok := err.(*Error); ok {
		e.Decorate(caller)
		return e
	}
	return NewError(caller, err)
}
