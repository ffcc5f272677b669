/*
 * json_test.go, part of xmol.
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
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xmol "github.com/sizmailov/pyxmolpp2-sub001"
	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

func testFrame(Te *testing.T) *xmol.Frame {
	Te.Helper()
	f := xmol.NewFrame()
	id := 1
	for _, name := range []string{"A", "B"} {
		m := f.AddMolecule()
		m.SetName(name)
		for k := 1; k <= 2; k++ {
			r := f.AddResidue(m)
			r.SetName("ALA")
			r.SetID(xmol.ResidueID{Serial: k, ICode: 'B' * byte(k-1)})
			for _, an := range []string{"N", "CA", "C"} {
				a := f.AddAtom(r)
				a.SetName(an)
				a.SetID(xmol.AtomID(id))
				a.SetMass(12)
				a.SetR(xmol.XYZ{X: float64(id), Y: -float64(id), Z: 0.5})
				id++
			}
		}
	}
	f.Index = 7
	f.Time = 1.5
	f.Cell = xmol.UnitCellFromLengths(10, 20, 30, 90, 90, 90)
	return f
}

func TestTopologyRoundTrip(Te *testing.T) {
	f := testFrame(Te)
	r, _ := f.Residues().At(3)
	f.DeleteResidue(r)
	b, err := MarshalTopology(f)
	require.NoError(Te, err)
	g, err := UnmarshalTopology(b)
	require.NoError(Te, err)
	require.NoError(Te, g.Check())
	assert.Equal(Te, f.NAtoms(), g.NAtoms())
	assert.Equal(Te, f.NResidues(), g.NResidues())
	B, ok := g.MoleculeByName("B")
	require.True(Te, ok)
	res, _ := B.Residues().At(0)
	assert.Equal(Te, xmol.NewResidueID(1), res.ID())
	assert.False(Te, res.Deleted())
	res, _ = B.Residues().At(1)
	assert.Equal(Te, xmol.ResidueID{Serial: 2, ICode: 'B'}, res.ID())
	assert.True(Te, res.Deleted())
	ca, ok := res.Atom("CA")
	assert.False(Te, ok, "deleted atoms are not looked up")
	assert.Equal(Te, xmol.AtomRef{}, ca)
	a, _ := g.Atoms().At(4)
	assert.Equal(Te, "CA", a.Name())
	assert.Equal(Te, xmol.AtomID(5), a.ID())
	assert.Equal(Te, 12.0, a.Mass())
	assert.Equal(Te, xmol.XYZ{}, a.R())

	_, err = UnmarshalTopology([]byte("{"))
	var jerr *Error
	require.ErrorAs(Te, err, &jerr)
	assert.Equal(Te, "UnmarshalTopology", jerr.Function)
}

func TestTopologyFrameReserves(Te *testing.T) {
	T := NewTopology(testFrame(Te))
	assert.Equal(Te, 12, T.NAtoms())
	assert.Equal(Te, 4, T.NResidues())
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := T.Frame(xmol.WithLogger(log))
	require.NoError(Te, g.Check())
	assert.Equal(Te, 4, g.NResidues())
	//each array is allocated once, up front
	relocs := map[string]int{}
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var rec struct {
			Msg   string `json:"msg"`
			Array string `json:"array"`
		}
		require.NoError(Te, dec.Decode(&rec))
		if rec.Msg == "frame storage relocated" {
			relocs[rec.Array]++
		}
	}
	assert.Equal(Te, map[string]int{"atoms": 1, "residues": 1, "molecules": 1}, relocs)
}

func TestSendDecodeMolecule(Te *testing.T) {
	f := testFrame(Te)
	g := f.Copy()
	g.Index = 8
	a, _ := g.Atoms().At(0)
	a.SetR(xmol.XYZ{X: 9, Y: 9, Z: 9})

	var buf bytes.Buffer
	require.NoError(Te, SendMolecule(f, &buf, f, g))
	frames, err := DecodeMolecule(bufio.NewReader(&buf))
	require.NoError(Te, err)
	require.Len(Te, frames, 2)
	assert.Equal(Te, 7, frames[0].Index)
	assert.Equal(Te, 1.5, frames[0].Time)
	assert.Equal(Te, f.Cell, frames[0].Cell)
	assert.Equal(Te, 8, frames[1].Index)
	b, _ := frames[1].Atoms().At(0)
	assert.Equal(Te, xmol.XYZ{X: 9, Y: 9, Z: 9}, b.R())
	c, _ := frames[0].Atoms().At(11)
	assert.Equal(Te, xmol.XYZ{X: 12, Y: -12, Z: 0.5}, c.R())

	small := xmol.NewFrame()
	assert.Error(Te, SendMolecule(f, &buf, small))
}

func TestDecodeFrameMismatch(Te *testing.T) {
	f := testFrame(Te)
	var buf bytes.Buffer
	require.NoError(Te, EncodeFrame(f, json.NewEncoder(&buf)))
	g := xmol.NewFrame()
	err := DecodeFrame(json.NewDecoder(&buf), g)
	var jerr *Error
	require.ErrorAs(Te, err, &jerr)
	assert.Contains(Te, err.Error(), "DecodeFrame")
}

func TestCoords(Te *testing.T) {
	m, err := v3.NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, EncodeCoords(m, json.NewEncoder(&buf)))
	n, err := DecodeCoords(json.NewDecoder(&buf), 2)
	require.NoError(Te, err)
	assert.Equal(Te, m.RawMatrix().Data, n.RawMatrix().Data)
	_, err = DecodeCoords(json.NewDecoder(&buf), 1)
	assert.Error(Te, err)
}
