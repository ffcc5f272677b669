/*
 * stf_test.go, part of xmol.
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

package stf

import (
	"path/filepath"
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
			r.SetName("SER")
			r.SetID(xmol.NewResidueID(k))
			for _, an := range []string{"N", "CA", "OG"} {
				a := f.AddAtom(r)
				a.SetName(an)
				a.SetID(xmol.AtomID(id))
				id++
			}
		}
	}
	return f
}

// setCoords places atom i of f at (i+shift, -i, 2*shift).
func setCoords(f *xmol.Frame, shift float64) {
	for i, a := range f.Atoms().All() {
		a.SetR(xmol.XYZ{X: float64(i) + shift, Y: -float64(i), Z: 2 * shift})
	}
}

func writeTraj(Te *testing.T, name string, f *xmol.Frame, nframes int) {
	Te.Helper()
	w, err := NewWriter(name, f, map[string]string{"comment": "a=b"})
	require.NoError(Te, err)
	for i := 0; i < nframes; i++ {
		setCoords(f, 0.25*float64(i))
		if i == 1 {
			f.Cell = xmol.UnitCellFromLengths(10, 20, 30, 90, 90, 90)
		} else {
			f.Cell = xmol.UnitCell{}
		}
		require.NoError(Te, w.WriteFrame(f))
	}
	require.NoError(Te, w.Close())
}

func TestSTFRoundTrip(Te *testing.T) {
	for _, ext := range []string{"stf", "stz", "stl", "str"} {
		Te.Run(ext, func(Te *testing.T) {
			name := filepath.Join(Te.TempDir(), "test."+ext)
			f := testFrame(Te)
			writeTraj(Te, name, f, 4)

			r, err := Open(name)
			require.NoError(Te, err)
			defer r.Close()
			assert.Equal(Te, 4, r.NFrames())
			assert.Equal(Te, 12, r.NAtoms())
			assert.Equal(Te, "a=b", r.Header()["comment"])
			assert.Equal(Te, "2", r.Header()[PrecKey])

			g, err := r.Topology()
			require.NoError(Te, err)
			require.NoError(Te, g.Check())
			assert.Equal(Te, 4, g.NResidues())
			a, err := g.Atoms().At(5)
			require.NoError(Te, err)
			assert.Equal(Te, "OG", a.Name())
			assert.Equal(Te, "SER", a.Residue().Name())
			assert.Equal(Te, "A", a.Molecule().Name())

			//forward, then backwards, which reopens the file.
			for _, i := range []int{2, 3, 1, 0} {
				require.NoError(Te, r.ReadFrame(i, g))
				assert.Equal(Te, i, g.Index)
				shift := 0.25 * float64(i)
				for j, a := range g.Atoms().All() {
					R := a.R()
					assert.InDelta(Te, float64(j)+shift, R.X, 1e-9)
					assert.InDelta(Te, -float64(j), R.Y, 1e-9)
					assert.InDelta(Te, 2*shift, R.Z, 1e-9)
				}
				if i == 1 {
					l := g.Cell.Lengths()
					assert.InDeltaSlice(Te, []float64{10, 20, 30}, l[:], 1e-3)
				} else {
					assert.True(Te, g.Cell.Empty())
				}
			}
		})
	}
}

func TestSTFReadKeepsSmartRefs(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "smart.stf")
	f := testFrame(Te)
	writeTraj(Te, name, f, 3)
	r, err := Open(name)
	require.NoError(Te, err)
	defer r.Close()
	g, err := r.Topology()
	require.NoError(Te, err)
	a, _ := g.Atoms().At(7)
	s := a.Smart()
	defer s.Close()
	for i := 0; i < r.NFrames(); i++ {
		require.NoError(Te, r.ReadFrame(i, g))
		R, err := s.R()
		require.NoError(Te, err)
		assert.InDelta(Te, 7+0.25*float64(i), R.X, 1e-9)
	}
}

func TestSTFAdvance(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "adv.stf")
	f := testFrame(Te)
	writeTraj(Te, name, f, 5)
	r, err := Open(name)
	require.NoError(Te, err)
	defer r.Close()
	require.NoError(Te, r.Advance(3))
	c := v3.Zeros(r.NAtoms())
	require.NoError(Te, r.Next(c))
	assert.InDelta(Te, 0.75, c.At(0, 0), 1e-9)
	require.NoError(Te, r.Advance(-2))
	require.NoError(Te, r.Next(c))
	assert.InDelta(Te, 0.5, c.At(0, 0), 1e-9)
	assert.Error(Te, r.Advance(10))
	require.NoError(Te, r.Advance(-r.next))
	for i := 0; i < 5; i++ {
		require.NoError(Te, r.Next(nil))
	}
	err = r.Next(c)
	assert.True(Te, IsLastFrame(err))
}

func TestSTFErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := NewWriter(filepath.Join(dir, "x.stf"), nil, nil)
	assert.Error(Te, err)
	_, err = NewWriter(filepath.Join(dir, "x.stf"), nil, map[string]string{PrecKey: "-1", "natoms": "3"})
	assert.Error(Te, err)

	w, err := NewWriter(filepath.Join(dir, "bare.stf"), nil, map[string]string{"natoms": "2", PrecKey: "3"})
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(v3.Zeros(3)))
	assert.Error(Te, w.WNext(nil))
	m := v3.Zeros(2)
	m.Set(1, 2, 1.234)
	require.NoError(Te, w.WNext(m))
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(m))

	r, err := Open(filepath.Join(dir, "bare.stf"))
	require.NoError(Te, err)
	defer r.Close()
	assert.Equal(Te, 1, r.NFrames())
	_, err = r.Topology()
	assert.Error(Te, err)
	c := v3.Zeros(2)
	require.NoError(Te, r.Next(c))
	assert.InDelta(Te, 1.234, c.At(1, 2), 1e-9)

	f := testFrame(Te)
	assert.Error(Te, r.ReadFrame(0, f))
	g := xmol.NewFrame()
	res := g.AddResidue(g.AddMolecule())
	g.AddAtom(res)
	g.AddAtom(res)
	assert.Error(Te, r.ReadFrame(1, g))
	require.NoError(Te, r.ReadFrame(0, g))

	_, err = Open(filepath.Join(dir, "missing.stf"))
	assert.Error(Te, err)
}
