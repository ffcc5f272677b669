/*
 * span_test.go, part of xmol.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sizmailov/pyxmolpp2-sub001/v3"
)

func TestSmartSpanSplit(Te *testing.T) {
	f := NewFrame()
	m := f.AddMolecule()
	rA := f.AddResidue(m)
	rB := f.AddResidue(m)
	for _, r := range []ResidueRef{rA, rA, rB, rB} {
		f.AddAtom(r)
	}
	whole := m.Atoms().Smart()
	defer whole.Close()
	sA := rA.Atoms().Smart()
	defer sA.Close()
	sB := rB.Atoms().Smart()
	defer sB.Close()

	f.AddAtom(rA)
	require.NoError(Te, f.Check())

	assert.True(Te, whole.Split())
	_, err := whole.Len()
	var split *SpanSplitError
	assert.True(Te, errors.As(err, &split))
	_, err = whole.At(0)
	assert.True(Te, errors.As(err, &split))

	s, err := sA.Span()
	require.NoError(Te, err)
	b, e := s.Bounds()
	assert.Equal(Te, [2]int{0, 2}, [2]int{b, e})

	s, err = sB.Span()
	require.NoError(Te, err)
	b, e = s.Bounds()
	assert.Equal(Te, [2]int{3, 5}, [2]int{b, e})

	//a fresh span from the parent is fine
	assert.Equal(Te, 5, m.Atoms().Len())
}

func TestSmartSpanTracksGrowth(Te *testing.T) {
	f := makeFrame(Te)
	B, _ := f.MoleculeByName("B")
	sp := B.Residues().Smart()
	defer sp.Close()
	A, _ := f.MoleculeByName("A")
	f.AddResidue(A)
	f.AddResidue(A)
	refs, err := sp.Refs()
	require.NoError(Te, err)
	require.Len(Te, refs, 3)
	for i, r := range refs {
		assert.Equal(Te, NewResidueID(i+1), r.ID())
		assert.Equal(Te, B, r.Molecule())
	}
	g := f.Move()
	s, err := sp.Span()
	require.NoError(Te, err)
	assert.Same(Te, g, s.Frame())
	var other SmartResidueSpan
	other.TakeFrom(sp)
	assert.False(Te, sp.Alive())
	n, err := other.Len()
	require.NoError(Te, err)
	assert.Equal(Te, 3, n)
	other.Close()
	assert.Equal(Te, 0, g.registry(residueArray).Len())
}

func TestSpanSlicing(Te *testing.T) {
	f := makeFrame(Te)
	all := f.Atoms()
	s, err := all.Slice(10, 20)
	require.NoError(Te, err)
	assert.Equal(Te, []AtomID{11, 12}, atomIDs(Te, s.Refs()))
	s, err = all.Slice(5, 2)
	require.NoError(Te, err)
	assert.True(Te, s.Empty())
	_, err = all.Slice(-1, 3)
	var oor *OutOfRangeError
	assert.True(Te, errors.As(err, &oor))
	_, err = all.At(12)
	assert.True(Te, errors.As(err, &oor))

	st, err := all.Stride(0, 12, 5)
	require.NoError(Te, err)
	assert.Equal(Te, []AtomID{1, 6, 11}, atomIDs(Te, st.Refs()))
	_, err = all.Stride(0, 12, 0)
	assert.True(Te, errors.As(err, &oor))

	n := 0
	for i, a := range all.All() {
		assert.Equal(Te, AtomID(i+1), a.ID())
		n++
	}
	assert.Equal(Te, 12, n)
	a5, _ := all.At(5)
	i, ok := all.Index(a5)
	assert.True(Te, ok)
	assert.Equal(Te, 5, i)
	assert.False(Te, s.Contains(a5))
}

func TestSpanProjections(Te *testing.T) {
	f := makeFrame(Te)
	s, _ := f.Atoms().Slice(1, 3)
	res := s.Residues()
	b, e := res.Bounds()
	assert.Equal(Te, [2]int{0, 2}, [2]int{b, e})
	assert.Equal(Te, 1, s.Molecules().Len())

	rs, _ := f.Residues().Slice(2, 4)
	b, e = rs.Atoms().Bounds()
	assert.Equal(Te, [2]int{4, 8}, [2]int{b, e})
	assert.Equal(Te, 2, rs.Molecules().Len())
	assert.Equal(Te, 4, rs.Coords().Len())

	ms := f.Molecules()
	assert.Equal(Te, 12, ms.Atoms().Len())
	assert.Equal(Te, 6, ms.Residues().Len())

	var zero AtomSpan
	assert.True(Te, zero.Residues().Empty())
	assert.Nil(Te, zero.Atoms().Frame())
}

func TestSpanSetOperations(Te *testing.T) {
	f := makeFrame(Te)
	g := makeFrame(Te)
	a, _ := f.Atoms().Slice(0, 6)
	b, _ := f.Atoms().Slice(4, 10)
	i := a.Intersect(b)
	assert.Equal(Te, []AtomID{5, 6}, atomIDs(Te, i.Refs()))
	assert.True(Te, a.Intersect(g.Atoms()).Empty())
	assert.Equal(Te, 10, a.Union(b).Len())
	assert.Equal(Te, []AtomID{1, 2, 3, 4}, atomIDs(Te, a.Difference(b).Refs()))
}

func TestSpanValues(Te *testing.T) {
	f := makeFrame(Te)
	v := f.Atoms().Values()
	require.Equal(Te, 12, v.NVecs())
	v.Set(0, 1, 5)
	a, _ := f.Atoms().At(0)
	assert.Equal(Te, XYZ{1, 5, 0}, a.R())

	rs, _ := f.Residues().Slice(1, 3)
	rv := rs.Values()
	require.Equal(Te, 4, rv.NVecs())
	assert.Equal(Te, 3.0, rv.At(0, 0))

	m, err := v3.NewMatrix([]float64{0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0, 4})
	require.NoError(Te, err)
	rs.SetValues(m)
	a, _ = f.Atoms().At(5)
	assert.Equal(Te, XYZ{0, 0, 4}, a.R())
	assert.PanicsWithValue(Te, ErrShapeMismatch, func() { rs.SetValues(v3.Zeros(2)) })

	e, _ := f.Atoms().Slice(3, 3)
	assert.Equal(Te, 0, e.Values().NVecs())
}
