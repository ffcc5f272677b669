/*
 * selection_test.go, part of xmol.
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

func TestNewSelectionSortsAndDedups(Te *testing.T) {
	f := makeFrame(Te)
	a1, _ := f.Atoms().At(1)
	a3, _ := f.Atoms().At(3)
	s := NewSelection(a3, a1, a3)
	assert.Equal(Te, []AtomID{2, 4}, atomIDs(Te, s.Refs()))
	assert.True(Te, s.Contains(a1))
	i, ok := s.Index(a3)
	assert.True(Te, ok)
	assert.Equal(Te, 1, i)
	assert.Panics(Te, func() { NewSelection(AtomRef{}) })
}

func TestSelectionLattice(Te *testing.T) {
	f := makeFrame(Te)
	a := f.Atoms().Filter(AtomName("CA"))
	b, err := f.Atoms().Stride(0, 12, 3)
	require.NoError(Te, err)
	ids := func(s AtomSelection) []AtomID { return atomIDs(Te, s.Refs()) }

	assert.Equal(Te, ids(a.Union(b)), ids(b.Union(a)))
	assert.Equal(Te, ids(a.Intersect(b)), ids(b.Intersect(a)))
	assert.Equal(Te, ids(a), ids(a.Union(a)))
	assert.Equal(Te, ids(a), ids(a.Intersect(a)))
	assert.True(Te, a.Difference(a).Empty())
	assert.Equal(Te, ids(a), ids(a.Difference(b).Union(a.Intersect(b))))
	assert.Equal(Te, []AtomID{4, 10}, ids(a.Intersect(b)))
	for _, r := range a.Intersect(b).Refs() {
		assert.True(Te, a.Contains(r))
		assert.True(Te, b.Contains(r))
	}

	c := a
	c.UnionWith(b)
	assert.Equal(Te, ids(a.Union(b)), ids(c))
	c.SubtractWith(b)
	assert.Equal(Te, ids(a.Difference(b)), ids(c))
	c.IntersectWith(a)
	assert.Equal(Te, []AtomID{2, 6, 8, 12}, ids(c))
	//a was not changed by the in place operations on its copy
	assert.Equal(Te, 6, a.Len())
}

func TestSelectionAcrossFrames(Te *testing.T) {
	f1 := makeFrame(Te)
	f2 := makeFrame(Te)
	s := f2.Atoms().Selection().Union(f1.Atoms().Selection())
	require.Equal(Te, 24, s.Len())
	for i, r := range s.All() {
		if i < 12 {
			assert.Same(Te, f1, r.Frame())
		} else {
			assert.Same(Te, f2, r.Frame())
		}
	}
	assert.Equal(Te, []*Frame{f1, f2}, s.Frames())
	assert.Equal(Te, 12, s.Residues().Len())
	assert.Equal(Te, 4, s.Molecules().Len())
}

func TestSelectionSlicing(Te *testing.T) {
	f := makeFrame(Te)
	ca := f.Atoms().Filter(AtomName("CA"))
	s, err := ca.Slice(4, 100)
	require.NoError(Te, err)
	assert.Equal(Te, []AtomID{10, 12}, atomIDs(Te, s.Refs()))
	s, err = ca.Stride(1, 6, 2)
	require.NoError(Te, err)
	assert.Equal(Te, []AtomID{4, 8, 12}, atomIDs(Te, s.Refs()))
	var oor *OutOfRangeError
	_, err = ca.Stride(-2, 6, 1)
	assert.True(Te, errors.As(err, &oor))
	_, err = ca.At(6)
	assert.True(Te, errors.As(err, &oor))
}

func TestSelectionProjections(Te *testing.T) {
	f := makeFrame(Te)
	ca := f.Atoms().Filter(AtomName("CA"))
	res := ca.Residues()
	assert.Equal(Te, 6, res.Len())
	assert.Equal(Te, 2, ca.Molecules().Len())
	assert.Equal(Te, 12, res.Atoms().Len())
	assert.Equal(Te, 6, ca.Coords().Len())

	A, _ := f.MoleculeByName("A")
	ms := NewSelection(A)
	assert.Equal(Te, 3, ms.Residues().Len())
	assert.Equal(Te, 6, ms.Atoms().Len())
}

func TestSelectionValues(Te *testing.T) {
	f := makeFrame(Te)
	ca := f.Atoms().Filter(AtomName("CA"))
	v := ca.Values()
	require.Equal(Te, 6, v.NVecs())
	assert.Equal(Te, 2.0, v.At(0, 0))
	//a copy, the frame does not change
	v.Set(0, 0, 100)
	a, _ := f.Atoms().At(1)
	assert.Equal(Te, XYZ{2, 0, 0}, a.R())
	ca.SetValues(v3.Zeros(6))
	assert.Equal(Te, XYZ{}, a.R())
	assert.Panics(Te, func() { ca.SetValues(v3.Zeros(1)) })
	res := ca.Residues()
	assert.Equal(Te, 12, res.Values().NVecs())
	assert.Equal(Te, 0, NewSelection[AtomRef]().Values().NVecs())
}

func TestSelectionValuesAcrossFrames(Te *testing.T) {
	f1 := makeFrame(Te)
	f2 := makeFrame(Te)
	for _, a := range f2.Atoms().All() {
		a.SetR(XYZ{-float64(a.ID()), 1, 0})
	}
	sel := f1.Atoms().Filter(AtomIDs(3, 5)).Union(f2.Atoms().Filter(AtomIDs(12)))
	v := sel.Values()
	require.Equal(Te, 3, v.NVecs())
	first, second := 0, 2
	if sel.Frames()[0] == f2 {
		first, second = 1, 0
	}
	assert.Equal(Te, 3.0, v.At(first, 0))
	assert.Equal(Te, 5.0, v.At(first+1, 0))
	assert.Equal(Te, -12.0, v.At(second, 0))
	assert.Equal(Te, 1.0, v.At(second, 1))

	v.AddVec(v, mustVec(Te, 0, 0, 10))
	sel.SetValues(v)
	a, _ := f1.Atoms().At(4)
	assert.Equal(Te, XYZ{5, 0, 10}, a.R())
	b, _ := f2.Atoms().At(11)
	assert.Equal(Te, XYZ{-12, 1, 10}, b.R())
	untouched, _ := f2.Atoms().At(10)
	assert.Equal(Te, XYZ{-11, 1, 0}, untouched.R())
}

func mustVec(Te *testing.T, x, y, z float64) *v3.Matrix {
	Te.Helper()
	m, err := v3.NewMatrix([]float64{x, y, z})
	require.NoError(Te, err)
	return m
}

func TestSmartSelectionTracksGrowth(Te *testing.T) {
	f := makeFrame(Te)
	sel := f.Atoms().Filter(AtomName("CA")).Smart()
	defer sel.Close()
	rsel := f.Residues().Filter(ResidueIDs(NewResidueID(1))).Smart()
	defer rsel.Close()

	r0, _ := f.Residues().At(0)
	f.AddAtom(r0).SetName("CB")
	A, _ := f.MoleculeByName("A")
	f.AddResidue(A)
	require.NoError(Te, f.Check())

	refs, err := sel.Refs()
	require.NoError(Te, err)
	assert.Equal(Te, []AtomID{2, 4, 6, 8, 10, 12}, atomIDs(Te, refs))
	for _, a := range refs {
		assert.Equal(Te, "CA", a.Name())
	}
	rr, err := rsel.Refs()
	require.NoError(Te, err)
	require.Len(Te, rr, 2)
	assert.Equal(Te, 4, rr[1].Index())
	assert.Equal(Te, "B", rr[1].Molecule().Name())
	s, err := sel.Selection()
	require.NoError(Te, err)
	assert.Equal(Te, 6, s.Len())
}

func TestSmartSelectionObservers(Te *testing.T) {
	f1 := makeFrame(Te)
	f2 := makeFrame(Te)
	all := f1.Atoms().Selection().Union(f2.Atoms().Selection())
	sel := all.Smart()
	assert.Equal(Te, 1, f1.registry(atomArray).Len())
	assert.Equal(Te, 1, f2.registry(atomArray).Len())

	require.NoError(Te, sel.SubtractWith(f1.Atoms().Selection()))
	assert.Equal(Te, 0, f1.registry(atomArray).Len())
	assert.Equal(Te, 1, f2.registry(atomArray).Len())

	require.NoError(Te, sel.UnionWith(f1.Atoms().Filter(AtomName("CA"))))
	assert.Equal(Te, 1, f1.registry(atomArray).Len())
	n, err := sel.Len()
	require.NoError(Te, err)
	assert.Equal(Te, 18, n)

	cp, err := sel.Copy()
	require.NoError(Te, err)
	assert.Equal(Te, 2, f1.registry(atomArray).Len())
	var moved SmartAtomSelection
	moved.TakeFrom(cp)
	assert.Equal(Te, 2, f1.registry(atomArray).Len())
	n, err = cp.Len()
	require.NoError(Te, err)
	assert.Equal(Te, 0, n)
	moved.Close()
	assert.Equal(Te, 1, f1.registry(atomArray).Len())

	require.NoError(Te, sel.IntersectWith(AtomSelection{}))
	assert.Equal(Te, 0, f1.registry(atomArray).Len())
	assert.Equal(Te, 0, f2.registry(atomArray).Len())
}

func TestSmartSelectionPrunedFrameClose(Te *testing.T) {
	f1 := makeFrame(Te)
	f2 := makeFrame(Te)
	sel := f1.Atoms().Selection().Union(f2.Atoms().Selection()).Smart()
	defer sel.Close()
	require.NoError(Te, sel.SubtractWith(f1.Atoms().Selection()))
	assert.Equal(Te, []*Frame{f2}, sel.Frames())

	//the selection no longer observes f1, closing it leaves the selection intact
	require.NoError(Te, f1.Close())
	assert.Equal(Te, SelectionOK, sel.State())
	n, err := sel.Len()
	require.NoError(Te, err)
	assert.Equal(Te, 12, n)
	a, err := sel.At(0)
	require.NoError(Te, err)
	assert.Same(Te, f2, a.Frame())

	require.NoError(Te, f2.Close())
	var dangling *DanglingSelectionError
	_, err = sel.Len()
	assert.True(Te, errors.As(err, &dangling))
}

func TestSmartSelectionDangling(Te *testing.T) {
	f1 := makeFrame(Te)
	f2 := makeFrame(Te)
	sel := f1.Atoms().Selection().Union(f2.Atoms().Selection()).Smart()
	require.NoError(Te, f1.Close())
	var dangling *DanglingSelectionError
	_, err := sel.At(0)
	assert.True(Te, errors.As(err, &dangling))
	err = sel.UnionWith(f2.Atoms().Selection())
	assert.True(Te, errors.As(err, &dangling))
	_, err = sel.Filter(AtomName("CA"))
	assert.True(Te, errors.As(err, &dangling))
	sel.Clear()
	assert.Equal(Te, SelectionOK, sel.State())
	assert.Equal(Te, 0, f2.registry(atomArray).Len())
	require.NoError(Te, sel.UnionWith(f2.Atoms().Selection()))
	n, err := sel.Len()
	require.NoError(Te, err)
	assert.Equal(Te, 12, n)
	sel.Close()
	assert.Equal(Te, 0, f2.registry(atomArray).Len())
}
