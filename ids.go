/*
 * ids.go, part of xmol.
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
	"math"
)

// AtomID is the serial number of an atom, as found in structure files.
type AtomID int

// ResidueID is the serial number of a residue plus its insertion code.
// ICode is 0 when the residue has no insertion code.
type ResidueID struct {
	Serial int
	ICode  byte
}

// NewResidueID returns the ResidueID with the given serial and no insertion code.
func NewResidueID(serial int) ResidueID {
	return ResidueID{Serial: serial}
}

// Less orders residue ids by serial, then by insertion code.
func (R ResidueID) Less(o ResidueID) bool {
	if R.Serial != o.Serial {
		return R.Serial < o.Serial
	}
	return R.ICode < o.ICode
}

func (R ResidueID) String() string {
	if R.ICode == 0 || R.ICode == ' ' {
		return fmt.Sprintf("%d", R.Serial)
	}
	return fmt.Sprintf("%d%c", R.Serial, R.ICode)
}

// XYZ is a point in cartesian space, in Angstrom.
type XYZ struct {
	X, Y, Z float64
}

func (C XYZ) String() string {
	return fmt.Sprintf("(%6.3f %6.3f %6.3f)", C.X, C.Y, C.Z)
}

// UnitCell holds the three lattice vectors of a periodic box.
// The zero value means "no box".
type UnitCell struct {
	V [3]XYZ
}

// UnitCellFromBox builds a cell from 9 numbers, the three vectors one after another,
// which is how trajectory files store boxes. Returns the zero cell if box is too short.
func UnitCellFromBox(box []float64) UnitCell {
	var U UnitCell
	if len(box) < 9 {
		return U
	}
	for i := 0; i < 3; i++ {
		U.V[i] = XYZ{box[3*i], box[3*i+1], box[3*i+2]}
	}
	return U
}

// UnitCellFromLengths builds a cell from the lengths a, b, c and the angles
// alpha, beta, gamma (degrees), with the first vector along x and the second
// one in the xy plane.
func UnitCellFromLengths(a, b, c, alpha, beta, gamma float64) UnitCell {
	const deg = math.Pi / 180
	ca, cb, cg := math.Cos(alpha*deg), math.Cos(beta*deg), math.Cos(gamma*deg)
	sg := math.Sin(gamma * deg)
	var U UnitCell
	U.V[0] = XYZ{a, 0, 0}
	U.V[1] = XYZ{b * cg, b * sg, 0}
	cx := c * cb
	cy := c * (ca - cb*cg) / sg
	U.V[2] = XYZ{cx, cy, math.Sqrt(math.Max(c*c-cx*cx-cy*cy, 0))}
	return U
}

// Box returns the cell as 9 numbers, the inverse of UnitCellFromBox.
// If dest is given and long enough, it is filled and returned.
func (U UnitCell) Box(dest ...[]float64) []float64 {
	var b []float64
	if len(dest) > 0 && len(dest[0]) >= 9 {
		b = dest[0]
	} else {
		b = make([]float64, 9)
	}
	for i, v := range U.V {
		b[3*i], b[3*i+1], b[3*i+2] = v.X, v.Y, v.Z
	}
	return b
}

// Empty is true for the zero cell.
func (U UnitCell) Empty() bool {
	return U == UnitCell{}
}

// Lengths returns the norms of the three lattice vectors.
func (U UnitCell) Lengths() [3]float64 {
	var l [3]float64
	for i, v := range U.V {
		l[i] = math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	}
	return l
}
