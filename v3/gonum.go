/*
 * gonum.go, part of xmol.
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

//All the *Vec functions operate on row vectors: a "vector" is the
//cartesian coordinates of one point in 3D space.

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space, backed by a row-major gonum Dense
// with 3 columns. Every gonum method of Dense is available on it.
type Matrix struct {
	*mat.Dense
}

// Matrix2Dense returns the underlying Dense.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

// Dense2Matrix wraps A, which must have 3 columns (or none at all).
func Dense2Matrix(A *mat.Dense) *Matrix {
	if _, c := A.Dims(); c != 3 && c != 0 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NewMatrix returns a Matrix with 3 columns that uses data as storage.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("xmol/v3: input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	if l == 0 {
		return Empty(), nil
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	if vecs == 0 {
		return Empty()
	}
	return &Matrix{mat.NewDense(vecs, 3, nil)}
}

// Empty returns a Matrix with no vectors. gonum does not allow zero-sized
// Dense matrices to be built with NewDense, so this is the way to get one.
func Empty() *Matrix {
	return &Matrix{&mat.Dense{}}
}

// NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 && r != 0 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// VecView returns a view of the ith vector of F.
func (F *Matrix) VecView(i int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)}
}

// View returns a view of r vectors of F, starting from the ith.
// Changes in the view are reflected in F and vice versa.
func (F *Matrix) View(i, r int) *Matrix {
	if r == 0 {
		return Empty()
	}
	return &Matrix{F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)}
}

// SetVecs sets the vectors of F with index clist[k] to the kth vector of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	ar := A.NVecs()
	if ar < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

// SomeVecs puts in F the vectors of A with indexes in clist, in the clist order.
// F must have exactly len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

// SomeVecsSafe is SomeVecs returning an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case PanicMsg:
				err = Error{string(e), []string{"SomeVecsSafe"}, true}
			case mat.Error:
				err = Error{fmt.Sprintf("xmol/v3: error in a gonum function: %s", e), []string{"SomeVecsSafe"}, true}
			default:
				panic(r)
			}
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

// AddVec adds vec to each vector of A, putting the result in F.
// F and A may be the same matrix, or views over the same data.
func (F *Matrix) AddVec(A, vec *Matrix) {
	F.vecOp(A, vec, 1)
}

// SubVec subtracts vec from each vector of A, putting the result in F.
// F and A may be the same matrix, or views over the same data.
func (F *Matrix) SubVec(A, vec *Matrix) {
	F.vecOp(A, vec, -1)
}

// vecOp sets F to A+sign*vec, element by element, since gonum refuses
// operations between distinct views of the same region.
func (F *Matrix) vecOp(A, vec *Matrix, sign float64) {
	if vec.NVecs() != 1 || A.NVecs() != F.NVecs() {
		panic(ErrShape)
	}
	v := [3]float64{sign * vec.At(0, 0), sign * vec.At(0, 1), sign * vec.At(0, 2)}
	for i := 0; i < A.NVecs(); i++ {
		for j, d := range v {
			F.Set(i, j, A.At(i, j)+d)
		}
	}
}

// Centroid returns the geometric center of the vectors of F, as a 1-vector Matrix.
func (F *Matrix) Centroid() *Matrix {
	n := F.NVecs()
	if n == 0 {
		panic(ErrNotEnoughElements)
	}
	c := Zeros(1)
	for i := 0; i < n; i++ {
		c.Add(c, F.VecView(i))
	}
	c.Scale(1/float64(n), c)
	return c
}

// String returns a neat representation of F.
func (F *Matrix) String() string {
	r := F.NVecs()
	if r == 0 {
		return "[]"
	}
	v := make([]string, 0, r)
	for i := 0; i < r; i++ {
		v = append(v, fmt.Sprintf("%6.2f %6.2f %6.2f", F.At(i, 0), F.At(i, 1), F.At(i, 2)))
	}
	return "\n[" + strings.Join(v, "\n ") + " ]"
}

//Errors

// Error is the error type of the package. It satisfies the Error interface of xmol.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// For errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("xmol/v3: A VecMatrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("xmol/v3: not enough elements in Matrix")
	ErrShape             = PanicMsg("xmol/v3: Dimension mismatch")
)
