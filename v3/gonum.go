/*
 * gonum.go, part of goxtal.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space.
// Within the package it is understood that a "vector" is a row vector, i.e. the
// cartesian coordinates of a point in 3D space. The name of some funcitions in
// the library reflect this.
type Matrix struct {
	*mat.Dense
}

// Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

// Dense2Matrix wraps A, which must have 3 columns, in a Matrix.
func Dense2Matrix(A *mat.Dense) *Matrix {
	return &Matrix{A}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice lenght %d not divisible by %d: %d", l, cols, l%cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

// FromVecs returns a Matrix with a copy of the given points as rows.
func FromVecs(vecs [][3]float64) *Matrix {
	if len(vecs) == 0 {
		panic(ErrNotEnoughElements)
	}
	data := make([]float64, 0, 3*len(vecs))
	for _, v := range vecs {
		data = append(data, v[:]...)
	}
	return &Matrix{mat.NewDense(len(vecs), 3, data)}
}

// NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// Vec returns the i-th vector of F as an array.
func (F *Matrix) Vec(i int) [3]float64 {
	return [3]float64{F.At(i, 0), F.At(i, 1), F.At(i, 2)}
}

// SetVec sets the i-th vector of F to v.
func (F *Matrix) SetVec(i int, v [3]float64) {
	F.SetRow(i, v[:])
}

// VecView returns view of the given vector of the matrix.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of F starting from the i-th vector and spanning r vectors.
// Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// AddVec adds the vector vec to every vector of A, putting the result on the received.
func (F *Matrix) AddVec(A *Matrix, vec [3]float64) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec[j])
		}
	}
}

// SubVec subtracts the vector vec from every vector of A, putting the result on the received.
func (F *Matrix) SubVec(A *Matrix, vec [3]float64) {
	F.AddVec(A, [3]float64{-vec[0], -vec[1], -vec[2]})
}

// SetVecs sets the vectors whith index n = each value on clist, in the received to the
// n vector of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if fr < len(clist) || ar < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

// SomeVecs puts in the receiver all the ith vectors of matrix A,
// where i are the numbers in clist. The vectors are in the same order
// than the clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if fr != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= ar || val < 0 {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

// SomeVecsSafe is like SomeVecs, but it returns an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case PanicMsg:
				err = Error{string(e), []string{"SomeVecsSafe"}, true}
			case mat.Error:
				err = Error{fmt.Sprintf("goxtal/v3: Error in a gonum function: %s", e), []string{"SomeVecsSafe"}, true}
			default:
				panic(r)
			}
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

// Centroid returns the average of the vectors of F.
func (F *Matrix) Centroid() [3]float64 {
	n := F.NVecs()
	var ret [3]float64
	if n == 0 {
		return ret
	}
	for j := 0; j < 3; j++ {
		ret[j] = floats.Sum(mat.Col(nil, j, F)) / float64(n)
	}
	return ret
}

// Distance returns the distance between the i-th and the j-th vectors of F.
func (F *Matrix) Distance(i, j int) float64 {
	a, b := F.Vec(i), F.Vec(j)
	return floats.Distance(a[:], b[:], 2)
}

// DistanceTo returns the distance between the i-th vector of F and the point p.
func (F *Matrix) DistanceTo(i int, p [3]float64) float64 {
	a := F.Vec(i)
	return floats.Distance(a[:], p[:], 2)
}

// Closest returns the index of the vector of F closest to p, and the distance between them.
// It returns -1 if F has no vectors.
func (F *Matrix) Closest(p [3]float64) (int, float64) {
	best, bestd := -1, math.Inf(1)
	for i := 0; i < F.NVecs(); i++ {
		if d := F.DistanceTo(i, p); d < bestd {
			best, bestd = i, d
		}
	}
	return best, bestd
}

// String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < F.NVecs(); i++ {
		if i > 0 {
			b.WriteString("\n ")
		}
		fmt.Fprintf(&b, "%8.3f %8.3f %8.3f", F.At(i, 0), F.At(i, 1), F.At(i, 2))
	}
	b.WriteString("]")
	return b.String()
}

// Error is the error type of the package. It fulfills the goxtal Error interface.
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

// Critical return whether the error is critical or it can be ifnored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("goxtal/v3: A Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("goxtal/v3: not enough elements in Matrix")
	ErrShape             = PanicMsg("goxtal/v3: Dimension mismatch")
	ErrIndexOutOfRange   = PanicMsg("goxtal/v3: index out of range")
)
