/*
 * unitcell.go, part of goxtal.
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

package symmetry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const deg2rad = math.Pi / 180

// UnitCell holds the lattice of a crystal and converts between fractional and Cartesian coordinates.
type UnitCell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64 //degrees
	toCart             *mat.Dense
	toFrac             *mat.Dense
	origin             [3]float64 //Cartesian position of the fractional origin
}

// NewUnitCell builds a cell from its parameters, lengths in A and angles in degrees.
// The a vector is placed along x, and b in the xy plane.
func NewUnitCell(a, b, c, alpha, beta, gamma float64) (*UnitCell, error) {
	for _, v := range []float64{a, b, c, alpha, beta, gamma} {
		if math.IsNaN(v) || v <= 0 {
			return nil, Error{fmt.Sprintf("invalid cell parameters %v %v %v %v %v %v", a, b, c, alpha, beta, gamma), []string{"NewUnitCell"}}
		}
	}
	ca, cb, cg := math.Cos(alpha*deg2rad), math.Cos(beta*deg2rad), math.Cos(gamma*deg2rad)
	sg := math.Sin(gamma * deg2rad)
	v := 1 - ca*ca - cb*cb - cg*cg + 2*ca*cb*cg
	if v <= 0 {
		return nil, Error{"cell angles do not define a valid cell", []string{"NewUnitCell"}}
	}
	v = math.Sqrt(v)
	vecs := [3][3]float64{
		{a, 0, 0},
		{b * cg, b * sg, 0},
		{c * cb, c * (ca - cb*cg) / sg, c * v / sg},
	}
	u, err := NewUnitCellFromVectors(vecs)
	if err != nil {
		return nil, errDecorate(err, "NewUnitCell")
	}
	//Keep the parameters exactly as given
	u.A, u.B, u.C, u.Alpha, u.Beta, u.Gamma = a, b, c, alpha, beta, gamma
	return u, nil
}

// NewUnitCellFromVectors builds a cell from its three Cartesian lattice vectors, given as rows.
func NewUnitCellFromVectors(v [3][3]float64) (*UnitCell, error) {
	cart := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cart.Set(j, i, v[i][j]) //the vectors are the columns
		}
	}
	frac := mat.NewDense(3, 3, nil)
	if err := frac.Inverse(cart); err != nil {
		return nil, Error{"singular lattice vectors: " + err.Error(), []string{"NewUnitCellFromVectors"}}
	}
	u := &UnitCell{toCart: cart, toFrac: frac}
	u.setParams()
	return u, nil
}

// NewUnitCellFromFractionalization builds a cell from a matrix and vector that take Cartesian
// coordinates to fractional ones, as the mmCIF _atom_sites.fract_transf fields give.
func NewUnitCellFromFractionalization(m [3][3]float64, vec [3]float64) (*UnitCell, error) {
	frac := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			frac.Set(i, j, m[i][j])
		}
	}
	cart := mat.NewDense(3, 3, nil)
	if err := cart.Inverse(frac); err != nil {
		return nil, Error{"singular fractionalization matrix: " + err.Error(), []string{"NewUnitCellFromFractionalization"}}
	}
	u := &UnitCell{toCart: cart, toFrac: frac}
	//frac = M*cart + v, so the fractional origin is at cart = -M^-1 v
	o := mat.NewVecDense(3, nil)
	o.MulVec(cart, mat.NewVecDense(3, []float64{-vec[0], -vec[1], -vec[2]}))
	u.origin = [3]float64{o.AtVec(0), o.AtVec(1), o.AtVec(2)}
	u.setParams()
	return u, nil
}

func (u *UnitCell) setParams() {
	v := u.Vectors()
	la, lb, lc := floats.Norm(v[0][:], 2), floats.Norm(v[1][:], 2), floats.Norm(v[2][:], 2)
	angle := func(x, y []float64, lx, ly float64) float64 {
		c := floats.Dot(x, y) / (lx * ly)
		return math.Acos(math.Max(-1, math.Min(1, c))) / deg2rad
	}
	u.A, u.B, u.C = la, lb, lc
	u.Alpha = angle(v[1][:], v[2][:], lb, lc)
	u.Beta = angle(v[0][:], v[2][:], la, lc)
	u.Gamma = angle(v[0][:], v[1][:], la, lb)
}

// Params returns a, b, c, alpha, beta and gamma.
func (u *UnitCell) Params() [6]float64 {
	return [6]float64{u.A, u.B, u.C, u.Alpha, u.Beta, u.Gamma}
}

// Vectors returns the Cartesian lattice vectors a, b and c as rows.
func (u *UnitCell) Vectors() [3][3]float64 {
	var ret [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[i][j] = u.toCart.At(j, i)
		}
	}
	return ret
}

// Reciprocal returns the Cartesian reciprocal vectors a*, b* and c* as rows, without the 2 pi factor.
func (u *UnitCell) Reciprocal() [3][3]float64 {
	var ret [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[i][j] = u.toFrac.At(i, j)
		}
	}
	return ret
}

// ReciprocalLengths returns |a*|, |b*| and |c*|.
func (u *UnitCell) ReciprocalLengths() [3]float64 {
	r := u.Reciprocal()
	return [3]float64{floats.Norm(r[0][:], 2), floats.Norm(r[1][:], 2), floats.Norm(r[2][:], 2)}
}

// Volume returns the volume of the cell in A^3
func (u *UnitCell) Volume() float64 {
	return math.Abs(mat.Det(u.toCart))
}

// ToCartesian converts fractional coordinates to Cartesian.
func (u *UnitCell) ToCartesian(f [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		ret[i] = u.origin[i]
		for j := 0; j < 3; j++ {
			ret[i] += u.toCart.At(i, j) * f[j]
		}
	}
	return ret
}

// ToFractional converts Cartesian coordinates to fractional.
func (u *UnitCell) ToFractional(c [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[i] += u.toFrac.At(i, j) * (c[j] - u.origin[j])
		}
	}
	return ret
}

// ToCartesianVector converts a fractional displacement (not a position) to Cartesian.
func (u *UnitCell) ToCartesianVector(f [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[i] += u.toCart.At(i, j) * f[j]
		}
	}
	return ret
}

// ToFractionalVector converts a Cartesian displacement (not a position) to fractional.
func (u *UnitCell) ToFractionalVector(c [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[i] += u.toFrac.At(i, j) * c[j]
		}
	}
	return ret
}

// FractionalDistance returns the Cartesian distance between two points given in fractional coordinates.
func (u *UnitCell) FractionalDistance(f1, f2 [3]float64) float64 {
	d := u.ToCartesianVector([3]float64{f2[0] - f1[0], f2[1] - f1[1], f2[2] - f1[2]})
	return floats.Norm(d[:], 2)
}

// Normalize returns f translated into the [0,1) range on each axis, and the lattice
// translation that was added to it.
func Normalize(f [3]float64) ([3]float64, [3]float64) {
	var shift [3]float64
	for i := range f {
		s := -math.Floor(f[i])
		f[i] += s
		//values such as 0.9999999 that floor to 0 but are 1 for all purposes.
		if f[i] >= 1-1e-6 {
			f[i] -= 1
			s -= 1
		}
		shift[i] = s
	}
	return f, shift
}
