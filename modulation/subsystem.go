/*
 * subsystem.go, part of goxtal.
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

package modulation

import (
	"fmt"

	"github.com/rmera/goxtal/symmetry"
	"gonum.org/v1/gonum/mat"
)

// Subsystem is a component of a composite crystal. Its (3+d)x(3+d) matrix W takes the
// reciprocal basis of the parent, (a*, b*, c*, q_1..q_d), to the basis of the subsystem.
// The symmetry of the subsystem is derived from the parent's the first time it is requested.
type Subsystem struct {
	Code  string
	W     *mat.Dense
	sym   *symmetry.Symmetry
	sigma [][3]float64
	err   error
	done  bool
}

// NewSubsystem returns a subsystem with the given code and W matrix, which is copied.
func NewSubsystem(code string, w [][]float64) (*Subsystem, error) {
	n := len(w)
	if n < 4 {
		return nil, Error{fmt.Sprintf("subsystem %s: W must be at least 4x4, got %d rows", code, n), []string{"NewSubsystem"}}
	}
	m := mat.NewDense(n, n, nil)
	for i, row := range w {
		if len(row) != n {
			return nil, Error{fmt.Sprintf("subsystem %s: row %d of W has %d elements", code, i+1, len(row)), []string{"NewSubsystem"}}
		}
		m.SetRow(i, row)
	}
	return &Subsystem{Code: code, W: m}, nil
}

// Symmetry returns the cell, operators and wave vectors of the subsystem, given the parent
// symmetry and wave vectors (sigma, one row per modulation dimension, in reciprocal lattice units).
// The results are computed once and cached.
func (s *Subsystem) Symmetry(parent *symmetry.Symmetry, sigma [][3]float64) (*symmetry.Symmetry, [][3]float64, error) {
	if s.done {
		return s.sym, s.sigma, s.err
	}
	s.done = true
	s.sym, s.sigma, s.err = s.derive(parent, sigma)
	return s.sym, s.sigma, s.err
}

func (s *Subsystem) derive(parent *symmetry.Symmetry, sigma [][3]float64) (*symmetry.Symmetry, [][3]float64, error) {
	d := len(sigma)
	n, _ := s.W.Dims()
	if n != 3+d {
		return nil, nil, Error{fmt.Sprintf("subsystem %s: W is %dx%d for a modulation dimension of %d", s.Code, n, n, d), []string{"Subsystem.Symmetry"}}
	}
	if parent == nil || parent.Cell == nil {
		return nil, nil, Error{fmt.Sprintf("subsystem %s: no parent cell", s.Code), []string{"Subsystem.Symmetry"}}
	}
	if parent.ModDim() != d {
		return nil, nil, Error{fmt.Sprintf("subsystem %s: parent operators have modulation dimension %d, expected %d", s.Code, parent.ModDim(), d), []string{"Subsystem.Symmetry"}}
	}
	//The parent reciprocal basis in Cartesian coordinates: a*, b*, c*, then the q's.
	rs := parent.Cell.Reciprocal()
	basis := mat.NewDense(n, 3, nil)
	for i := 0; i < 3; i++ {
		basis.SetRow(i, rs[i][:])
	}
	for j, q := range sigma {
		for k := 0; k < 3; k++ {
			var v float64
			for l := 0; l < 3; l++ {
				v += q[l] * rs[l][k]
			}
			basis.Set(3+j, k, v)
		}
	}
	nb := mat.NewDense(n, 3, nil)
	nb.Mul(s.W, basis)
	recip := mat.DenseCopyOf(nb.Slice(0, 3, 0, 3))
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(recip); err != nil {
		return nil, nil, Error{fmt.Sprintf("subsystem %s: singular reciprocal basis", s.Code), []string{"Subsystem.Symmetry"}}
	}
	//real space vectors are the columns of the inverse of the reciprocal basis
	var vecs [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			vecs[i][j] = inv.At(j, i)
		}
	}
	cell, err := symmetry.NewUnitCellFromVectors(vecs)
	if err != nil {
		return nil, nil, errDecorate(err, "Subsystem.Symmetry")
	}
	//the wave vectors of the subsystem, in its own reciprocal basis
	nsigma := make([][3]float64, d)
	for j := range nsigma {
		for k := 0; k < 3; k++ {
			for l := 0; l < 3; l++ {
				nsigma[j][k] += nb.At(3+j, l) * inv.At(l, k)
			}
		}
	}
	//operators: W R W^-1 and W v, done at once with the augmented matrix.
	waug := mat.NewDense(n+1, n+1, nil)
	waug.Slice(0, n, 0, n).(*mat.Dense).Copy(s.W)
	waug.Set(n, n, 1)
	winv := mat.NewDense(n+1, n+1, nil)
	if err := winv.Inverse(waug); err != nil {
		return nil, nil, Error{fmt.Sprintf("subsystem %s: singular W", s.Code), []string{"Subsystem.Symmetry"}}
	}
	sym := symmetry.New(cell, d)
	sym.SpaceGroup = parent.SpaceGroup
	tmp := mat.NewDense(n+1, n+1, nil)
	rot := mat.NewDense(n+1, n+1, nil)
	for _, op := range parent.Operators() {
		tmp.Mul(waug, op.Matrix())
		rot.Mul(tmp, winv)
		nop, err := symmetry.NewOperator(rot)
		if err != nil {
			return nil, nil, errDecorate(err, "Subsystem.Symmetry")
		}
		if _, err := sym.Add(nop); err != nil {
			return nil, nil, errDecorate(err, "Subsystem.Symmetry")
		}
	}
	return sym, nsigma, nil
}
