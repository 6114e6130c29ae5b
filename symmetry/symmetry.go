/*
 * symmetry.go, part of goxtal.
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
)

// Symmetry is a unit cell plus the list of symmetry operators read for it.
// The first operator is always the identity.
type Symmetry struct {
	Cell       *UnitCell
	SpaceGroup string //Hermann-Mauguin symbol, or superspace group name, if given
	Hall       string
	ops        []*Operator
	modDim     int
}

// New returns a symmetry with the given cell (which can be nil) and only the identity operator.
func New(cell *UnitCell, modDim int) *Symmetry {
	return &Symmetry{Cell: cell, modDim: modDim, ops: []*Operator{Identity(modDim)}}
}

// ModDim returns the modulation dimension of the operators.
func (s *Symmetry) ModDim() int { return s.modDim }

// Len returns the number of operators.
func (s *Symmetry) Len() int { return len(s.ops) }

// Operator returns the i-th operator.
func (s *Symmetry) Operator(i int) *Operator { return s.ops[i] }

// Operators returns the operators.
func (s *Symmetry) Operators() []*Operator { return s.ops }

// AddOperator parses xyz and adds it, unless an equal operator is already present. It returns the index of the
// operator in the list. The first superspace operator added to a symmetry with only the identity
// sets the modulation dimension.
func (s *Symmetry) AddOperator(xyz string) (int, error) {
	op, err := ParseOperator(xyz)
	if err != nil {
		return -1, errDecorate(err, "AddOperator")
	}
	i, err := s.Add(op)
	return i, errDecorate(err, "AddOperator")
}

// Add adds op unless an equal operator is already present, and returns its index.
func (s *Symmetry) Add(op *Operator) (int, error) {
	if op.ModDim() != s.modDim {
		if len(s.ops) > 1 {
			return -1, Error{fmt.Sprintf("operator %q has modulation dimension %d, expected %d", op.XYZ, op.ModDim(), s.modDim), []string{"Add"}}
		}
		s.modDim = op.ModDim()
		s.ops = []*Operator{Identity(s.modDim)}
	}
	for i, o := range s.ops {
		if o.Equal(op) {
			return i, nil
		}
	}
	s.ops = append(s.ops, op)
	return len(s.ops) - 1, nil
}

// Image is a symmetry-generated copy of an atom of the asymmetric unit.
type Image struct {
	Source int        //index of the atom in the asymmetric unit
	Pos    [3]float64 //fractional, within [0,1)
	Ops    OpSet      //operators that produce this position
	Shift  [3]float64 //lattice translation added, after the first operator, to bring the position into the cell
}

// Expand applies every operator to every fractional position in frac, and brings the results into the unit cell.
// Images of the same source closer than tol A (or tol in fractional units when there is no cell) are merged, and record all
// the operators that produce them. Images come out grouped by source, in operator order.
func (s *Symmetry) Expand(frac [][3]float64, tol float64) []Image {
	var ret []Image
	for i, f := range frac {
		first := len(ret)
		for k, op := range s.ops {
			p, shift := Normalize(op.Apply3(f))
			merged := false
			for j := first; j < len(ret); j++ {
				if s.periodicDistance(ret[j].Pos, p) < tol {
					ret[j].Ops.Set(k)
					merged = true
					break
				}
			}
			if merged {
				continue
			}
			img := Image{Source: i, Pos: p, Shift: shift}
			img.Ops.Set(k)
			ret = append(ret, img)
		}
	}
	return ret
}

// periodicDistance is the distance between two points in the cell, taking into account
// that positions such as 0 and 0.99999 are the same.
func (s *Symmetry) periodicDistance(f1, f2 [3]float64) float64 {
	var d [3]float64
	for i := range d {
		d[i] = f2[i] - f1[i]
		d[i] -= math.Round(d[i])
	}
	if s.Cell == nil {
		return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	}
	return s.Cell.FractionalDistance([3]float64{}, d)
}

// CheckDistance tests whether, for some lattice translation of f2 with components
// in [-images, images], the distance between f1 and f2 is within dx of d.
// It returns the translation found. The untranslated position is tried first.
func (s *Symmetry) CheckDistance(f1, f2 [3]float64, d, dx float64, images int) (bool, [3]float64) {
	if s.Cell == nil {
		return false, [3]float64{}
	}
	if math.Abs(s.Cell.FractionalDistance(f1, f2)-d) <= dx {
		return true, [3]float64{}
	}
	for i := -images; i <= images; i++ {
		for j := -images; j <= images; j++ {
			for k := -images; k <= images; k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				t := [3]float64{float64(i), float64(j), float64(k)}
				p := [3]float64{f2[0] + t[0], f2[1] + t[1], f2[2] + t[2]}
				if math.Abs(s.Cell.FractionalDistance(f1, p)-d) <= dx {
					return true, t
				}
			}
		}
	}
	return false, [3]float64{}
}
