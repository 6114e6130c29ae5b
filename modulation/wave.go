/*
 * wave.go, part of goxtal.
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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tolerance for comparing wave vector components, in reciprocal lattice units.
const waveTol = 1e-3

// maximum absolute coefficient tried in the search for integer combinations.
const maxCoef = 3

// FindCoefficients expresses the wave vector p as a combination of the cell wave vectors q.
// It tries, in order, an integer multiple of a single q_i, an integer combination with coefficients
// in [-3, 3], and a least squares solution whose components are fractions with denominators up to 6.
// It returns false if none of them reproduces p.
func FindCoefficients(p [3]float64, q [][3]float64) ([]float64, bool) {
	d := len(q)
	if d == 0 {
		return nil, false
	}
	//integer multiple of one of the vectors
	for i, qi := range q {
		qq := floats.Dot(qi[:], qi[:])
		if qq == 0 {
			continue
		}
		m := math.Round(floats.Dot(p[:], qi[:]) / qq)
		if m == 0 {
			continue
		}
		if sameVector(p, scaled(qi, m)) {
			ret := make([]float64, d)
			ret[i] = m
			return ret, true
		}
	}
	if c, ok := searchCombination(p, q); ok {
		return c, true
	}
	return rationalCombination(p, q)
}

// searchCombination looks for the combination with the smallest coefficients (sum of
// absolute values) that gives p.
func searchCombination(p [3]float64, q [][3]float64) ([]float64, bool) {
	d := len(q)
	n := make([]int, d)
	for i := range n {
		n[i] = -maxCoef
	}
	var best []float64
	bestNorm := math.MaxInt
	for {
		norm := 0
		for _, v := range n {
			if v < 0 {
				norm -= v
			} else {
				norm += v
			}
		}
		if norm > 0 && norm < bestNorm {
			var s [3]float64
			for i, v := range n {
				for k := 0; k < 3; k++ {
					s[k] += float64(v) * q[i][k]
				}
			}
			if sameVector(p, s) {
				bestNorm = norm
				best = make([]float64, d)
				for i, v := range n {
					best[i] = float64(v)
				}
			}
		}
		//next combination, like an odometer
		i := 0
		for ; i < d; i++ {
			n[i]++
			if n[i] <= maxCoef {
				break
			}
			n[i] = -maxCoef
		}
		if i == d {
			break
		}
	}
	return best, best != nil
}

// rationalCombination solves q^T n = p in the least squares sense and accepts the solution
// if every component is close to a fraction with a small denominator.
func rationalCombination(p [3]float64, q [][3]float64) ([]float64, bool) {
	d := len(q)
	if d > 3 {
		return nil, false
	}
	a := mat.NewDense(3, d, nil)
	for i, qi := range q {
		for k := 0; k < 3; k++ {
			a.Set(k, i, qi[k])
		}
	}
	var x mat.VecDense
	if err := x.SolveVec(a, mat.NewVecDense(3, []float64{p[0], p[1], p[2]})); err != nil {
		return nil, false
	}
	ret := make([]float64, d)
	var s [3]float64
	for i := range ret {
		r, ok := toFraction(x.AtVec(i))
		if !ok {
			return nil, false
		}
		ret[i] = r
		for k := 0; k < 3; k++ {
			s[k] += r * q[i][k]
		}
	}
	if !sameVector(p, s) {
		return nil, false
	}
	return ret, true
}

// toFraction rounds v to the nearest fraction with denominator up to 6, if it is close enough.
func toFraction(v float64) (float64, bool) {
	for den := 1.0; den <= 6; den++ {
		n := math.Round(v * den)
		if math.Abs(v*den-n) < waveTol*den {
			return n / den, true
		}
	}
	return v, false
}

func scaled(v [3]float64, m float64) [3]float64 {
	return [3]float64{v[0] * m, v[1] * m, v[2] * m}
}

func sameVector(a, b [3]float64) bool {
	return floats.EqualApprox(a[:], b[:], waveTol)
}
