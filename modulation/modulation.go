/*
 * modulation.go, part of goxtal.
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

// Package modulation rebuilds incommensurately modulated and composite crystal structures
// from the wave vectors and atomic modulation functions given in msCIF files.
//
// Records are collected with a Resolver while a file is read, and applied to an atom set
// once the set, and its symmetry, are complete.
package modulation

import (
	"math"
)

// Function is a resolved atomic modulation function of one internal coordinate vector x4.
type Function struct {
	Func  Func
	Index int       //wave vector index of Fourier terms
	Coefs []float64 //the Fourier wave vector as a combination of the cell wave vectors
	P     Params
}

// Value evaluates the function at x4.
// Fourier terms give P[0] cos(2 pi n.x4) + P[1] sin(2 pi n.x4), with n the harmonic coefficients.
// Crenel functions give 1 inside the interval of center P[0] and width P[1], 0 outside.
// Sawtooth functions go linearly from -P[2] to P[2] across the same interval, and are 0 outside.
// Crenel and sawtooth functions only depend on the first internal coordinate.
func (f *Function) Value(x4 []float64) float64 {
	switch f.Func {
	case Crenel:
		if inInterval(x4[0], f.P[0], f.P[1]) {
			return 1
		}
		return 0
	case Sawtooth:
		d := reduce(x4[0] - f.P[0])
		if math.Abs(d) > f.P[1]/2 || f.P[1] == 0 {
			return 0
		}
		return f.P[2] * 2 * d / f.P[1]
	}
	var x float64
	for i, c := range f.Coefs {
		if i < len(x4) {
			x += c * x4[i]
		}
	}
	theta := 2 * math.Pi * x
	return f.P[0]*math.Cos(theta) + f.P[1]*math.Sin(theta)
}

// reduce brings x into [-0.5, 0.5)
func reduce(x float64) float64 {
	return x - math.Floor(x+0.5)
}

func inInterval(x, center, width float64) bool {
	if width >= 1 {
		return true
	}
	return math.Abs(reduce(x-center)) <= width/2
}

// SnapOccupancy clamps an occupancy to [0, 1]. Values between 0.49 and 0.50 are moved to 0.489,
// so that a half-occupied site is never shown as both present and absent.
func SnapOccupancy(o float64) float64 {
	if o > 0.49 && o < 0.50 {
		return 0.489
	}
	return math.Max(0, math.Min(1, o))
}

// atomModulation gathers the functions that apply to one atom label.
type atomModulation struct {
	occ    []*Function
	crenel *Function
	disp   [3][]*Function
	tensor [6][]*Function
}

func (m *atomModulation) empty() bool {
	if len(m.occ) > 0 || m.crenel != nil {
		return false
	}
	for _, d := range m.disp {
		if len(d) > 0 {
			return false
		}
	}
	for _, t := range m.tensor {
		if len(t) > 0 {
			return false
		}
	}
	return true
}

func sum(fs []*Function, x4 []float64) float64 {
	var v float64
	for _, f := range fs {
		v += f.Value(x4)
	}
	return v
}

// occupancy returns the modulated occupancy given the average one, and false if the occupancy is not modulated.
func (m *atomModulation) occupancy(avg float64, x4 []float64) (float64, bool) {
	if len(m.occ) == 0 && m.crenel == nil {
		return avg, false
	}
	o := avg + sum(m.occ, x4)
	if m.crenel != nil {
		o *= m.crenel.Value(x4)
	}
	return SnapOccupancy(o), true
}

// displacement returns the fractional displacement of the asymmetric unit atom at x4.
func (m *atomModulation) displacement(x4 []float64) ([3]float64, bool) {
	var d [3]float64
	found := false
	for i, fs := range m.disp {
		if len(fs) > 0 {
			found = true
			d[i] = sum(fs, x4)
		}
	}
	return d, found
}

func (m *atomModulation) tensorDelta(x4 []float64) ([6]float64, bool) {
	var t [6]float64
	found := false
	for i, fs := range m.tensor {
		if len(fs) > 0 {
			found = true
			t[i] = sum(fs, x4)
		}
	}
	return t, found
}

var axisIndex = map[string]int{"x": 0, "y": 1, "z": 2}

var tensorIndex = map[string]int{"u11": 0, "u22": 1, "u33": 2, "u12": 3, "u13": 4, "u23": 5}

// rotateVector returns r v.
func rotateVector(r [3][3]float64, v [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[i] += r[i][j] * v[j]
		}
	}
	return ret
}

// rotateTensor returns r t r^T, the tensor given as its 6 unique components.
func rotateTensor(r [3][3]float64, t [6]float64) [6]float64 {
	m := [3][3]float64{{t[0], t[3], t[4]}, {t[3], t[1], t[5]}, {t[4], t[5], t[2]}}
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					out[i][j] += r[i][k] * m[k][l] * r[j][l]
				}
			}
		}
	}
	return [6]float64{out[0][0], out[1][1], out[2][2], out[0][1], out[0][2], out[1][2]}
}
