/*
 * key.go, part of goxtal.
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
	"math"
)

// Kind is what a modulation record describes.
type Kind int

const (
	WaveVector    Kind = iota //a cell wave vector, q_n
	FourierVector             //a wave vector used by the atom-site Fourier terms, a combination of the q's
	Occupancy
	Displacement
	Tensor //anisotropic displacement tensor
)

func (k Kind) String() string {
	switch k {
	case WaveVector:
		return "W"
	case FourierVector:
		return "F"
	case Occupancy:
		return "O"
	case Displacement:
		return "D"
	case Tensor:
		return "U"
	}
	return "?"
}

// Func is the functional form of an atom modulation.
type Func int

const (
	Fourier  Func = iota //sum of cos/sin pairs, one per wave vector
	Crenel               //occupancy step function
	Sawtooth             //linear displacement ramp
)

// Key identifies a modulation record. Keys are comparable, and are used as map keys.
type Key struct {
	Kind  Kind
	Func  Func
	Axis  string //"x", "y", "z" for displacements, "U11".."U23" for tensors
	Label string //atom label
	Index int    //wave vector index, starting at 1
	Model int    //atom set the record belongs to
}

func (k Key) String() string {
	switch k.Kind {
	case WaveVector, FourierVector:
		return fmt.Sprintf("%s_%d", k.Kind, k.Index)
	}
	f := ""
	switch k.Func {
	case Crenel:
		f = "C"
	case Sawtooth:
		f = "S"
	default:
		f = fmt.Sprint(k.Index)
	}
	return fmt.Sprintf("%s_%s#%s;%s", k.Kind, f, k.Axis, k.Label)
}

// Params is the parameter triple of a record. For wave vectors it holds the components
// in the reciprocal basis. For Fourier terms it holds (cos, sin, 0), for crenel functions
// (center, width, 0) and for sawtooth functions (center, width, amplitude).
type Params [3]float64

// FromModulusPhase returns the (cos, sin) form of a Fourier term given as modulus and phase,
// the phase in cycles.
func FromModulusPhase(amp, phase float64) Params {
	return Params{amp * math.Cos(2*math.Pi*phase), -amp * math.Sin(2*math.Pi*phase), 0}
}

// Empty returns true if all the parameters are zero, or any is NaN. Such records carry no information.
func (p Params) Empty() bool {
	zero := true
	for _, v := range p {
		if math.IsNaN(v) {
			return true
		}
		if v != 0 {
			zero = false
		}
	}
	return zero
}
