/*
 * atom.go, part of goxtal.
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

package xtal

import (
	"math"
	"strconv"
	"strings"

	"github.com/rmera/goxtal/symmetry"
)

// AnisoKind tells which convention the six components of an anisotropic
// displacement tensor follow.
type AnisoKind int

const (
	AnisoBeta AnisoKind = 0 //dimensionless beta_ij
	AnisoB    AnisoKind = 4 //B_ij in A^2
	AnisoU    AnisoKind = 8 //U_ij in A^2
)

// Aniso is an anisotropic displacement tensor, stored as given in the file.
// The components are in the order 11, 22, 33, 12, 13, 23.
type Aniso struct {
	Kind AnisoKind
	T    [6]float64
	Uiso float64 //NaN when not given
}

// NewAniso returns a tensor of the given kind with all components in zero, and no Uiso.
func NewAniso(kind AnisoKind) *Aniso {
	return &Aniso{Kind: kind, Uiso: math.NaN()}
}

// scale returns the factor that, multiplied by a*_i a*_j, turns a component in convention k
// into beta_ij: 2 pi^2 for U, 1/4 for B and 1 for beta itself.
func (k AnisoKind) scale() float64 {
	switch k {
	case AnisoU:
		return 2 * math.Pi * math.Pi
	case AnisoB:
		return 0.25
	}
	return 1
}

// Scale returns the factor that, multiplied by a*_i a*_j, converts a component of
// the tensor to the dimensionless beta_ij. U_ij tensors give 2 pi^2, B_ij tensors 1/4.
// For beta tensors the factor is 1 and the reciprocal lengths must not be used.
func (a *Aniso) Scale() float64 {
	return a.Kind.scale()
}

var anisoPairs = [6][2]int{{0, 0}, {1, 1}, {2, 2}, {0, 1}, {0, 2}, {1, 2}}

// Beta returns the tensor as dimensionless beta_ij, given the reciprocal cell lengths a*, b*, c*.
func (a *Aniso) Beta(recip [3]float64) [6]float64 {
	if a.Kind == AnisoBeta {
		return a.T
	}
	s := a.Scale()
	var ret [6]float64
	for k, ij := range anisoPairs {
		ret[k] = s * a.T[k] * recip[ij[0]] * recip[ij[1]]
	}
	return ret
}

// Convert rewrites the components of the tensor in the given convention. recip holds the
// reciprocal cell lengths, which are only needed to convert to or from beta. Convert returns
// false, leaving the tensor as it was, if they are needed and any of them is zero.
func (a *Aniso) Convert(kind AnisoKind, recip [3]float64) bool {
	switch {
	case a.Kind == kind:
		return true
	case a.Kind != AnisoBeta && kind != AnisoBeta:
		f := a.Scale() / kind.scale()
		for k := range a.T {
			a.T[k] *= f
		}
	case recip[0] == 0 || recip[1] == 0 || recip[2] == 0:
		return false
	case kind == AnisoBeta:
		a.T = a.Beta(recip)
	default:
		s := kind.scale()
		for k, ij := range anisoPairs {
			a.T[k] /= s * recip[ij[0]] * recip[ij[1]]
		}
	}
	a.Kind = kind
	return true
}

// Matrix returns the tensor as a symmetric 3x3 matrix.
func (a *Aniso) Matrix() [3][3]float64 {
	t := a.T
	return [3][3]float64{{t[0], t[3], t[4]}, {t[3], t[1], t[5]}, {t[4], t[5], t[2]}}
}

// SetMatrix sets the components of the tensor from a symmetric 3x3 matrix.
func (a *Aniso) SetMatrix(m [3][3]float64) {
	a.T = [6]float64{m[0][0], m[1][1], m[2][2], m[0][1], m[0][2], m[1][2]}
}

// Modulation holds what the modulation of an incommensurate structure did to an atom.
type Modulation struct {
	X4           []float64  //internal coordinates at which the modulation functions were evaluated
	Displacement [3]float64 //fractional displacement added to the average position
	Occupancy    float64    //modulated occupancy, NaN if the occupancy is not modulated
	Operator     int        //index of the operator used to generate the atom
	Tensor       *[6]float64
}

// Atom contains the per-atom information read from a file.
// Coords are fractional if Fractional is true, Cartesian otherwise. Exactly one of the
// two representations is kept.
type Atom struct {
	Index      int    //position of the atom in its AtomSet
	ID         int    //serial number in the file, 0 if none
	Name       string //atom label
	Symbol     string //element symbol, "Xx" for unknown
	TypeSymbol string //atom type as given in the file, e.g. "Fe3+"
	AltLoc     string //alternate location, disorder group, or the code of the modulated subsystem the atom belongs to
	Chain      string //author chain
	AsymID     string //label asym id, used to select atoms for assemblies
	EntityID   string
	ResName    string
	ResNum     int
	InsCode    string
	Het        bool
	Occupancy  float64
	BFactor    float64 //NaN when not given
	Charge     int     //formal charge
	Coords     [3]float64
	Fractional bool
	Site       [3]float64 //fractional position in the asymmetric unit this atom derives from
	Source     int        //index of the asymmetric unit atom this atom was generated from
	SymOps     symmetry.OpSet
	Molecule   int //1-based molecule this atom was assigned to, 0 if none
	Aniso      *Aniso
	Mod        *Modulation
}

// NewAtom returns an atom with full occupancy and unknown B-factor and element.
func NewAtom(name string) *Atom {
	return &Atom{Name: name, Symbol: "Xx", Occupancy: 1, BFactor: math.NaN(), Source: -1}
}

// Copy returns a deep copy of the atom
func (at *Atom) Copy() *Atom {
	c := *at
	c.SymOps = at.SymOps.Copy()
	if at.Aniso != nil {
		a := *at.Aniso
		c.Aniso = &a
	}
	if at.Mod != nil {
		m := *at.Mod
		m.X4 = append([]float64(nil), at.Mod.X4...)
		if at.Mod.Tensor != nil {
			t := *at.Mod.Tensor
			m.Tensor = &t
		}
		c.Mod = &m
	}
	return &c
}

// IsHydrogen returns true for H and D atoms.
func (at *Atom) IsHydrogen() bool {
	return at.Symbol == "H" || at.Symbol == "D"
}

// AltLocCompatible returns true if the two atoms can coexist in the same conformation.
func (at *Atom) AltLocCompatible(at2 *Atom) bool {
	return at.AltLoc == "" || at2.AltLoc == "" || at.AltLoc == at2.AltLoc
}

// ResidueKey returns a string that identifies the residue of the atom within a model.
func (at *Atom) ResidueKey() string {
	var b strings.Builder
	b.WriteString(at.Chain)
	b.WriteByte(':')
	b.WriteString(at.ResName)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(at.ResNum))
	b.WriteString(at.InsCode)
	return b.String()
}
