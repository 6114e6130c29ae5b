/*
 * bond.go, part of goxtal.
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

// BondOrder is the order, or type, of a bond.
type BondOrder int

const (
	BondUnspecified BondOrder = iota
	BondSingle
	BondDouble
	BondTriple
	BondAromatic
	BondAromaticSingle
	BondAromaticDouble
	BondPartial //metal coordination and other partial bonds
	BondHydrogen
	BondStereo
)

var bondOrderNames = [...]string{"unspecified", "single", "double", "triple", "aromatic", "aromatic-single", "aromatic-double", "partial", "hydrogen", "stereo"}

func (o BondOrder) String() string {
	if o < 0 || int(o) >= len(bondOrderNames) {
		return "unknown"
	}
	return bondOrderNames[o]
}

// Bond joins two atoms, given by their indexes in an AtomSet.
type Bond struct {
	At1, At2 int
	Order    BondOrder
	Dist     float64 //0 if not computed
}

// Other returns the index of the atom at the other end of the bond, or -1 if
// i is not in the bond.
func (b *Bond) Other(i int) int {
	switch i {
	case b.At1:
		return b.At2
	case b.At2:
		return b.At1
	}
	return -1
}
