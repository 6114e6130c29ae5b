/*
 * molecular.go, part of goxtal.
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

package reader

import (
	"math"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/symmetry"
	"github.com/rmera/goxtal/v3"
	"gonum.org/v1/gonum/floats"
)

// Atoms of a rebuilt molecule closer than this, in A, are the same atom.
const sameAtomTol = 0.1

// molBuilder grows whole molecules from the atoms of a periodic set. Each atom is moved to the
// lattice image that bonds it to the molecule found so far.
type molBuilder struct {
	set    *xtal.AtomSet
	cell   *symmetry.UnitCell
	frac   [][3]float64 //positions in the cell
	pos    [][3]float64 //positions once placed
	placed []bool
	cands  map[[2]string][]bondCandidate
	cart   *v3.Matrix //Cartesian positions of the placed atoms, in placement order
	nCart  int
}

func newMolBuilder(set *xtal.AtomSet, cands []bondCandidate) *molBuilder {
	n := set.Len()
	b := &molBuilder{set: set, cell: set.Cell(), frac: make([][3]float64, n), pos: make([][3]float64, n), placed: make([]bool, n), cart: v3.Zeros(n)}
	for i := range b.frac {
		b.frac[i], _ = set.Fractional(i)
	}
	if len(cands) > 0 {
		b.cands = bondIndex(cands)
	}
	return b
}

// nearestImage returns the lattice translation of f2 closest to f1, and the distance.
func (b *molBuilder) nearestImage(f1, f2 [3]float64) ([3]float64, float64) {
	var base [3]float64
	for k := range base {
		base[k] = math.Round(f1[k] - f2[k])
	}
	best, bestd := base, math.Inf(1)
	c1 := b.cell.ToCartesian(f1)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				t := [3]float64{base[0] + float64(i), base[1] + float64(j), base[2] + float64(k)}
				c2 := b.cell.ToCartesian([3]float64{f2[0] + t[0], f2[1] + t[1], f2[2] + t[2]})
				if d := floats.Distance(c1[:], c2[:], 2); d < bestd {
					best, bestd = t, d
				}
			}
		}
	}
	return best, bestd
}

// bonded tests whether atom j, at some lattice image, is bonded to the placed atom i. It returns the
// translation to apply to j and the bond order. With _geom_bond data only the listed bonds count,
// plus hydrogens within maxHydrogenBond of a heavy atom; otherwise covalent radii decide.
func (b *molBuilder) bonded(i, j int) (bool, [3]float64, xtal.BondOrder) {
	a1, a2 := b.set.Atoms[i], b.set.Atoms[j]
	if !a1.AltLocCompatible(a2) {
		return false, [3]float64{}, 0
	}
	if b.cands == nil {
		t, d := b.nearestImage(b.pos[i], b.frac[j])
		return xtal.CovalentBonded(a1.Symbol, a2.Symbol, d), t, xtal.BondSingle
	}
	base, _ := b.nearestImage(b.pos[i], b.frac[j])
	f2 := [3]float64{b.frac[j][0] + base[0], b.frac[j][1] + base[1], b.frac[j][2] + base[2]}
	for _, c := range b.cands[[2]string{a1.Name, a2.Name}] {
		if ok, t := b.set.Symmetry.CheckDistance(b.pos[i], f2, c.d, c.dx, 1); ok {
			return true, [3]float64{base[0] + t[0], base[1] + t[1], base[2] + t[2]}, c.order
		}
	}
	if a1.IsHydrogen() != a2.IsHydrogen() {
		if t, d := b.nearestImage(b.pos[i], b.frac[j]); d < maxHydrogenBond {
			return true, t, xtal.BondSingle
		}
	}
	return false, [3]float64{}, 0
}

// duplicate returns true if a placed atom is within sameAtomTol of the fractional position p.
func (b *molBuilder) duplicate(p [3]float64) bool {
	if b.nCart == 0 {
		return false
	}
	_, d := b.cart.View(0, b.nCart).Closest(b.cell.ToCartesian(p))
	return d < sameAtomTol
}

func (b *molBuilder) place(i int, p [3]float64) {
	b.placed[i] = true
	b.pos[i] = p
	b.cart.SetVec(b.nCart, b.cell.ToCartesian(p))
	b.nCart++
}

// build grows the molecules, bonding their atoms, and returns the number of molecules
// and the indexes of the atoms that duplicate others.
func (b *molBuilder) build() (int, []int) {
	n := b.set.Len()
	var excluded []int
	nmol := 0
	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if b.placed[start] {
			continue
		}
		if b.duplicate(b.frac[start]) {
			b.placed[start] = true
			excluded = append(excluded, start)
			continue
		}
		nmol++
		b.place(start, b.frac[start])
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			for j := 0; j < n; j++ {
				if b.placed[j] {
					continue
				}
				ok, t, order := b.bonded(i, j)
				if !ok {
					continue
				}
				p := [3]float64{b.frac[j][0] + t[0], b.frac[j][1] + t[1], b.frac[j][2] + t[2]}
				if b.duplicate(p) {
					b.placed[j] = true
					excluded = append(excluded, j)
					continue
				}
				b.place(j, p)
				b.set.AddBond(i, j, order)
				queue = append(queue, j)
			}
		}
	}
	return nmol, excluded
}

// buildMolecules rebuilds the whole molecules of a periodic set, moving atoms across the cell
// boundaries. Atoms that fall on top of others are removed. It returns the number of molecules.
func (r *CifReader) buildMolecules(set *xtal.AtomSet, cands []bondCandidate) int {
	if set.Cell() == nil || set.Len() == 0 {
		return 0
	}
	b := newMolBuilder(set, cands)
	nmol, excluded := b.build()
	for i, at := range set.Atoms {
		if at.Fractional {
			at.Coords = b.pos[i]
		} else {
			at.Coords = b.cell.ToCartesian(b.pos[i])
		}
	}
	if len(excluded) > 0 {
		drop := make(map[*xtal.Atom]bool, len(excluded))
		for _, i := range excluded {
			drop[set.Atoms[i]] = true
		}
		set.Keep(func(at *xtal.Atom) bool { return !drop[at] })
		r.notef("%d atoms overlapping others removed from the molecules", len(excluded))
	}
	return nmol
}
