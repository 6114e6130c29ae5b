/*
 * geombond.go, part of goxtal.
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
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
	"github.com/rmera/goxtal/v3"
	"gonum.org/v1/gonum/floats"
)

// Uncertainty of bond distances given without one.
const defaultBondTol = 0.015

// Hydrogens farther than this from any other atom are left unbonded.
const maxHydrogenBond = 1.1

// bondCandidate is a bond listed in a _geom_bond loop, between two atom labels.
type bondCandidate struct {
	label1, label2 string
	d, dx          float64
	order          xtal.BondOrder
}

// parseBondDistance parses a distance such as "3.567(12)", returning the value and its uncertainty,
// which is defaultBondTol when not given.
func parseBondDistance(s string) (d, dx float64, ok bool) {
	v, u, hasU, ok := cif.ParseUncertain(s)
	if !ok {
		return 0, 0, false
	}
	if !hasU || u == 0 {
		u = defaultBondTol
	}
	return v, u, true
}

// ccdcOrder translates the bond types of the CCDC: S, D, T and A.
func ccdcOrder(s string) xtal.BondOrder {
	switch strings.ToUpper(s) {
	case "D":
		return xtal.BondDouble
	case "T":
		return xtal.BondTriple
	case "A":
		return xtal.BondAromatic
	}
	return xtal.BondSingle
}

func (r *CifReader) geomBond() error {
	m, err := r.header(geomBondKeys)
	if err != nil {
		return err
	}
	if !m.HasAll(gbLabel1, gbLabel2, gbDistance) {
		r.warnf("%s loop without atom labels or distance, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		d, dx, ok := parseBondDistance(row.Str(gbDistance))
		l1, l2 := row.Str(gbLabel1), row.Str(gbLabel2)
		if !ok || l1 == "" || l2 == "" {
			r.warnf("bad bond %s-%s, skipped", l1, l2)
			return
		}
		r.blk.geomBonds = append(r.blk.geomBonds, bondCandidate{label1: l1, label2: l2, d: d, dx: dx, order: ccdcOrder(row.Str(gbType))})
	})
}

// bondIndex returns the candidates for each pair of labels, in both orders.
func bondIndex(cands []bondCandidate) map[[2]string][]bondCandidate {
	ret := make(map[[2]string][]bondCandidate, 2*len(cands))
	for _, c := range cands {
		ret[[2]string{c.label1, c.label2}] = append(ret[[2]string{c.label1, c.label2}], c)
		if c.label1 != c.label2 {
			ret[[2]string{c.label2, c.label1}] = append(ret[[2]string{c.label2, c.label1}], c)
		}
	}
	return ret
}

// applyGeomBonds bonds the atoms of the set that match a _geom_bond entry. A label can name
// several atoms after symmetry expansion, and each pair at the listed distance, within its
// uncertainty, is bonded. Only the images within the cell are considered.
func applyGeomBonds(set *xtal.AtomSet, cands []bondCandidate) int {
	if len(cands) == 0 {
		return 0
	}
	names := set.AtomsByName()
	n := 0
	for _, c := range cands {
		for _, i := range names[c.label1] {
			for _, j := range names[c.label2] {
				if i == j || !set.Atoms[i].AltLocCompatible(set.Atoms[j]) {
					continue
				}
				if !atDistance(set, i, j, c.d, c.dx) {
					continue
				}
				if b := set.AddBond(i, j, c.order); b != nil {
					b.Dist = c.d
					n++
				}
			}
		}
	}
	return n
}

// atDistance returns true if the atoms i and j of set are at distance d, within dx.
func atDistance(set *xtal.AtomSet, i, j int, d, dx float64) bool {
	if set.Symmetry != nil && set.Cell() != nil {
		f1, _ := set.Fractional(i)
		f2, _ := set.Fractional(j)
		ok, _ := set.Symmetry.CheckDistance(f1, f2, d, dx, 0)
		return ok
	}
	c1, c2 := set.Cartesian(i), set.Cartesian(j)
	return math.Abs(floats.Distance(c1[:], c2[:], 2)-d) <= dx
}

// bondHydrogens bonds each hydrogen without bonds to the closest heavy atom that can coexist with it,
// if it is closer than maxHydrogenBond.
func bondHydrogens(set *xtal.AtomSet) int {
	if set.Len() == 0 {
		return 0
	}
	cart := make([][3]float64, set.Len())
	for i := range cart {
		cart[i] = set.Cartesian(i)
	}
	M := v3.FromVecs(cart)
	neigh := set.Neighbors()
	n := 0
	for i, h := range set.Atoms {
		if !h.IsHydrogen() || len(neigh[i]) > 0 {
			continue
		}
		best, bestd := -1, maxHydrogenBond
		for j, at := range set.Atoms {
			if at.IsHydrogen() || !h.AltLocCompatible(at) {
				continue
			}
			if d := M.DistanceTo(j, cart[i]); d > 0 && d < bestd {
				best, bestd = j, d
			}
		}
		if best < 0 {
			continue
		}
		if b := set.AddBond(i, best, xtal.BondSingle); b != nil {
			b.Dist = bestd
			n++
		}
	}
	return n
}
