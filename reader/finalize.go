/*
 * finalize.go, part of goxtal.
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
	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/chemgraph"
	"github.com/rmera/goxtal/symmetry"
)

// Images of an atom closer than this, in A, are the same atom.
const expandTol = 0.01

// blockSymmetry returns the symmetry of the current block: its cell, operators and space group.
// It returns nil if the block gave none of them.
func (r *CifReader) blockSymmetry() *symmetry.Symmetry {
	b := r.blk
	var cell *symmetry.UnitCell
	var err error
	all := true
	for _, ok := range b.cellSet {
		all = all && ok
	}
	dummy := r.mm && all && b.cell == [6]float64{1, 1, 1, 90, 90, 90}
	switch {
	case dummy:
		r.notef("unit cell 1 1 1 90 90 90 of %s ignored", b.name)
	case b.nFracMat >= 3:
		cell, err = symmetry.NewUnitCellFromFractionalization(b.fracMat, b.fracVec)
	case all:
		p := b.cell
		cell, err = symmetry.NewUnitCell(p[0], p[1], p[2], p[3], p[4], p[5])
	}
	if err != nil {
		r.coll.Warnf("%s: %s, no unit cell", b.name, err)
		cell = nil
	}
	if cell == nil && b.sym == nil && b.spaceGroup == "" && b.hall == "" {
		return nil
	}
	sym := b.symmetry()
	sym.Cell = cell
	sym.SpaceGroup = b.spaceGroup
	sym.Hall = b.hall
	return sym
}

// expand replaces the atoms of set with all their images under the operators of sym. Atoms of
// a subsystem of a composite crystal use the operators of their subsystem.
func (r *CifReader) expand(set *xtal.AtomSet, sym *symmetry.Symmetry) {
	model := r.blk.first
	q, _ := r.mods.WaveVectors(model)
	atoms := set.Atoms
	groups := make(map[string][]int)
	var order []string
	for i, at := range atoms {
		if _, ok := groups[at.AltLoc]; !ok {
			order = append(order, at.AltLoc)
		}
		groups[at.AltLoc] = append(groups[at.AltLoc], i)
	}
	out := make([]*xtal.Atom, 0, len(atoms)*sym.Len())
	for _, code := range order {
		idx := groups[code]
		gsym, _ := r.mods.SymmetryFor(model, code, sym, q)
		frac := make([][3]float64, len(idx))
		for k, i := range idx {
			frac[k], _ = set.Fractional(i)
		}
		for _, img := range gsym.Expand(frac, expandTol) {
			src := atoms[idx[img.Source]]
			c := src.Copy()
			c.Source = idx[img.Source]
			c.Site = frac[img.Source]
			c.SymOps = img.Ops
			c.Coords, c.Fractional = img.Pos, true
			if !src.Fractional {
				c.Coords, c.Fractional = sym.Cell.ToCartesian(img.Pos), false
			}
			out = append(out, c)
		}
	}
	set.SetAtoms(out)
	r.notef("%s: %d atoms generated from %d with %d symmetry operators", set.Name, len(out), len(atoms), sym.Len())
}

// finalize completes the atom sets of the block once all of it has been read: symmetry,
// filters, modulation, bonds and assemblies, in that order.
func (r *CifReader) finalize() {
	b := r.blk
	sym := r.blockSymmetry()
	modulated := r.mods.HasModulation(b.first)
	for k, set := range b.sets {
		set.Info["block"] = b.name
		if sym != nil {
			set.Symmetry = sym
			if sym.SpaceGroup != "" {
				set.Info["spaceGroup"] = sym.SpaceGroup
			}
			if sym.Cell != nil {
				set.Info["unitCell"] = sym.Cell.Params()
			}
			if len(b.symops) > 0 {
				set.Info["symmetryOperators"] = b.symops
			}
		}
		if r.opts.Conf > 0 {
			if n := keepConformation(set, r.opts.Conf); n > 0 {
				r.notef("%s: %d atoms of other conformations removed", set.Name, n)
			}
		}
		r.applyCharges(set)
		if sym != nil && sym.Cell != nil && r.opts.Expand(modulated) && set.Len() > 0 {
			r.expand(set, sym)
		}
		if k == 0 && modulated {
			r.mods.Resolve(set, b.first)
		}
		if !r.opts.NoBonds {
			if n := r.applyTemplates(set) + r.applyConns(set); n > 0 {
				r.notef("%s: %d bonds from residue templates and connections", set.Name, n)
			}
		}
		r.applyAssembly(set)
		if r.opts.ByChain {
			byChain(set)
		}
		if !r.opts.NoBonds && !r.opts.ByChain {
			if r.opts.Molecular && set.Cell() != nil {
				n := r.buildMolecules(set, b.geomBonds)
				r.notef("%s: %d molecules rebuilt", set.Name, n)
			} else if len(b.geomBonds) > 0 {
				n := applyGeomBonds(set, b.geomBonds)
				n += bondHydrogens(set)
				r.notef("%s: %d bonds", set.Name, n)
			}
		}
		if len(set.Bonds) > 0 {
			chemgraph.AssignMolecules(set)
		}
		for _, st := range b.structures {
			c := *st
			c.Model = b.first + k
			r.coll.AddStructure(&c)
		}
	}
	if len(b.sites) > 0 {
		b.sets[0].Info["sites"] = b.sites
	}
}
