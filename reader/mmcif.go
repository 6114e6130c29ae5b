/*
 * mmcif.go, part of goxtal.
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
	"fmt"
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
)

// compBond is a bond of a chemical component template, between two atom names.
type compBond struct {
	atom1, atom2 string
	order        xtal.BondOrder
}

// partner is one end of a _struct_conn connection.
type partner struct {
	chain string
	seq   int
	ins   string
	atom  string
	alt   string
}

func (p partner) key() string {
	return fmt.Sprintf("%s|%d%s|%s", p.chain, p.seq, p.ins, p.atom)
}

type connRecord struct {
	typ    string
	p1, p2 partner
	order  xtal.BondOrder
}

// valueOrder translates the mmCIF bond orders. Unknown values give a single bond.
func valueOrder(s string) xtal.BondOrder {
	switch strings.ToUpper(s) {
	case "DOUB":
		return xtal.BondDouble
	case "TRIP":
		return xtal.BondTriple
	case "AROM":
		return xtal.BondAromatic
	}
	return xtal.BondSingle
}

func (r *CifReader) chemCompBond() error {
	m, err := r.header(chemCompBondKeys)
	if err != nil {
		return err
	}
	if !m.HasAll(ccbCompID, ccbAtom1, ccbAtom2, ccbOrder) {
		r.warnf("%s loop lacks required data names, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		comp := row.Str(ccbCompID)
		b := compBond{atom1: row.Str(ccbAtom1), atom2: row.Str(ccbAtom2), order: valueOrder(row.Str(ccbOrder))}
		if strings.EqualFold(row.Str(ccbAromatic), "Y") {
			switch b.order {
			case xtal.BondDouble:
				b.order = xtal.BondAromaticDouble
			case xtal.BondSingle:
				b.order = xtal.BondAromaticSingle
			}
		}
		if comp == "" || b.atom1 == "" || b.atom2 == "" {
			return
		}
		r.blk.compBonds[comp] = append(r.blk.compBonds[comp], b)
	})
}

// applyTemplates bonds the atoms of the hetero residues that have a _chem_comp_bond template.
// In a file that describes a single chemical component, all its residues get the bonds.
func (r *CifReader) applyTemplates(set *xtal.AtomSet) int {
	b := r.blk
	if len(b.compBonds) == 0 {
		return 0
	}
	lone := b.chemComp && len(b.compBonds) == 1
	type residue struct {
		name  string
		het   bool
		atoms map[string][]int
	}
	var order []string
	residues := make(map[string]*residue)
	for i, at := range set.Atoms {
		k := at.ResidueKey()
		res, ok := residues[k]
		if !ok {
			res = &residue{name: at.ResName, het: at.Het, atoms: make(map[string][]int)}
			residues[k] = res
			order = append(order, k)
		}
		res.atoms[at.Name] = append(res.atoms[at.Name], i)
	}
	n := 0
	for _, k := range order {
		res := residues[k]
		tmpl, ok := b.compBonds[res.name]
		if !ok || !(res.het || lone) {
			continue
		}
		for _, cb := range tmpl {
			for _, i := range res.atoms[cb.atom1] {
				for _, j := range res.atoms[cb.atom2] {
					if !set.Atoms[i].AltLocCompatible(set.Atoms[j]) {
						continue
					}
					if set.AddBond(i, j, cb.order) != nil {
						n++
					}
				}
			}
		}
	}
	return n
}

func (r *CifReader) structConn() error {
	m, err := r.header(structConnKeys)
	if err != nil {
		return err
	}
	if !m.HasAll(cnType, cnChain1, cnSeq1, cnAtom1, cnChain2, cnSeq2, cnAtom2) {
		r.warnf("%s loop lacks required data names, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		c := connRecord{typ: strings.ToLower(row.Str(cnType))}
		c.p1 = partner{chain: row.Str(cnChain1), ins: row.Str(cnIns1), atom: row.Str(cnAtom1), alt: row.Str(cnAlt1)}
		c.p2 = partner{chain: row.Str(cnChain2), ins: row.Str(cnIns2), atom: row.Str(cnAtom2), alt: row.Str(cnAlt2)}
		var ok1, ok2 bool
		c.p1.seq, ok1 = row.Int(cnSeq1)
		c.p2.seq, ok2 = row.Int(cnSeq2)
		if !ok1 || !ok2 {
			return
		}
		switch {
		case c.typ == "disulf" || strings.HasPrefix(c.typ, "covale"):
			c.order = valueOrder(row.Str(cnOrder))
		case c.typ == "metalc":
			c.order = xtal.BondPartial
		case c.typ == "hydrog":
			c.order = xtal.BondHydrogen
		default:
			return
		}
		r.blk.conns = append(r.blk.conns, c)
	})
}

// applyConns adds the bonds of _struct_conn.
func (r *CifReader) applyConns(set *xtal.AtomSet) int {
	if len(r.blk.conns) == 0 {
		return 0
	}
	index := make(map[string][]int)
	for i, at := range set.Atoms {
		k := partner{chain: at.Chain, seq: at.ResNum, ins: at.InsCode, atom: at.Name}.key()
		index[k] = append(index[k], i)
	}
	match := func(p partner) []int {
		var ret []int
		for _, i := range index[p.key()] {
			if p.alt == "" || set.Atoms[i].AltLoc == "" || set.Atoms[i].AltLoc == p.alt {
				ret = append(ret, i)
			}
		}
		return ret
	}
	n := 0
	for _, c := range r.blk.conns {
		for _, i := range match(c.p1) {
			for _, j := range match(c.p2) {
				if !set.Atoms[i].AltLocCompatible(set.Atoms[j]) {
					continue
				}
				if set.AddBond(i, j, c.order) != nil {
					n++
				}
			}
		}
	}
	return n
}

// hetNames reads the names of the non-standard residues from _chem_comp and _pdbx_entity_nonpoly,
// into the "hetNames" information of the collection.
func (r *CifReader) hetNames() error {
	m, err := r.header(hetKeys)
	if err != nil {
		return err
	}
	idF, nameF := hetCompID, hetCompName
	if inCategory(r.ctx.key, "_pdbx_entity_nonpoly") {
		idF, nameF = hetNonpolyID, hetNonpolyName
	}
	if !m.HasAll(idF, nameF) {
		return m.Skip(r.t)
	}
	names, _ := r.coll.Info["hetNames"].(map[string]string)
	if names == nil {
		names = make(map[string]string)
		r.coll.SetInfo("hetNames", names)
	}
	return r.rows(m, func(row *cif.Row) {
		id, name := row.Str(idF), row.Str(nameF)
		if id == "" || name == "" || xtal.IsStandardResidue(id) {
			return
		}
		names[id] = name
	})
}

// siteGen reads the residues that form each site of _struct_site_gen.
func (r *CifReader) siteGen() error {
	m, err := r.header(siteGenKeys)
	if err != nil {
		return err
	}
	if !m.HasAll(sgSiteID, sgChain, sgSeq) {
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		id := row.Str(sgSiteID)
		res := fmt.Sprintf("%s:%s:%s%s", row.Str(sgChain), row.Str(sgComp), row.Str(sgSeq), row.Str(sgIns))
		r.blk.sites[id] = append(r.blk.sites[id], res)
	})
}

// validation keeps the rows of the mmCIF validation categories, as maps from data name to value,
// in the "validation" information of the first set of the block, by category.
func (r *CifReader) validation() error {
	m, err := r.header(nil)
	if err != nil {
		return err
	}
	cat := r.ctx.rawKey
	if i := strings.IndexByte(cat, '.'); i > 0 {
		cat = cat[:i]
	}
	cat = strings.ToLower(strings.TrimPrefix(cat, "_"))
	set := r.blk.sets[0]
	val, _ := set.Info["validation"].(map[string][]map[string]string)
	if val == nil {
		val = make(map[string][]map[string]string)
		set.Info["validation"] = val
	}
	return r.rows(m, func(row *cif.Row) {
		val[cat] = append(val[cat], row.Map())
	})
}
