/*
 * assembly.go, part of goxtal.
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
	"sort"
	"strconv"
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
	"github.com/rmera/goxtal/v3"
	"gonum.org/v1/gonum/mat"
)

// assemblyGen is a row of _pdbx_struct_assembly_gen: the operators that build part of
// a biological assembly from some chains of the asymmetric unit.
type assemblyGen struct {
	id     string
	expr   string
	chains []string
}

// DecodeOperatorExpression expands an assembly operator expression such as "1", "1,2,5", "1-60",
// "(1-5)(6,7)" or "1(2,3)". Each element of the result is a list of operator ids to be composed,
// left to right, so the last one is applied first. Groups multiply: "(1,2)(3,4)" gives
// [1 3] [1 4] [2 3] [2 4]. Ids outside parentheses form a group of their own.
func DecodeOperatorExpression(expr string) ([][]string, error) {
	s := strings.Join(strings.Fields(expr), "")
	if s == "" {
		return nil, xtal.Errorf("DecodeOperatorExpression", "empty operator expression")
	}
	var groups [][]string
	for s != "" {
		var g []string
		var err error
		if s[0] == '(' {
			end := strings.IndexByte(s, ')')
			if end < 0 {
				return nil, xtal.Errorf("DecodeOperatorExpression", "%q: unbalanced parentheses", expr)
			}
			g, err = decodeOperatorGroup(s[1:end])
			s = s[end+1:]
		} else {
			end := strings.IndexAny(s, "()")
			if end < 0 {
				end = len(s)
			}
			if s[end:] != "" && s[end] == ')' {
				return nil, xtal.Errorf("DecodeOperatorExpression", "%q: unbalanced parentheses", expr)
			}
			g, err = decodeOperatorGroup(s[:end])
			s = s[end:]
		}
		if err != nil {
			return nil, xtal.Errorf("DecodeOperatorExpression", "%q: %w", expr, err)
		}
		groups = append(groups, g)
	}
	ret := [][]string{nil}
	for _, g := range groups {
		next := make([][]string, 0, len(ret)*len(g))
		for _, prefix := range ret {
			for _, id := range g {
				c := make([]string, len(prefix), len(prefix)+1)
				copy(c, prefix)
				next = append(next, append(c, id))
			}
		}
		ret = next
	}
	return ret, nil
}

type operatorError string

func (e operatorError) Error() string { return string(e) }

func decodeOperatorGroup(s string) ([]string, error) {
	var ret []string
	for _, item := range strings.Split(s, ",") {
		if item == "" {
			return nil, operatorError("empty operator id")
		}
		lo, hi, isRange := strings.Cut(item, "-")
		if !isRange {
			ret = append(ret, item)
			continue
		}
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || b < a {
			return nil, operatorError("bad operator range " + item)
		}
		for i := a; i <= b; i++ {
			ret = append(ret, strconv.Itoa(i))
		}
	}
	return ret, nil
}

func identity4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1})
}

// operList reads the named transforms of _pdbx_struct_oper_list.
func (r *CifReader) operList() error {
	m, err := r.header(assemblyKeys)
	if err != nil {
		return err
	}
	if !m.Has(opID) {
		r.warnf("%s loop without operator ids, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	type elem struct{ col, i, j int }
	var elems []elem
	for c := 0; c < m.NCols(); c++ {
		k := m.Key(c)
		if i, j, ok := matrixIndex(k, "_pdbx_struct_oper_list_matrix"); ok && i <= 3 && j <= 3 {
			elems = append(elems, elem{c, i - 1, j - 1})
		} else if i, ok := vectorIndex(k, "_pdbx_struct_oper_list_vector"); ok && i <= 3 {
			elems = append(elems, elem{c, i - 1, 3})
		}
	}
	return r.rows(m, func(row *cif.Row) {
		id := row.Str(opID)
		if id == "" {
			return
		}
		op := identity4()
		for _, e := range elems {
			if v, ok := cif.ParseFloat(row.Col(e.col).Value); ok {
				op.Set(e.i, e.j, v)
			}
		}
		r.blk.opers[id] = op
	})
}

func (r *CifReader) assemblyGen() error {
	m, err := r.header(assemblyKeys)
	if err != nil {
		return err
	}
	if !m.HasAll(agAssembly, agExpression) {
		r.warnf("%s loop without assembly id or operators, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		g := assemblyGen{id: row.Str(agAssembly), expr: row.Str(agExpression)}
		for _, c := range strings.Split(row.Str(agAsymList), ",") {
			if c = strings.TrimSpace(c); c != "" {
				g.chains = append(g.chains, c)
			}
		}
		r.blk.assemblies = append(r.blk.assemblies, g)
	})
}

// assemblyPart is a group of chains and the transforms, 4x4 and in Cartesian coordinates,
// that are applied to them.
type assemblyPart struct {
	chains map[string]bool //label asym ids, nil for all atoms
	ops    []*mat.Dense
}

// composeOperators returns the product of the named transforms, in order.
func composeOperators(opers map[string]*mat.Dense, ids []string) (*mat.Dense, bool) {
	ret := identity4()
	for _, id := range ids {
		op, ok := opers[id]
		if !ok {
			return nil, false
		}
		var p mat.Dense
		p.Mul(ret, op)
		ret = &p
	}
	return ret, true
}

// transformVecs returns the points of m transformed by the 4x4 matrix op.
func transformVecs(op *mat.Dense, m *v3.Matrix) *v3.Matrix {
	var res mat.Dense
	res.Mul(v3.Matrix2Dense(m), op.Slice(0, 3, 0, 3).T())
	ret := v3.Dense2Matrix(&res)
	ret.AddVec(ret, [3]float64{op.At(0, 3), op.At(1, 3), op.At(2, 3)})
	return ret
}

// includes tells whether the part builds on at. Parts name label asym ids, the author chain
// is only used for atoms that have no asym id.
func (p assemblyPart) includes(at *xtal.Atom) bool {
	if p.chains == nil {
		return true
	}
	if at.AsymID != "" {
		return p.chains[at.AsymID]
	}
	return p.chains[at.Chain]
}

// buildAssembly replaces the atoms of set with the copies the parts generate. The copies have
// Cartesian coordinates, and the bonds of the atoms they come from.
func buildAssembly(set *xtal.AtomSet, parts []assemblyPart) {
	atoms, bonds := set.Atoms, set.Bonds
	if len(atoms) == 0 {
		return
	}
	cart := make([][3]float64, len(atoms))
	for i := range atoms {
		cart[i] = set.Cartesian(i)
	}
	all := v3.FromVecs(cart)
	var out []*xtal.Atom
	type bond struct {
		i, j  int
		order xtal.BondOrder
	}
	var nb []bond
	for _, p := range parts {
		var sel []int
		for i, at := range atoms {
			if p.includes(at) {
				sel = append(sel, i)
			}
		}
		if len(sel) == 0 {
			continue
		}
		sub := v3.Zeros(len(sel))
		sub.SomeVecs(all, sel)
		for _, op := range p.ops {
			moved := transformVecs(op, sub)
			idx := make(map[int]int, len(sel))
			for k, i := range sel {
				c := atoms[i].Copy()
				c.Coords = moved.Vec(k)
				c.Fractional = false
				idx[i] = len(out)
				out = append(out, c)
			}
			for _, b := range bonds {
				i, ok1 := idx[b.At1]
				j, ok2 := idx[b.At2]
				if ok1 && ok2 {
					nb = append(nb, bond{i, j, b.Order})
				}
			}
		}
	}
	set.SetAtoms(out)
	for _, b := range nb {
		set.AddBond(b.i, b.j, b.order)
	}
}

// applyAssembly builds the assembly selected with ASSEMBLY, or stores the descriptions of all
// of them as the "biomolecules" information of the set.
func (r *CifReader) applyAssembly(set *xtal.AtomSet) {
	b := r.blk
	if len(b.assemblies) == 0 {
		return
	}
	if r.opts.Assembly == "" {
		var info []map[string]interface{}
		for _, g := range b.assemblies {
			ops, err := DecodeOperatorExpression(g.expr)
			if err != nil {
				r.warnf("assembly %s: %s", g.id, err)
				continue
			}
			info = append(info, map[string]interface{}{"id": g.id, "operators": ops, "chains": g.chains})
		}
		set.Info["biomolecules"] = info
		r.notef("%d biomolecule descriptions found, not applied", len(info))
		return
	}
	var parts []assemblyPart
	nops := 0
	for _, g := range b.assemblies {
		if g.id != r.opts.Assembly {
			continue
		}
		ops, err := DecodeOperatorExpression(g.expr)
		if err != nil {
			r.warnf("assembly %s: %s", g.id, err)
			continue
		}
		p := assemblyPart{chains: make(map[string]bool)}
		for _, c := range g.chains {
			p.chains[c] = true
		}
		if len(g.chains) == 0 {
			p.chains = nil
		}
		for _, ids := range ops {
			op, ok := composeOperators(b.opers, ids)
			if !ok {
				r.warnf("assembly %s: unknown operator in %s", g.id, strings.Join(ids, "x"))
				continue
			}
			p.ops = append(p.ops, op)
		}
		nops += len(p.ops)
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		r.warnf("assembly %s not found", r.opts.Assembly)
		return
	}
	buildAssembly(set, parts)
	set.Info["assembly"] = r.opts.Assembly
	r.notef("assembly %s built with %d operators", r.opts.Assembly, nops)
}

// byChain replaces the atoms of each chain of set with one atom at their centroid. The number
// of atoms each pseudo atom stands for is stored as the "atomCount" information of the set.
func byChain(set *xtal.AtomSet) {
	if set.Len() == 0 {
		return
	}
	groups := make(map[string][]int)
	var order []string
	cart := make([][3]float64, set.Len())
	for i, at := range set.Atoms {
		cart[i] = set.Cartesian(i)
		if _, ok := groups[at.Chain]; !ok {
			order = append(order, at.Chain)
		}
		groups[at.Chain] = append(groups[at.Chain], i)
	}
	all := v3.FromVecs(cart)
	counts := make(map[string]int, len(order))
	out := make([]*xtal.Atom, 0, len(order))
	for _, ch := range order {
		idx := groups[ch]
		sub := v3.Zeros(len(idx))
		sub.SomeVecs(all, idx)
		first := set.Atoms[idx[0]]
		at := xtal.NewAtom(ch)
		at.Chain, at.AsymID, at.EntityID = ch, first.AsymID, first.EntityID
		at.ResName, at.ResNum = first.ResName, first.ResNum
		at.Het = first.Het
		at.Coords = sub.Centroid()
		counts[ch] = len(idx)
		out = append(out, at)
	}
	set.SetAtoms(out)
	set.Info["atomCount"] = counts
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[T any](m map[string]T) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
