/*
 * mmtf.go, part of goxtal.
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
	"github.com/rmera/goxtal/chemgraph"
	"github.com/rmera/goxtal/msgpack"
	"github.com/rmera/goxtal/symmetry"
	"gonum.org/v1/gonum/mat"
)

// mmtfGroup is an entry of the groupList of an MMTF file: a residue template shared
// by all the groups of the same type.
type mmtfGroup struct {
	name     string
	atoms    []string
	elements []string
	charges  []int
	bonds    []int //pairs of template atom indexes
	orders   []int
	het      bool
}

// mmtfDecoder gives typed access to the fields of the top-level map of an MMTF file.
type mmtfDecoder struct {
	m map[string]interface{}
}

func (d mmtfDecoder) raw(key string) (interface{}, error) {
	v, ok := d.m[key]
	if !ok {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		dec, err := decodeMMTFArray(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return dec, nil
	}
	return v, nil
}

func (d mmtfDecoder) ints(key string) ([]int, error) {
	v, err := d.raw(key)
	if err != nil || v == nil {
		return nil, err
	}
	ret, ok := toInts(v)
	if !ok {
		return nil, fmt.Errorf("%s: not an integer array", key)
	}
	return ret, nil
}

func (d mmtfDecoder) floats(key string) ([]float64, error) {
	v, err := d.raw(key)
	if err != nil || v == nil {
		return nil, err
	}
	ret, ok := toFloats(v)
	if !ok {
		return nil, fmt.Errorf("%s: not a numeric array", key)
	}
	return ret, nil
}

func (d mmtfDecoder) strs(key string) ([]string, error) {
	v, err := d.raw(key)
	if err != nil || v == nil {
		return nil, err
	}
	ret, ok := toStrings(v)
	if !ok {
		return nil, fmt.Errorf("%s: not a string array", key)
	}
	return ret, nil
}

func (d mmtfDecoder) str(key string) string {
	s, _ := d.m[key].(string)
	return s
}

func (d mmtfDecoder) int(key string) (int, bool) {
	return toInt(d.m[key])
}

// coords decodes a coordinate-like list given either as a binary array or, in the early
// versions of the format, as a pair of big and small lists.
func (d mmtfDecoder) coords(key string, div float64) ([]float64, error) {
	if _, ok := d.m[key+"List"]; ok {
		return d.floats(key + "List")
	}
	big, ok1 := d.m[key+"Big"].([]byte)
	small, ok2 := d.m[key+"Small"].([]byte)
	if !ok1 || !ok2 {
		return nil, nil
	}
	ret, err := splitList(beInts(big, 4), beInts(small, 2), div)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return ret, nil
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

func toInts(v interface{}) ([]int, bool) {
	switch x := v.(type) {
	case []int:
		return x, true
	case []float64:
		ret := make([]int, len(x))
		for i, f := range x {
			ret[i] = int(f)
		}
		return ret, true
	case []interface{}:
		ret := make([]int, len(x))
		for i, e := range x {
			var ok bool
			if ret[i], ok = toInt(e); !ok {
				return nil, false
			}
		}
		return ret, true
	}
	return nil, false
}

func toFloats(v interface{}) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		return x, true
	case []int:
		ret := make([]float64, len(x))
		for i, n := range x {
			ret[i] = float64(n)
		}
		return ret, true
	case []interface{}:
		ret := make([]float64, len(x))
		for i, e := range x {
			var ok bool
			if ret[i], ok = toFloat(e); !ok {
				return nil, false
			}
		}
		return ret, true
	}
	return nil, false
}

func toStrings(v interface{}) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []interface{}:
		ret := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok && e != nil {
				return nil, false
			}
			ret[i] = s
		}
		return ret, true
	}
	return nil, false
}

func toMaps(v interface{}) []map[string]interface{} {
	a, _ := v.([]interface{})
	ret := make([]map[string]interface{}, 0, len(a))
	for _, e := range a {
		if m, ok := e.(map[string]interface{}); ok {
			ret = append(ret, m)
		}
	}
	return ret
}

func parseGroups(v interface{}) ([]mmtfGroup, error) {
	var ret []mmtfGroup
	for i, m := range toMaps(v) {
		d := mmtfDecoder{m}
		g := mmtfGroup{name: d.str("groupName")}
		var err error
		if g.atoms, err = d.strs("atomNameList"); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if g.elements, err = d.strs("elementList"); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if g.charges, err = d.ints("formalChargeList"); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if g.bonds, err = d.ints("bondAtomList"); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if g.orders, err = d.ints("bondOrderList"); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if len(g.bonds)%2 != 0 {
			return nil, fmt.Errorf("group %d: odd number of bonded atoms", i)
		}
		for _, a := range g.bonds {
			if a < 0 || a >= len(g.atoms) {
				return nil, fmt.Errorf("group %d: bond to atom %d of %d", i, a, len(g.atoms))
			}
		}
		g.het = !strings.Contains(strings.ToUpper(d.str("chemCompType")), "LINKING")
		ret = append(ret, g)
	}
	return ret, nil
}

func mmtfOrder(o int) xtal.BondOrder {
	switch o {
	case 1:
		return xtal.BondSingle
	case 2:
		return xtal.BondDouble
	case 3:
		return xtal.BondTriple
	}
	return xtal.BondUnspecified
}

// mmtfElement turns the upper case element symbols some files use into the usual spelling.
func mmtfElement(sym, name string) string {
	if len(sym) > 1 {
		sym = sym[:1] + strings.ToLower(sym[1:])
	}
	if sym == "" || !xtal.IsElement(sym) {
		return xtal.ElementFromLabel(name)
	}
	return sym
}

// dsspStructure translates the DSSP codes of secStructList.
func dsspStructure(code int) (xtal.StructureKind, int) {
	switch code {
	case 0:
		return xtal.StructureHelix, xtal.HelixPi
	case 2:
		return xtal.StructureHelix, xtal.HelixAlpha
	case 4:
		return xtal.StructureHelix, xtal.Helix310
	case 3:
		return xtal.StructureSheet, 0
	case 6:
		return xtal.StructureTurn, 0
	}
	return xtal.StructureNone, 0
}

// mmtfReader holds the decoded arrays of an MMTF file.
type mmtfReader struct {
	name string
	opts xtal.Options
	coll *xtal.AtomSetCollection

	groups                         []mmtfGroup
	x, y, z, bfac, occ             []float64
	atomIDs, groupIDs, groupTypes  []int
	secStruct                      []int
	altLocs, insCodes              []string
	chainIDs, chainNames           []string
	groupsPerChain, chainsPerModel []int
	bondAtoms, bondOrders          []int
}

// ReadMMTF decodes an MMTF file. Each model is an atom set.
func ReadMMTF(data []byte, name string, opts xtal.Options) (*xtal.AtomSetCollection, error) {
	v, err := msgpack.NewReader(data, true).Next()
	if err != nil {
		return nil, xtal.Errorf("ReadMMTF", "%s: %w", name, err)
	}
	top, ok := v.(map[string]interface{})
	if !ok {
		return nil, xtal.Errorf("ReadMMTF", "%s: top-level object is not a map", name)
	}
	r := &mmtfReader{name: name, opts: opts, coll: xtal.NewAtomSetCollection(name)}
	if err := r.decode(mmtfDecoder{top}); err != nil {
		return nil, xtal.Errorf("ReadMMTF", "%s: %w", name, err)
	}
	r.coll.SetInfo("fileType", MMTF.String())
	d := mmtfDecoder{top}
	for _, k := range []string{"structureId", "title", "mmtfVersion", "mmtfProducer"} {
		if s := d.str(k); s != "" {
			r.coll.SetInfo(k, s)
		}
	}
	if err := r.build(d); err != nil {
		return nil, xtal.Errorf("ReadMMTF", "%s: %w", name, err)
	}
	r.coll.RemoveEmpty()
	return r.coll, nil
}

func (r *mmtfReader) decode(d mmtfDecoder) error {
	var err error
	if r.groups, err = parseGroups(d.m["groupList"]); err != nil {
		return err
	}
	coords := []struct {
		dst *[]float64
		key string
		div float64
	}{{&r.x, "xCoord", 1000}, {&r.y, "yCoord", 1000}, {&r.z, "zCoord", 1000}, {&r.bfac, "bFactor", 100}}
	for _, c := range coords {
		if *c.dst, err = d.coords(c.key, c.div); err != nil {
			return err
		}
	}
	ints := []struct {
		dst *[]int
		key string
	}{
		{&r.atomIDs, "atomIdList"}, {&r.groupIDs, "groupIdList"}, {&r.groupTypes, "groupTypeList"},
		{&r.secStruct, "secStructList"}, {&r.groupsPerChain, "groupsPerChain"},
		{&r.chainsPerModel, "chainsPerModel"}, {&r.bondAtoms, "bondAtomList"}, {&r.bondOrders, "bondOrderList"},
	}
	for _, c := range ints {
		if *c.dst, err = d.ints(c.key); err != nil {
			return err
		}
	}
	strs := []struct {
		dst *[]string
		key string
	}{{&r.altLocs, "altLocList"}, {&r.insCodes, "insCodeList"}, {&r.chainIDs, "chainIdList"}, {&r.chainNames, "chainNameList"}}
	for _, c := range strs {
		if *c.dst, err = d.strs(c.key); err != nil {
			return err
		}
	}
	if r.occ, err = d.floats("occupancyList"); err != nil {
		return err
	}
	if len(r.bondAtoms)%2 != 0 {
		return fmt.Errorf("odd number of bonded atoms: %d", len(r.bondAtoms))
	}
	if len(r.x) != len(r.y) || len(r.x) != len(r.z) {
		return fmt.Errorf("coordinate lists of different lengths: %d %d %d", len(r.x), len(r.y), len(r.z))
	}
	if n, ok := d.int("numAtoms"); ok && n != len(r.x) {
		return fmt.Errorf("%d atoms declared, %d coordinates", n, len(r.x))
	}
	if len(r.groupTypes) > len(r.groupIDs) && r.groupIDs != nil {
		return fmt.Errorf("%d groups, %d group ids", len(r.groupTypes), len(r.groupIDs))
	}
	return nil
}

// item returns the i-th element of v, or def if v is too short.
func item[T any](v []T, i int, def T) T {
	if i < len(v) {
		return v[i]
	}
	return def
}

// build walks the models, chains and groups of the file and fills the collection.
func (r *mmtfReader) build(d mmtfDecoder) error {
	nAtoms := len(r.x)
	setOf := make([]int, nAtoms)
	local := make([]int, nAtoms)
	for i := range setOf {
		setOf[i], local[i] = -1, -1
	}
	chainsPerModel := r.chainsPerModel
	if chainsPerModel == nil {
		chainsPerModel = []int{len(r.groupsPerChain)}
	}
	atomIdx, groupIdx, chainIdx := 0, 0, 0
	for model, nch := range chainsPerModel {
		var set *xtal.AtomSet
		setIdx := -1
		if r.opts.WantsModel(model + 1) {
			set = r.coll.NewAtomSet(fmt.Sprintf("%s model %d", r.name, model+1))
			set.Info["modelNumber"] = model + 1
			setIdx = r.coll.CurrentIndex()
		}
		for c := 0; c < nch; c++ {
			if chainIdx >= len(r.groupsPerChain) {
				return fmt.Errorf("model %d refers to chain %d of %d", model+1, chainIdx+1, len(r.groupsPerChain))
			}
			asym := item(r.chainIDs, chainIdx, "")
			chain := item(r.chainNames, chainIdx, asym)
			ss := spanBuilder{coll: r.coll, chain: chain, model: setIdx}
			for g := 0; g < r.groupsPerChain[chainIdx]; g++ {
				if groupIdx >= len(r.groupTypes) {
					return fmt.Errorf("chain %s refers to group %d of %d", asym, groupIdx+1, len(r.groupTypes))
				}
				gt := r.groupTypes[groupIdx]
				if gt < 0 || gt >= len(r.groups) {
					return fmt.Errorf("group %d has unknown type %d", groupIdx+1, gt)
				}
				tmpl := r.groups[gt]
				if atomIdx+len(tmpl.atoms) > nAtoms {
					return fmt.Errorf("group %d needs atoms beyond the %d given", groupIdx+1, nAtoms)
				}
				resnum := item(r.groupIDs, groupIdx, 0)
				ins := item(r.insCodes, groupIdx, "")
				if set != nil {
					first := atomIdx
					for a, name := range tmpl.atoms {
						i := atomIdx + a
						atm := xtal.NewAtom(name)
						atm.Symbol = mmtfElement(item(tmpl.elements, a, ""), name)
						if r.opts.NoHydrogens && atm.IsHydrogen() {
							continue
						}
						atm.ID = item(r.atomIDs, i, i+1)
						atm.Charge = item(tmpl.charges, a, 0)
						atm.Coords = [3]float64{r.x[i], r.y[i], r.z[i]}
						atm.BFactor = item(r.bfac, i, 0)
						atm.Occupancy = item(r.occ, i, 1)
						atm.AltLoc = item(r.altLocs, i, "")
						atm.Chain, atm.AsymID = chain, asym
						atm.ResName, atm.ResNum, atm.InsCode = tmpl.name, resnum, ins
						atm.Het = tmpl.het
						set.AddAtom(atm)
						setOf[i], local[i] = setIdx, atm.Index
					}
					if !r.opts.NoBonds {
						for k := 0; k+1 < len(tmpl.bonds); k += 2 {
							i, j := first+tmpl.bonds[k], first+tmpl.bonds[k+1]
							if i < 0 || j < 0 || i >= nAtoms || j >= nAtoms || local[i] < 0 || local[j] < 0 {
								continue
							}
							if set.Atoms[local[i]].AltLocCompatible(set.Atoms[local[j]]) {
								set.AddBond(local[i], local[j], mmtfOrder(item(tmpl.orders, k/2, 0)))
							}
						}
					}
					ss.add(item(r.secStruct, groupIdx, -1), resnum, ins)
				}
				atomIdx += len(tmpl.atoms)
				groupIdx++
			}
			ss.close()
			chainIdx++
		}
	}
	if !r.opts.NoBonds {
		for k := 0; k+1 < len(r.bondAtoms); k += 2 {
			i, j := r.bondAtoms[k], r.bondAtoms[k+1]
			if i < 0 || j < 0 || i >= nAtoms || j >= nAtoms || setOf[i] < 0 || setOf[i] != setOf[j] {
				continue
			}
			r.coll.Sets[setOf[i]].AddBond(local[i], local[j], mmtfOrder(item(r.bondOrders, k/2, 0)))
		}
	}
	sym := r.symmetry(d)
	for _, set := range r.coll.Sets {
		if sym != nil {
			set.Symmetry = sym
			set.Info["unitCell"] = sym.Cell.Params()
			if sym.SpaceGroup != "" {
				set.Info["spaceGroup"] = sym.SpaceGroup
			}
		}
		r.assembly(d, set)
		if r.opts.ByChain {
			byChain(set)
		}
		if len(set.Bonds) > 0 {
			chemgraph.AssignMolecules(set)
		}
	}
	return nil
}

func (r *mmtfReader) symmetry(d mmtfDecoder) *symmetry.Symmetry {
	p, ok := toFloats(d.m["unitCell"])
	if !ok || len(p) != 6 {
		return nil
	}
	cell, err := symmetry.NewUnitCell(p[0], p[1], p[2], p[3], p[4], p[5])
	if err != nil {
		r.coll.Warnf("%s: %s, no unit cell", r.name, err)
		return nil
	}
	sym := symmetry.New(cell, 0)
	sym.SpaceGroup = d.str("spaceGroup")
	return sym
}

// assembly builds the bioassembly named with ASSEMBLY, or stores the descriptions of all of
// them as the "biomolecules" information of the set.
func (r *mmtfReader) assembly(d mmtfDecoder, set *xtal.AtomSet) {
	list := toMaps(d.m["bioAssemblyList"])
	if len(list) == 0 {
		return
	}
	var info []map[string]interface{}
	var parts []assemblyPart
	found := false
	for i, a := range list {
		name, _ := a["name"].(string)
		if name == "" {
			name = fmt.Sprint(i + 1)
		}
		transforms := toMaps(a["transformList"])
		chains := make(map[string]bool)
		for _, t := range transforms {
			idx, _ := toInts(t["chainIndexList"])
			for _, c := range idx {
				if c >= 0 && c < len(r.chainIDs) {
					chains[r.chainIDs[c]] = true
				}
			}
		}
		info = append(info, map[string]interface{}{"id": name, "chains": sortedKeys(chains), "transforms": len(transforms)})
		if name != r.opts.Assembly {
			continue
		}
		found = true
		for _, t := range transforms {
			m, ok := toFloats(t["matrix"])
			if !ok || len(m) != 16 {
				r.coll.Warnf("assembly %s: transform without a 4x4 matrix, skipped", name)
				continue
			}
			p := assemblyPart{chains: make(map[string]bool)}
			idx, _ := toInts(t["chainIndexList"])
			for _, c := range idx {
				if c >= 0 && c < len(r.chainIDs) {
					p.chains[r.chainIDs[c]] = true
				}
			}
			//column-major
			op := mat.NewDense(4, 4, nil)
			op.CloneFrom(mat.NewDense(4, 4, m).T())
			p.ops = append(p.ops, op)
			parts = append(parts, p)
		}
	}
	if r.opts.Assembly == "" {
		set.Info["biomolecules"] = info
		r.coll.Notef("%d biomolecule descriptions found, not applied", len(info))
		return
	}
	if !found || len(parts) == 0 {
		r.coll.Warnf("assembly %s not found", r.opts.Assembly)
		return
	}
	buildAssembly(set, parts)
	set.Info["assembly"] = r.opts.Assembly
	r.coll.Notef("assembly %s built with %d operators", r.opts.Assembly, len(parts))
}

// spanBuilder joins consecutive groups of a chain with the same secondary structure into spans.
type spanBuilder struct {
	coll  *xtal.AtomSetCollection
	chain string
	model int
	cur   *xtal.SecondaryStructure
	n     int
}

func (s *spanBuilder) add(code, resnum int, ins string) {
	kind, class := dsspStructure(code)
	if s.cur != nil && (s.cur.Kind != kind || s.cur.SubClass != class) {
		s.close()
	}
	if kind == xtal.StructureNone {
		return
	}
	if s.cur == nil {
		s.n++
		s.cur = &xtal.SecondaryStructure{Kind: kind, SubClass: class, ID: fmt.Sprintf("%s%d", s.chain, s.n),
			StartChain: s.chain, StartRes: resnum, StartIns: ins, Model: s.model}
	}
	s.cur.EndChain, s.cur.EndRes, s.cur.EndIns = s.chain, resnum, ins
}

func (s *spanBuilder) close() {
	if s.cur != nil {
		s.coll.AddStructure(s.cur)
		s.cur = nil
	}
}
