/*
 * atomsite.go, part of goxtal.
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
	"unicode"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
	"github.com/rmera/goxtal/symmetry"
)

// coordSrc is a set of three columns that give the coordinates of an atom.
type coordSrc struct {
	kind coordKind
	ids  [3]int
}

// atomSites reads _atom_site, _atom_site_aniso(trop) and _chem_comp_atom loops. Loops
// without coordinates but with displacement parameters add those to atoms already read.
func (r *CifReader) atomSites() error {
	m, err := r.header(atomKeys[:])
	if err != nil {
		return err
	}
	if inCategory(r.ctx.key, "_chem_comp_atom") {
		r.blk.chemComp = true
	}
	var srcs []coordSrc
	for kind, list := range coordFields {
		for _, ids := range list {
			if m.HasAll(ids[:]...) {
				srcs = append(srcs, coordSrc{kind: coordKind(kind), ids: ids})
			}
		}
	}
	var tcols []tensorCol
	for c := 0; c < m.NCols(); c++ {
		if m.ID(c) != cif.None {
			continue
		}
		if kind, comp, ok := parseTensorKey(m.Key(c)); ok {
			tcols = append(tcols, tensorCol{col: c, kind: kind, comp: comp})
		}
	}
	if len(srcs) == 0 {
		if len(tcols) > 0 || m.HasAny(atUIso, atBIso) {
			return r.anisoRows(m, tcols)
		}
		r.warnf("%s loop without coordinates, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	recip := r.recipLengths()
	return r.rows(m, func(row *cif.Row) {
		r.atomRow(row, srcs, tcols, recip)
	})
}

// firstStr returns the first non-null value among the given fields.
func firstStr(row *cif.Row, ids ...int) string {
	for _, id := range ids {
		if s := row.Str(id); s != "" {
			return s
		}
	}
	return ""
}

func (r *CifReader) atomRow(row *cif.Row, srcs []coordSrc, tcols []tensorCol, recip [3]float64) {
	if r.mm {
		if n, ok := row.Int(atModelNum); ok {
			if !r.opts.WantsModel(n) {
				return
			}
			r.setModel(n)
		}
	}
	name := firstStr(row, atLabel, atAuthAtomID, atLabelAtomID, ccaAtomID)
	var coords [3]float64
	found := false
	var kind coordKind
	for _, s := range srcs {
		x, okx := row.Float(s.ids[0])
		y, oky := row.Float(s.ids[1])
		z, okz := row.Float(s.ids[2])
		if okx && oky && okz {
			coords, kind, found = [3]float64{x, y, z}, s.kind, true
			break
		}
	}
	if !found {
		r.warnf("atom %s has no valid coordinates, skipped", name)
		return
	}
	ts := firstStr(row, atTypeSymbol, ccaTypeSymbol)
	if name == "" {
		name = ts
	}
	at := xtal.NewAtom(name)
	at.TypeSymbol = ts
	if ts != "" {
		at.Symbol = elementFromType(ts)
	} else {
		at.Symbol = xtal.ElementFromLabel(name)
	}
	if r.opts.NoHydrogens && at.IsHydrogen() {
		return
	}
	if c, ok := xtal.ChargeFromTypeSymbol(ts); ok {
		at.Charge = c
	}
	if c, ok := row.Int(atFormalCharge); ok {
		at.Charge = c
	} else if c, ok := row.Int(ccaCharge); ok {
		at.Charge = c
	}
	at.ID, _ = row.Int(atID)
	at.ResName = firstStr(row, atAuthCompID, atLabelCompID, ccaCompID)
	at.Chain = firstStr(row, atAuthAsymID, atLabelAsymID)
	at.AsymID = firstStr(row, atLabelAsymID, atAuthAsymID)
	at.EntityID = row.Str(atEntityID)
	if n, ok := row.Int(atAuthSeqID); ok {
		at.ResNum = n
	} else if n, ok := row.Int(atLabelSeqID); ok {
		at.ResNum = n
	}
	at.InsCode = row.Str(atInsCode)
	at.Het = r.blk.chemComp || strings.EqualFold(row.Str(atGroupPDB), "HETATM")
	at.AltLoc = firstStr(row, atAltID, atDisorderGroup)
	if sc := row.Str(atSubsystemCode); sc != "" {
		at.AltLoc = sc
	}
	if o, ok := row.Float(atOccupancy); ok {
		at.Occupancy = o
	}
	uiso := math.NaN()
	if b, ok := row.Float(atBIso); ok {
		at.BFactor = b
	} else if u, ok := row.Float(atUIso); ok {
		uiso = u
		at.BFactor = 8 * math.Pi * math.Pi * u
	}
	at.Coords = coords
	if kind == coordFractional {
		at.Fractional = true
		at.Site = coords
	}
	setTensor(at, row, tcols, recip)
	if at.Aniso != nil && !math.IsNaN(uiso) {
		at.Aniso.Uiso = uiso
	}
	r.current().AddAtom(at)
}

// anisoRows reads a loop of displacement parameters for atoms already read. Rows are matched
// to atoms by label, by atom id in mmCIF, or by position when the loop has neither.
func (r *CifReader) anisoRows(m *cif.FieldMap, tcols []tensorCol) error {
	set := r.current()
	var byID map[int]*xtal.Atom
	byPosition := !m.HasAny(atAnisoLabel, atLabel, atAnisoID, atID)
	seq := 0
	recip := r.recipLengths()
	return r.rows(m, func(row *cif.Row) {
		var at *xtal.Atom
		label := firstStr(row, atAnisoLabel, atLabel)
		id, hasID := row.Int(atAnisoID)
		if !hasID {
			id, hasID = row.Int(atID)
		}
		switch {
		case r.mm && hasID:
			if byID == nil {
				byID = make(map[int]*xtal.Atom, set.Len())
				for _, a := range set.Atoms {
					byID[a.ID] = a
				}
			}
			at = byID[id]
		case label != "":
			at, _ = set.AtomByName(label)
		case byPosition && seq < set.Len():
			at = set.Atom(seq)
		}
		seq++
		if at == nil {
			r.warnf("displacement parameters for unknown atom %q, skipped", label)
			return
		}
		setTensor(at, row, tcols, recip)
		if u, ok := row.Float(atUIso); ok {
			if at.Aniso != nil {
				at.Aniso.Uiso = u
			}
			at.BFactor = 8 * math.Pi * math.Pi * u
		} else if b, ok := row.Float(atBIso); ok {
			at.BFactor = b
		}
	})
}

// setTensor copies the tensor components of row to the atom, each one replacing the
// component already there. The atom's tensor is first converted to the convention of the
// row. Without the reciprocal lengths recip a conversion to or from beta is not possible,
// and the tensor starts over from zero.
func setTensor(at *xtal.Atom, row *cif.Row, tcols []tensorCol, recip [3]float64) {
	for _, tc := range tcols {
		tok := row.Col(tc.col)
		if tok.IsNull() {
			continue
		}
		v, ok := cif.ParseFloat(tok.Value)
		if !ok {
			continue
		}
		switch {
		case at.Aniso == nil:
			at.Aniso = xtal.NewAniso(tc.kind)
		case !at.Aniso.Convert(tc.kind, recip):
			a := xtal.NewAniso(tc.kind)
			a.Uiso = at.Aniso.Uiso
			at.Aniso = a
		}
		at.Aniso.T[tc.comp] = v
	}
}

// recipLengths returns the reciprocal lengths of the cell read so far in the block, or zeros
// if the cell is not complete yet.
func (r *CifReader) recipLengths() [3]float64 {
	b := r.blk
	for _, ok := range b.cellSet {
		if !ok {
			return [3]float64{}
		}
	}
	p := b.cell
	cell, err := symmetry.NewUnitCell(p[0], p[1], p[2], p[3], p[4], p[5])
	if err != nil {
		return [3]float64{}
	}
	return cell.ReciprocalLengths()
}

// elementFromType returns the element of an atom type symbol such as "Fe3+" or "CL",
// and guesses it from the leading letters for types like "Cl1a".
func elementFromType(ts string) string {
	s := strings.TrimRightFunc(ts, func(c rune) bool {
		return c == '+' || c == '-' || unicode.IsDigit(c)
	})
	if len(s) > 0 && len(s) <= 2 {
		sym := strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
		if xtal.IsElement(sym) {
			return sym
		}
	}
	return xtal.ElementFromLabel(ts)
}

// atomTypes reads _atom_type loops, which give the oxidation number of each atom type.
// The charges are assigned when the block closes.
func (r *CifReader) atomTypes() error {
	m, err := r.header(atomTypeKeys)
	if err != nil {
		return err
	}
	if !m.HasAll(atyType, atyOxidation) {
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		ts := row.Str(atyType)
		if ox, ok := row.Float(atyOxidation); ok && ts != "" {
			r.blk.charges[ts] = ox
		}
	})
}

// applyCharges sets the formal charge of the atoms whose type has an oxidation number.
// Charges are truncated toward zero, so -1.6 becomes -1, and a note is written when that
// changes the value by more than 0.1.
func (r *CifReader) applyCharges(set *xtal.AtomSet) {
	if len(r.blk.charges) == 0 {
		return
	}
	noted := make(map[string]bool)
	for _, at := range set.Atoms {
		ox, ok := r.blk.charges[at.TypeSymbol]
		if !ok {
			continue
		}
		c := int(ox) //truncates toward zero
		at.Charge = c
		if math.Abs(ox-float64(c)) > 0.1 && !noted[at.TypeSymbol] {
			noted[at.TypeSymbol] = true
			r.notef("oxidation number %g of atom type %s truncated to %d", ox, at.TypeSymbol, c)
		}
	}
}

// keepConformation drops the atoms with an alternate location other than the n-th one, in lexical order.
func keepConformation(set *xtal.AtomSet, n int) int {
	seen := make(map[string]bool)
	for _, at := range set.Atoms {
		if at.AltLoc != "" {
			seen[at.AltLoc] = true
		}
	}
	if len(seen) == 0 {
		return 0
	}
	codes := sortedKeys(seen)
	keep := ""
	if n >= 1 && n <= len(codes) {
		keep = codes[n-1]
	}
	return set.Keep(func(at *xtal.Atom) bool {
		return at.AltLoc == "" || at.AltLoc == keep
	})
}
