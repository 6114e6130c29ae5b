/*
 * secstruct.go, part of goxtal.
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
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
)

// helixClass maps the PDB helix classes to the ones goxtal names. Other classes are kept.
func helixClass(c int) int {
	switch c {
	case 1, 6:
		return xtal.HelixAlpha
	case 3:
		return xtal.HelixPi
	case 5:
		return xtal.Helix310
	}
	return c
}

// secondaryStructure reads _struct_conf (helices and turns) and _struct_sheet_range (strands) loops.
func (r *CifReader) secondaryStructure() error {
	m, err := r.header(structKeys)
	if err != nil {
		return err
	}
	sheet := inCategory(r.ctx.key, "_struct_sheet_range")
	required := []int{scType, scBegChain, scBegSeq, scEndChain, scEndSeq}
	if sheet {
		required = []int{ssBegChain, ssBegSeq, ssEndChain, ssEndSeq}
	}
	if !m.HasAll(required...) {
		r.warnf("%s loop without residue ranges, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		st := &xtal.SecondaryStructure{Model: -1}
		if sheet {
			st.Kind = xtal.StructureSheet
			st.SheetID = row.Str(ssSheetID)
			st.ID = row.Str(ssID)
			st.StartChain, st.StartIns = row.Str(ssBegChain), row.Str(ssBegIns)
			st.EndChain, st.EndIns = row.Str(ssEndChain), row.Str(ssEndIns)
			st.StartRes, _ = row.Int(ssBegSeq)
			st.EndRes, _ = row.Int(ssEndSeq)
		} else {
			t := strings.ToUpper(row.Str(scType))
			switch {
			case strings.HasPrefix(t, "HELX"):
				st.Kind = xtal.StructureHelix
				st.SubClass = xtal.HelixAlpha
				if c, ok := row.Int(scHelixClass); ok {
					st.SubClass = helixClass(c)
				}
			case strings.HasPrefix(t, "TURN"):
				st.Kind = xtal.StructureTurn
			case strings.HasPrefix(t, "STRN"):
				st.Kind = xtal.StructureSheet
			default:
				return
			}
			st.ID = row.Str(scID)
			st.StartChain, st.StartIns = row.Str(scBegChain), row.Str(scBegIns)
			st.EndChain, st.EndIns = row.Str(scEndChain), row.Str(scEndIns)
			st.StartRes, _ = row.Int(scBegSeq)
			st.EndRes, _ = row.Int(scEndSeq)
		}
		r.blk.structures = append(r.blk.structures, st)
	})
}
