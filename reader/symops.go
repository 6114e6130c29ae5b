/*
 * symops.go, part of goxtal.
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
	"github.com/rmera/goxtal/cif"
)

// symmetryOps reads a loop of symmetry operators. The operators can be given with any of
// several data names, but a loop that uses more than one of them is ambiguous and is ignored.
func (r *CifReader) symmetryOps() error {
	m, err := r.header(symKeys)
	if err != nil {
		return err
	}
	var present []int
	for id := 0; id < symNKeys; id++ {
		if m.Has(id) {
			present = append(present, id)
		}
	}
	if len(present) != 1 {
		if len(present) > 1 {
			r.warnf("symmetry operators given with %d different data names, none applied", len(present))
		}
		return m.Skip(r.t)
	}
	col := present[0]
	sym := r.blk.symmetry()
	return r.rows(m, func(row *cif.Row) {
		xyz := row.Str(col)
		if xyz == "" {
			return
		}
		if _, err := sym.AddOperator(xyz); err != nil {
			r.warnf("symmetry operator %q: %s", xyz, err)
			return
		}
		r.blk.symops = append(r.blk.symops, xyz)
	})
}
