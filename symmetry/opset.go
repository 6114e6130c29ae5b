/*
 * opset.go, part of goxtal.
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

package symmetry

import "math/bits"

// OpSet is a set of operator indexes, kept as a bitset. It records which operators
// produce a given atom. The zero value is an empty set.
type OpSet []uint64

// Set adds the operator i to the set.
func (s *OpSet) Set(i int) {
	w := i / 64
	for len(*s) <= w {
		*s = append(*s, 0)
	}
	(*s)[w] |= 1 << uint(i%64)
}

// Has returns true if the operator i is in the set.
func (s OpSet) Has(i int) bool {
	w := i / 64
	if i < 0 || w >= len(s) {
		return false
	}
	return s[w]&(1<<uint(i%64)) != 0
}

// First returns the lowest operator in the set, -1 if the set is empty.
func (s OpSet) First() int {
	for w, v := range s {
		if v != 0 {
			return w*64 + bits.TrailingZeros64(v)
		}
	}
	return -1
}

// Last returns the highest operator in the set, -1 if the set is empty.
func (s OpSet) Last() int {
	for w := len(s) - 1; w >= 0; w-- {
		if s[w] != 0 {
			return w*64 + 63 - bits.LeadingZeros64(s[w])
		}
	}
	return -1
}

// Count returns the number of operators in the set.
func (s OpSet) Count() int {
	n := 0
	for _, v := range s {
		n += bits.OnesCount64(v)
	}
	return n
}

// Indexes returns the operators in the set, in increasing order.
func (s OpSet) Indexes() []int {
	var ret []int
	for w, v := range s {
		for v != 0 {
			b := bits.TrailingZeros64(v)
			ret = append(ret, w*64+b)
			v &^= 1 << uint(b)
		}
	}
	return ret
}

// Copy returns an independent copy of the set.
func (s OpSet) Copy() OpSet {
	if s == nil {
		return nil
	}
	return append(OpSet(nil), s...)
}
