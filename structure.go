/*
 * structure.go, part of goxtal.
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

package xtal

// StructureKind is the type of a secondary structure element.
type StructureKind int

const (
	StructureNone StructureKind = iota
	StructureHelix
	StructureSheet
	StructureTurn
)

func (k StructureKind) String() string {
	switch k {
	case StructureHelix:
		return "helix"
	case StructureSheet:
		return "sheet"
	case StructureTurn:
		return "turn"
	}
	return "none"
}

// Helix classes, as in the PDB format. Only the common ones are named.
const (
	HelixAlpha = 1
	HelixPi    = 3
	Helix310   = 5
)

// SecondaryStructure is a span of residues, from the start residue to the end residue, both included.
type SecondaryStructure struct {
	Kind       StructureKind
	SubClass   int    //helix class for helices
	ID         string //helix id or strand id
	SheetID    string
	StartChain string
	StartRes   int
	StartIns   string
	EndChain   string
	EndRes     int
	EndIns     string
	Model      int //0-based atom set this span belongs to, -1 for all of them
}

// Contains returns true if the residue of the given atom is within the span.
// Spans that cross chains are only checked by residue number.
func (s *SecondaryStructure) Contains(at *Atom) bool {
	if at.Chain != s.StartChain && at.Chain != s.EndChain {
		return false
	}
	return at.ResNum >= s.StartRes && at.ResNum <= s.EndRes
}
