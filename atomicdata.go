/*
 * atomicdata.go, part of goxtal.
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

import (
	"strings"
	"unicode"
)

//Distances used to decide whether two atoms are covalently bonded when the file
//does not tell. Two atoms are bonded if tooClose < d < r1+r2+bondTol
const (
	bondTol  = 0.45
	tooClose = 0.63
)

//A map for assigning mass to elements.
//Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.008,
	"D":  2.014,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.08,
	"Be": 9.012,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
	"B":  10.81,
	"Al": 26.98,
	"Ni": 58.69,
	"Li": 6.94,
}

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
var symbolCovrad = map[string]float64{
	"H":  0.4, // 0.31 in Cordero. H only ever has one bond, and the extra ones are removed later.
	"D":  0.4,
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  // hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
	"B":  0.84,
	"Al": 1.21,
	"Ni": 1.24,
	"Li": 1.28,
	"Ti": 1.60,
	"V":  1.53,
	"Ga": 1.22,
	"Ge": 1.20,
	"As": 1.19,
	"Sn": 1.39,
	"Sb": 1.39,
	"Te": 1.38,
	"Mo": 1.54,
	"W":  1.62,
	"Pt": 1.36,
	"Pd": 1.39,
	"Ag": 1.45,
	"Au": 1.36,
	"Hg": 1.32,
	"Cd": 1.44,
	"Pb": 1.46,
	"Bi": 1.48,
	"Rb": 2.20,
	"Cs": 2.44,
	"Sr": 1.95,
	"Ba": 2.15,
	"Zr": 1.75,
	"Nb": 1.64,
	"La": 2.07,
	"Ce": 2.04,
	"U":  1.96,
}

var elements = []string{"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne", "Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr", "D"}

var elementSet = func() map[string]bool {
	m := make(map[string]bool, len(elements))
	for _, v := range elements {
		m[v] = true
	}
	return m
}()

//The standard residues. Atoms in other residues are hetero atoms
//when the file doesn't say.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
	"DA":  'A',
	"DC":  'C',
	"DG":  'G',
	"DT":  'T',
	"A":   'A',
	"C":   'C',
	"G":   'G',
	"U":   'U',
}

// IsElement returns true if sym is a valid, properly capitalized, element symbol.
func IsElement(sym string) bool {
	return elementSet[sym]
}

// IsStandardResidue returns true for the 20 standard aminoacids, selenocysteine and the nucleotides.
func IsStandardResidue(name string) bool {
	_, ok := three2OneLetter[strings.ToUpper(name)]
	return ok
}

// OneLetter returns the one-letter code for a standard residue, or 'X'.
func OneLetter(name string) byte {
	if c, ok := three2OneLetter[strings.ToUpper(name)]; ok {
		return c
	}
	return 'X'
}

// Mass returns the mass of the element, 0 if unknown.
func Mass(sym string) float64 {
	return symbolMass[sym]
}

// CovalentRadius returns the covalent radius of the element, and false if it is not known.
func CovalentRadius(sym string) (float64, bool) {
	r, ok := symbolCovrad[sym]
	return r, ok
}

// CovalentBonded returns true if two atoms of the given elements, at a distance d, should
// be bonded, based on their covalent radii.
func CovalentBonded(sym1, sym2 string, d float64) bool {
	r1, ok1 := symbolCovrad[sym1]
	r2, ok2 := symbolCovrad[sym2]
	if !ok1 || !ok2 {
		return false
	}
	return d > tooClose && d < r1+r2+bondTol
}

func capitalize(ch0, ch1 rune) string {
	if ch1 == 0 {
		return string(unicode.ToUpper(ch0))
	}
	return string(unicode.ToUpper(ch0)) + string(unicode.ToLower(ch1))
}

// ElementFromLabel guesses the element of an atom from its label or type symbol, as CIF files write them
// ("C12", "Fe3+", "Cl1a", "FE1", "OW"). The one or two leading letters are used, the two-letter form
// only if it is a valid symbol. An upper-case second letter is taken as part of the symbol only
// if the first letter is not one of H, C, N, O, since labels such as "CA" or "HB2" name light atoms.
// "Xx" is returned when no element fits.
func ElementFromLabel(label string) string {
	label = strings.TrimSpace(label)
	var letters []rune
	for _, r := range label {
		if !unicode.IsLetter(r) || len(letters) == 2 {
			break
		}
		letters = append(letters, r)
	}
	switch len(letters) {
	case 0:
		return "Xx"
	case 2:
		sym2 := capitalize(letters[0], letters[1])
		if elementSet[sym2] {
			if unicode.IsLower(letters[1]) || !strings.ContainsRune("HCNO", unicode.ToUpper(letters[0])) {
				return sym2
			}
		}
	}
	sym1 := capitalize(letters[0], 0)
	if elementSet[sym1] {
		return sym1
	}
	return "Xx"
}

// ChargeFromTypeSymbol extracts the charge from atom type symbols like "Fe3+" or "O2-". It returns false
// if the symbol carries no charge.
func ChargeFromTypeSymbol(ts string) (int, bool) {
	n := len(ts)
	if n < 2 {
		return 0, false
	}
	sign := 0
	switch ts[n-1] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, false
	}
	i := n - 1
	for i > 0 && ts[i-1] >= '0' && ts[i-1] <= '9' {
		i--
	}
	if i == n-1 {
		return sign, true
	}
	v := 0
	for _, c := range ts[i : n-1] {
		v = v*10 + int(c-'0')
	}
	return sign * v, true
}
