/*
 * options.go, part of goxtal.
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
	"strconv"
	"strings"
)

// Options is the parsed form of a filter string, which drives what is decoded and how.
// The zero value reads everything, without symmetry expansion.
type Options struct {
	Filter      string   `yaml:"filter"`
	Molecular   bool     `yaml:"molecular"`   //rebuild whole molecules across cell boundaries
	ByChain     bool     `yaml:"bychain"`     //coarse-grain mmCIF structures to one pseudo-atom per chain
	Assembly    string   `yaml:"assembly"`    //biological assembly id to build, "" for none
	Models      []int    `yaml:"models"`      //1-based model (or data block) numbers to keep, empty for all
	Conf        int      `yaml:"conf"`        //1-based alternate conformation to keep, 0 for all
	ModAxes     string   `yaml:"modaxes"`     //restrict displacive modulation to these axes, e.g. "xz"
	ModSelect   int      `yaml:"mod"`         //keep only the harmonic with this wave-vector index, 0 for all
	ModLast     bool     `yaml:"modlast"`     //use the last, not the first, operator that produced an atom
	ModAverage  bool     `yaml:"modaverage"`  //do not apply modulation, keep the average structure
	ModCell     string   `yaml:"modcell"`     //use the cell of this subsystem for the whole set
	NoSymmetry  bool     `yaml:"nosymmetry"`  //never expand the asymmetric unit
	Packed      bool     `yaml:"packed"`      //expand the asymmetric unit to the full cell
	NoHydrogens bool     `yaml:"nohydrogens"` //drop H and D atoms
	NoBonds     bool     `yaml:"nobonds"`     //do not create bonds from file data
	CIF2        bool     `yaml:"cif2"`        //force CIF2 tokenizing rules
	Validation  bool     `yaml:"validation"`  //keep mmCIF validation annotations
	Extra       []string `yaml:"extra"`       //tokens not understood by goxtal
}

// ParseOptions parses a filter string, such as "MOLECULAR;MODEL 2 NOH".
// Tokens are separated by whitespace or semicolons, and are case-insensitive.
// Tokens that take a value accept both "KEY=value" and "KEY value".
// Tokens not recognized are kept, in order, in the Extra field.
func ParseOptions(filter string) Options {
	o := Options{Filter: filter}
	fields := strings.FieldsFunc(filter, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for i := 0; i < len(fields); i++ {
		key, val, hasVal := strings.Cut(fields[i], "=")
		key = strings.ToUpper(key)
		//value returns the argument of the current token, consuming the next token if needed.
		value := func() string {
			if hasVal {
				return val
			}
			if i+1 < len(fields) {
				i++
				return fields[i]
			}
			return ""
		}
		switch key {
		case "MOLECULAR", "MOLECULE":
			o.Molecular = true
		case "BYCHAIN":
			o.ByChain = true
		case "ASSEMBLY", "BIOMOLECULE":
			o.Assembly = value()
		case "MODEL", "MODELS":
			o.Models = append(o.Models, parseIntList(value())...)
		case "CONF":
			o.Conf, _ = strconv.Atoi(value())
		case "MODAXES":
			o.ModAxes = strings.ToLower(value())
		case "MOD":
			o.ModSelect, _ = strconv.Atoi(value())
		case "MODLAST":
			o.ModLast = true
		case "MODAVERAGE":
			o.ModAverage = true
		case "MODCELL":
			o.ModCell = value()
		case "NOSYMMETRY":
			o.NoSymmetry = true
		case "PACKED", "LATTICE":
			o.Packed = true
		case "NOH", "NOHYDROGENS":
			o.NoHydrogens = true
		case "NOBONDS":
			o.NoBonds = true
		case "CIF2":
			o.CIF2 = true
		case "VALIDATION":
			o.Validation = true
		default:
			o.Extra = append(o.Extra, fields[i])
		}
	}
	return o
}

// parseIntList parses things like "1,3,5-7". Malformed elements are ignored.
func parseIntList(s string) []int {
	var ret []int
	for _, f := range strings.Split(s, ",") {
		lo, hi, isRange := strings.Cut(f, "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			continue
		}
		if !isRange {
			ret = append(ret, a)
			continue
		}
		b, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			continue
		}
		for j := a; j <= b; j++ {
			ret = append(ret, j)
		}
	}
	return ret
}

// WantsModel returns true if the n-th model (1-based) is to be read.
func (o Options) WantsModel(n int) bool {
	if len(o.Models) == 0 {
		return true
	}
	for _, v := range o.Models {
		if v == n {
			return true
		}
	}
	return false
}

// LastModel returns the largest model number requested, or 0 if all models are wanted.
func (o Options) LastModel() int {
	m := 0
	for _, v := range o.Models {
		if v > m {
			m = v
		}
	}
	return m
}

// WantsAxis returns true if displacive modulation along the given axis ("x", "y" or "z") is to be applied.
func (o Options) WantsAxis(axis string) bool {
	return o.ModAxes == "" || strings.Contains(o.ModAxes, strings.ToLower(axis))
}

// Expand returns true if the asymmetric unit should be expanded with the symmetry operators.
// modulated indicates that the structure carries modulation data, which always needs the full set
// of operators.
func (o Options) Expand(modulated bool) bool {
	if o.NoSymmetry {
		return false
	}
	return o.Packed || o.Molecular || modulated
}
