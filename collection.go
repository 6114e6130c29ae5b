/*
 * collection.go, part of goxtal.
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
	"fmt"
	"sort"

	"github.com/rmera/goxtal/symmetry"
	"github.com/tliron/commonlog"
)

// AtomSet is one model, or data block, of a file: atoms, the bonds between them,
// and the symmetry they were read with.
type AtomSet struct {
	Name     string
	Atoms    []*Atom
	Bonds    []*Bond
	Symmetry *symmetry.Symmetry //nil if the file gave no cell
	Info     map[string]interface{}
	names    map[string]int
	bondset  map[[2]int]*Bond
}

// NewAtomSet returns an empty atom set with the given name.
func NewAtomSet(name string) *AtomSet {
	return &AtomSet{Name: name, Info: make(map[string]interface{}), names: make(map[string]int), bondset: make(map[[2]int]*Bond)}
}

// Len returns the number of atoms in the set.
func (s *AtomSet) Len() int { return len(s.Atoms) }

// Atom returns the i-th atom of the set. It panics if i is out of range.
func (s *AtomSet) Atom(i int) *Atom { return s.Atoms[i] }

// AddAtom appends at to the set, sets its Index, and returns it.
// The first atom added with a given name is the one returned by AtomByName.
func (s *AtomSet) AddAtom(at *Atom) *Atom {
	at.Index = len(s.Atoms)
	if at.Source < 0 {
		at.Source = at.Index
	}
	s.Atoms = append(s.Atoms, at)
	if _, ok := s.names[at.Name]; !ok && at.Name != "" {
		s.names[at.Name] = at.Index
	}
	return at
}

// SetAtoms replaces the atoms of the set with atoms, which are added in order.
// All bonds are removed.
func (s *AtomSet) SetAtoms(atoms []*Atom) {
	s.Atoms = make([]*Atom, 0, len(atoms))
	s.names = make(map[string]int)
	s.ClearBonds()
	for _, at := range atoms {
		s.AddAtom(at)
	}
}

// AtomByName returns the first atom added with the given name, and true, or nil and false if there is none.
func (s *AtomSet) AtomByName(name string) (*Atom, bool) {
	i, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.Atoms[i], true
}

// AtomsByName returns the indexes of all the atoms with the given name, which are more than
// one after symmetry expansion.
func (s *AtomSet) AtomsByName() map[string][]int {
	ret := make(map[string][]int)
	for i, at := range s.Atoms {
		ret[at.Name] = append(ret[at.Name], i)
	}
	return ret
}

func bondKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

// AddBond bonds the atoms with indexes i and j. It returns nil, and adds nothing, if the
// bond already exists or the indexes are invalid.
func (s *AtomSet) AddBond(i, j int, order BondOrder) *Bond {
	if i == j || i < 0 || j < 0 || i >= len(s.Atoms) || j >= len(s.Atoms) {
		return nil
	}
	k := bondKey(i, j)
	if _, ok := s.bondset[k]; ok {
		return nil
	}
	b := &Bond{At1: i, At2: j, Order: order}
	s.bondset[k] = b
	s.Bonds = append(s.Bonds, b)
	return b
}

// Bond returns the bond between atoms i and j, or nil if they are not bonded.
func (s *AtomSet) Bond(i, j int) *Bond {
	return s.bondset[bondKey(i, j)]
}

// ClearBonds removes all bonds from the set.
func (s *AtomSet) ClearBonds() {
	s.Bonds = nil
	s.bondset = make(map[[2]int]*Bond)
}

// Neighbors returns, for each atom, the indexes of the atoms bonded to it.
func (s *AtomSet) Neighbors() [][]int {
	ret := make([][]int, len(s.Atoms))
	for _, b := range s.Bonds {
		ret[b.At1] = append(ret[b.At1], b.At2)
		ret[b.At2] = append(ret[b.At2], b.At1)
	}
	return ret
}

// Keep retains only the atoms for which keep returns true. Bonds between kept atoms are
// renumbered, the others are dropped.
func (s *AtomSet) Keep(keep func(at *Atom) bool) int {
	newidx := make([]int, len(s.Atoms))
	atoms := s.Atoms
	bonds := s.Bonds
	s.Atoms = make([]*Atom, 0, len(atoms))
	s.names = make(map[string]int)
	removed := 0
	for i, at := range atoms {
		if !keep(at) {
			newidx[i] = -1
			removed++
			continue
		}
		newidx[i] = len(s.Atoms)
		s.AddAtom(at)
	}
	s.ClearBonds()
	for _, b := range bonds {
		i, j := newidx[b.At1], newidx[b.At2]
		if i < 0 || j < 0 {
			continue
		}
		if nb := s.AddBond(i, j, b.Order); nb != nil {
			nb.Dist = b.Dist
		}
	}
	return removed
}

// Cell returns the unit cell of the set, or nil.
func (s *AtomSet) Cell() *symmetry.UnitCell {
	if s.Symmetry == nil {
		return nil
	}
	return s.Symmetry.Cell
}

// Cartesian returns the Cartesian coordinates of the i-th atom. Fractional coordinates
// are returned unchanged if the set has no cell.
func (s *AtomSet) Cartesian(i int) [3]float64 {
	at := s.Atoms[i]
	if !at.Fractional || s.Cell() == nil {
		return at.Coords
	}
	return s.Cell().ToCartesian(at.Coords)
}

// Fractional returns the fractional coordinates of the i-th atom, and false if they can't be obtained.
func (s *AtomSet) Fractional(i int) ([3]float64, bool) {
	at := s.Atoms[i]
	if at.Fractional {
		return at.Coords, true
	}
	if s.Cell() == nil {
		return at.Coords, false
	}
	return s.Cell().ToFractional(at.Coords), true
}

// AtomSetCollection is what a reader returns: one or more atom sets, the secondary structure
// of the whole file, general information, and the notes produced while reading.
type AtomSetCollection struct {
	Name       string
	Sets       []*AtomSet
	Structures []*SecondaryStructure
	Info       map[string]interface{}
	Notes      []string
	log        commonlog.Logger
}

// NewAtomSetCollection returns an empty collection. name is only used for logging and
// to name the atom sets that are created without a name.
func NewAtomSetCollection(name string) *AtomSetCollection {
	return &AtomSetCollection{Name: name, Info: make(map[string]interface{}), log: Logger("collection")}
}

// NewAtomSet appends a new atom set to the collection, and makes it the current one.
func (c *AtomSetCollection) NewAtomSet(name string) *AtomSet {
	if name == "" {
		name = fmt.Sprintf("%s %d", c.Name, len(c.Sets)+1)
	}
	s := NewAtomSet(name)
	c.Sets = append(c.Sets, s)
	return s
}

// Current returns the last atom set added, or nil if there is none.
func (c *AtomSetCollection) Current() *AtomSet {
	if len(c.Sets) == 0 {
		return nil
	}
	return c.Sets[len(c.Sets)-1]
}

// CurrentIndex returns the index of the current atom set, -1 if there is none.
func (c *AtomSetCollection) CurrentIndex() int {
	return len(c.Sets) - 1
}

// AddAtom adds at to the current atom set, creating one if needed.
func (c *AtomSetCollection) AddAtom(at *Atom) *Atom {
	s := c.Current()
	if s == nil {
		s = c.NewAtomSet("")
	}
	return s.AddAtom(at)
}

// AddBond bonds two atoms of the current set.
func (c *AtomSetCollection) AddBond(i, j int, order BondOrder) *Bond {
	s := c.Current()
	if s == nil {
		return nil
	}
	return s.AddBond(i, j, order)
}

// AddStructure adds a secondary structure span.
func (c *AtomSetCollection) AddStructure(st *SecondaryStructure) {
	c.Structures = append(c.Structures, st)
}

// StructuresFor returns the spans that apply to the i-th atom set.
func (c *AtomSetCollection) StructuresFor(i int) []*SecondaryStructure {
	var ret []*SecondaryStructure
	for _, st := range c.Structures {
		if st.Model < 0 || st.Model == i {
			ret = append(ret, st)
		}
	}
	return ret
}

// SetInfo sets a key of the collection-wide information.
func (c *AtomSetCollection) SetInfo(key string, val interface{}) {
	c.Info[key] = val
}

// Notef adds a note, which is also logged as information.
func (c *AtomSetCollection) Notef(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.Notes = append(c.Notes, msg)
	c.log.Info(msg)
}

// Warnf adds a note about a recoverable problem in the input, which is also logged as a warning.
func (c *AtomSetCollection) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.Notes = append(c.Notes, "warning: "+msg)
	c.log.Warning(msg)
}

// RemoveEmpty drops the atom sets without atoms, and returns how many were dropped.
// Secondary structure spans assigned to removed sets are dropped too, the others renumbered.
func (c *AtomSetCollection) RemoveEmpty() int {
	newidx := make(map[int]int)
	sets := c.Sets[:0]
	for i, s := range c.Sets {
		if s.Len() == 0 {
			continue
		}
		newidx[i] = len(sets)
		sets = append(sets, s)
	}
	removed := len(c.Sets) - len(sets)
	c.Sets = sets
	if removed == 0 {
		return 0
	}
	structs := c.Structures[:0]
	for _, st := range c.Structures {
		if st.Model < 0 {
			structs = append(structs, st)
			continue
		}
		if ni, ok := newidx[st.Model]; ok {
			st.Model = ni
			structs = append(structs, st)
		}
	}
	c.Structures = structs
	return removed
}

// NAtoms returns the total number of atoms in the collection.
func (c *AtomSetCollection) NAtoms() int {
	n := 0
	for _, s := range c.Sets {
		n += s.Len()
	}
	return n
}

// SortedInfoKeys returns the keys of the collection's information in lexical order.
func (c *AtomSetCollection) SortedInfoKeys() []string {
	keys := make([]string, 0, len(c.Info))
	for k := range c.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
