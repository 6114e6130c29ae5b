// Package chemgraph offers a gonum graph view of the bonds of an atom set.
package chemgraph

import (
	"sort"

	xtal "github.com/rmera/goxtal"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Atom is a graph node wrapping an atom of the set.
type Atom struct {
	*xtal.Atom
	Bonds []*Bond
}

// ID returns the index of the atom in its set.
func (A *Atom) ID() int64 {
	return int64(A.Index)
}

// Bond is an undirected graph edge wrapping a bond of the set.
type Bond struct {
	*xtal.Bond
	At1, At2   *Atom
	Weightfunc func(*Bond) float64
}

// Weight returns the weight of the bond: the value of Weightfunc, or the bond length if
// Weightfunc is nil.
func (B *Bond) Weight() float64 {
	if B.Weightfunc == nil {
		return B.Dist
	}
	return B.Weightfunc(B)
}

func (B *Bond) From() graph.Node {
	return B.At1
}

func (B *Bond) To() graph.Node {
	return B.At2
}

// ReversedEdge returns the bond with its ends swapped. The bond itself is not modified.
func (B *Bond) ReversedEdge() graph.Edge {
	return &Bond{Bond: B.Bond, At1: B.At2, At2: B.At1, Weightfunc: B.Weightfunc}
}

// Topology is the bond graph of an atom set.
type Topology struct {
	Set   *xtal.AtomSet
	Atoms []*Atom
	Bonds []*Bond
	g     *simple.UndirectedGraph
}

// NewTopology builds the graph for the atoms and bonds of set. Atoms without bonds are
// nodes of the graph too. weightfunc can be nil.
func NewTopology(set *xtal.AtomSet, weightfunc func(*Bond) float64) *Topology {
	T := &Topology{Set: set, g: simple.NewUndirectedGraph()}
	for _, at := range set.Atoms {
		a := &Atom{Atom: at}
		T.Atoms = append(T.Atoms, a)
		T.g.AddNode(a)
	}
	for _, b := range set.Bonds {
		a1, a2 := T.Atoms[b.At1], T.Atoms[b.At2]
		nb := &Bond{Bond: b, At1: a1, At2: a2, Weightfunc: weightfunc}
		a1.Bonds = append(a1.Bonds, nb)
		a2.Bonds = append(a2.Bonds, nb)
		T.Bonds = append(T.Bonds, nb)
		T.g.SetEdge(nb)
	}
	return T
}

// Graph returns the underlying gonum graph.
func (T *Topology) Graph() graph.Undirected { return T.g }

// Neighbors returns the indexes of the atoms bonded to the i-th one, sorted.
func (T *Topology) Neighbors(i int) []int {
	nodes := graph.NodesOf(T.g.From(int64(i)))
	ret := make([]int, 0, len(nodes))
	for _, n := range nodes {
		ret = append(ret, int(n.ID()))
	}
	sort.Ints(ret)
	return ret
}

// Components returns the connected components of the graph, as sorted lists of atom indexes.
// Components are ordered by their lowest index.
func (T *Topology) Components() [][]int {
	cc := topo.ConnectedComponents(T.g)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		idx := make([]int, 0, len(c))
		for _, n := range c {
			idx = append(idx, int(n.ID()))
		}
		sort.Ints(idx)
		ret = append(ret, idx)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

// AssignMolecules sets the Molecule field of every atom of set to the 1-based number of
// its connected component, and returns the number of components.
func AssignMolecules(set *xtal.AtomSet) int {
	if set.Len() == 0 {
		return 0
	}
	cc := NewTopology(set, nil).Components()
	for m, c := range cc {
		for _, i := range c {
			set.Atoms[i].Molecule = m + 1
		}
	}
	return len(cc)
}
