package chemgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	xtal "github.com/rmera/goxtal"
)

func TestComponents(Te *testing.T) {
	set := xtal.NewAtomSet("test")
	for _, n := range []string{"O1", "H1", "H2", "Na1", "C1", "O2"} {
		set.AddAtom(xtal.NewAtom(n))
	}
	set.AddBond(0, 1, xtal.BondSingle)
	set.AddBond(2, 0, xtal.BondSingle)
	set.AddBond(4, 5, xtal.BondDouble)
	T := NewTopology(set, nil)
	if diff := cmp.Diff([][]int{{0, 1, 2}, {3}, {4, 5}}, T.Components()); diff != "" {
		Te.Errorf("components (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, T.Neighbors(0)); diff != "" {
		Te.Error(diff)
	}
	if n := AssignMolecules(set); n != 3 {
		Te.Errorf("expected 3 molecules, got %d", n)
	}
	if set.Atom(2).Molecule != 1 || set.Atom(3).Molecule != 2 || set.Atom(5).Molecule != 3 {
		Te.Error("wrong molecule numbers")
	}
}
