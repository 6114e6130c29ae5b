package xtal

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseOptions(Te *testing.T) {
	got := ParseOptions("molecular;MODEL 1,3-4 conf=2 noh MODAXES XZ mod 2 what")
	want := Options{
		Filter:      "molecular;MODEL 1,3-4 conf=2 noh MODAXES XZ mod 2 what",
		Molecular:   true,
		Models:      []int{1, 3, 4},
		Conf:        2,
		NoHydrogens: true,
		ModAxes:     "xz",
		ModSelect:   2,
		Extra:       []string{"what"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		Te.Errorf("options (-want +got):\n%s", diff)
	}
	if !got.WantsModel(3) || got.WantsModel(2) || got.LastModel() != 4 {
		Te.Errorf("model selection wrong for %v", got.Models)
	}
	if !got.WantsAxis("X") || got.WantsAxis("y") {
		Te.Errorf("axis selection wrong for %q", got.ModAxes)
	}
	if !got.Expand(false) {
		Te.Error("MOLECULAR should expand the asymmetric unit")
	}
	if ParseOptions("NOSYMMETRY PACKED").Expand(true) {
		Te.Error("NOSYMMETRY should prevent expansion")
	}
	if ParseOptions("").Expand(false) {
		Te.Error("no options, no modulation, should not expand")
	}
}

func TestAtomSetBonds(Te *testing.T) {
	s := NewAtomSet("test")
	for _, n := range []string{"C1", "H1", "C1", "O1"} {
		s.AddAtom(NewAtom(n))
	}
	if at, ok := s.AtomByName("C1"); !ok || at.Index != 0 {
		Te.Errorf("AtomByName returned %v", at)
	}
	if s.Atom(2).Source != 2 {
		Te.Errorf("source of a new atom should be itself, got %d", s.Atom(2).Source)
	}
	s.AddBond(0, 1, BondSingle)
	if s.AddBond(1, 0, BondDouble) != nil {
		Te.Error("repeated bond added")
	}
	if s.AddBond(2, 2, BondSingle) != nil || s.AddBond(0, 9, BondSingle) != nil {
		Te.Error("invalid bond added")
	}
	s.AddBond(2, 3, BondDouble)
	removed := s.Keep(func(at *Atom) bool { return at.Name != "H1" })
	if removed != 1 || s.Len() != 3 {
		Te.Fatalf("Keep removed %d, left %d", removed, s.Len())
	}
	if len(s.Bonds) != 1 || s.Bond(1, 2) == nil || s.Bond(1, 2).Order != BondDouble {
		Te.Errorf("bonds not renumbered: %v", s.Bonds)
	}
	if diff := cmp.Diff([][]int{nil, {2}, {1}}, s.Neighbors()); diff != "" {
		Te.Errorf("neighbors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]int{"C1": {0, 1}, "O1": {2}}, s.AtomsByName()); diff != "" {
		Te.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestRemoveEmpty(Te *testing.T) {
	c := NewAtomSetCollection("test")
	c.NewAtomSet("")
	c.AddAtom(NewAtom("C1"))
	c.NewAtomSet("")
	c.NewAtomSet("last")
	c.AddAtom(NewAtom("N1"))
	c.AddStructure(&SecondaryStructure{Kind: StructureHelix, Model: 1})
	c.AddStructure(&SecondaryStructure{Kind: StructureSheet, Model: 2})
	c.AddStructure(&SecondaryStructure{Kind: StructureTurn, Model: -1})
	if n := c.RemoveEmpty(); n != 1 {
		Te.Fatalf("removed %d sets", n)
	}
	names := []string{c.Sets[0].Name, c.Sets[1].Name}
	if diff := cmp.Diff([]string{"test 1", "last"}, names); diff != "" {
		Te.Errorf("names (-want +got):\n%s", diff)
	}
	got := c.StructuresFor(1)
	if len(got) != 2 || got[0].Kind != StructureSheet || got[1].Kind != StructureTurn {
		Te.Errorf("structures of the second set: %v", got)
	}
	if c.NAtoms() != 2 {
		Te.Errorf("want 2 atoms, got %d", c.NAtoms())
	}
	c.Warnf("odd %s", "thing")
	if c.Notes[len(c.Notes)-1] != "warning: odd thing" {
		Te.Errorf("note %q", c.Notes[len(c.Notes)-1])
	}
}

func TestElementFromLabel(Te *testing.T) {
	cases := map[string]string{
		"C12":  "C",
		"Fe3+": "Fe",
		"FE1":  "Fe",
		"Cl1a": "Cl",
		"CA":   "C",
		"HB2":  "H",
		"OW":   "O",
		"1":    "Xx",
		"Q1":   "Xx",
	}
	for label, want := range cases {
		if got := ElementFromLabel(label); got != want {
			Te.Errorf("%s: want %s, got %s", label, want, got)
		}
	}
}

func TestChargeFromTypeSymbol(Te *testing.T) {
	cases := []struct {
		ts     string
		charge int
		ok     bool
	}{
		{"Fe3+", 3, true},
		{"O2-", -2, true},
		{"Na+", 1, true},
		{"Cl", 0, false},
		{"+", 0, false},
	}
	for _, c := range cases {
		q, ok := ChargeFromTypeSymbol(c.ts)
		if q != c.charge || ok != c.ok {
			Te.Errorf("%s: want %d %t, got %d %t", c.ts, c.charge, c.ok, q, ok)
		}
	}
}

func TestAtomCopy(Te *testing.T) {
	at := NewAtom("Fe1")
	at.Aniso = NewAniso(AnisoU)
	at.Mod = &Modulation{X4: []float64{0.1}}
	c := at.Copy()
	c.Aniso.T[0] = 1
	c.Mod.X4[0] = 0.5
	if at.Aniso.T[0] != 0 || at.Mod.X4[0] != 0.1 {
		Te.Error("copy shares data with the original")
	}
	if diff := cmp.Diff(at, c, cmpopts.IgnoreFields(Atom{}, "Aniso", "Mod"), cmpopts.EquateNaNs(), cmpopts.IgnoreUnexported(Atom{})); diff != "" {
		Te.Errorf("copy differs (-orig +copy):\n%s", diff)
	}
}

func TestAnisoConvert(Te *testing.T) {
	approx := cmpopts.EquateApprox(1e-9, 0)
	recip := [3]float64{0.1, 0.2, 0.25}
	a := NewAniso(AnisoU)
	a.T = [6]float64{0.01, 0.02, 0.03, 0.001, 0.002, 0.003}
	orig := *a
	if a.Convert(AnisoBeta, [3]float64{}) || a.Kind != AnisoU {
		Te.Fatal("conversion to beta without reciprocal lengths")
	}
	for _, k := range []AnisoKind{AnisoB, AnisoBeta, AnisoU} {
		if !a.Convert(k, recip) || a.Kind != k {
			Te.Fatalf("tensor not converted to %d", k)
		}
	}
	if diff := cmp.Diff(orig.T, a.T, approx); diff != "" {
		Te.Errorf("U to B to beta to U (-want +got):\n%s", diff)
	}
	b := NewAniso(AnisoB)
	for k, u := range a.T {
		b.T[k] = 8 * math.Pi * math.Pi * u
	}
	b.Convert(AnisoBeta, recip)
	if diff := cmp.Diff(a.Beta(recip), b.T, approx); diff != "" {
		Te.Errorf("B and U tensors give different beta (-U +B):\n%s", diff)
	}
}
