package reader

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	xtal "github.com/rmera/goxtal"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func readTest(Te *testing.T, name, filter string) *xtal.AtomSetCollection {
	Te.Helper()
	coll, err := ReadFile(filepath.Join("test", name), xtal.ParseOptions(filter))
	if err != nil {
		Te.Fatalf("reading %s: %v", name, err)
	}
	return coll
}

func TestSniff(Te *testing.T) {
	cases := []struct {
		head string
		want Format
	}{
		{"data_x\n_cell_length_a 5\n", CIF},
		{"data_1ABC\n#\n_entry.id 1ABC\n", MMCIF},
		{"data_x\nloop_\n_atom_site.id\n", MMCIF},
		{"data_x\n_struct.title 'a.b'\n", MMCIF},
		{"data_x\n_chemical_name_common 'a.b'\n", CIF},
		{"\xde\x00\x10", MMTF},
		{"\x82\xa1a", MMTF},
		{"", CIF},
	}
	for _, c := range cases {
		if got := Sniff([]byte(c.head)); got != c.want {
			Te.Errorf("Sniff(%q) = %s, want %s", c.head, got, c.want)
		}
	}
}

func TestReadCIF(Te *testing.T) {
	coll := readTest(Te, "water.cif", "")
	if coll.Name != "water" || len(coll.Sets) != 1 {
		Te.Fatalf("expected one set in collection water, got %d in %s", len(coll.Sets), coll.Name)
	}
	set := coll.Sets[0]
	if set.Len() != 2 {
		Te.Fatalf("expected 2 atoms, got %d", set.Len())
	}
	o := set.Atom(0)
	if o.Name != "O1" || o.Symbol != "O" || !o.Fractional {
		Te.Errorf("bad first atom %+v", o)
	}
	if diff := cmp.Diff([3]float64{0.1, 0.2, 0.3}, o.Coords, approx); diff != "" {
		Te.Errorf("coordinates: %s", diff)
	}
	if math.Abs(o.BFactor-8*math.Pi*math.Pi*0.02) > 1e-9 {
		Te.Errorf("B factor %v not obtained from Uiso", o.BFactor)
	}
	if o.Charge != -2 || set.Atom(1).Charge != 1 {
		Te.Errorf("charges %d %d from the oxidation numbers", o.Charge, set.Atom(1).Charge)
	}
	if set.Symmetry == nil || set.Symmetry.Len() != 2 {
		Te.Fatalf("expected 2 operators, got %v", set.Symmetry)
	}
	if set.Info["spaceGroup"] != "P -1" || set.Info["name"] != "water, in a made up cell" {
		Te.Errorf("bad info %v", set.Info)
	}
	if diff := cmp.Diff([6]float64{10, 10, 10, 90, 90, 90}, set.Info["unitCell"], approx); diff != "" {
		Te.Errorf("cell: %s", diff)
	}
	if len(set.Bonds) != 1 || set.Bond(0, 1) == nil {
		Te.Errorf("expected the O1-H1 bond of _geom_bond, got %v", set.Bonds)
	}
	if coll.Info["fileType"] != "CIF" {
		Te.Errorf("file type %v", coll.Info["fileType"])
	}
}

func TestReadPacked(Te *testing.T) {
	coll := readTest(Te, "water.cif", "PACKED")
	set := coll.Sets[0]
	if set.Len() != 4 {
		Te.Fatalf("expected 4 atoms in the packed cell, got %d", set.Len())
	}
	img := set.Atom(1)
	if img.Name != "O1" || img.Source != 0 || !img.SymOps.Has(1) {
		Te.Errorf("the second atom should be the inverted O1, got %+v", img)
	}
	if diff := cmp.Diff([3]float64{0.9, 0.8, 0.7}, img.Coords, approx); diff != "" {
		Te.Errorf("image position: %s", diff)
	}
	if len(set.Bonds) != 2 {
		Te.Errorf("expected one O-H bond per molecule, got %d", len(set.Bonds))
	}
}

func TestNoHydrogens(Te *testing.T) {
	coll := readTest(Te, "water.cif", "NOH;NOBONDS")
	set := coll.Sets[0]
	if set.Len() != 1 || set.Atom(0).Name != "O1" || len(set.Bonds) != 0 {
		Te.Errorf("expected a lone O1 without bonds, got %d atoms, %d bonds", set.Len(), len(set.Bonds))
	}
}

func TestSymmetryConflict(Te *testing.T) {
	coll := readTest(Te, "conflict.cif", "PACKED")
	set := coll.Sets[0]
	if set.Symmetry == nil || set.Symmetry.Len() != 1 {
		Te.Fatalf("the operators of an ambiguous loop must be ignored, got %v", set.Symmetry)
	}
	if set.Len() != 1 || set.Atom(0).Symbol != "Na" {
		Te.Errorf("expected only Na1, got %d atoms", set.Len())
	}
	warned := false
	for _, n := range coll.Notes {
		if strings.Contains(n, "none applied") {
			warned = true
		}
	}
	if !warned {
		Te.Errorf("no warning about the symmetry loop in %v", coll.Notes)
	}
}

func TestSingleRowEqualsLoop(Te *testing.T) {
	single := "data_a\n_cell_length_a 5\n_cell_length_b 5\n_cell_length_c 5\n" +
		"_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n" +
		"_atom_site_label C1\n_atom_site_fract_x 0.5\n_atom_site_fract_y 0.25\n_atom_site_fract_z 0\n"
	loop := "data_a\n_cell_length_a 5\n_cell_length_b 5\n_cell_length_c 5\n" +
		"_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n" +
		"loop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nC1 0.5 0.25 0\n"
	var got [2]*xtal.Atom
	for i, text := range []string{single, loop} {
		coll, err := ReadNamed(strings.NewReader(text), "a", xtal.Options{})
		if err != nil {
			Te.Fatal(err)
		}
		if len(coll.Sets) != 1 || coll.Sets[0].Len() != 1 {
			Te.Fatalf("case %d: expected one atom", i)
		}
		got[i] = coll.Sets[0].Atom(0)
	}
	if diff := cmp.Diff(got[1].Coords, got[0].Coords); diff != "" || got[0].Name != got[1].Name {
		Te.Errorf("single-row category read differently: %s", diff)
	}
}

func TestMinimalCIF(Te *testing.T) {
	text := "data_test\n_cell_length_a 10.0\n_cell_length_b 10.0\n_cell_length_c 10.0\n" +
		"_cell_angle_alpha 90.0\n_cell_angle_beta 90.0\n_cell_angle_gamma 90.0\n" +
		"loop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nC1 0.1 0.2 0.3\n"
	coll, err := ReadNamed(strings.NewReader(text), "test", xtal.Options{})
	if err != nil {
		Te.Fatal(err)
	}
	if len(coll.Sets) != 1 || coll.Sets[0].Len() != 1 {
		Te.Fatalf("want one set with one atom, got %d atoms", coll.NAtoms())
	}
	set := coll.Sets[0]
	if at := set.Atom(0); at.Symbol != "C" || !at.Fractional {
		Te.Errorf("atom read as %s, fractional %t", at.Symbol, at.Fractional)
	}
	if set.Cell() == nil {
		Te.Fatal("no unit cell")
	}
	if diff := cmp.Diff([3]float64{1, 2, 3}, set.Cartesian(0), approx); diff != "" {
		Te.Errorf("Cartesian coordinates (-want +got):\n%s", diff)
	}
	if len(set.Bonds) != 0 {
		Te.Errorf("no bonds expected, got %d", len(set.Bonds))
	}
}

func TestAnisoConventions(Te *testing.T) {
	head := "data_t\n_cell_length_a 10\n_cell_length_b 10\n_cell_length_c 10\n" +
		"_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n" +
		"loop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nC1 0.1 0.2 0.3\n" +
		"loop_\n_atom_site_aniso_label\n_atom_site_aniso_U_11\n_atom_site_aniso_U_22\n_atom_site_aniso_U_33\nC1 0.01 0.02 0.03\n" +
		"loop_\n_atom_site_aniso_label\n_atom_site_aniso_B_12\nC1 0.5\n"
	beta := "loop_\n_atom_site_aniso_label\n_atom_site_aniso_beta_23\nC1 0.001\n"
	p2 := math.Pi * math.Pi
	cases := []struct {
		text string
		kind xtal.AnisoKind
		want [6]float64
	}{
		//the U components are kept as B ones, 8 pi^2 U
		{head, xtal.AnisoB, [6]float64{0.08 * p2, 0.16 * p2, 0.24 * p2, 0.5, 0, 0}},
		//and then as beta, B a*_i a*_j / 4, with a* = 0.1
		{head + beta, xtal.AnisoBeta, [6]float64{0.02 * p2, 0.04 * p2, 0.06 * p2, 0.00125, 0, 0.001}},
	}
	for i, c := range cases {
		coll, err := ReadNamed(strings.NewReader(c.text), "t", xtal.Options{})
		if err != nil {
			Te.Fatal(err)
		}
		a := coll.Sets[0].Atom(0).Aniso
		if a == nil || a.Kind != c.kind {
			Te.Fatalf("case %d: tensor %+v, want kind %d", i, a, c.kind)
		}
		if diff := cmp.Diff(c.want, a.T, approx); diff != "" {
			Te.Errorf("case %d: components (-want +got):\n%s", i, diff)
		}
	}
}

func TestModelFilter(Te *testing.T) {
	text := "data_one\nloop_\n_atom_site_label\n_atom_site_cartn_x\n_atom_site_cartn_y\n_atom_site_cartn_z\nC1 0 0 0\n" +
		"data_two\nloop_\n_atom_site_label\n_atom_site_cartn_x\n_atom_site_cartn_y\n_atom_site_cartn_z\nN1 0 0 0\n" +
		"data_three\nloop_\n_atom_site_label\n_atom_site_cartn_x\n_atom_site_cartn_y\n_atom_site_cartn_z\nO1 0 0 0\n"
	coll, err := ReadNamed(strings.NewReader(text), "blocks", xtal.ParseOptions("MODEL 2"))
	if err != nil {
		Te.Fatal(err)
	}
	if len(coll.Sets) != 1 || coll.Sets[0].Name != "two" || coll.Sets[0].Atom(0).Name != "N1" {
		Te.Errorf("expected only block two, got %d sets", len(coll.Sets))
	}
}

func TestNoAtoms(Te *testing.T) {
	_, err := ReadNamed(strings.NewReader("data_empty\n_cell_length_a 5\n"), "empty", xtal.Options{})
	if !errors.Is(err, xtal.ErrNoAtoms) {
		Te.Errorf("expected ErrNoAtoms, got %v", err)
	}
}

func TestReadMMCIF(Te *testing.T) {
	coll := readTest(Te, "models.cif", "")
	if coll.Info["fileType"] != "mmCIF" || coll.Info["entryID"] != "TEST" {
		Te.Errorf("bad collection info %v", coll.Info)
	}
	if len(coll.Sets) != 2 {
		Te.Fatalf("expected one set per model, got %d", len(coll.Sets))
	}
	for k, set := range coll.Sets {
		if set.Len() != 4 || set.Info["modelNumber"] != k+1 {
			Te.Errorf("model %d: %d atoms, info %v", k+1, set.Len(), set.Info)
		}
		if len(set.Bonds) != 1 {
			Te.Errorf("model %d: expected the C1-O1 template bond, got %d bonds", k+1, len(set.Bonds))
		}
		if _, ok := set.Info["biomolecules"]; !ok {
			Te.Errorf("model %d: assemblies not described", k+1)
		}
	}
	at := coll.Sets[1].Atom(2)
	if at.Name != "C1" || at.ResName != "EOH" || at.ResNum != 101 || !at.Het || at.Chain != "B" {
		Te.Errorf("bad hetero atom %+v", at)
	}
	if names, _ := coll.Info["hetNames"].(map[string]string); names["EOH"] != "ETHANOL" || names["ALA"] != "" {
		Te.Errorf("bad hetero names %v", coll.Info["hetNames"])
	}
	if len(coll.Structures) != 2 {
		Te.Fatalf("expected the helix in each model, got %d", len(coll.Structures))
	}
	h := coll.Structures[1]
	if h.Kind != xtal.StructureHelix || h.SubClass != xtal.HelixAlpha || h.Model != 1 || h.StartChain != "A" {
		Te.Errorf("bad helix %+v", h)
	}
}

func TestReadAssembly(Te *testing.T) {
	coll := readTest(Te, "models.cif", "MODEL 1;ASSEMBLY 1")
	if len(coll.Sets) != 1 {
		Te.Fatalf("expected only model 1, got %d sets", len(coll.Sets))
	}
	set := coll.Sets[0]
	if set.Len() != 8 || set.Info["assembly"] != "1" {
		Te.Fatalf("expected 8 atoms in assembly 1, got %d", set.Len())
	}
	if diff := cmp.Diff([3]float64{20, 0, 0}, set.Atom(4).Coords, approx); diff != "" {
		Te.Errorf("translated copy: %s", diff)
	}
	if len(set.Bonds) != 2 {
		Te.Errorf("each copy keeps its bond, got %d bonds", len(set.Bonds))
	}
}

func TestAssemblyLabelChains(Te *testing.T) {
	text := `data_CHAINS
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.auth_asym_id
ATOM   1 N N  ALA A 0.0 0.0 0.0 A
HETATM 2 O O  HOH B 3.0 0.0 0.0 A
ATOM   3 C CA GLY C 6.0 0.0 0.0 B
loop_
_pdbx_struct_assembly_gen.assembly_id
_pdbx_struct_assembly_gen.oper_expression
_pdbx_struct_assembly_gen.asym_id_list
1 1 B
loop_
_pdbx_struct_oper_list.id
_pdbx_struct_oper_list.matrix[1][1]
_pdbx_struct_oper_list.matrix[2][2]
_pdbx_struct_oper_list.matrix[3][3]
1 1 1 1
`
	coll, err := ReadNamed(strings.NewReader(text), "chains", xtal.ParseOptions("ASSEMBLY 1"))
	if err != nil {
		Te.Fatal(err)
	}
	set := coll.Sets[0]
	if set.Len() != 1 {
		Te.Fatalf("only the atom of asym B belongs to the assembly, got %d atoms", set.Len())
	}
	if at := set.Atom(0); at.Name != "O" || at.AsymID != "B" {
		Te.Errorf("wrong atom in the assembly: %s of asym %s", at.Name, at.AsymID)
	}
}

func TestByChain(Te *testing.T) {
	coll := readTest(Te, "models.cif", "MODEL 1 BYCHAIN")
	set := coll.Sets[0]
	if set.Len() != 2 {
		Te.Fatalf("expected one pseudo atom per chain, got %d", set.Len())
	}
	if diff := cmp.Diff([3]float64{0.729, 0, 0}, set.Atom(0).Coords, approx); diff != "" {
		Te.Errorf("centroid of chain A: %s", diff)
	}
	if diff := cmp.Diff(map[string]int{"A": 2, "B": 2}, set.Info["atomCount"]); diff != "" {
		Te.Errorf("atom counts: %s", diff)
	}
}

func TestReadModulated(Te *testing.T) {
	coll := readTest(Te, "modulated.cif", "")
	set := coll.Sets[0]
	if set.Len() != 2 {
		Te.Fatalf("modulated structures are always expanded, got %d atoms", set.Len())
	}
	a, b := set.Atom(0), set.Atom(1)
	if a.Mod == nil || b.Mod == nil {
		Te.Fatal("atoms not modulated")
	}
	ua := 0.01 * math.Cos(2*math.Pi*0.15)
	ub := -0.01 * math.Cos(2*math.Pi*-0.35)
	if diff := cmp.Diff([3]float64{0.1 + ua, 0.2, 0.3}, a.Coords, approx); diff != "" {
		Te.Errorf("displacement: %s", diff)
	}
	if diff := cmp.Diff([3]float64{0.9 + ub, 0.8, 0.7}, b.Coords, approx); diff != "" {
		Te.Errorf("image displacement: %s", diff)
	}
	avg := readTest(Te, "modulated.cif", "MODAVERAGE").Sets[0]
	if diff := cmp.Diff([3]float64{0.1, 0.2, 0.3}, avg.Atom(0).Coords, approx); diff != "" || avg.Atom(0).Mod != nil {
		Te.Errorf("MODAVERAGE must keep the average structure: %s", diff)
	}
}

func TestOpenFileCompressed(Te *testing.T) {
	plain, err := os.ReadFile(filepath.Join("test", "water.cif"))
	if err != nil {
		Te.Fatal(err)
	}
	dir := Te.TempDir()
	path := filepath.Join(dir, "water.cif.gz")
	if err := os.WriteFile(path, gzipped(Te, plain), 0o644); err != nil {
		Te.Fatal(err)
	}
	coll, err := ReadFile(path, xtal.Options{})
	if err != nil {
		Te.Fatal(err)
	}
	if coll.Name != "water" || coll.NAtoms() != 2 {
		Te.Errorf("gzipped file read as %s with %d atoms", coll.Name, coll.NAtoms())
	}
}

func TestDecodeOperatorExpression(Te *testing.T) {
	cases := []struct {
		expr string
		want [][]string
	}{
		{"1", [][]string{{"1"}}},
		{"1,2,5", [][]string{{"1"}, {"2"}, {"5"}}},
		{"1-3", [][]string{{"1"}, {"2"}, {"3"}}},
		{"(1,2)(3,4)", [][]string{{"1", "3"}, {"1", "4"}, {"2", "3"}, {"2", "4"}}},
		{"(1-2)(P)", [][]string{{"1", "P"}, {"2", "P"}}},
		{"1(2,3)", [][]string{{"1", "2"}, {"1", "3"}}},
		{"(1,2)3", [][]string{{"1", "3"}, {"2", "3"}}},
	}
	for _, c := range cases {
		got, err := DecodeOperatorExpression(c.expr)
		if err != nil {
			Te.Errorf("%s: %v", c.expr, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			Te.Errorf("%s: %s", c.expr, diff)
		}
	}
	for _, bad := range []string{"", "(1,2", "1,,2", "3-1", "1)2", "()"} {
		if _, err := DecodeOperatorExpression(bad); err == nil {
			Te.Errorf("%q should not be accepted", bad)
		}
	}
}

func TestParseBondDistance(Te *testing.T) {
	cases := []struct {
		s      string
		d, dx  float64
		wantOK bool
	}{
		{"1.524(3)", 1.524, 0.003, true},
		{"1.524", 1.524, defaultBondTol, true},
		{"0.96(12)", 0.96, 0.12, true},
		{"?", 0, 0, false},
	}
	for _, c := range cases {
		d, dx, ok := parseBondDistance(c.s)
		if ok != c.wantOK || math.Abs(d-c.d) > 1e-9 || math.Abs(dx-c.dx) > 1e-9 {
			Te.Errorf("parseBondDistance(%q) = %v %v %v", c.s, d, dx, ok)
		}
	}
}

func TestMolecularAcrossBoundary(Te *testing.T) {
	text := "data_edge\n_cell_length_a 10\n_cell_length_b 10\n_cell_length_c 10\n" +
		"_cell_angle_alpha 90\n_cell_angle_beta 90\n_cell_angle_gamma 90\n" +
		"loop_\n_atom_site_label\n_atom_site_type_symbol\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\n" +
		"O1 O 0.020 0.5 0.5\nH1 H 0.924 0.5 0.5\n"
	coll, err := ReadNamed(strings.NewReader(text), "edge", xtal.ParseOptions("MOLECULAR"))
	if err != nil {
		Te.Fatal(err)
	}
	set := coll.Sets[0]
	if set.Len() != 2 || len(set.Bonds) != 1 {
		Te.Fatalf("expected one O-H molecule, got %d atoms and %d bonds", set.Len(), len(set.Bonds))
	}
	if diff := cmp.Diff([3]float64{-0.076, 0.5, 0.5}, set.Atom(1).Coords, approx); diff != "" {
		Te.Errorf("H1 not moved next to O1: %s", diff)
	}
	if set.Atom(0).Molecule != set.Atom(1).Molecule {
		Te.Error("both atoms must belong to the same molecule")
	}
}
