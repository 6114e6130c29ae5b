package symmetry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseOperator(Te *testing.T) {
	cases := []struct {
		xyz  string
		in   []float64
		want []float64
	}{
		{"x,y,z", []float64{0.1, 0.2, 0.3}, []float64{0.1, 0.2, 0.3}},
		{"-x+1/2,y,-z", []float64{0.1, 0.2, 0.3}, []float64{0.4, 0.2, -0.3}},
		{"1/2+x, 1/2-y, z", []float64{0.1, 0.2, 0.3}, []float64{0.6, 0.3, 0.3}},
		{"x-y,x,z+0.25", []float64{0.5, 0.2, 0}, []float64{0.3, 0.5, 0.25}},
		{"x1,x2,-x3,x4+1/2", []float64{0.1, 0.2, 0.3, 0.1}, []float64{0.1, 0.2, -0.3, 0.6}},
		{"X,Y,Z,-T", []float64{0.1, 0.2, 0.3, 0.4}, []float64{0.1, 0.2, 0.3, -0.4}},
	}
	for _, c := range cases {
		op, err := ParseOperator(c.xyz)
		if err != nil {
			Te.Errorf("%s: %v", c.xyz, err)
			continue
		}
		got := op.Apply(c.in)
		if diff := cmp.Diff(c.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			Te.Errorf("%s mismatch (-want +got):\n%s", c.xyz, diff)
		}
	}
	for _, bad := range []string{"x,y", "x,y,w", "x,y,", "x,y,z,x5"} {
		if _, err := ParseOperator(bad); err == nil {
			Te.Errorf("%q should not parse", bad)
		}
	}
}

func TestOperatorString(Te *testing.T) {
	op, err := ParseOperator("1/2-x, y+1/2 ,-z")
	if err != nil {
		Te.Fatal(err)
	}
	if s := op.String(); s != "-x+1/2,y+1/2,-z" {
		Te.Errorf("got %q", s)
	}
	op2, _ := ParseOperator(op.String())
	if !op.Equal(op2) {
		Te.Error("canonical form does not parse back to the same operator")
	}
	op3, _ := ParseOperator("-x-1/2,y-1/2,-z+1")
	if !op.Equal(op3) {
		Te.Error("operators that differ in a lattice translation should be equal")
	}
}

func TestAddOperatorDedup(Te *testing.T) {
	s := New(nil, 0)
	for _, xyz := range []string{"x,y,z", "-x,-y,-z", "-x,-y,-z", "x+1,y,z"} {
		if _, err := s.AddOperator(xyz); err != nil {
			Te.Fatal(err)
		}
	}
	if s.Len() != 2 {
		Te.Errorf("expected 2 operators, got %d", s.Len())
	}
	s = New(nil, 0)
	if _, err := s.AddOperator("x,y,z,t+1/2"); err != nil {
		Te.Fatal(err)
	}
	if s.ModDim() != 1 || s.Len() != 2 {
		Te.Errorf("bad superspace symmetry: moddim %d, %d ops", s.ModDim(), s.Len())
	}
	if _, err := s.AddOperator("x,y,z"); err == nil {
		Te.Error("mixing dimensions should fail")
	}
}

func TestUnitCell(Te *testing.T) {
	u, err := NewUnitCell(10, 10, 10, 90, 90, 90)
	if err != nil {
		Te.Fatal(err)
	}
	c := u.ToCartesian([3]float64{0.5, 0.25, 0.1})
	if diff := cmp.Diff([3]float64{5, 2.5, 1}, c, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		Te.Error(diff)
	}
	if math.Abs(u.Volume()-1000) > 1e-6 {
		Te.Errorf("volume %v", u.Volume())
	}
	u, err = NewUnitCell(5, 6, 7, 80, 95, 110)
	if err != nil {
		Te.Fatal(err)
	}
	f := [3]float64{0.3, -0.2, 0.9}
	back := u.ToFractional(u.ToCartesian(f))
	if diff := cmp.Diff(f, back, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		Te.Error(diff)
	}
	v, err := NewUnitCellFromVectors(u.Vectors())
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff(u.Params(), v.Params(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		Te.Error(diff)
	}
	if _, err := NewUnitCell(5, 6, 7, 10, 10, 150); err == nil {
		Te.Error("impossible angles accepted")
	}
}

func TestExpand(Te *testing.T) {
	u, _ := NewUnitCell(10, 10, 10, 90, 90, 90)
	s := New(u, 0)
	s.AddOperator("-x,-y,-z")
	s.AddOperator("x+1/2,y+1/2,z")
	imgs := s.Expand([][3]float64{{0, 0, 0}, {0.1, 0.2, 0.3}}, 0.01)
	//The atom in the origin sits on the inversion center.
	if len(imgs) != 2+3 {
		Te.Fatalf("expected 5 images, got %d", len(imgs))
	}
	if imgs[0].Ops.Count() != 2 || imgs[0].Ops.First() != 0 || imgs[0].Ops.Last() != 1 {
		Te.Errorf("bad operator set for the special position: %v", imgs[0].Ops.Indexes())
	}
	want := [3]float64{0.9, 0.8, 0.7}
	if diff := cmp.Diff(want, imgs[3].Pos, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		Te.Error(diff)
	}
	for _, im := range imgs {
		for _, v := range im.Pos {
			if v < 0 || v >= 1 {
				Te.Errorf("image outside the cell: %v", im.Pos)
			}
		}
	}
}

func TestCheckDistance(Te *testing.T) {
	u, _ := NewUnitCell(10, 10, 10, 90, 90, 90)
	s := New(u, 0)
	ok, t := s.CheckDistance([3]float64{0.05, 0, 0}, [3]float64{0.95, 0, 0}, 1.0, 0.01, 1)
	if !ok || t != [3]float64{-1, 0, 0} {
		Te.Errorf("expected a bond through the cell face, got %v %v", ok, t)
	}
	if ok, _ := s.CheckDistance([3]float64{0.05, 0, 0}, [3]float64{0.95, 0, 0}, 1.0, 0.01, 0); ok {
		Te.Error("no images allowed, the atoms are 9 A apart")
	}
}

func TestOpSet(Te *testing.T) {
	var s OpSet
	if s.First() != -1 || s.Last() != -1 {
		Te.Error("empty set")
	}
	s.Set(3)
	s.Set(70)
	s.Set(0)
	if s.First() != 0 || s.Last() != 70 || s.Count() != 3 || !s.Has(3) || s.Has(4) {
		Te.Errorf("bad set %v", s.Indexes())
	}
}
