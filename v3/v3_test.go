package v3

import (
	"math"
	"testing"
)

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 6 {
		Te.Errorf("expected 6 vectors, got %d", A.NVecs())
	}
	B := Zeros(3)
	cind := []int{1, 3, 5}
	if err = B.SomeVecsSafe(A, cind); err != nil {
		Te.Fatal(err)
	}
	if B.Vec(1) != [3]float64{10, 11, 12} {
		Te.Errorf("wrong vector %v", B.Vec(1))
	}
	B.Set(1, 1, 55)
	A.SetVecs(B, cind)
	if A.At(3, 1) != 55 {
		Te.Errorf("SetVecs did not copy the change: %v", A)
	}
	if err := B.SomeVecsSafe(A, []int{1, 30, 2}); err == nil {
		Te.Error("an index out of range must be an error")
	}
	if _, err := NewMatrix([]float64{1, 2}); err == nil {
		Te.Error("2 elements can't make a Matrix")
	}
}

func TestGeo(Te *testing.T) {
	A := FromVecs([][3]float64{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0}})
	if c := A.Centroid(); c != [3]float64{1, 1, 0} {
		Te.Errorf("bad centroid %v", c)
	}
	if d := A.Distance(0, 2); math.Abs(d-math.Sqrt(8)) > 1e-12 {
		Te.Errorf("bad distance %v", d)
	}
	A.AddVec(A, [3]float64{1, 1, 1})
	if A.Vec(0) != [3]float64{1, 1, 1} {
		Te.Errorf("AddVec: %v", A)
	}
	A.SubVec(A, [3]float64{1, 1, 1})
	i, d := A.Closest([3]float64{1.9, 0.2, 0})
	if i != 1 || d > 0.3 {
		Te.Errorf("closest: %d %v", i, d)
	}
	v := A.VecView(3)
	v.Set(0, 2, 7)
	if A.At(3, 2) != 7 {
		Te.Error("changes in a view must be seen in the matrix")
	}
	if A.View(1, 2).NVecs() != 2 {
		Te.Error("bad view")
	}
}
