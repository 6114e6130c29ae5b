/*
 * operator.go, part of goxtal.
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

package symmetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/mat"
)

// Operator is a symmetry operation in 3+d dimensional (super)space, kept as an
// augmented (3+d+1)x(3+d+1) matrix. d is 0 for ordinary crystals.
type Operator struct {
	XYZ string //as given in the file
	dim int
	m   *mat.Dense
}

// Dim returns the dimension of the space the operator acts on, 3 plus the modulation dimension.
func (op *Operator) Dim() int { return op.dim }

// ModDim returns the modulation dimension of the operator.
func (op *Operator) ModDim() int { return op.dim - 3 }

// Matrix returns a copy of the augmented matrix of the operator.
func (op *Operator) Matrix() *mat.Dense {
	return mat.DenseCopyOf(op.m)
}

// Identity returns the identity operator in 3+d dimensions.
func Identity(modDim int) *Operator {
	dim := 3 + modDim
	m := mat.NewDense(dim+1, dim+1, nil)
	for i := 0; i <= dim; i++ {
		m.Set(i, i, 1)
	}
	op := &Operator{dim: dim, m: m}
	op.XYZ = op.String()
	return op
}

// NewOperator builds an operator from an augmented matrix, which is copied.
func NewOperator(m mat.Matrix) (*Operator, error) {
	r, c := m.Dims()
	if r != c || r < 4 {
		return nil, Error{fmt.Sprintf("an operator needs a square augmented matrix, got %dx%d", r, c), []string{"NewOperator"}}
	}
	op := &Operator{dim: r - 1, m: mat.DenseCopyOf(m)}
	op.XYZ = op.String()
	return op, nil
}

// ParseOperator parses operators in the algebraic, "xyz", form, such as "-x+1/2,y,-z" or
// "x1,x2,-x3,x4+1/2". The variables can be x, y, z (then t, u, v for the modulation dimensions)
// or x1...x6. The dimension of the operator is the number of comma-separated components.
func ParseOperator(xyz string) (*Operator, error) {
	s := strings.TrimSpace(xyz)
	s = strings.Trim(s, "'\"")
	comps := strings.Split(s, ",")
	dim := len(comps)
	if dim < 3 || dim > 6 {
		return nil, Error{fmt.Sprintf("operator %q has %d components", xyz, dim), []string{"ParseOperator"}}
	}
	m := mat.NewDense(dim+1, dim+1, nil)
	m.Set(dim, dim, 1)
	for i, c := range comps {
		coefs, trans, err := parseComponent(c, dim)
		if err != nil {
			return nil, errDecorate(Error{fmt.Sprintf("operator %q: %s", xyz, err.Error()), nil}, "ParseOperator")
		}
		for j, v := range coefs {
			m.Set(i, j, v)
		}
		m.Set(i, dim, trans)
	}
	return &Operator{XYZ: xyz, dim: dim, m: m}, nil
}

func varIndex(name string, dim int) (int, error) {
	idx := -1
	switch name {
	case "x", "a":
		idx = 0
	case "y", "b":
		idx = 1
	case "z", "c":
		idx = 2
	case "t":
		idx = 3
	case "u":
		idx = 4
	case "v":
		idx = 5
	default:
		if len(name) == 2 && name[0] == 'x' && name[1] >= '1' && name[1] <= '6' {
			idx = int(name[1] - '1')
		}
	}
	if idx < 0 || idx >= dim {
		return 0, fmt.Errorf("unknown variable %q", name)
	}
	return idx, nil
}

// parseComponent parses one component of an operator, such as "-x+y+1/2" or "2x4-0.25".
func parseComponent(s string, dim int) ([]float64, float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	coefs := make([]float64, dim)
	trans := 0.0
	sign := 1.0
	terms := 0
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ':
			i++
			continue
		case c == '+':
			i++
			continue
		case c == '-':
			sign = -sign
			i++
			continue
		}
		num, hasNum := 1.0, false
		if c == '.' || (c >= '0' && c <= '9') {
			j := i
			for j < len(s) && (s[j] == '.' || (s[j] >= '0' && s[j] <= '9')) {
				j++
			}
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, 0, err
			}
			if j < len(s) && s[j] == '/' {
				k := j + 1
				for k < len(s) && s[k] >= '0' && s[k] <= '9' {
					k++
				}
				d, err := strconv.ParseFloat(s[j+1:k], 64)
				if err != nil || d == 0 {
					return nil, 0, fmt.Errorf("bad fraction %q", s[i:k])
				}
				v /= d
				j = k
			}
			num, hasNum = v, true
			i = j
			if i < len(s) && s[i] == '*' {
				i++
			}
		}
		if i < len(s) && unicode.IsLetter(rune(s[i])) {
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			idx, err := varIndex(s[i:j], dim)
			if err != nil {
				return nil, 0, err
			}
			coefs[idx] += sign * num
			i = j
			//"x/2"
			if i < len(s) && s[i] == '/' {
				k := i + 1
				for k < len(s) && s[k] >= '0' && s[k] <= '9' {
					k++
				}
				d, err := strconv.ParseFloat(s[i+1:k], 64)
				if err != nil || d == 0 {
					return nil, 0, fmt.Errorf("bad divisor in %q", s)
				}
				coefs[idx] /= d
				i = k
			}
		} else if hasNum {
			trans += sign * num
		} else {
			return nil, 0, fmt.Errorf("unexpected character %q", s[i])
		}
		sign = 1
		terms++
	}
	if terms == 0 {
		return nil, 0, fmt.Errorf("empty component")
	}
	return coefs, trans, nil
}

// Apply applies the operator to a point with Dim() coordinates. Missing coordinates are taken as 0.
func (op *Operator) Apply(p []float64) []float64 {
	ret := make([]float64, op.dim)
	for i := 0; i < op.dim; i++ {
		v := op.m.At(i, op.dim)
		for j := 0; j < op.dim && j < len(p); j++ {
			v += op.m.At(i, j) * p[j]
		}
		ret[i] = v
	}
	return ret
}

// Apply3 applies the 3-dimensional part of the operator to a fractional position.
func (op *Operator) Apply3(p [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		ret[i] = op.m.At(i, op.dim)
		for j := 0; j < 3; j++ {
			ret[i] += op.m.At(i, j) * p[j]
		}
	}
	return ret
}

// Rotation3 returns the external, 3x3, rotational part of the operator (R_E).
func (op *Operator) Rotation3() [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = op.m.At(i, j)
		}
	}
	return r
}

// Rotation returns the full (3+d)x(3+d) rotational part of the operator.
func (op *Operator) Rotation() *mat.Dense {
	return mat.DenseCopyOf(op.m.Slice(0, op.dim, 0, op.dim))
}

// Translation returns the translational part of the operator.
func (op *Operator) Translation() []float64 {
	ret := make([]float64, op.dim)
	for i := range ret {
		ret[i] = op.m.At(i, op.dim)
	}
	return ret
}

// Equal returns true if both operators are the same, translations compared modulo lattice vectors.
func (op *Operator) Equal(o *Operator) bool {
	if op.dim != o.dim {
		return false
	}
	for i := 0; i < op.dim; i++ {
		for j := 0; j < op.dim; j++ {
			if math.Abs(op.m.At(i, j)-o.m.At(i, j)) > 1e-4 {
				return false
			}
		}
		d := op.m.At(i, op.dim) - o.m.At(i, op.dim)
		if math.Abs(d-math.Round(d)) > 1e-4 {
			return false
		}
	}
	return true
}

// Compose returns the operator that applies o first and then op.
func (op *Operator) Compose(o *Operator) *Operator {
	m := mat.NewDense(op.dim+1, op.dim+1, nil)
	m.Mul(op.m, o.m)
	ret := &Operator{dim: op.dim, m: m}
	ret.XYZ = ret.String()
	return ret
}

var varNames = [][]string{
	3: {"x", "y", "z"},
	4: {"x1", "x2", "x3", "x4"},
	5: {"x1", "x2", "x3", "x4", "x5"},
	6: {"x1", "x2", "x3", "x4", "x5", "x6"},
}

func fraction(v float64) string {
	for _, d := range []float64{1, 2, 3, 4, 6, 8, 12} {
		n := v * d
		if math.Abs(n-math.Round(n)) < 1e-4 {
			if d == 1 {
				return strconv.Itoa(int(math.Round(n)))
			}
			return fmt.Sprintf("%d/%d", int(math.Round(n)), int(d))
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String returns the operator in the canonical algebraic form.
func (op *Operator) String() string {
	names := varNames[op.dim]
	comps := make([]string, op.dim)
	for i := 0; i < op.dim; i++ {
		var b strings.Builder
		for j := 0; j < op.dim; j++ {
			v := op.m.At(i, j)
			if math.Abs(v) < 1e-6 {
				continue
			}
			switch {
			case v < 0:
				b.WriteByte('-')
			case b.Len() > 0:
				b.WriteByte('+')
			}
			if a := math.Abs(v); math.Abs(a-1) > 1e-6 {
				b.WriteString(fraction(a))
			}
			b.WriteString(names[j])
		}
		if t := op.m.At(i, op.dim); math.Abs(t) > 1e-6 {
			if t > 0 && b.Len() > 0 {
				b.WriteByte('+')
			}
			b.WriteString(fraction(t))
		}
		if b.Len() == 0 {
			b.WriteByte('0')
		}
		comps[i] = b.String()
	}
	return strings.Join(comps, ",")
}
