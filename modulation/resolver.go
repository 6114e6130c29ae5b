/*
 * resolver.go, part of goxtal.
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

package modulation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/symmetry"
	"github.com/tliron/commonlog"
	"gonum.org/v1/gonum/mat"
)

// Noter receives the decisions and problems found while resolving modulations.
// *xtal.AtomSetCollection is a Noter.
type Noter interface {
	Notef(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type ssKey struct {
	model int
	code  string
}

// Resolver collects the modulation records of a file, and applies them to each atom set once it is complete.
// Records are kept per model, so the records of a data block never leak into the next one.
type Resolver struct {
	opts       xtal.Options
	notes      Noter
	log        commonlog.Logger
	modDim     map[int]int
	terms      map[Key]Params
	order      []Key
	coefs      map[Key][]float64 //given Fourier wave vector coefficients, by FourierVector key
	subsystems map[ssKey]*Subsystem
	resolved   map[int]bool
}

// NewResolver returns an empty resolver. notes can be nil.
func NewResolver(opts xtal.Options, notes Noter) *Resolver {
	return &Resolver{
		opts:       opts,
		notes:      notes,
		log:        xtal.Logger("modulation"),
		modDim:     make(map[int]int),
		terms:      make(map[Key]Params),
		coefs:      make(map[Key][]float64),
		subsystems: make(map[ssKey]*Subsystem),
		resolved:   make(map[int]bool),
	}
}

func (r *Resolver) notef(format string, args ...interface{}) {
	if r.notes != nil {
		r.notes.Notef(format, args...)
		return
	}
	r.log.Infof(format, args...)
}

func (r *Resolver) warnf(format string, args ...interface{}) {
	if r.notes != nil {
		r.notes.Warnf(format, args...)
		return
	}
	r.log.Warningf(format, args...)
}

// SetModDim sets the modulation dimension declared for a model.
func (r *Resolver) SetModDim(model, d int) {
	r.modDim[model] = d
}

// ModDim returns the modulation dimension of a model: the declared one or, failing that,
// the number of cell wave vectors read.
func (r *Resolver) ModDim(model int) int {
	if d, ok := r.modDim[model]; ok && d > 0 {
		return d
	}
	d := 0
	for _, k := range r.order {
		if k.Model == model && k.Kind == WaveVector && k.Index > d {
			d = k.Index
		}
	}
	return d
}

// Add stores a record. Records whose parameters are all zero, or not numbers, are discarded,
// and false is returned. A record with a key already present replaces it.
func (r *Resolver) Add(k Key, p Params) bool {
	if p.Empty() {
		return false
	}
	if k.Kind == Tensor {
		k.Axis = strings.ToLower(k.Axis)
	}
	if _, ok := r.terms[k]; !ok {
		r.order = append(r.order, k)
	}
	r.terms[k] = p
	return true
}

// AddModulusPhase stores a Fourier record given as modulus and phase (in cycles).
func (r *Resolver) AddModulusPhase(k Key, amp, phase float64) bool {
	return r.Add(k, FromModulusPhase(amp, phase))
}

// AddCoefficients records the Fourier wave vector index of a model as the given combination of the cell wave vectors.
func (r *Resolver) AddCoefficients(model, index int, coefs []float64) {
	r.coefs[Key{Kind: FourierVector, Index: index, Model: model}] = append([]float64(nil), coefs...)
}

// AddSubsystem registers a subsystem of a composite structure. Atoms belong to the subsystem
// when their alternate location is the subsystem code.
func (r *Resolver) AddSubsystem(model int, code string, w [][]float64) error {
	s, err := NewSubsystem(code, w)
	if err != nil {
		return errDecorate(err, "AddSubsystem")
	}
	r.subsystems[ssKey{model, code}] = s
	return nil
}

// Subsystems returns the codes of the subsystems of a model, sorted.
func (r *Resolver) Subsystems(model int) []string {
	var ret []string
	for k := range r.subsystems {
		if k.model == model {
			ret = append(ret, k.code)
		}
	}
	sort.Strings(ret)
	return ret
}

// HasModulation returns true if any record was stored for the model.
func (r *Resolver) HasModulation(model int) bool {
	if r.modDim[model] > 0 {
		return true
	}
	for _, k := range r.order {
		if k.Model == model {
			return true
		}
	}
	return false
}

// Resolved returns true if the model's modulation was already applied.
func (r *Resolver) Resolved(model int) bool { return r.resolved[model] }

// WaveVectors returns the cell wave vectors of a model, in reciprocal lattice units, and false if some of the
// d needed are missing.
func (r *Resolver) WaveVectors(model int) ([][3]float64, bool) {
	d := r.ModDim(model)
	q := make([][3]float64, d)
	for i := range q {
		p, ok := r.terms[Key{Kind: WaveVector, Index: i + 1, Model: model}]
		if !ok {
			return q, false
		}
		q[i] = [3]float64(p)
	}
	return q, true
}

// SymmetryFor returns the symmetry and wave vectors that apply to atoms with the given alternate
// location code: those of the subsystem with that code if there is one, or parent and q otherwise.
func (r *Resolver) SymmetryFor(model int, code string, parent *symmetry.Symmetry, q [][3]float64) (*symmetry.Symmetry, [][3]float64) {
	s, ok := r.subsystems[ssKey{model, code}]
	if !ok || code == "" {
		return parent, q
	}
	sym, sigma, err := s.Symmetry(parent, q)
	if err != nil {
		return parent, q
	}
	return sym, sigma
}

// harmonics resolves the Fourier wave vectors of the model into coefficient vectors.
func (r *Resolver) harmonics(model int, q [][3]float64) map[int][]float64 {
	ret := make(map[int][]float64)
	for k, c := range r.coefs {
		if k.Model == model {
			ret[k.Index] = c
		}
	}
	for _, k := range r.order {
		if k.Model != model || k.Kind != FourierVector {
			continue
		}
		if _, ok := ret[k.Index]; ok {
			continue
		}
		c, ok := FindCoefficients([3]float64(r.terms[k]), q)
		if !ok {
			r.warnf("modulation: Fourier wave vector %d %v is not a combination of the cell wave vectors, its terms are dropped", k.Index, r.terms[k])
			continue
		}
		ret[k.Index] = c
	}
	return ret
}

// coefsFor returns the coefficients of the Fourier wave vector index. Without explicit
// Fourier wave vectors (an empty h), index i refers to the i-th cell wave vector.
func coefsFor(h map[int][]float64, index, d int) ([]float64, bool) {
	if c, ok := h[index]; ok {
		return c, true
	}
	if len(h) > 0 || index < 1 || index > d {
		return nil, false
	}
	c := make([]float64, d)
	c[index-1] = 1
	return c, true
}

// functions builds, from the atomic records of the model, the modulation of each atom label.
func (r *Resolver) functions(model int, h map[int][]float64, d int) map[string]*atomModulation {
	ret := make(map[string]*atomModulation)
	get := func(label string) *atomModulation {
		m, ok := ret[label]
		if !ok {
			m = &atomModulation{}
			ret[label] = m
		}
		return m
	}
	for _, k := range r.order {
		if k.Model != model {
			continue
		}
		switch k.Kind {
		case WaveVector, FourierVector:
			continue
		}
		f := &Function{Func: k.Func, Index: k.Index, P: r.terms[k]}
		if k.Func == Fourier {
			if r.opts.ModSelect > 0 && k.Index != r.opts.ModSelect {
				continue
			}
			c, ok := coefsFor(h, k.Index, d)
			if !ok {
				r.warnf("modulation: no wave vector %d for %s, term dropped", k.Index, k)
				continue
			}
			f.Coefs = c
		}
		switch k.Kind {
		case Occupancy:
			if k.Func == Crenel {
				get(k.Label).crenel = f
				continue
			}
			m := get(k.Label)
			m.occ = append(m.occ, f)
		case Displacement:
			i, ok := axisIndex[strings.ToLower(k.Axis)]
			if !ok {
				r.warnf("modulation: bad axis %q in %s", k.Axis, k)
				continue
			}
			if !r.opts.WantsAxis(k.Axis) {
				continue
			}
			m := get(k.Label)
			m.disp[i] = append(m.disp[i], f)
		case Tensor:
			i, ok := tensorIndex[k.Axis]
			if !ok {
				r.warnf("modulation: bad tensor component %q in %s", k.Axis, k)
				continue
			}
			m := get(k.Label)
			m.tensor[i] = append(m.tensor[i], f)
		}
	}
	return ret
}

// Resolve applies the modulation records of the model to the atoms of set, whose Symmetry must be final.
// Atoms get their modulated position, occupancy and displacement tensor, and a Mod field that records
// what was done. Resolving a model a second time does nothing. It returns the number of modulated atoms.
func (r *Resolver) Resolve(set *xtal.AtomSet, model int) int {
	if r.resolved[model] {
		return 0
	}
	r.resolved[model] = true
	if !r.HasModulation(model) {
		return 0
	}
	d := r.ModDim(model)
	q, ok := r.WaveVectors(model)
	if d == 0 || !ok {
		r.warnf("modulation: %d-dimensional modulation without all its cell wave vectors, not applied", d)
		return 0
	}
	if set.Symmetry == nil || set.Cell() == nil {
		r.warnf("modulation: no unit cell for %s, not applied", set.Name)
		return 0
	}
	r.notef("modulation dimension %d", d)
	for i, v := range q {
		r.notef("wave vector q%d = (%.5f, %.5f, %.5f)", i+1, v[0], v[1], v[2])
	}
	h := r.harmonics(model, q)
	idx := make([]int, 0, len(h))
	for i := range h {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		r.notef("Fourier wave vector %d = %v q", i, h[i])
	}
	for _, code := range r.Subsystems(model) {
		sym, sigma := r.SymmetryFor(model, code, set.Symmetry, q)
		if sym == set.Symmetry {
			r.warnf("modulation: could not build the symmetry of subsystem %s", code)
			continue
		}
		a := sym.Cell.Params()
		r.notef("subsystem %s: cell %.4f %.4f %.4f %.2f %.2f %.2f, q = %v", code, a[0], a[1], a[2], a[3], a[4], a[5], sigma)
	}
	funcs := r.functions(model, h, d)
	if r.opts.ModAverage {
		r.notef("modulation not applied, average structure kept")
		return 0
	}
	n := 0
	for i, at := range set.Atoms {
		m, ok := funcs[at.Name]
		if !ok || m.empty() {
			continue
		}
		sym, sigma := r.SymmetryFor(model, at.AltLoc, set.Symmetry, q)
		if r.apply(set, i, m, sym, sigma) {
			n++
		}
	}
	r.notef("%d modulated atoms", n)
	if r.opts.ModCell != "" {
		r.useSubsystemCell(set, model, q)
	}
	return n
}

// apply evaluates the modulation of the i-th atom of set, generated by an operator of sym.
func (r *Resolver) apply(set *xtal.AtomSet, i int, m *atomModulation, sym *symmetry.Symmetry, sigma [][3]float64) bool {
	at := set.Atoms[i]
	k := at.SymOps.First()
	if r.opts.ModLast {
		k = at.SymOps.Last()
	}
	if k < 0 || k >= sym.Len() {
		k = 0
	}
	op := sym.Operator(k)
	pos, ok := set.Fractional(i)
	if !ok {
		return false
	}
	x4, err := internalCoordinates(op, at.Site, pos, sigma)
	if err != nil {
		r.warnf("modulation: atom %s: %s", at.Name, err.Error())
		return false
	}
	mod := &xtal.Modulation{X4: x4, Operator: k, Occupancy: math.NaN()}
	re := op.Rotation3()
	if u, ok := m.displacement(x4); ok {
		u = rotateVector(re, u)
		mod.Displacement = u
		if at.Fractional {
			for j := range at.Coords {
				at.Coords[j] += u[j]
			}
		} else {
			c := sym.Cell.ToCartesianVector(u)
			for j := range at.Coords {
				at.Coords[j] += c[j]
			}
		}
	}
	if o, ok := m.occupancy(at.Occupancy, x4); ok {
		mod.Occupancy = o
		at.Occupancy = o
	}
	if t, ok := m.tensorDelta(x4); ok {
		t = rotateTensor(re, t)
		mod.Tensor = &t
		if at.Aniso == nil {
			at.Aniso = xtal.NewAniso(xtal.AnisoU)
		}
		for j := range t {
			at.Aniso.T[j] += t[j]
		}
	}
	at.Mod = mod
	return true
}

// internalCoordinates returns the internal coordinates at which the functions of the asymmetric unit
// atom at site are evaluated, for its image at pos generated by op:
// x4 = R_I^-1 (sigma pos - R_M site - v_I).
func internalCoordinates(op *symmetry.Operator, site, pos [3]float64, sigma [][3]float64) ([]float64, error) {
	d := len(sigma)
	if op.ModDim() != d {
		return nil, Error{fmt.Sprintf("operator %s has modulation dimension %d, expected %d", op.XYZ, op.ModDim(), d), []string{"internalCoordinates"}}
	}
	rot := op.Rotation()
	t := op.Translation()
	rhs := mat.NewVecDense(d, nil)
	for j := 0; j < d; j++ {
		v := -t[3+j]
		for k := 0; k < 3; k++ {
			v += sigma[j][k]*pos[k] - rot.At(3+j, k)*site[k]
		}
		rhs.SetVec(j, v)
	}
	ri := mat.DenseCopyOf(rot.Slice(3, 3+d, 3, 3+d))
	var x mat.VecDense
	if err := x.SolveVec(ri, rhs); err != nil {
		return nil, Error{"singular internal rotation in " + op.XYZ, []string{"internalCoordinates"}}
	}
	ret := make([]float64, d)
	for j := range ret {
		ret[j] = x.AtVec(j)
	}
	return ret, nil
}

// useSubsystemCell makes the cell of the subsystem requested with MODCELL the cell of the set.
// Fractional coordinates are moved to the new basis.
func (r *Resolver) useSubsystemCell(set *xtal.AtomSet, model int, q [][3]float64) {
	code := r.opts.ModCell
	if _, ok := r.subsystems[ssKey{model, code}]; !ok {
		r.warnf("modulation: MODCELL %s: no such subsystem", code)
		return
	}
	sym, _ := r.SymmetryFor(model, code, set.Symmetry, q)
	if sym == set.Symmetry {
		return
	}
	old := set.Cell()
	for _, at := range set.Atoms {
		if at.Fractional {
			at.Coords = sym.Cell.ToFractional(old.ToCartesian(at.Coords))
		}
	}
	set.Symmetry = sym
	r.notef("using the cell of subsystem %s", code)
}
