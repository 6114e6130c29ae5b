/*
 * modloops.go, part of goxtal.
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

package reader

import (
	"strings"

	"github.com/rmera/goxtal/cif"
	"github.com/rmera/goxtal/modulation"
)

// fourierCols are the fields of one of the three kinds of Fourier modulation loop.
// Each kind can give the terms in the same rows as the atom and wave vector, or in a
// separate loop of parameters that refer to the terms by id.
type fourierCols struct {
	kind                  modulation.Kind
	id, label, axis, wave int
	param, cos, sin       int
	modulus, phase        int
}

var (
	displaceCols = fourierCols{modulation.Displacement, dfID, dfLabel, dfAxis, dfWave, dfParamID, dfCos, dfSin, dfModulus, dfPhase}
	occCols      = fourierCols{modulation.Occupancy, ofID, ofLabel, cif.None, ofWave, ofParamID, ofCos, ofSin, ofModulus, ofPhase}
	uCols        = fourierCols{modulation.Tensor, ufID, ufLabel, ufElem, ufWave, ufParamID, ufCos, ufSin, ufModulus, ufPhase}
)

func (r *CifReader) displaceFourier() error { return r.fourierTerms(displaceCols) }
func (r *CifReader) occFourier() error      { return r.fourierTerms(occCols) }
func (r *CifReader) uFourier() error        { return r.fourierTerms(uCols) }

func (r *CifReader) fourierTerms(fc fourierCols) error {
	m, err := r.header(modKeys[:])
	if err != nil {
		return err
	}
	model := r.blk.first
	return r.rows(m, func(row *cif.Row) {
		var k modulation.Key
		if row.Has(fc.label) && row.Has(fc.wave) {
			wave, ok := row.Int(fc.wave)
			if !ok {
				r.warnf("bad wave vector id for %s", row.Str(fc.label))
				return
			}
			k = modulation.Key{Kind: fc.kind, Func: modulation.Fourier, Label: row.Str(fc.label), Index: wave, Model: model}
			if fc.axis != cif.None {
				k.Axis = strings.ToLower(row.Str(fc.axis))
				if k.Axis == "" {
					r.warnf("%s term of %s without axis, skipped", fc.kind, k.Label)
					return
				}
			}
			if id := row.Str(fc.id); id != "" {
				r.blk.fourier[fc.kind.String()+"|"+id] = k
			}
		} else {
			pid := firstStr(row, fc.param, fc.id)
			var ok bool
			k, ok = r.blk.fourier[fc.kind.String()+"|"+pid]
			if !ok {
				r.warnf("%s parameters for unknown term %q, skipped", fc.kind, pid)
				return
			}
		}
		c, okc := row.Float(fc.cos)
		s, oks := row.Float(fc.sin)
		if okc || oks {
			if !okc {
				c = 0
			}
			if !oks {
				s = 0
			}
			r.mods.Add(k, modulation.Params{c, s, 0})
			return
		}
		amp, oka := row.Float(fc.modulus)
		phase, okp := row.Float(fc.phase)
		if oka && okp {
			r.mods.AddModulusPhase(k, amp, phase)
		}
	})
}

// waveVectors reads the cell wave vectors, q_1 to q_d.
func (r *CifReader) waveVectors() error {
	m, err := r.header(modKeys[:])
	if err != nil {
		return err
	}
	if !m.HasAll(wvX, wvY, wvZ) {
		r.warnf("%s loop without components, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	seq := 0
	return r.rows(m, func(row *cif.Row) {
		seq++
		n, ok := row.Int(wvSeqID)
		if !ok {
			n = seq
		}
		p, ok := rowVector(row, wvX, wvY, wvZ)
		if !ok {
			r.warnf("bad wave vector %d", n)
			return
		}
		r.mods.Add(modulation.Key{Kind: modulation.WaveVector, Index: n, Model: r.blk.first}, p)
	})
}

// fourierVectors reads the wave vectors the atomic Fourier terms refer to, given as components,
// as coefficients of the cell wave vectors, or both.
func (r *CifReader) fourierVectors() error {
	m, err := r.header(modKeys[:])
	if err != nil {
		return err
	}
	model := r.blk.first
	var qcols []int
	for _, id := range []int{fwQ1, fwQ2, fwQ3} {
		if m.Has(id) {
			qcols = append(qcols, id)
		}
	}
	return r.rows(m, func(row *cif.Row) {
		n, ok := row.Int(fwSeqID)
		if !ok {
			r.warnf("Fourier wave vector without id, skipped")
			return
		}
		if p, ok := rowVector(row, fwX, fwY, fwZ); ok {
			r.mods.Add(modulation.Key{Kind: modulation.FourierVector, Index: n, Model: model}, p)
		}
		if len(qcols) == 0 {
			return
		}
		coefs := make([]float64, 0, len(qcols))
		for _, id := range qcols {
			v, ok := row.Float(id)
			if !ok {
				return
			}
			coefs = append(coefs, v)
		}
		r.mods.AddCoefficients(model, n, coefs)
	})
}

func rowVector(row *cif.Row, x, y, z int) (modulation.Params, bool) {
	a, ok1 := row.Float(x)
	b, ok2 := row.Float(y)
	c, ok3 := row.Float(z)
	return modulation.Params{a, b, c}, ok1 && ok2 && ok3
}

// occSpecial reads crenel occupancy functions.
func (r *CifReader) occSpecial() error {
	m, err := r.header(modKeys[:])
	if err != nil {
		return err
	}
	return r.rows(m, func(row *cif.Row) {
		label := row.Str(osLabel)
		c, okc := row.Float(osCrenelC)
		w, okw := row.Float(osCrenelW)
		if label == "" || !okc || !okw {
			return
		}
		r.mods.Add(modulation.Key{Kind: modulation.Occupancy, Func: modulation.Crenel, Label: label, Model: r.blk.first}, modulation.Params{c, w, 0})
	})
}

// displaceSpecial reads sawtooth displacement functions, one record per axis with a
// non-zero amplitude.
func (r *CifReader) displaceSpecial() error {
	m, err := r.header(modKeys[:])
	if err != nil {
		return err
	}
	return r.rows(m, func(row *cif.Row) {
		label := row.Str(dsLabel)
		c, okc := row.Float(dsSawC)
		w, okw := row.Float(dsSawW)
		if label == "" || !okc || !okw {
			return
		}
		for i, id := range []int{dsSawAx, dsSawAy, dsSawAz} {
			a, ok := row.Float(id)
			if !ok || a == 0 {
				continue
			}
			k := modulation.Key{Kind: modulation.Displacement, Func: modulation.Sawtooth, Axis: []string{"x", "y", "z"}[i], Label: label, Model: r.blk.first}
			r.mods.Add(k, modulation.Params{c, w, a})
		}
	})
}

// subsystems reads the codes and W matrices of the subsystems of a composite crystal.
func (r *CifReader) subsystems() error {
	m, err := r.header(modKeys[:])
	if err != nil {
		return err
	}
	type elem struct{ col, i, j int }
	var elems []elem
	n := 0
	for c := 0; c < m.NCols(); c++ {
		if i, j, ok := matrixIndex(m.Key(c), "_cell_subsystem_matrix_w"); ok {
			elems = append(elems, elem{c, i - 1, j - 1})
			n = max(n, i, j)
		}
	}
	if !m.Has(subCode) || n < 4 {
		r.warnf("%s loop without codes or W matrices, skipped", r.ctx.rawKey)
		return m.Skip(r.t)
	}
	return r.rows(m, func(row *cif.Row) {
		code := row.Str(subCode)
		w := make([][]float64, n)
		for i := range w {
			w[i] = make([]float64, n)
		}
		for _, e := range elems {
			if v, ok := cif.ParseFloat(row.Col(e.col).Value); ok {
				w[e.i][e.j] = v
			}
		}
		if err := r.mods.AddSubsystem(r.blk.first, code, w); err != nil {
			r.warnf("%s", err)
		}
	})
}
