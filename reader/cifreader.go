/*
 * cifreader.go, part of goxtal.
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
	"fmt"
	"io"
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
	"github.com/rmera/goxtal/modulation"
	"github.com/rmera/goxtal/symmetry"
	"github.com/tliron/commonlog"
	"gonum.org/v1/gonum/mat"
)

// state of the CifReader.
type state int

const (
	awaitKey    state = iota //before the first data block
	inDataBlock              //reading data names and values of a block
	inLoop                   //reading the rows of a loop
	skipping                 //in a data block not selected with MODEL
)

// parseContext is what the category handlers share while one of them runs.
type parseContext struct {
	key    string //normalized first data name of the loop, or the data name being handled
	rawKey string //the same, as written in the file
	fields *cif.FieldMap
	row    cif.Row
}

// block holds what a data block declares for all of its atom sets.
type block struct {
	name       string
	sets       []*xtal.AtomSet
	first      int //collection index of the first set, which keys the modulation records
	model      int //current mmCIF model number, 0 before the first atom
	cell       [6]float64
	cellSet    [6]bool
	fracMat    [3][3]float64
	fracVec    [3]float64
	nFracMat   int
	sym        *symmetry.Symmetry
	symops     []string
	spaceGroup string
	hall       string
	charges    map[string]float64
	geomBonds  []bondCandidate
	compBonds  map[string][]compBond
	conns      []connRecord
	opers      map[string]*mat.Dense
	assemblies []assemblyGen
	structures []*xtal.SecondaryStructure
	sites      map[string][]string
	fourier    map[string]modulation.Key //Fourier term definitions waiting for their parameters, by kind and id
	chemComp   bool                      //atoms came from a _chem_comp_atom loop
}

func newBlock(name string, first int) *block {
	return &block{
		name:      name,
		first:     first,
		charges:   make(map[string]float64),
		compBonds: make(map[string][]compBond),
		opers:     make(map[string]*mat.Dense),
		sites:     make(map[string][]string),
		fourier:   make(map[string]modulation.Key),
	}
}

// symmetry returns the symmetry that collects the operators of the block, creating it if needed.
func (b *block) symmetry() *symmetry.Symmetry {
	if b.sym == nil {
		b.sym = symmetry.New(nil, 0)
	}
	return b.sym
}

// CifReader is the state machine that reads CIF and mmCIF files. It pulls tokens from a
// cif.Tokenizer, and hands each loop to the handler of its category.
type CifReader struct {
	Name    string
	opts    xtal.Options
	mm      bool
	t       *cif.Tokenizer
	file    *cif.Tokenizer //tokenizer of the input, t is a different one while a single-row category is handled
	coll    *xtal.AtomSetCollection
	mods    *modulation.Resolver
	log     commonlog.Logger
	state   state
	ctx     parseContext
	blk     *block
	nBlocks int
	done    bool
}

// NewCifReader returns a reader for a file called name. mm enables the mmCIF-only categories.
func NewCifReader(name string, opts xtal.Options, mm bool) *CifReader {
	r := &CifReader{Name: name, opts: opts, mm: mm, log: xtal.Logger("reader")}
	r.coll = xtal.NewAtomSetCollection(name)
	r.mods = modulation.NewResolver(opts, r.coll)
	return r
}

func (r *CifReader) notef(format string, args ...interface{}) {
	r.coll.Notef(format, args...)
}

func (r *CifReader) warnf(format string, args ...interface{}) {
	r.coll.Warnf("line %d: %s", r.file.LineNo(), fmt.Sprintf(format, args...))
}

// Read reads the whole input. The collection is returned also with an error,
// but then only the data blocks before the current one are complete.
func (r *CifReader) Read(src cif.LineSource) (*xtal.AtomSetCollection, error) {
	r.t = cif.NewTokenizer(src)
	r.file = r.t
	if r.opts.CIF2 {
		r.t.SetCIF2(true)
	}
	r.t.Warn = func(line int, msg string) {
		r.coll.Warnf("line %d: %s", line, msg)
	}
	if r.mm {
		r.coll.SetInfo("fileType", MMCIF.String())
	} else {
		r.coll.SetInfo("fileType", CIF.String())
	}
	for !r.done {
		tok, err := r.t.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return r.coll, xtal.ErrDecorate(err, "CifReader.Read")
		}
		if err := r.process(tok); err != nil {
			return r.coll, xtal.ErrDecorate(err, "CifReader.Read")
		}
	}
	r.endBlock()
	if r.t.CIF2() {
		r.coll.SetInfo("cif2", true)
	}
	if s := r.t.Script(); s != "" {
		r.coll.SetInfo("jmolscript", s)
	}
	if n := r.coll.RemoveEmpty(); n > 0 {
		r.log.Debugf("%s: %d empty atom sets dropped", r.Name, n)
	}
	return r.coll, nil
}

// process handles a token read outside of any loop.
func (r *CifReader) process(tok cif.Token) error {
	if tok.Kind == cif.Bare {
		l := strings.ToLower(tok.Value)
		switch {
		case strings.HasPrefix(l, "data_"):
			r.newBlock(tok.Value[5:])
			return nil
		case l == "loop_":
			return r.loop()
		case strings.HasPrefix(l, "save_"):
			return r.skipFrame()
		case l == "global_" || l == "stop_":
			return nil
		case tok.IsKey():
			return r.keyValue(tok)
		}
	}
	r.warnf("value %q outside a loop, skipped", shorten(tok.Value))
	return nil
}

func shorten(s string) string {
	if len(s) > 30 {
		return s[:27] + "..."
	}
	return s
}

// newBlock closes the current data block and opens a new one, unless the model filter
// leaves it out.
func (r *CifReader) newBlock(name string) {
	r.endBlock()
	r.nBlocks++
	if !r.mm && !r.opts.WantsModel(r.nBlocks) {
		r.state = skipping
		if last := r.opts.LastModel(); last > 0 && r.nBlocks > last {
			r.done = true
		}
		return
	}
	r.state = inDataBlock
	r.coll.NewAtomSet(name)
	r.blk = newBlock(name, r.coll.CurrentIndex())
	r.blk.sets = append(r.blk.sets, r.coll.Current())
}

// ensureBlock opens an unnamed block for data that comes before any data_ line.
func (r *CifReader) ensureBlock() {
	if r.blk == nil && r.state == awaitKey {
		r.newBlock(r.Name)
	}
}

func (r *CifReader) endBlock() {
	if r.blk == nil {
		return
	}
	r.finalize()
	r.blk = nil
}

// current returns the atom set atoms are added to.
func (r *CifReader) current() *xtal.AtomSet {
	return r.blk.sets[len(r.blk.sets)-1]
}

// setModel makes the mmCIF model number n the current one, opening a new atom set if
// n is not the model of the current set.
func (r *CifReader) setModel(n int) {
	b := r.blk
	if n == b.model {
		return
	}
	if b.model == 0 || r.current().Len() == 0 {
		b.model = n
		r.current().Info["modelNumber"] = n
		return
	}
	b.model = n
	set := r.coll.NewAtomSet(fmt.Sprintf("%s model %d", b.name, n))
	set.Info["modelNumber"] = n
	b.sets = append(b.sets, set)
}

// skipFrame consumes a save frame, up to its closing save_.
func (r *CifReader) skipFrame() error {
	for {
		tok, err := r.t.Next()
		if err == io.EOF {
			r.warnf("save frame not closed")
			return nil
		}
		if err != nil {
			return err
		}
		if tok.Kind == cif.Bare && strings.EqualFold(tok.Value, "save_") {
			return nil
		}
	}
}

// header parses the data names of a loop with the given known keys.
func (r *CifReader) header(keys []string) (*cif.FieldMap, error) {
	m := cif.NewFieldMap(keys)
	if err := m.Parse(r.t); err != nil {
		return nil, err
	}
	if d := m.Duplicates(); len(d) > 0 {
		r.warnf("repeated data names %s, the first column is used", strings.Join(d, ", "))
	}
	r.ctx.fields = m
	return m, nil
}

// rows calls f with every row of the loop. A row cut short by the end of the loop is discarded.
func (r *CifReader) rows(m *cif.FieldMap, f func(row *cif.Row)) error {
	for {
		ok, err := m.ReadRow(r.t, &r.ctx.row)
		if err == cif.ErrShortRow {
			r.warnf("%s loop ends in the middle of a row, the row is discarded", r.ctx.rawKey)
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		f(&r.ctx.row)
	}
}

// skipLoop consumes the header and rows of a loop nobody wants.
func (r *CifReader) skipLoop() error {
	m := cif.NewFieldMap([]string{})
	if err := m.Parse(r.t); err != nil {
		if err == cif.ErrNoFields {
			return nil
		}
		return err
	}
	return m.Skip(r.t)
}

// loop reads a loop_, whose keyword was already consumed.
func (r *CifReader) loop() error {
	tok, err := r.t.Peek()
	if err == io.EOF {
		r.warnf("loop_ at the end of the file")
		return nil
	}
	if err != nil {
		return err
	}
	if !tok.IsKey() {
		r.warnf("loop_ without data names")
		return nil
	}
	r.ensureBlock()
	r.ctx.rawKey = tok.Value
	r.ctx.key = cif.NormalizeKey(tok.Value)
	idx := r.route(r.ctx.key)
	if r.state == skipping || idx < 0 || routes[idx].handle == nil {
		return r.skipLoop()
	}
	prev := r.state
	r.state = inLoop
	err = routes[idx].handle(r)
	r.state = prev
	if err == cif.ErrNoFields {
		return nil
	}
	return err
}

// keyValue handles a data name outside a loop, and its value.
func (r *CifReader) keyValue(keyTok cif.Token) error {
	val, err := r.t.Peek()
	if err == io.EOF || (err == nil && (val.IsKey() || val.IsReserved())) {
		r.warnf("%s without a value", keyTok.Value)
		return nil
	}
	if err != nil {
		return err
	}
	r.t.Next()
	r.ensureBlock()
	if r.state == skipping {
		return nil
	}
	key := cif.NormalizeKey(keyTok.Value)
	r.ctx.rawKey, r.ctx.key = keyTok.Value, key
	if idx := r.route(key); idx >= 0 && routes[idx].handle != nil {
		return r.singleRow(keyTok, val, idx)
	}
	r.single(key, val)
	return nil
}

// singleRow reads a category given as data name and value pairs instead of as a loop, such as
// mmCIF single-row categories. The pairs that belong to the same handler are collected and
// handed to it as a one-row loop.
func (r *CifReader) singleRow(first, val cif.Token, idx int) error {
	keys := []string{first.Value}
	vals := []cif.Token{val}
	for {
		tok, err := r.t.Peek()
		if err != nil || !tok.IsKey() || r.route(cif.NormalizeKey(tok.Value)) != idx {
			break
		}
		r.t.Next()
		v, err := r.t.Peek()
		if err == io.EOF || (err == nil && (v.IsKey() || v.IsReserved())) {
			r.warnf("%s without a value", tok.Value)
			continue
		}
		if err != nil {
			return err
		}
		r.t.Next()
		keys = append(keys, tok.Value)
		vals = append(vals, v)
	}
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\n')
	}
	for _, v := range vals {
		switch v.Kind {
		case cif.Bare, cif.List, cif.Table:
			b.WriteString(v.String())
			b.WriteByte('\n')
		default:
			b.WriteString(";" + v.Value + "\n;\n")
		}
	}
	main := r.t
	sub := cif.NewTokenizer(cif.NewStringSource(b.String()))
	sub.SetCIF2(main.CIF2())
	sub.Warn = main.Warn
	r.t = sub
	prev := r.state
	r.state = inLoop
	err := routes[idx].handle(r)
	r.state = prev
	r.t = main
	return err
}

// single handles the data names that are not part of any loop category.
func (r *CifReader) single(key string, val cif.Token) {
	b := r.blk
	set := b.sets[0]
	s := val.Value
	if val.IsNull() {
		return
	}
	if i := cellIndex(key); i >= 0 {
		v, ok := cif.ParseFloat(s)
		if !ok {
			r.warnf("bad cell parameter %s %q", key, s)
			return
		}
		b.cell[i], b.cellSet[i] = v, true
		return
	}
	if i, j, ok := fracMatrixIndex(key); ok {
		if v, ok := cif.ParseFloat(s); ok && i <= 3 && j <= 3 {
			b.fracMat[i-1][j-1] = v
			b.nFracMat++
		}
		return
	}
	if i, ok := fracVectorIndex(key); ok {
		if v, ok := cif.ParseFloat(s); ok && i <= 3 {
			b.fracVec[i-1] = v
		}
		return
	}
	switch key {
	case "_symmetry_space_group_name_h-m", "_space_group_name_h-m_alt", "_space_group_ssg_name", "_space_group_ssg_name_ww":
		b.spaceGroup = s
	case "_symmetry_space_group_name_hall", "_space_group_name_hall":
		b.hall = s
	case "_space_group_it_number", "_symmetry_int_tables_number":
		set.Info["spaceGroupNumber"] = s
	case "_cell_modulation_dimension":
		if d, ok := cif.ParseInt(s); ok {
			r.mods.SetModDim(b.first, d)
		}
	case "_audit_block_code":
		set.Info["blockCode"] = s
	case "_chemical_name_common", "_chemical_name_mineral":
		set.Info["name"] = s
	case "_chemical_name_systematic":
		set.Info["systematicName"] = s
	case "_chemical_formula_sum":
		set.Info["formula"] = s
	case "_chemical_formula_moiety":
		set.Info["moiety"] = s
	case "_struct_title":
		set.Info["title"] = s
		r.coll.SetInfo("title", s)
	case "_entry_id":
		set.Info["entryID"] = s
		r.coll.SetInfo("entryID", s)
	case "_pd_phase_name":
		set.Info["phase"] = s
	}
}

var cellKeys = []string{"_cell_length_a", "_cell_length_b", "_cell_length_c", "_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma"}

func cellIndex(key string) int {
	for i, k := range cellKeys {
		if key == k {
			return i
		}
	}
	return -1
}

func fracMatrixIndex(key string) (int, int, bool) {
	if i, j, ok := matrixIndex(key, "_atom_sites_fract_tran_matrix"); ok {
		return i, j, true
	}
	return matrixIndex(key, "_atom_sites_fract_transf_matrix")
}

func fracVectorIndex(key string) (int, bool) {
	if i, ok := vectorIndex(key, "_atom_sites_fract_tran_vector"); ok {
		return i, true
	}
	return vectorIndex(key, "_atom_sites_fract_transf_vector")
}

// route is a loop category and the handler of its loops. A nil handler skips the loop.
type route struct {
	prefix     string
	handle     func(*CifReader) error
	mmOnly     bool
	validation bool
}

var routes = []route{
	{prefix: "_atom_site", handle: (*CifReader).atomSites},
	{prefix: "_atom_site_aniso", handle: (*CifReader).atomSites},
	{prefix: "_atom_site_anisotrop", handle: (*CifReader).atomSites},
	{prefix: "_chem_comp_atom", handle: (*CifReader).atomSites},
	{prefix: "_atom_type", handle: (*CifReader).atomTypes},
	{prefix: "_symmetry_equiv_pos", handle: (*CifReader).symmetryOps},
	{prefix: "_space_group_symop", handle: (*CifReader).symmetryOps},
	{prefix: "_symmetry_ssg_equiv", handle: (*CifReader).symmetryOps},
	{prefix: "_space_group_ssg_symop", handle: (*CifReader).symmetryOps},
	{prefix: "_geom_bond", handle: (*CifReader).geomBond},
	{prefix: "_chem_comp_bond", handle: (*CifReader).chemCompBond},
	{prefix: "_chem_comp", handle: (*CifReader).hetNames},
	{prefix: "_pdbx_entity_nonpoly", handle: (*CifReader).hetNames},
	{prefix: "_struct_conf", handle: (*CifReader).secondaryStructure},
	{prefix: "_struct_conf_type"},
	{prefix: "_struct_sheet_range", handle: (*CifReader).secondaryStructure},
	{prefix: "_struct_site_gen", handle: (*CifReader).siteGen},
	{prefix: "_struct_conn", handle: (*CifReader).structConn, mmOnly: true},
	{prefix: "_struct_conn_type"},
	{prefix: "_pdbx_struct_oper_list", handle: (*CifReader).operList},
	{prefix: "_pdbx_struct_assembly_gen", handle: (*CifReader).assemblyGen},
	{prefix: "_pdbx_vrpt", handle: (*CifReader).validation, mmOnly: true, validation: true},
	{prefix: "_pdbx_validate", handle: (*CifReader).validation, mmOnly: true, validation: true},
	{prefix: "_cell_wave_vector", handle: (*CifReader).waveVectors},
	{prefix: "_atom_site_fourier_wave_vector", handle: (*CifReader).fourierVectors},
	{prefix: "_atom_site_displace_fourier", handle: (*CifReader).displaceFourier},
	{prefix: "_atom_site_occ_fourier", handle: (*CifReader).occFourier},
	{prefix: "_atom_site_u_fourier", handle: (*CifReader).uFourier},
	{prefix: "_atom_site_occ_special_func", handle: (*CifReader).occSpecial},
	{prefix: "_atom_site_displace_special_func", handle: (*CifReader).displaceSpecial},
	{prefix: "_cell_subsystem", handle: (*CifReader).subsystems},
}

// inCategory returns true if key is a data name of the category, or of one of its subcategories.
func inCategory(key, prefix string) bool {
	return strings.HasPrefix(key, prefix) && (len(key) == len(prefix) || key[len(prefix)] == '_')
}

// route returns the index in routes of the longest category prefix of key, or -1.
func (r *CifReader) route(key string) int {
	best := -1
	for i, rt := range routes {
		if !inCategory(key, rt.prefix) || (rt.mmOnly && !r.mm) || (rt.validation && !r.opts.Validation) {
			continue
		}
		if best < 0 || len(rt.prefix) > len(routes[best].prefix) {
			best = i
		}
	}
	if best < 0 && r.state != skipping && (strings.Contains(key, "fourier") || strings.Contains(key, "special_func")) {
		r.warnf("modulation data %s not supported, skipped", key)
	}
	return best
}
