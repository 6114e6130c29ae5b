/*
 * fields.go, part of goxtal.
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

package cif

import (
	"errors"
	"io"
	"math"
	"strings"
)

// None is the column, or field id, of things that are not there.
const None = -1

// ErrNoFields is returned by FieldMap.Parse when a loop_ is not followed by any data name.
var ErrNoFields = errors.New("loop without data names")

// ErrShortRow is returned by FieldMap.ReadRow when a loop ends in the middle of a row.
var ErrShortRow = errors.New("loop row with fewer values than data names")

// NormalizeKey returns the form of a data name used for lookups: lower case, and with
// the mmCIF '.' separator replaced by '_', so "_atom_site.Cartn_x" and "_atom_site_cartn_x"
// are the same field.
func NormalizeKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, ".", "_"))
}

// FieldMap maps the columns of a loop to a list of recognized fields. A field is identified by its
// position in the list of known keys given to NewFieldMap.
// If no list is given, the map is dynamic: each new key gets the next id, and Keys returns them.
type FieldMap struct {
	known   map[string]int
	keys    []string //field id -> key
	dynamic bool
	col2id  []int
	id2col  []int
	header  []string //normalized key for each column
	dups    []string
}

// NewFieldMap returns a field map for the given keys, which are normalized. A nil list gives a dynamic map.
// When a key appears more than once in known, the first position is its id.
func NewFieldMap(known []string) *FieldMap {
	m := &FieldMap{known: make(map[string]int), dynamic: known == nil}
	for i, k := range known {
		n := NormalizeKey(k)
		if _, ok := m.known[n]; !ok {
			m.known[n] = i
		}
		m.keys = append(m.keys, n)
	}
	return m
}

// Parse reads the data names of a loop header from t, which must be positioned just after
// the loop_ keyword, and maps them to columns. It stops at the first token that is not a data name,
// which is left unread. If a data name appears twice, the first column is kept.
func (m *FieldMap) Parse(t *Tokenizer) error {
	m.col2id = m.col2id[:0]
	m.header = m.header[:0]
	m.dups = m.dups[:0]
	m.id2col = make([]int, len(m.keys))
	for i := range m.id2col {
		m.id2col[i] = None
	}
	for {
		tok, err := t.Peek()
		if err == io.EOF || (err == nil && !tok.IsKey()) {
			break
		}
		if err != nil {
			return err
		}
		t.Next()
		k := NormalizeKey(tok.Value)
		id, ok := m.known[k]
		if !ok && m.dynamic {
			id = len(m.keys)
			m.known[k] = id
			m.keys = append(m.keys, k)
			m.id2col = append(m.id2col, None)
			ok = true
		}
		col := len(m.header)
		m.header = append(m.header, k)
		if !ok {
			m.col2id = append(m.col2id, None)
			continue
		}
		if m.id2col[id] != None {
			m.dups = append(m.dups, k)
			m.col2id = append(m.col2id, None)
			continue
		}
		m.id2col[id] = col
		m.col2id = append(m.col2id, id)
	}
	if len(m.header) == 0 {
		return ErrNoFields
	}
	return nil
}

// Col returns the column of the field id, or None.
func (m *FieldMap) Col(id int) int {
	if id < 0 || id >= len(m.id2col) {
		return None
	}
	return m.id2col[id]
}

// Has returns true if the loop contains the field id.
func (m *FieldMap) Has(id int) bool { return m.Col(id) != None }

// HasAll returns true if the loop contains all the given fields.
func (m *FieldMap) HasAll(ids ...int) bool {
	for _, id := range ids {
		if !m.Has(id) {
			return false
		}
	}
	return true
}

// HasAny returns true if the loop contains any of the given fields.
func (m *FieldMap) HasAny(ids ...int) bool {
	for _, id := range ids {
		if m.Has(id) {
			return true
		}
	}
	return false
}

// Duplicates returns the data names that appeared more than once in the last header parsed.
func (m *FieldMap) Duplicates() []string { return m.dups }

// NCols returns the number of columns of the loop.
func (m *FieldMap) NCols() int { return len(m.header) }

// ID returns the field id of the given column, or None if the column is not recognized.
func (m *FieldMap) ID(col int) int { return m.col2id[col] }

// Key returns the normalized data name of the given column.
func (m *FieldMap) Key(col int) string { return m.header[col] }

// FieldKey returns the normalized data name of the field id.
func (m *FieldMap) FieldKey(id int) string { return m.keys[id] }

// Keys returns the data names of the loop columns.
func (m *FieldMap) Keys() []string { return append([]string(nil), m.header...) }

// ReadRow reads one row of the loop, one token per column, into row (which is grown as needed).
// It returns false, and consumes nothing, if the loop has ended, that is, at the end of the input or when the
// next token is a data name or a reserved word. A row cut short is discarded with ErrShortRow.
func (m *FieldMap) ReadRow(t *Tokenizer, row *Row) (bool, error) {
	tok, err := t.Peek()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if tok.IsKey() || tok.IsReserved() {
		return false, nil
	}
	row.m = m
	row.toks = row.toks[:0]
	for i := 0; i < len(m.header); i++ {
		tok, err := t.Peek()
		if err == io.EOF {
			return false, ErrShortRow
		}
		if err != nil {
			return false, err
		}
		if i > 0 && (tok.IsKey() || tok.IsReserved()) {
			return false, ErrShortRow
		}
		t.Next()
		row.toks = append(row.toks, tok)
	}
	return true, nil
}

// Skip consumes all the rows of the loop.
func (m *FieldMap) Skip(t *Tokenizer) error {
	var row Row
	for {
		ok, err := m.ReadRow(t, &row)
		if err == ErrShortRow {
			return nil
		}
		if !ok || err != nil {
			return err
		}
	}
}

// Row is one row of a loop.
type Row struct {
	m    *FieldMap
	toks []Token
}

// Token returns the token for the field id, and false if the field is not in the loop.
func (r *Row) Token(id int) (Token, bool) {
	c := r.m.Col(id)
	if c == None || c >= len(r.toks) {
		return Token{}, false
	}
	return r.toks[c], true
}

// Col returns the token in the given column.
func (r *Row) Col(col int) Token { return r.toks[col] }

// Str returns the value of the field id, or "" if it is null or not in the loop.
func (r *Row) Str(id int) string {
	t, ok := r.Token(id)
	if !ok || t.IsNull() {
		return ""
	}
	return t.Value
}

// Has returns true if the field id is in the loop and is not null.
func (r *Row) Has(id int) bool {
	t, ok := r.Token(id)
	return ok && !t.IsNull()
}

// Float returns the numeric value of the field id, and false if it is absent, null or not a number.
func (r *Row) Float(id int) (float64, bool) {
	t, ok := r.Token(id)
	if !ok || t.IsNull() {
		return math.NaN(), false
	}
	return ParseFloat(t.Value)
}

// Int returns the integer value of the field id, and false if it is absent, null or not an integer.
func (r *Row) Int(id int) (int, bool) {
	t, ok := r.Token(id)
	if !ok || t.IsNull() {
		return 0, false
	}
	return ParseInt(t.Value)
}

// Map returns the row as a map from data name to value, nulls excluded.
func (r *Row) Map() map[string]string {
	ret := make(map[string]string, len(r.toks))
	for i, t := range r.toks {
		if t.IsNull() {
			continue
		}
		ret[r.m.header[i]] = t.String()
	}
	return ret
}
