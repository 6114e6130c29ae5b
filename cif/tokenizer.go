/*
 * tokenizer.go, part of goxtal.
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
	"fmt"
	"io"
	"strings"
)

const scriptMarker = "#jmolscript:"

var asciiSpace = [256]bool{'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true}

func iswhite(b byte) bool { return asciiSpace[b] }

// in CIF2, these end an unquoted value, and may follow a closing quote.
func isCIF2Delim(b byte) bool {
	return b == '[' || b == ']' || b == '{' || b == '}'
}

// Tokenizer splits CIF text into tokens. It follows the CIF1 rules unless the first line is the
// "#\#CIF_2.0" magic, or SetCIF2 was called.
//
// In CIF1 a quote closes a quoted value only when followed by whitespace or the end of the line,
// so 'O'Brien' is one value. In CIF2 the first matching quote closes the value, and it must be
// followed by whitespace or a bracket. CIF2 also has triple-quoted strings, lists and tables.
type Tokenizer struct {
	src     LineSource
	line    string
	pos     int
	lineNo  int
	hasLine bool
	err     error
	cif2    bool
	script  strings.Builder
	peeked  *Token
	peekErr error
	// Warn, if not nil, is called for recoverable problems in the input.
	Warn func(lineNo int, msg string)
}

// NewTokenizer returns a tokenizer reading from src.
func NewTokenizer(src LineSource) *Tokenizer {
	return &Tokenizer{src: src}
}

// SetSource makes the tokenizer continue with a new input. Any peeked token is dropped.
func (t *Tokenizer) SetSource(src LineSource) {
	t.src = src
	t.hasLine = false
	t.err = nil
	t.peeked = nil
	t.peekErr = nil
}

// SetCIF2 forces (or disables) the CIF2 rules.
func (t *Tokenizer) SetCIF2(v bool) { t.cif2 = v }

// CIF2 returns true if the tokenizer follows the CIF2 rules.
func (t *Tokenizer) CIF2() bool { return t.cif2 }

// LineNo returns the number of lines read so far.
func (t *Tokenizer) LineNo() int { return t.lineNo }

// Line returns the current line.
func (t *Tokenizer) Line() string { return t.line }

// Script returns the text that followed every "#jmolscript:" marker in the lines read so far,
// one line per marker.
func (t *Tokenizer) Script() string { return t.script.String() }

func (t *Tokenizer) warn(msg string) {
	if t.Warn != nil {
		t.Warn(t.lineNo, msg)
	}
}

func (t *Tokenizer) syntaxError(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{LineNo: t.lineNo, Line: t.line, Desc: fmt.Sprintf(format, args...), deco: []string{"Tokenizer"}}
}

func (t *Tokenizer) readLine() bool {
	l, err := t.src.ReadLine()
	if err != nil {
		if err != io.EOF {
			t.err = err
		}
		t.hasLine = false
		return false
	}
	t.lineNo++
	if t.lineNo == 1 && strings.HasPrefix(l, `#\#CIF_2.0`) {
		t.cif2 = true
	}
	if i := strings.Index(l, scriptMarker); i >= 0 {
		t.script.WriteString(strings.TrimSpace(l[i+len(scriptMarker):]))
		t.script.WriteByte('\n')
	}
	t.line = l
	t.pos = 0
	t.hasLine = true
	return true
}

// skipWhite moves to the start of the next token, skipping whitespace and comments, and
// reading new lines as needed. It returns false at the end of the input.
func (t *Tokenizer) skipWhite() bool {
	for {
		if !t.hasLine && !t.readLine() {
			return false
		}
		for t.pos < len(t.line) && iswhite(t.line[t.pos]) {
			t.pos++
		}
		if t.pos >= len(t.line) || t.line[t.pos] == '#' {
			t.hasLine = false
			continue
		}
		return true
	}
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if t.peeked == nil {
		tok, err := t.next()
		t.peeked = &tok
		t.peekErr = err
	}
	return *t.peeked, t.peekErr
}

// Next returns the next token. It returns io.EOF at the end of the input, and a *SyntaxError
// if the input can't be tokenized.
func (t *Tokenizer) Next() (Token, error) {
	if t.peeked != nil {
		tok, err := *t.peeked, t.peekErr
		t.peeked = nil
		t.peekErr = nil
		return tok, err
	}
	return t.next()
}

func (t *Tokenizer) next() (Token, error) {
	if !t.skipWhite() {
		if t.err != nil {
			return Token{}, t.err
		}
		return Token{}, io.EOF
	}
	c := t.line[t.pos]
	switch {
	case c == ';' && t.pos == 0:
		return t.textField()
	case c == '\'' || c == '"':
		return t.quoted(c)
	case t.cif2 && c == '[':
		return t.list()
	case t.cif2 && c == '{':
		return t.table()
	}
	return t.bare(), nil
}

func (t *Tokenizer) bare() Token {
	start := t.pos
	key := t.line[start] == '_'
	j := start
	for j < len(t.line) && !iswhite(t.line[j]) {
		if t.cif2 && !key && j > start && isCIF2Delim(t.line[j]) {
			break
		}
		j++
	}
	t.pos = j
	return Token{Kind: Bare, Value: t.line[start:j], Line: t.lineNo}
}

func (t *Tokenizer) quoted(q byte) (Token, error) {
	start := t.pos
	lineNo := t.lineNo
	if t.cif2 {
		triple := strings.Repeat(string(q), 3)
		if strings.HasPrefix(t.line[start:], triple) {
			return t.tripleQuoted(triple)
		}
		j := strings.IndexByte(t.line[start+1:], q)
		if j < 0 {
			return Token{}, t.syntaxError("unterminated quoted string")
		}
		end := start + 1 + j
		if end+1 < len(t.line) {
			f := t.line[end+1]
			if !iswhite(f) && !isCIF2Delim(f) && f != ':' {
				return Token{}, t.syntaxError("closing quote followed by %q", f)
			}
		}
		t.pos = end + 1
		return Token{Kind: Quoted, Value: t.line[start+1 : end], Line: lineNo}, nil
	}
	for j := start + 1; j < len(t.line); j++ {
		if t.line[j] == q && (j+1 == len(t.line) || iswhite(t.line[j+1])) {
			t.pos = j + 1
			return Token{Kind: Quoted, Value: t.line[start+1 : j], Line: lineNo}, nil
		}
	}
	t.warn("unterminated quoted string, taking the rest of the line")
	t.pos = len(t.line)
	return Token{Kind: Quoted, Value: t.line[start+1:], Line: lineNo}, nil
}

func (t *Tokenizer) tripleQuoted(triple string) (Token, error) {
	lineNo := t.lineNo
	var b strings.Builder
	rest := t.line[t.pos+3:]
	for {
		if i := strings.Index(rest, triple); i >= 0 {
			b.WriteString(rest[:i])
			t.pos = len(t.line) - len(rest) + i + 3
			return Token{Kind: TripleQuoted, Value: b.String(), Line: lineNo}, nil
		}
		b.WriteString(rest)
		b.WriteByte('\n')
		if !t.readLine() {
			return Token{}, &SyntaxError{LineNo: lineNo, Desc: "unterminated triple-quoted string", deco: []string{"Tokenizer"}}
		}
		rest = t.line
	}
}

// textField reads a semicolon-delimited text field. The line folding protocol (a first line
// consisting of a single backslash) is honored.
func (t *Tokenizer) textField() (Token, error) {
	lineNo := t.lineNo
	first := t.line[1:]
	fold := strings.TrimRight(first, " \t") == `\`
	var lines []string
	if !fold && strings.TrimSpace(first) != "" {
		lines = append(lines, first)
	}
	for {
		if !t.readLine() {
			return Token{}, &SyntaxError{LineNo: lineNo, Desc: "unterminated text field", deco: []string{"Tokenizer"}}
		}
		if len(t.line) > 0 && t.line[0] == ';' {
			t.pos = 1
			break
		}
		lines = append(lines, t.line)
	}
	if !fold {
		return Token{Kind: Text, Value: strings.Join(lines, "\n"), Line: lineNo}, nil
	}
	var b strings.Builder
	for i, l := range lines {
		tr := strings.TrimRight(l, " \t")
		if strings.HasSuffix(tr, `\`) {
			b.WriteString(tr[:len(tr)-1])
			continue
		}
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return Token{Kind: Text, Value: b.String(), Line: lineNo}, nil
}

func (t *Tokenizer) list() (Token, error) {
	lineNo := t.lineNo
	t.pos++
	ret := Token{Kind: List, Line: lineNo}
	for {
		if !t.skipWhite() {
			return Token{}, &SyntaxError{LineNo: lineNo, Desc: "unterminated list", deco: []string{"Tokenizer"}}
		}
		if t.line[t.pos] == ']' {
			t.pos++
			return ret, nil
		}
		item, err := t.next()
		if err != nil {
			return Token{}, err
		}
		ret.Items = append(ret.Items, item)
	}
}

func (t *Tokenizer) table() (Token, error) {
	lineNo := t.lineNo
	t.pos++
	ret := Token{Kind: Table, Line: lineNo}
	for {
		if !t.skipWhite() {
			return Token{}, &SyntaxError{LineNo: lineNo, Desc: "unterminated table", deco: []string{"Tokenizer"}}
		}
		c := t.line[t.pos]
		if c == '}' {
			t.pos++
			return ret, nil
		}
		if c != '\'' && c != '"' {
			return Token{}, t.syntaxError("table keys must be quoted")
		}
		key, err := t.quoted(c)
		if err != nil {
			return Token{}, err
		}
		if t.pos >= len(t.line) || t.line[t.pos] != ':' {
			return Token{}, t.syntaxError("table key %q not followed by ':'", key.Value)
		}
		t.pos++
		val, err := t.next()
		if err != nil {
			return Token{}, err
		}
		ret.Keys = append(ret.Keys, key.Value)
		ret.Items = append(ret.Items, val)
	}
}
