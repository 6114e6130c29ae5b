/*
 * token.go, part of goxtal.
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
	"strings"
)

// Kind is the lexical class of a token.
type Kind int

const (
	Bare         Kind = iota //unquoted: data names, keywords, numbers, null markers
	Quoted                   //single or double quoted
	Text                     //semicolon-delimited text field
	TripleQuoted             //CIF2 ''' or """ string
	List                     //CIF2 [ ... ]
	Table                    //CIF2 { 'key':value ... }
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case Quoted:
		return "quoted"
	case Text:
		return "text"
	case TripleQuoted:
		return "triple-quoted"
	case List:
		return "list"
	case Table:
		return "table"
	}
	return "unknown"
}

// Token is one value, keyword or data name of a CIF file.
// For lists, Items holds the elements. For tables, Keys and Items are parallel.
type Token struct {
	Kind  Kind
	Value string
	Items []Token
	Keys  []string
	Line  int //line where the token starts
}

// IsNull returns true for the unquoted null markers "." (inapplicable) and "?" (unknown).
// A quoted "." or "?" is an ordinary value.
func (t Token) IsNull() bool {
	return t.Kind == Bare && (t.Value == "." || t.Value == "?")
}

// IsKey returns true if the token is a data name.
func (t Token) IsKey() bool {
	return t.Kind == Bare && strings.HasPrefix(t.Value, "_")
}

// IsReserved returns true for the words that start a new section: loop_, data_, save_,
// global_ and stop_. A reserved word can't be a value.
func (t Token) IsReserved() bool {
	if t.Kind != Bare || len(t.Value) < 5 {
		return false
	}
	l := strings.ToLower(t.Value)
	return l == "loop_" || l == "global_" || l == "stop_" || strings.HasPrefix(l, "data_") || strings.HasPrefix(l, "save_")
}

// String returns the value of the token. Lists and tables are written back in CIF2 syntax.
func (t Token) String() string {
	switch t.Kind {
	case List:
		parts := make([]string, len(t.Items))
		for i, v := range t.Items {
			parts[i] = v.quoted()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case Table:
		parts := make([]string, len(t.Items))
		for i, v := range t.Items {
			parts[i] = "'" + t.Keys[i] + "':" + v.quoted()
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	return t.Value
}

func (t Token) quoted() string {
	switch t.Kind {
	case Quoted:
		if strings.Contains(t.Value, "'") {
			return "\"" + t.Value + "\""
		}
		return "'" + t.Value + "'"
	case Text, TripleQuoted:
		return "'''" + t.Value + "'''"
	}
	return t.String()
}
