/*
 * errors.go, part of goxtal.
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
	"strconv"
)

const maxMsgLen = 70

// SyntaxError is returned when the input can't be tokenized, and reading must stop.
// It records the line number, and the start of the line, where the problem was found.
type SyntaxError struct {
	LineNo int
	Line   string
	Desc   string
	deco   []string
}

func firstPart(s string) string {
	if len(s) > maxMsgLen {
		return s[:maxMsgLen]
	}
	return s
}

func (e *SyntaxError) Error() string {
	var msg string
	if e.LineNo != 0 {
		msg = "Line: " + strconv.Itoa(e.LineNo) + " "
	}
	msg += e.Desc
	if e.Line != "" {
		msg += "\nLine starting with\n" + firstPart(e.Line)
	}
	return msg
}

// Decorate adds the caller to the error's information, and returns it.
func (e *SyntaxError) Decorate(dec string) []string {
	if dec != "" {
		e.deco = append(e.deco, dec)
	}
	return e.deco
}

// Critical returns true. The tokenizer can't recover from a syntax error.
func (e *SyntaxError) Critical() bool { return true }
