/*
 * numbers.go, part of goxtal.
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
	"math"
	"strconv"
	"strings"
)

// ParseFloat parses a CIF number, ignoring a standard uncertainty in parentheses, as in "1.234(5)".
// It returns NaN and false for null markers and anything that is not a number.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "." || s == "?" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// ParseInt parses an integer value. Values such as "3.0" are accepted, others return false.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, ok := ParseFloat(s)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ParseUncertain parses a number with an optional standard uncertainty, and returns both.
// The digits in parentheses replace the trailing digits of the value, so "3.567(12)" has an
// uncertainty of 0.012 and "1520(30)" one of 30. hasU is false if there is no uncertainty.
func ParseUncertain(s string) (v, u float64, hasU, ok bool) {
	s = strings.TrimSpace(s)
	v, ok = ParseFloat(s)
	if !ok {
		return v, 0, false, false
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return v, 0, false, true
	}
	shut := strings.IndexByte(s[open:], ')')
	if shut < 0 {
		return v, 0, false, true
	}
	digits := s[open+1 : open+shut]
	if _, err := strconv.Atoi(digits); err != nil || digits == "" {
		return v, 0, false, true
	}
	num := s[:open]
	if e := strings.IndexAny(num, "eE"); e >= 0 {
		num = num[:e] //the exponent scales the uncertainty the same way as the value
	}
	//Overlay the uncertainty digits on the last digits of the number,
	//skipping the decimal point, and zero the rest.
	b := []byte(num)
	k := len(digits) - 1
	for i := len(b) - 1; i >= 0; i-- {
		switch {
		case b[i] == '.':
			continue
		case b[i] < '0' || b[i] > '9':
			b[i] = '0'
		case k >= 0:
			b[i] = digits[k]
			k--
		default:
			b[i] = '0'
		}
	}
	//more uncertainty digits than the number has
	prefix := ""
	if k >= 0 {
		prefix = digits[:k+1]
	}
	u, err := strconv.ParseFloat(prefix+string(b), 64)
	if err != nil {
		return v, 0, false, true
	}
	if num != s[:open] {
		exp, err := strconv.ParseFloat("1"+s[len(num):open], 64)
		if err == nil {
			u *= exp
		}
	}
	return v, math.Abs(u), true, true
}
