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

package symmetry

import "strings"

// Error is the error type for the symmetry package. It fulfills the goxtal Error interface.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string { return err.message }

// Decorate adds information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Critical returns true. A symmetry error always means the symmetry can't be used.
func (err Error) Critical() bool { return true }

// Callers returns the call stack recorded in the error, innermost first.
func (err Error) Callers() string { return strings.Join(err.deco, " < ") }

func errDecorate(err error, caller string) error {
	e, ok := err.(Error)
	if !ok {
		return err
	}
	e.deco = append(e.deco, caller)
	return e
}
