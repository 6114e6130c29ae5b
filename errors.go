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

package xtal

import (
	"errors"
	"fmt"
)

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Adds a caller to the decoration slice, and returns the slice. An empty string just returns the current value.
	Critical() bool           //A non-critical error means the collection returned along with it is still usable.
}

// CError is the general error type for goxtal. It can wrap another error, which errors.Is and errors.As will see.
type CError struct {
	msg      string
	deco     []string
	critical bool
	err      error
}

// NewError returns a new critical error with the given message, decorated with the given callers.
func NewError(msg string, callers ...string) *CError {
	return &CError{msg: msg, deco: callers, critical: true}
}

// Errorf returns a new critical CError, wrapping the last %w argument, if any.
func Errorf(caller, format string, args ...interface{}) *CError {
	e := fmt.Errorf(format, args...)
	return &CError{msg: e.Error(), deco: []string{caller}, critical: true, err: errors.Unwrap(e)}
}

// NonCritical turns the error into a non-critical one and returns it.
func (err *CError) NonCritical() *CError {
	err.critical = false
	return err
}

func (err *CError) Error() string { return err.msg }

// Decorate adds the caller to the error's call stack information, and returns it.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true if the error is critical.
func (err *CError) Critical() bool { return err.critical }

func (err *CError) Unwrap() error { return err.err }

// ErrDecorate adds caller to err if err implements Error, and returns it. Otherwise
// it wraps err in a CError with caller as its only decoration.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return &CError{msg: err.Error(), deco: []string{caller}, critical: true, err: err}
}

// ErrNoAtoms is returned, wrapped, when a file is read to the end without yielding a single atom.
var ErrNoAtoms = errors.New("no atoms found")
