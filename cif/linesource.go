/*
 * linesource.go, part of goxtal.
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
	"bufio"
	"io"
	"strings"
)

// LineSource gives the tokenizer its input one line at a time, without the line terminator.
// It returns io.EOF when there are no more lines.
type LineSource interface {
	ReadLine() (string, error)
}

type readerSource struct {
	r *bufio.Reader
}

// NewLineSource returns a LineSource that reads from r. Both "\n" and "\r\n" end lines,
// and a last line without a terminator is still returned.
func NewLineSource(r io.Reader) LineSource {
	if br, ok := r.(*bufio.Reader); ok {
		return &readerSource{r: br}
	}
	return &readerSource{r: bufio.NewReaderSize(r, 64*1024)}
}

func (s *readerSource) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// NewStringSource returns a LineSource over the lines of s.
func NewStringSource(s string) LineSource {
	return NewLineSource(strings.NewReader(s))
}
