/*
 * reader.go, part of goxtal.
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

// Package msgpack decodes MessagePack data into plain Go values.
//
// Maps become map[string]interface{} (non-string keys are formatted with fmt.Sprint),
// integers become int, floats become float64, strings become string, binary data
// becomes []byte, and extension types become Ext. Arrays become []interface{}, unless
// the reader was created in homogeneous mode, in which case arrays whose elements all
// share the type of the first one become []int, []float64, []bool or []string.
package msgpack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned when the data ends in the middle of a value.
var ErrTruncated = errors.New("msgpack: truncated data")

// Ext is a MessagePack extension value.
type Ext struct {
	Type int8
	Data []byte
}

// Reader decodes consecutive MessagePack values from a byte slice.
type Reader struct {
	data        []byte
	pos         int
	homogeneous bool
	depth       int
}

// maximum nesting depth, to stop malicious inputs from blowing the stack.
const maxDepth = 512

// NewReader returns a reader over data. If homogeneous is true, arrays of a single
// numeric or string type are returned as typed slices.
func NewReader(data []byte, homogeneous bool) *Reader {
	return &Reader{data: data, homogeneous: homogeneous}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int { return r.pos }

// More returns true if there is data left to decode.
func (r *Reader) More() bool { return r.pos < len(r.data) }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) uint(n int) (uint64, error) {
	b, err := r.take(n)
	if err != nil {
		return 0, err
	}
	switch n {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), nil
	}
	return binary.BigEndian.Uint64(b), nil
}

// Next decodes and returns the next value.
func (r *Reader) Next() (interface{}, error) {
	b, err := r.take(1)
	if err != nil {
		return nil, err
	}
	c := b[0]
	if k := scalarOf(c); k != noScalar {
		r.pos--
		return r.readScalar(k)
	}
	switch {
	case c&0xf0 == 0x80:
		return r.readMap(int(c & 0x0f))
	case c&0xf0 == 0x90:
		return r.readArray(int(c & 0x0f))
	}
	switch c {
	case 0xc0:
		return nil, nil
	case 0xc4, 0xc5, 0xc6:
		n, err := r.uint(1 << (c - 0xc4))
		if err != nil {
			return nil, err
		}
		bin, err := r.take(int(n))
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), bin...), nil
	case 0xc7, 0xc8, 0xc9:
		n, err := r.uint(1 << (c - 0xc7))
		if err != nil {
			return nil, err
		}
		return r.readExt(int(n))
	case 0xd4, 0xd5, 0xd6, 0xd7, 0xd8:
		return r.readExt(1 << (c - 0xd4))
	case 0xdc, 0xdd:
		n, err := r.uint(2 << (c - 0xdc))
		if err != nil {
			return nil, err
		}
		return r.readArray(int(n))
	case 0xde, 0xdf:
		n, err := r.uint(2 << (c - 0xde))
		if err != nil {
			return nil, err
		}
		return r.readMap(int(n))
	}
	return nil, fmt.Errorf("msgpack: invalid type byte 0x%x at offset %d", c, r.pos-1)
}

// scalar is the kind of value, among those homogeneous arrays can hold, that a type byte starts.
type scalar int

const (
	noScalar scalar = iota
	intScalar
	floatScalar
	boolScalar
	stringScalar
)

func scalarOf(c byte) scalar {
	switch {
	case c <= 0x7f || c >= 0xe0:
		return intScalar
	case c&0xe0 == 0xa0:
		return stringScalar
	}
	switch c {
	case 0xc2, 0xc3:
		return boolScalar
	case 0xca, 0xcb:
		return floatScalar
	case 0xcc, 0xcd, 0xce, 0xcf, 0xd0, 0xd1, 0xd2, 0xd3:
		return intScalar
	case 0xd9, 0xda, 0xdb:
		return stringScalar
	}
	return noScalar
}

func (r *Reader) readScalar(k scalar) (interface{}, error) {
	var v interface{}
	var err error
	switch k {
	case intScalar:
		v, err = r.readInt()
	case floatScalar:
		v, err = r.readFloat()
	case boolScalar:
		v, err = r.readBool()
	default:
		v, err = r.readString()
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// The read functions below decode a value whose type byte has already been checked
// with scalarOf.

func (r *Reader) readInt() (int, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	c := b[0]
	switch {
	case c <= 0x7f:
		return int(c), nil
	case c >= 0xe0:
		return int(int8(c)), nil
	case c <= 0xcf:
		v, err := r.uint(1 << (c - 0xcc))
		return int(v), err
	}
	v, err := r.uint(1 << (c - 0xd0))
	switch c {
	case 0xd0:
		return int(int8(v)), err
	case 0xd1:
		return int(int16(v)), err
	case 0xd2:
		return int(int32(v)), err
	}
	return int(int64(v)), err
}

func (r *Reader) readFloat() (float64, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	if b[0] == 0xca {
		v, err := r.uint(4)
		return float64(math.Float32frombits(uint32(v))), err
	}
	v, err := r.uint(8)
	return math.Float64frombits(v), err
}

func (r *Reader) readBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] == 0xc3, nil
}

func (r *Reader) readString() (string, error) {
	b, err := r.take(1)
	if err != nil {
		return "", err
	}
	n := int(b[0] & 0x1f)
	if b[0] >= 0xd9 {
		v, err := r.uint(1 << (b[0] - 0xd9))
		if err != nil {
			return "", err
		}
		n = int(v)
	}
	str, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(str), nil
}

func (r *Reader) readExt(n int) (interface{}, error) {
	t, err := r.take(1)
	if err != nil {
		return nil, err
	}
	d, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return Ext{Type: int8(t[0]), Data: append([]byte(nil), d...)}, nil
}

func (r *Reader) enter() error {
	r.depth++
	if r.depth > maxDepth {
		return fmt.Errorf("msgpack: nesting deeper than %d", maxDepth)
	}
	return nil
}

func (r *Reader) readMap(n int) (interface{}, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer func() { r.depth-- }()
	//each entry takes at least 2 bytes
	if n > (len(r.data)-r.pos)/2 {
		return nil, fmt.Errorf("%w: map of %d entries at offset %d", ErrTruncated, n, r.pos)
	}
	m := make(map[string]interface{}, n)
	for i := 0; i < n; i++ {
		k, err := r.Next()
		if err != nil {
			return nil, err
		}
		v, err := r.Next()
		if err != nil {
			return nil, err
		}
		ks, ok := k.(string)
		if !ok {
			ks = fmt.Sprint(k)
		}
		m[ks] = v
	}
	return m, nil
}

func (r *Reader) readArray(n int) (interface{}, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer func() { r.depth-- }()
	if n > len(r.data)-r.pos {
		return nil, fmt.Errorf("%w: array of %d elements at offset %d", ErrTruncated, n, r.pos)
	}
	if r.homogeneous && n > 0 {
		switch k := scalarOf(r.data[r.pos]); k {
		case intScalar:
			return readTyped(r, n, k, (*Reader).readInt)
		case floatScalar:
			return readTyped(r, n, k, (*Reader).readFloat)
		case boolScalar:
			return readTyped(r, n, k, (*Reader).readBool)
		case stringScalar:
			return readTyped(r, n, k, (*Reader).readString)
		}
	}
	return r.boxed(make([]interface{}, 0, n), n)
}

// readTyped decodes an array of n scalars of kind k straight into a slice. If an element
// of another kind shows up, the elements read so far are boxed and the array is returned
// as a []interface{}.
func readTyped[T any](r *Reader, n int, k scalar, read func(*Reader) (T, error)) (interface{}, error) {
	ret := make([]T, n)
	for i := range ret {
		if r.pos < len(r.data) && scalarOf(r.data[r.pos]) != k {
			a := make([]interface{}, i, n)
			for j, v := range ret[:i] {
				a[j] = v
			}
			return r.boxed(a, n)
		}
		v, err := read(r)
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

// boxed appends to a the elements of the array up to n.
func (r *Reader) boxed(a []interface{}, n int) (interface{}, error) {
	for len(a) < n {
		v, err := r.Next()
		if err != nil {
			return nil, err
		}
		a = append(a, v)
	}
	return a, nil
}
