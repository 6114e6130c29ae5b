/*
 * mmtfcodec.go, part of goxtal.
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
	"encoding/binary"
	"fmt"
	"math"
)

// codecError reports a malformed binary array of an MMTF file.
type codecError struct {
	codec int
	msg   string
}

func (e codecError) Error() string {
	return fmt.Sprintf("MMTF codec %d: %s", e.codec, e.msg)
}

// decodeMMTFArray decodes an MMTF binary array: a 12-byte header with the codec, the length of the
// decoded array and a codec parameter, all big-endian int32, followed by the data. Integer
// arrays are returned as []int, float arrays as []float64 and string arrays as []string.
func decodeMMTFArray(b []byte) (interface{}, error) {
	if len(b) < 12 {
		return nil, codecError{0, "header truncated"}
	}
	codec := int(int32(binary.BigEndian.Uint32(b)))
	length := int(int32(binary.BigEndian.Uint32(b[4:])))
	param := int(int32(binary.BigEndian.Uint32(b[8:])))
	data := b[12:]
	if length < 0 {
		return nil, codecError{codec, fmt.Sprintf("negative array length %d", length)}
	}
	ints := func(size int) ([]int, error) {
		if len(data)%size != 0 {
			return nil, codecError{codec, fmt.Sprintf("%d bytes of data is not a whole number of %d-byte integers", len(data), size)}
		}
		ret := make([]int, len(data)/size)
		for i := range ret {
			switch size {
			case 1:
				ret[i] = int(int8(data[i]))
			case 2:
				ret[i] = int(int16(binary.BigEndian.Uint16(data[2*i:])))
			default:
				ret[i] = int(int32(binary.BigEndian.Uint32(data[4*i:])))
			}
		}
		return ret, nil
	}
	var v []int
	var err error
	switch codec {
	case 1:
		if len(data)%4 != 0 {
			return nil, codecError{codec, "data is not a whole number of float32"}
		}
		ret := make([]float64, len(data)/4)
		for i := range ret {
			ret[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(data[4*i:])))
		}
		return ret, nil
	case 2:
		return ints(1)
	case 3:
		return ints(2)
	case 4:
		return ints(4)
	case 5:
		if param <= 0 {
			return nil, codecError{codec, fmt.Sprintf("string width %d", param)}
		}
		if length > len(data)/param {
			return nil, codecError{codec, fmt.Sprintf("%d strings of %d bytes need more than the %d bytes given", length, param, len(data))}
		}
		ret := make([]string, length)
		for i := range ret {
			ret[i] = cString(data[i*param : (i+1)*param])
		}
		return ret, nil
	case 6:
		if v, err = ints(4); err != nil {
			return nil, err
		}
		v, err = runLength(v, length, codec)
		if err != nil {
			return nil, err
		}
		ret := make([]string, len(v))
		for i, c := range v {
			if c != 0 {
				ret[i] = string(rune(c))
			}
		}
		return ret, nil
	case 7, 8, 9:
		if v, err = ints(4); err != nil {
			return nil, err
		}
		if v, err = runLength(v, length, codec); err != nil {
			return nil, err
		}
		switch codec {
		case 8:
			return delta(v), nil
		case 9:
			return divide(v, param), nil
		}
		return v, nil
	case 10:
		if v, err = ints(2); err != nil {
			return nil, err
		}
		return divide(delta(recursiveIndex(v, math.MaxInt16, math.MinInt16)), param), nil
	case 11:
		if v, err = ints(2); err != nil {
			return nil, err
		}
		return divide(v, param), nil
	case 12:
		if v, err = ints(2); err != nil {
			return nil, err
		}
		return divide(recursiveIndex(v, math.MaxInt16, math.MinInt16), param), nil
	case 13:
		if v, err = ints(1); err != nil {
			return nil, err
		}
		return divide(recursiveIndex(v, math.MaxInt8, math.MinInt8), param), nil
	case 14:
		if v, err = ints(2); err != nil {
			return nil, err
		}
		return recursiveIndex(v, math.MaxInt16, math.MinInt16), nil
	case 15:
		if v, err = ints(1); err != nil {
			return nil, err
		}
		return recursiveIndex(v, math.MaxInt8, math.MinInt8), nil
	}
	return nil, codecError{codec, "unknown codec"}
}

// cString returns the bytes of b up to the first zero.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// runLength expands (value, count) pairs. length is the size of the array given in the header,
// which the expanded data can't exceed.
func runLength(v []int, length, codec int) ([]int, error) {
	if len(v)%2 != 0 {
		return nil, codecError{codec, "odd number of run-length values"}
	}
	total := 0
	for i := 1; i < len(v); i += 2 {
		if v[i] < 0 {
			return nil, codecError{codec, fmt.Sprintf("negative run length %d", v[i])}
		}
		total += v[i]
		if total > length {
			return nil, codecError{codec, fmt.Sprintf("run-length data longer than the %d elements of the array", length)}
		}
	}
	ret := make([]int, 0, total)
	for i := 0; i < len(v); i += 2 {
		for n := 0; n < v[i+1]; n++ {
			ret = append(ret, v[i])
		}
	}
	return ret, nil
}

// delta replaces each value by the sum of it and all the previous ones, in place.
func delta(v []int) []int {
	for i := 1; i < len(v); i++ {
		v[i] += v[i-1]
	}
	return v
}

// recursiveIndex adds up runs of max and min values with the value that closes them.
func recursiveIndex(v []int, max, min int) []int {
	ret := make([]int, 0, len(v))
	acc := 0
	for _, x := range v {
		acc += x
		if x == max || x == min {
			continue
		}
		ret = append(ret, acc)
		acc = 0
	}
	return ret
}

func divide(v []int, div int) []float64 {
	d := float64(div)
	if d == 0 {
		d = 1
	}
	ret := make([]float64, len(v))
	for i, x := range v {
		ret[i] = float64(x) / d
	}
	return ret
}

// splitList decodes the coordinates of the early MMTF versions, which come in two lists. big holds
// pairs of an int32 delta and the number of int16 deltas of small that follow it. The values are the
// running sums of the deltas, divided by div.
func splitList(big, small []int, div float64) ([]float64, error) {
	if len(big)%2 != 0 {
		return nil, codecError{0, "odd number of values in the big list"}
	}
	ret := make([]float64, 0, len(big)/2+len(small))
	v, si := 0, 0
	for i := 0; i < len(big); i += 2 {
		v += big[i]
		ret = append(ret, float64(v)/div)
		n := big[i+1]
		if n < 0 || si+n > len(small) {
			return nil, codecError{0, "big list refers to missing small values"}
		}
		for _, s := range small[si : si+n] {
			v += s
			ret = append(ret, float64(v)/div)
		}
		si += n
	}
	return ret, nil
}

// beInts decodes big-endian integers of the given size, used by the split lists.
func beInts(b []byte, size int) []int {
	ret := make([]int, len(b)/size)
	for i := range ret {
		if size == 2 {
			ret[i] = int(int16(binary.BigEndian.Uint16(b[2*i:])))
		} else {
			ret[i] = int(int32(binary.BigEndian.Uint32(b[4*i:])))
		}
	}
	return ret
}
