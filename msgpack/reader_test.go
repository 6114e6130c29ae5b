package msgpack

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func f64(v float64) []byte {
	b := make([]byte, 9)
	b[0] = 0xcb
	binary.BigEndian.PutUint64(b[1:], math.Float64bits(v))
	return b
}

func cat(parts ...[]byte) []byte {
	var ret []byte
	for _, p := range parts {
		ret = append(ret, p...)
	}
	return ret
}

func sample() []byte {
	return cat(
		[]byte{0x87},            //map of 7
		[]byte{0xa1, 'a', 0x01}, //"a":1
		[]byte{0xa1, 'b', 0x92}, f64(1.5), f64(2.5),
		[]byte{0xa1, 'c', 0xd9, 3, 'x', 'y', 'z'},
		[]byte{0xa1, 'd', 0xc4, 2, 0xff, 0x00},
		[]byte{0xa1, 'e', 0xfd},
		[]byte{0xa1, 'f', 0xc0},
		[]byte{0xa1, 'g', 0x93, 0xc3, 0xcd, 0x01, 0x00, 0xd1, 0xff, 0xfe},
	)
}

func TestNextHomogeneous(Te *testing.T) {
	r := NewReader(sample(), true)
	v, err := r.Next()
	if err != nil {
		Te.Fatal(err)
	}
	want := map[string]interface{}{
		"a": 1,
		"b": []float64{1.5, 2.5},
		"c": "xyz",
		"d": []byte{0xff, 0x00},
		"e": -3,
		"f": nil,
		"g": []interface{}{true, 256, -2},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		Te.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if r.More() {
		Te.Error("data left after the map")
	}
}

func TestNextGeneric(Te *testing.T) {
	r := NewReader(sample(), false)
	v, err := r.Next()
	if err != nil {
		Te.Fatal(err)
	}
	b := v.(map[string]interface{})["b"]
	if diff := cmp.Diff([]interface{}{1.5, 2.5}, b); diff != "" {
		Te.Error(diff)
	}
}

func TestTruncated(Te *testing.T) {
	data := sample()
	for _, n := range []int{1, 5, 20, len(data) - 1} {
		r := NewReader(data[:n], true)
		if _, err := r.Next(); !errors.Is(err, ErrTruncated) {
			Te.Errorf("cut at %d: expected ErrTruncated, got %v", n, err)
		}
	}
	r := NewReader([]byte{0xc1}, true)
	if _, err := r.Next(); err == nil || errors.Is(err, ErrTruncated) {
		Te.Errorf("0xc1 is never valid, got %v", err)
	}
}

func TestExt(Te *testing.T) {
	r := NewReader([]byte{0xd5, 0x07, 0x01, 0x02}, false)
	v, err := r.Next()
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff(Ext{Type: 7, Data: []byte{1, 2}}, v); diff != "" {
		Te.Error(diff)
	}
}

func TestHomogeneousArrays(Te *testing.T) {
	cases := []struct {
		data []byte
		want interface{}
	}{
		{[]byte{0x93, 0x01, 0xd1, 0xff, 0xfe, 0xcd, 0x01, 0x00}, []int{1, -2, 256}},
		{cat([]byte{0x92}, f64(0.5), []byte{0xca, 0x3f, 0xc0, 0x00, 0x00}), []float64{0.5, 1.5}},
		{[]byte{0x92, 0xa1, 'x', 0xd9, 2, 'y', 'z'}, []string{"x", "yz"}},
		{[]byte{0x92, 0xc2, 0xc3}, []bool{false, true}},
		//an element of another type after some of the first one
		{[]byte{0x94, 0x01, 0x02, 0xa1, 'x', 0x03}, []interface{}{1, 2, "x", 3}},
		{cat([]byte{0x92, 0x07}, f64(0.5)), []interface{}{7, 0.5}},
		{[]byte{0x92, 0x90, 0x01}, []interface{}{[]interface{}{}, 1}},
	}
	for i, c := range cases {
		r := NewReader(c.data, true)
		v, err := r.Next()
		if err != nil {
			Te.Fatalf("case %d: %v", i, err)
		}
		if diff := cmp.Diff(c.want, v); diff != "" {
			Te.Errorf("case %d (-want +got):\n%s", i, diff)
		}
		if r.More() {
			Te.Errorf("case %d: data left after the array", i)
		}
	}
	r := NewReader([]byte{0x93, 0x01, 0x02, 0xd1}, true)
	if _, err := r.Next(); !errors.Is(err, ErrTruncated) {
		Te.Errorf("array cut in its last element: %v", err)
	}
}
