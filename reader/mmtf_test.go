package reader

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	xtal "github.com/rmera/goxtal"
)

func gzipped(Te *testing.T, data []byte) []byte {
	Te.Helper()
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	return b.Bytes()
}

//A minimal MessagePack writer, enough to build MMTF files.

func mpStr(s string) []byte {
	if len(s) < 32 {
		return append([]byte{0xa0 | byte(len(s))}, s...)
	}
	return append([]byte{0xd9, byte(len(s))}, s...)
}

func mpInt(v int) []byte {
	b := []byte{0xd2, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(b[1:], uint32(int32(v)))
	return b
}

func mpFloat(v float64) []byte {
	b := make([]byte, 9)
	b[0] = 0xcb
	binary.BigEndian.PutUint64(b[1:], math.Float64bits(v))
	return b
}

func mpBin(data []byte) []byte {
	b := []byte{0xc6, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(b[1:], uint32(len(data)))
	return append(b, data...)
}

func mpArray(elems ...[]byte) []byte {
	b := []byte{0xdc, 0, 0}
	binary.BigEndian.PutUint16(b[1:], uint16(len(elems)))
	for _, e := range elems {
		b = append(b, e...)
	}
	return b
}

// mpMap writes a map from alternating keys and values.
func mpMap(kv ...interface{}) []byte {
	b := []byte{0xde, 0, 0}
	binary.BigEndian.PutUint16(b[1:], uint16(len(kv)/2))
	for i := 0; i < len(kv); i += 2 {
		b = append(b, mpStr(kv[i].(string))...)
		b = append(b, kv[i+1].([]byte)...)
	}
	return b
}

func mpInts(v ...int) []byte {
	elems := make([][]byte, len(v))
	for i, x := range v {
		elems[i] = mpInt(x)
	}
	return mpArray(elems...)
}

func mpFloats(v ...float64) []byte {
	elems := make([][]byte, len(v))
	for i, x := range v {
		elems[i] = mpFloat(x)
	}
	return mpArray(elems...)
}

func mpStrs(v ...string) []byte {
	elems := make([][]byte, len(v))
	for i, x := range v {
		elems[i] = mpStr(x)
	}
	return mpArray(elems...)
}

// encoded returns an MMTF binary array with the given header and data integers of size bytes each.
func encoded(codec, length, param, size int, data ...int) []byte {
	b := make([]byte, 12, 12+size*len(data))
	binary.BigEndian.PutUint32(b, uint32(int32(codec)))
	binary.BigEndian.PutUint32(b[4:], uint32(int32(length)))
	binary.BigEndian.PutUint32(b[8:], uint32(int32(param)))
	for _, v := range data {
		switch size {
		case 1:
			b = append(b, byte(int8(v)))
		case 2:
			b = binary.BigEndian.AppendUint16(b, uint16(int16(v)))
		default:
			b = binary.BigEndian.AppendUint32(b, uint32(int32(v)))
		}
	}
	return b
}

func TestDecodeMMTFArray(Te *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want interface{}
	}{
		{"int8", encoded(2, 3, 0, 1, 1, -1, 7), []int{1, -1, 7}},
		{"int16", encoded(3, 2, 0, 2, 300, -300), []int{300, -300}},
		{"int32", encoded(4, 2, 0, 4, 70000, -1), []int{70000, -1}},
		{"run-length", encoded(7, 4, 0, 4, 5, 3, 2, 1), []int{5, 5, 5, 2}},
		{"delta", encoded(8, 4, 0, 4, 1, 4), []int{1, 2, 3, 4}},
		{"run-length float", encoded(9, 2, 100, 4, 50, 2), []float64{0.5, 0.5}},
		{"coordinates", encoded(10, 3, 1000, 2, 32767, 1233, -1000, 500), []float64{34, 33, 33.5}},
		{"int16 float", encoded(11, 2, 10, 2, 15, -5), []float64{1.5, -0.5}},
		{"recursive float", encoded(12, 1, 10, 2, 32767, 3), []float64{3277}},
		{"recursive int8 float", encoded(13, 2, 100, 1, 127, 1, -5), []float64{1.28, -0.05}},
		{"recursive int16", encoded(14, 2, 0, 2, 32767, 1, -32768, -2), []int{32768, -32770}},
		{"recursive int8", encoded(15, 1, 0, 1, 127, 127, 3), []int{257}},
		{"chars", encoded(6, 3, 0, 4, 'A', 2, 0, 1), []string{"A", "A", ""}},
	}
	for _, c := range cases {
		got, err := decodeMMTFArray(c.in)
		if err != nil {
			Te.Errorf("%s: %v", c.name, err)
			continue
		}
		if diff := cmp.Diff(c.want, got, approx); diff != "" {
			Te.Errorf("%s: %s", c.name, diff)
		}
	}
	strs := append(encoded(5, 2, 4, 1), 'A', 0, 0, 0, 'B', 'C', 0, 0)
	got, err := decodeMMTFArray(strs)
	if err != nil || !cmp.Equal([]string{"A", "BC"}, got) {
		Te.Errorf("fixed-width strings: %v %v", got, err)
	}
	bad := [][]byte{
		{0, 0, 0, 4},                                    //short header
		encoded(4, 1, 0, 1, 1),                          //1 byte for an int32
		encoded(7, 1, 0, 4, 1, 5),                       //runs longer than the array
		encoded(99, 0, 0, 4),                            //unknown codec
		append(encoded(5, 2, 4, 1), 'A'),                //strings cut short
		encoded(7, 3, 0, 4, 1),                          //odd run-length data
		encoded(8, -1, 0, 4, 1, 1),                      //negative length
		encoded(5, -1, 4, 4, 0),                         //negative number of strings
		encoded(5, 1<<30, 4, 1),                         //more strings than the data holds
		encoded(5, 2, 0, 1),                             //zero string width
		encoded(7, 10, 0, 4, 1, -2, 2, 5),               //negative run
		encoded(6, 1<<30, 0, 4, 'A', 1<<30, 'B', 1<<30), //runs beyond a huge length
	}
	for i, b := range bad {
		if _, err := decodeMMTFArray(b); err == nil {
			Te.Errorf("bad array %d accepted", i)
		}
	}
}

func TestSplitList(Te *testing.T) {
	got, err := splitList([]int{1000, 2, 1500, 0}, []int{0, 0}, 1000)
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]float64{1, 1, 1, 2.5}, got, approx); diff != "" {
		Te.Error(diff)
	}
	if _, err := splitList([]int{1000, 3}, []int{1}, 1000); err == nil {
		Te.Error("a big list that refers to missing small values must fail")
	}
}

// mmtfSample is a file with one model, one chain, an alanine and a water.
func mmtfSample(extra ...interface{}) []byte {
	ala := mpMap(
		"groupName", mpStr("ALA"),
		"atomNameList", mpStrs("N", "CA"),
		"elementList", mpStrs("N", "C"),
		"formalChargeList", mpInts(0, 0),
		"bondAtomList", mpInts(0, 1),
		"bondOrderList", mpInts(1),
		"chemCompType", mpStr("L-PEPTIDE LINKING"),
	)
	hoh := mpMap(
		"groupName", mpStr("HOH"),
		"atomNameList", mpStrs("O"),
		"elementList", mpStrs("O"),
		"formalChargeList", mpInts(0),
		"bondAtomList", mpArray(),
		"bondOrderList", mpArray(),
		"chemCompType", mpStr("NON-POLYMER"),
	)
	transform := mpMap(
		"chainIndexList", mpInts(0),
		"matrix", mpFloats(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 10, 0, 0, 1),
	)
	kv := []interface{}{
		"mmtfVersion", mpStr("1.0.0"),
		"structureId", mpStr("1TST"),
		"numAtoms", mpInt(3),
		"groupList", mpArray(ala, hoh),
		"xCoordList", mpBin(encoded(10, 3, 1000, 2, 1000, 500, -250)),
		"yCoordList", mpBin(encoded(10, 3, 1000, 2, 0, 0, 0)),
		"zCoordList", mpBin(encoded(10, 3, 1000, 2, 0, 0, 1000)),
		"bFactorList", mpBin(encoded(10, 3, 100, 2, 1000, 0, 500)),
		"occupancyList", mpBin(encoded(9, 3, 100, 4, 100, 3)),
		"atomIdList", mpBin(encoded(8, 3, 0, 4, 1, 3)),
		"altLocList", mpBin(encoded(6, 3, 0, 4, 0, 3)),
		"groupIdList", mpBin(encoded(8, 2, 0, 4, 1, 2)),
		"groupTypeList", mpBin(encoded(4, 2, 0, 4, 0, 1)),
		"secStructList", mpBin(encoded(2, 2, 0, 1, 2, -1)),
		"insCodeList", mpBin(encoded(6, 2, 0, 4, 0, 2)),
		"chainIdList", mpBin(append(encoded(5, 1, 4, 1), 'A', 0, 0, 0)),
		"chainNameList", mpBin(append(encoded(5, 1, 4, 1), 'A', 0, 0, 0)),
		"groupsPerChain", mpInts(2),
		"chainsPerModel", mpInts(1),
		"bondAtomList", mpBin(encoded(4, 2, 0, 4, 1, 2)),
		"bondOrderList", mpBin(encoded(2, 1, 0, 1, 1)),
		"unitCell", mpFloats(20, 20, 20, 90, 90, 90),
		"spaceGroup", mpStr("P 1"),
		"bioAssemblyList", mpArray(mpMap("name", mpStr("1"), "transformList", mpArray(transform))),
	}
	return mpMap(append(kv, extra...)...)
}

func TestReadMMTF(Te *testing.T) {
	coll, err := ReadNamed(bytes.NewReader(mmtfSample()), "1tst", xtal.Options{})
	if err != nil {
		Te.Fatal(err)
	}
	if coll.Info["fileType"] != "MMTF" || coll.Info["structureId"] != "1TST" {
		Te.Errorf("bad collection info %v", coll.Info)
	}
	if len(coll.Sets) != 1 || coll.Sets[0].Len() != 3 {
		Te.Fatalf("expected one model with 3 atoms")
	}
	set := coll.Sets[0]
	type summary struct {
		Name, Symbol, ResName string
		ResNum, ID            int
		Het                   bool
		Coords                [3]float64
		BFactor, Occupancy    float64
	}
	var got []summary
	for _, at := range set.Atoms {
		got = append(got, summary{at.Name, at.Symbol, at.ResName, at.ResNum, at.ID, at.Het, at.Coords, at.BFactor, at.Occupancy})
	}
	want := []summary{
		{"N", "N", "ALA", 1, 1, false, [3]float64{1, 0, 0}, 10, 1},
		{"CA", "C", "ALA", 1, 2, false, [3]float64{1.5, 0, 0}, 10, 1},
		{"O", "O", "HOH", 2, 3, true, [3]float64{1.25, 0, 1}, 15, 1},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		Te.Errorf("atoms (-want +got):\n%s", diff)
	}
	if len(set.Bonds) != 2 || set.Bond(0, 1) == nil || set.Bond(1, 2) == nil {
		Te.Errorf("expected the template bond and the inter-group bond, got %v", set.Bonds)
	}
	if set.Info["spaceGroup"] != "P 1" || set.Cell() == nil {
		Te.Errorf("unit cell not read: %v", set.Info)
	}
	if _, ok := set.Info["biomolecules"]; !ok {
		Te.Error("assemblies not described")
	}
	if len(coll.Structures) != 1 {
		Te.Fatalf("expected one helix, got %d spans", len(coll.Structures))
	}
	if h := coll.Structures[0]; h.Kind != xtal.StructureHelix || h.SubClass != xtal.HelixAlpha || h.StartRes != 1 || h.EndRes != 1 {
		Te.Errorf("bad helix %+v", h)
	}
}

func TestReadMMTFAssembly(Te *testing.T) {
	coll, err := ReadMMTF(mmtfSample(), "1tst", xtal.ParseOptions("ASSEMBLY 1"))
	if err != nil {
		Te.Fatal(err)
	}
	set := coll.Sets[0]
	if set.Len() != 3 || set.Info["assembly"] != "1" {
		Te.Fatalf("expected the 3 atoms of chain A, got %d", set.Len())
	}
	if diff := cmp.Diff([3]float64{11, 0, 0}, set.Atom(0).Coords, approx); diff != "" {
		Te.Errorf("transformed position: %s", diff)
	}
	if len(set.Bonds) != 2 {
		Te.Errorf("bonds lost in the assembly, %d left", len(set.Bonds))
	}
}

func TestReadMMTFLegacyCoords(Te *testing.T) {
	big := func(v ...int) []byte {
		var b []byte
		for _, x := range v {
			b = binary.BigEndian.AppendUint32(b, uint32(int32(x)))
		}
		return b
	}
	small := func(v ...int) []byte {
		var b []byte
		for _, x := range v {
			b = binary.BigEndian.AppendUint16(b, uint16(int16(x)))
		}
		return b
	}
	data := mpMap(
		"groupList", mpArray(mpMap("groupName", mpStr("MG"), "atomNameList", mpStrs("MG", "MG", "MG"), "elementList", mpStrs("MG", "MG", "MG"), "chemCompType", mpStr("NON-POLYMER"))),
		"xCoordBig", mpBin(big(1000, 2)), "xCoordSmall", mpBin(small(500, -250)),
		"yCoordBig", mpBin(big(0, 2)), "yCoordSmall", mpBin(small(0, 0)),
		"zCoordBig", mpBin(big(0, 2)), "zCoordSmall", mpBin(small(0, 0)),
		"groupTypeList", mpInts(0),
		"groupIdList", mpInts(1),
		"groupsPerChain", mpInts(1),
		"chainIdList", mpStrs("A"),
	)
	coll, err := ReadMMTF(data, "legacy", xtal.Options{})
	if err != nil {
		Te.Fatal(err)
	}
	set := coll.Sets[0]
	if set.Len() != 3 || set.Atom(0).Symbol != "Mg" {
		Te.Fatalf("expected 3 Mg atoms, got %d", set.Len())
	}
	var xs []float64
	for _, at := range set.Atoms {
		xs = append(xs, at.Coords[0])
	}
	if diff := cmp.Diff([]float64{1, 1.5, 1.25}, xs, approx); diff != "" {
		Te.Error(diff)
	}
}

func TestReadMMTFErrors(Te *testing.T) {
	if _, err := ReadMMTF([]byte{0xde, 0x00}, "short", xtal.Options{}); err == nil {
		Te.Error("truncated file accepted")
	}
	if _, err := ReadMMTF(mpInts(1, 2), "array", xtal.Options{}); err == nil {
		Te.Error("a file that is not a map accepted")
	}
	bad := mmtfSample("numAtoms", mpInt(7))
	if _, err := ReadMMTF(bad, "count", xtal.Options{}); err == nil {
		Te.Error("atom count mismatch accepted")
	}
	group := func(bonds ...int) []byte {
		ala := mpMap(
			"groupName", mpStr("ALA"),
			"atomNameList", mpStrs("N", "CA"),
			"elementList", mpStrs("N", "C"),
			"formalChargeList", mpInts(0, 0),
			"bondAtomList", mpInts(bonds...),
			"bondOrderList", mpInts(1),
		)
		hoh := mpMap("groupName", mpStr("HOH"), "atomNameList", mpStrs("O"), "elementList", mpStrs("O"))
		return mpArray(ala, hoh)
	}
	files := map[string][]byte{
		"negative template bond": mmtfSample("groupList", group(0, -5)),
		"template bond too far":  mmtfSample("groupList", group(0, 2)),
		"odd template bonds":     mmtfSample("groupList", group(0)),
		"odd bonds":              mmtfSample("bondAtomList", mpBin(encoded(4, 3, 0, 4, 1, 2, 0))),
		"negative length":        mmtfSample("xCoordList", mpBin(encoded(10, -1, 1000, 2, 1000))),
		"negative run":           mmtfSample("atomIdList", mpBin(encoded(8, 3, 0, 4, 1, -3))),
	}
	for name, data := range files {
		if _, err := ReadMMTF(data, name, xtal.Options{}); err == nil {
			Te.Errorf("%s: accepted", name)
		}
	}
}
