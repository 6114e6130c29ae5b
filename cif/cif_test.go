package cif

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tokens(Te *testing.T, text string, cif2 bool) ([]Token, error) {
	Te.Helper()
	t := NewTokenizer(NewStringSource(text))
	t.SetCIF2(cif2)
	var ret []Token
	for {
		tok, err := t.Next()
		if err == io.EOF {
			return ret, nil
		}
		if err != nil {
			return ret, err
		}
		tok.Line = 0
		ret = append(ret, tok)
	}
}

func TestBareAndQuoted(Te *testing.T) {
	text := "data_test\n_name 'O'Brien' # a comment\n_other \"two words\" . ? '.'\n"
	got, err := tokens(Te, text, false)
	if err != nil {
		Te.Fatal(err)
	}
	want := []Token{
		{Kind: Bare, Value: "data_test"},
		{Kind: Bare, Value: "_name"},
		{Kind: Quoted, Value: "O'Brien"},
		{Kind: Bare, Value: "_other"},
		{Kind: Quoted, Value: "two words"},
		{Kind: Bare, Value: "."},
		{Kind: Bare, Value: "?"},
		{Kind: Quoted, Value: "."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		Te.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !got[5].IsNull() || !got[6].IsNull() || got[7].IsNull() {
		Te.Error("only unquoted . and ? are null")
	}
	if !got[1].IsKey() || got[2].IsKey() {
		Te.Error("bad key detection")
	}
}

func TestUnterminatedQuoteCIF1(Te *testing.T) {
	t := NewTokenizer(NewStringSource("_a 'no end\n_b 1\n"))
	warned := 0
	t.Warn = func(int, string) { warned++ }
	t.Next()
	tok, err := t.Next()
	if err != nil || tok.Value != "no end" {
		Te.Errorf("got %v %v", tok, err)
	}
	if warned != 1 {
		Te.Errorf("expected a warning")
	}
	tok, _ = t.Next()
	if tok.Value != "_b" {
		Te.Errorf("the next line should be read normally, got %v", tok)
	}
}

func TestCIF2Quotes(Te *testing.T) {
	_, err := tokens(Te, "_name 'O'Brien'\n", true)
	var se *SyntaxError
	if !errors.As(err, &se) {
		Te.Fatalf("expected a syntax error, got %v", err)
	}
	if se.LineNo != 1 {
		Te.Errorf("wrong line %d", se.LineNo)
	}
	got, err := tokens(Te, "#\\#CIF_2.0\n_a '''line one\nline 'two'\n'''\n", false)
	if err != nil {
		Te.Fatal(err)
	}
	want := []Token{{Kind: Bare, Value: "_a"}, {Kind: TripleQuoted, Value: "line one\nline 'two'\n"}}
	if diff := cmp.Diff(want, got); diff != "" {
		Te.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := tokens(Te, "_a \"\"\"never\nclosed\n", true); err == nil {
		Te.Error("unterminated triple quote must fail")
	}
}

func TestCIF2ListTable(Te *testing.T) {
	got, err := tokens(Te, "_l [1 'a b' [2 3]]\n_t {'x':1.5 'y':[a]}\n", true)
	if err != nil {
		Te.Fatal(err)
	}
	want := []Token{
		{Kind: Bare, Value: "_l"},
		{Kind: List, Items: []Token{
			{Kind: Bare, Value: "1"},
			{Kind: Quoted, Value: "a b"},
			{Kind: List, Items: []Token{{Kind: Bare, Value: "2", Line: 1}, {Kind: Bare, Value: "3", Line: 1}}, Line: 1},
		}},
		{Kind: Bare, Value: "_t"},
		{Kind: Table, Keys: []string{"x", "y"}, Items: []Token{
			{Kind: Bare, Value: "1.5", Line: 2},
			{Kind: List, Items: []Token{{Kind: Bare, Value: "a", Line: 2}}, Line: 2},
		}},
	}
	//inner tokens keep their lines
	want[1].Items[0].Line, want[1].Items[1].Line = 1, 1
	if diff := cmp.Diff(want, got); diff != "" {
		Te.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTextField(Te *testing.T) {
	text := "_t\n;\nfirst line\n  second\n;\n_u ;not text\n_f\n;\\\nabc\\\ndef\n;\n"
	got, err := tokens(Te, text, false)
	if err != nil {
		Te.Fatal(err)
	}
	if got[1].Kind != Text || got[1].Value != "first line\n  second" {
		Te.Errorf("bad text field %q", got[1].Value)
	}
	if got[3].Kind != Bare || got[3].Value != ";not" {
		Te.Errorf("a semicolon not at the start of the line is not a delimiter: %v", got[3])
	}
	if got[6].Value != "abcdef" {
		Te.Errorf("bad folded text %q", got[6].Value)
	}
	_, err = tokens(Te, "_t\n;\nnever closed\n", false)
	var se *SyntaxError
	if !errors.As(err, &se) {
		Te.Errorf("unterminated text field should fail, got %v", err)
	}
}

func TestScriptMarker(Te *testing.T) {
	t := NewTokenizer(NewStringSource("#jmolscript: spacefill off\n_a 1\n"))
	for {
		if _, err := t.Next(); err != nil {
			break
		}
	}
	if t.Script() != "spacefill off\n" {
		Te.Errorf("got %q", t.Script())
	}
}

func TestFieldMap(Te *testing.T) {
	text := `loop_
_atom_site.label
_atom_site_fract_x
_atom_site.unknown
_atom_site_label
1 0.5 x 99
2 0.25(3) y 98
_next 1
`
	t := NewTokenizer(NewStringSource(text))
	t.Next()
	m := NewFieldMap([]string{"_atom_site_label", "_atom_site_fract_x", "_atom_site_fract_y"})
	if err := m.Parse(t); err != nil {
		Te.Fatal(err)
	}
	if m.NCols() != 4 {
		Te.Errorf("expected 4 columns, got %d", m.NCols())
	}
	if m.Col(0) != 0 || m.Col(1) != 1 || m.Col(2) != None {
		Te.Errorf("bad mapping %d %d %d", m.Col(0), m.Col(1), m.Col(2))
	}
	var row Row
	var labels []string
	var xs []float64
	for {
		ok, err := m.ReadRow(t, &row)
		if err != nil {
			Te.Fatal(err)
		}
		if !ok {
			break
		}
		labels = append(labels, row.Str(0))
		x, _ := row.Float(1)
		xs = append(xs, x)
		if row.Has(2) {
			Te.Error("absent field reported")
		}
	}
	if diff := cmp.Diff([]string{"1", "2"}, labels); diff != "" {
		Te.Error(diff)
	}
	if diff := cmp.Diff([]float64{0.5, 0.25}, xs); diff != "" {
		Te.Error(diff)
	}
	tok, _ := t.Next()
	if tok.Value != "_next" {
		Te.Errorf("the loop should end at the next data name, got %v", tok)
	}

	t = NewTokenizer(NewStringSource("loop_\n1 2\n"))
	t.Next()
	if err := m.Parse(t); !errors.Is(err, ErrNoFields) {
		Te.Errorf("expected ErrNoFields, got %v", err)
	}
}

func TestDynamicFieldMap(Te *testing.T) {
	t := NewTokenizer(NewStringSource("loop_\n_a.x\n_a.y\n1 2\n3\n"))
	t.Next()
	m := NewFieldMap(nil)
	if err := m.Parse(t); err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]string{"_a_x", "_a_y"}, m.Keys()); diff != "" {
		Te.Error(diff)
	}
	var row Row
	ok, err := m.ReadRow(t, &row)
	if !ok || err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"_a_x": "1", "_a_y": "2"}, row.Map()); diff != "" {
		Te.Error(diff)
	}
	if _, err := m.ReadRow(t, &row); !errors.Is(err, ErrShortRow) {
		Te.Errorf("expected ErrShortRow, got %v", err)
	}
}

func TestParseUncertain(Te *testing.T) {
	cases := []struct {
		in   string
		v, u float64
		hasU bool
	}{
		{"3.567(12)", 3.567, 0.012, true},
		{"3.567", 3.567, 0, false},
		{"1520(30)", 1520, 30, true},
		{"-1.5(2)", -1.5, 0.2, true},
		{"0.98(1)", 0.98, 0.01, true},
	}
	for _, c := range cases {
		v, u, hasU, ok := ParseUncertain(c.in)
		if !ok || hasU != c.hasU || math.Abs(v-c.v) > 1e-9 || math.Abs(u-c.u) > 1e-9 {
			Te.Errorf("%s: got %v %v %v %v", c.in, v, u, hasU, ok)
		}
	}
	if _, _, _, ok := ParseUncertain("?"); ok {
		Te.Error("null parsed as a number")
	}
}

func TestSetSource(Te *testing.T) {
	t := NewTokenizer(NewStringSource("_a 1\n"))
	var got []string
	for {
		tok, err := t.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			Te.Fatal(err)
		}
		got = append(got, tok.Value)
	}
	t.SetSource(NewStringSource("_b 2\n"))
	for {
		tok, err := t.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			Te.Fatal(err)
		}
		got = append(got, tok.Value)
	}
	if diff := cmp.Diff([]string{"_a", "1", "_b", "2"}, got); diff != "" {
		Te.Errorf("appended data (-want +got):\n%s", diff)
	}
}
