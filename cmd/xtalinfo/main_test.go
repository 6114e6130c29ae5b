package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func run(Te *testing.T, g *globals, cmd *cobra.Command, args ...string) string {
	Te.Helper()
	var out bytes.Buffer
	root := &cobra.Command{Use: "xtalinfo"}
	g.addFlags(root)
	root.AddCommand(cmd)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		Te.Fatalf("%v: %s", err, out.String())
	}
	return out.String()
}

func TestOptionsFile(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "opts.yaml")
	err := os.WriteFile(path, []byte("filter: MODEL 2\nnohydrogens: true\nconf: 1\n"), 0o644)
	if err != nil {
		Te.Fatal(err)
	}
	g := &globals{optsFile: path, filter: "PACKED"}
	opts, err := g.options()
	if err != nil {
		Te.Fatal(err)
	}
	if opts.Filter != "MODEL 2;PACKED" {
		Te.Errorf("filter %q", opts.Filter)
	}
	if diff := cmp.Diff([]int{2}, opts.Models); diff != "" {
		Te.Errorf("models (-want +got):\n%s", diff)
	}
	if !opts.Packed || !opts.NoHydrogens || opts.Conf != 1 {
		Te.Errorf("options not merged: %+v", opts)
	}
}

func TestSummary(Te *testing.T) {
	g := &globals{}
	out := run(Te, g, newSummaryCmd(g), "summary", "../../reader/test/water.cif")
	for _, want := range []string{"CIF, 1 atom sets, 2 atoms", "2 operators", `space group "P -1"`} {
		if !strings.Contains(out, want) {
			Te.Errorf("summary lacks %q:\n%s", want, out)
		}
	}
}

func TestAtoms(Te *testing.T) {
	g := &globals{}
	out := run(Te, g, newAtomsCmd(g), "atoms", "-c", "--filter", "PACKED", "../../reader/test/water.cif")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		Te.Fatalf("want a header and 4 atoms, got:\n%s", out)
	}
	if f := strings.Fields(lines[1]); f[1] != "O1" || f[2] != "O" {
		Te.Errorf("first atom: %s", lines[1])
	}
}

func TestNotes(Te *testing.T) {
	g := &globals{}
	out := run(Te, g, newNotesCmd(g), "notes", "-w", "../../reader/test/conflict.cif")
	if !strings.Contains(out, "none applied") {
		Te.Errorf("missing conflict warning:\n%s", out)
	}
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if !isWarning(l) {
			Te.Errorf("not a warning: %s", l)
		}
	}
}

func TestBonds(Te *testing.T) {
	g := &globals{}
	out := run(Te, g, newBondsCmd(g), "bonds", "--bins", "2", "../../reader/test/water.cif")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		Te.Fatalf("want a header, one pair and two bins, got:\n%s", out)
	}
	f := strings.Fields(lines[1])
	if diff := cmp.Diff([]string{"H-O", "1", "0.9600", "0.0000", "0.9600", "0.9600"}, f); diff != "" {
		Te.Errorf("O-H line (-want +got):\n%s", diff)
	}
}
