package main

import (
	"fmt"
	"io"
	"sort"

	xtal "github.com/rmera/goxtal"
	"github.com/spf13/cobra"
)

func newSummaryCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "summary file...",
		Short: "Print the atom sets, symmetry and secondary structure of each file",
		Long: `Print a summary of each file: its format, and for every atom set (model or
data block) the number of atoms and bonds, the unit cell and the space group.

Use "-" to read the standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				coll, err := g.read(path)
				if critical(err) {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err != nil {
					fmt.Fprintf(out, "%s: %s\n", path, err)
				}
				printSummary(out, path, coll)
			}
			return nil
		},
	}
}

func printSummary(out io.Writer, path string, coll *xtal.AtomSetCollection) {
	if coll == nil {
		return
	}
	fmt.Fprintf(out, "%s: %v, %d atom sets, %d atoms\n", path, coll.Info["fileType"], len(coll.Sets), coll.NAtoms())
	for _, k := range []string{"entryID", "structureId", "title"} {
		if v, ok := coll.Info[k]; ok {
			fmt.Fprintf(out, "  %s: %v\n", k, v)
		}
	}
	for i, set := range coll.Sets {
		fmt.Fprintf(out, "  [%d] %s: %d atoms, %d bonds", i+1, set.Name, set.Len(), len(set.Bonds))
		if c := set.Cell(); c != nil {
			p := c.Params()
			fmt.Fprintf(out, ", cell %.4f %.4f %.4f %.2f %.2f %.2f", p[0], p[1], p[2], p[3], p[4], p[5])
		}
		if set.Symmetry != nil {
			fmt.Fprintf(out, ", %d operators", set.Symmetry.Len())
			if set.Symmetry.SpaceGroup != "" {
				fmt.Fprintf(out, ", space group %q", set.Symmetry.SpaceGroup)
			}
		}
		fmt.Fprintln(out)
		counts := make(map[xtal.StructureKind]int)
		for _, st := range coll.StructuresFor(i) {
			counts[st.Kind]++
		}
		kinds := make([]int, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, int(k))
		}
		sort.Ints(kinds)
		for _, k := range kinds {
			fmt.Fprintf(out, "      %s: %d\n", xtal.StructureKind(k), counts[xtal.StructureKind(k)])
		}
	}
}
