package main

import (
	"fmt"
	"io"

	xtal "github.com/rmera/goxtal"
	"github.com/spf13/cobra"
)

func newAtomsCmd(g *globals) *cobra.Command {
	var setIndex int
	var cartesian bool

	cmd := &cobra.Command{
		Use:   "atoms file",
		Short: "List the atoms of a file",
		Long: `List the atoms of a file, one per line: name, element, residue, chain,
coordinates, occupancy and B factor.

By default all atom sets are listed. Coordinates are printed as they were read,
fractional or Cartesian, unless -c is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := g.read(args[0])
			if critical(err) {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if setIndex > len(coll.Sets) {
				return fmt.Errorf("%s has %d atom sets", args[0], len(coll.Sets))
			}
			for i, set := range coll.Sets {
				if setIndex > 0 && i != setIndex-1 {
					continue
				}
				printAtoms(cmd.OutOrStdout(), set, cartesian)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&setIndex, "set", "s", 0, "list only this atom set (1-based)")
	cmd.Flags().BoolVarP(&cartesian, "cartesian", "c", false, "print Cartesian coordinates")

	return cmd
}

func printAtoms(out io.Writer, set *xtal.AtomSet, cartesian bool) {
	fmt.Fprintf(out, "# %s\n", set.Name)
	for i, at := range set.Atoms {
		c := at.Coords
		if cartesian {
			c = set.Cartesian(i)
		}
		fmt.Fprintf(out, "%6d %-6s %-2s %-3s %5d%1s %-2s %10.5f %10.5f %10.5f %5.2f %7.2f",
			i+1, at.Name, at.Symbol, at.ResName, at.ResNum, at.InsCode, at.Chain, c[0], c[1], c[2], at.Occupancy, at.BFactor)
		if at.AltLoc != "" {
			fmt.Fprintf(out, " alt %s", at.AltLoc)
		}
		if at.Charge != 0 {
			fmt.Fprintf(out, " charge %+d", at.Charge)
		}
		fmt.Fprintln(out)
	}
}
