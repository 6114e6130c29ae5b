package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	xtal "github.com/rmera/goxtal"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func newBondsCmd(g *globals) *cobra.Command {
	var setIndex, bins int

	cmd := &cobra.Command{
		Use:   "bonds file",
		Short: "Print bond length statistics per pair of elements",
		Long: `Print, for each pair of elements, the number of bonds and the mean, standard
deviation, minimum and maximum of their lengths in A. With --bins, a histogram
of the lengths is printed too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := g.read(args[0])
			if critical(err) {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if setIndex < 1 || setIndex > len(coll.Sets) {
				return fmt.Errorf("%s has %d atom sets", args[0], len(coll.Sets))
			}
			printBonds(cmd.OutOrStdout(), coll.Sets[setIndex-1], bins)
			return nil
		},
	}

	cmd.Flags().IntVarP(&setIndex, "set", "s", 1, "atom set to use (1-based)")
	cmd.Flags().IntVarP(&bins, "bins", "b", 0, "print a histogram with this many bins")

	return cmd
}

// bondLengths returns the lengths of the bonds of set, sorted, by element pair.
func bondLengths(set *xtal.AtomSet) map[string][]float64 {
	ret := make(map[string][]float64)
	for _, b := range set.Bonds {
		s1, s2 := set.Atom(b.At1).Symbol, set.Atom(b.At2).Symbol
		if s1 > s2 {
			s1, s2 = s2, s1
		}
		d := b.Dist
		if d == 0 {
			c1, c2 := set.Cartesian(b.At1), set.Cartesian(b.At2)
			d = floats.Distance(c1[:], c2[:], 2)
		}
		ret[s1+"-"+s2] = append(ret[s1+"-"+s2], d)
	}
	for _, v := range ret {
		sort.Float64s(v)
	}
	return ret
}

func printBonds(out io.Writer, set *xtal.AtomSet, bins int) {
	lengths := bondLengths(set)
	pairs := make([]string, 0, len(lengths))
	for k := range lengths {
		pairs = append(pairs, k)
	}
	sort.Strings(pairs)
	fmt.Fprintf(out, "# %s: %d bonds\n", set.Name, len(set.Bonds))
	for _, p := range pairs {
		d := lengths[p]
		mean, std := stat.MeanStdDev(d, nil)
		if len(d) == 1 {
			std = 0
		}
		fmt.Fprintf(out, "%-6s %5d %7.4f %7.4f %7.4f %7.4f\n", p, len(d), mean, std, d[0], d[len(d)-1])
		if bins > 0 {
			printHistogram(out, d, bins)
		}
	}
}

// printHistogram prints the counts of the sorted data d in bins of equal width.
func printHistogram(out io.Writer, d []float64, bins int) {
	lo, hi := d[0], d[len(d)-1]
	if hi-lo < 1e-3 {
		lo, hi = lo-0.005, hi+0.005
	}
	//stat.Histogram wants all the data below the last divider.
	dividers := floats.Span(make([]float64, bins+1), lo, hi+1e-9)
	counts := stat.Histogram(nil, dividers, d, nil)
	for i, c := range counts {
		fmt.Fprintf(out, "    %7.4f-%7.4f %4d %s\n", dividers[i], dividers[i+1], int(c), strings.Repeat("*", int(c)))
	}
}
