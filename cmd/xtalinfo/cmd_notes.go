package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotesCmd(g *globals) *cobra.Command {
	var warnings bool

	cmd := &cobra.Command{
		Use:   "notes file",
		Short: "Print the notes and warnings written while reading a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := g.read(args[0])
			if critical(err) {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, n := range coll.Notes {
				if warnings && !isWarning(n) {
					continue
				}
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&warnings, "warnings", "w", false, "print only the warnings")

	return cmd
}

func isWarning(note string) bool {
	const prefix = "warning: "
	return len(note) >= len(prefix) && note[:len(prefix)] == prefix
}
