// xtalinfo reads CIF, mmCIF and MMTF files and prints what goxtal makes of them.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var g globals
	rootCmd := &cobra.Command{
		Use:   "xtalinfo",
		Short: "Inspect crystallographic and macromolecular structure files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.configureLogging()
		},
		SilenceUsage: true,
	}
	g.addFlags(rootCmd)

	rootCmd.AddCommand(newSummaryCmd(&g))
	rootCmd.AddCommand(newAtomsCmd(&g))
	rootCmd.AddCommand(newNotesCmd(&g))
	rootCmd.AddCommand(newBondsCmd(&g))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
