package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rga-load",
		Short: "Loads knockout analysis files into the RGA search index",
		Long: `rga-load reads JSON-lines files of individuals with their knocked-out
genes, encodes them into flat knockout records and bulk indexes them.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newLoadCmd())
	return rootCmd
}
