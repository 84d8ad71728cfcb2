package main

import (
	"os"

	"github.com/cottand/decomp/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "decomp [subcommand]",
	Short:        "decomp\n a managed-bytecode disassembler core",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.DumpCmd)
}
