package main

import (
	"github.com/cottand/ileproto/cmd"
	"github.com/spf13/cobra"
	"os"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "ileproto [subcommand]",
	Short:        "ileproto\n runs expected-type inference probes described in YAML scenarios",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.ProbeCmd)
	rootCmd.AddCommand(cmd.ExplainCmd)
}
