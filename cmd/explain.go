package cmd

import (
	"github.com/cottand/ileproto/frontend/scenario"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"text/tabwriter"
)

var ExplainCmd = &cobra.Command{
	Use:          "explain scenario.yaml",
	Short:        "Show how the environment of a scenario is normalized and approximated",
	RunE:         runExplain,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	explainFlags *commonFlags
	explainDump  *bool
)

func init() {
	explainFlags = addCommonFlags(ExplainCmd)
	explainDump = ExplainCmd.Flags().Bool("dump", false, "dump the parsed environment")
}

func runExplain(cmd *cobra.Command, args []string) error {
	explainFlags.apply()
	out, err := newPrinter(cmd.OutOrStdout(), *explainFlags.color)
	if err != nil {
		return err
	}
	s, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	if *explainDump {
		for _, name := range s.EnvNames {
			out.printf("%s:\n", name)
			spew.Fdump(out.w, s.Env[name])
		}
	}

	tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
	out.printf("%s\n", s.Name)
	_, _ = tw.Write([]byte(out.dim.Sprint("name\ttype\tnormalized\tapproximated") + "\n"))
	for _, e := range s.Explain() {
		_, _ = tw.Write([]byte(e.Name + "\t" + e.Type + "\t" + e.Normalized + "\t" + e.Approximated + "\n"))
	}
	return tw.Flush()
}
