package cmd

import (
	"fmt"
	"github.com/cottand/ileproto/frontend/ilerr"
	"github.com/cottand/ileproto/frontend/scenario"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var ProbeCmd = &cobra.Command{
	Use:          "probe scenario.yaml...",
	Short:        "Run the probes of scenario files and report which fail",
	RunE:         runProbe,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	probeFlags *commonFlags
	probeDump  *bool
	probeOnly  *string
)

func init() {
	probeFlags = addCommonFlags(ProbeCmd)
	probeDump = ProbeCmd.Flags().Bool("dump", false, "dump the errors reported by failing probes")
	probeOnly = ProbeCmd.Flags().StringP("run", "r", "", "only run probes whose name contains this")
}

// errProbesFailed is returned once every scenario ran, so that the exit status is non-zero
type errProbesFailed struct {
	failed, total int
}

func (e errProbesFailed) Error() string {
	return fmt.Sprintf("%d of %d probes failed", e.failed, e.total)
}

func runProbe(cmd *cobra.Command, args []string) error {
	probeFlags.apply()
	out, err := newPrinter(cmd.OutOrStdout(), *probeFlags.color)
	if err != nil {
		return err
	}

	failed, total := 0, 0
	for _, path := range args {
		s, err := scenario.Load(path)
		if err != nil {
			return err
		}
		if *probeOnly != "" {
			s = s.Filter(*probeOnly)
		}
		out.printf("%s\n", s.Name)
		for _, result := range s.Run() {
			total++
			if result.Passed() {
				out.printf("  %s %s\n", out.pass.Sprint("PASS"), result.Probe.Name())
				continue
			}
			failed++
			out.printf("  %s %s %s\n", out.fail.Sprint("FAIL"), result.Probe.Name(), out.dim.Sprint("("+result.Probe.Kind()+")"))
			out.printf("       want: %s\n        got: %s\n", result.Probe.Want(), result.Got)
			for _, reported := range result.Errors {
				pos := s.Position(reported.Pos())
				if pos.IsValid() {
					out.printf("      %s: %s\n", pos, ilerr.FormatWithCode(reported))
				} else {
					out.printf("      %s\n", ilerr.FormatWithCode(reported))
				}
				if *probeDump {
					out.printf("      %s\n", out.dim.Sprint("reported at "+ilerr.Origin(reported)))
				}
			}
			if *probeDump {
				spew.Fdump(out.w, result.Errors)
			}
		}
	}
	out.printf("%d passed, %d failed\n", total-failed, failed)
	if failed > 0 {
		return errProbesFailed{failed: failed, total: total}
	}
	return nil
}
