package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/withgalaxy/nexp/pkg/codegen"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check route files for errors",
	Long:  `Analyze every route file and report all parse errors without writing output`,
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	problems, err := codegen.Check(p.SrcDir, p.options())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, problem := range problems {
		fmt.Fprintf(out, "✗ %v\n", problem)
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d error(s)", len(problems))
	}
	if !silent {
		fmt.Fprintln(out, "✓ No errors found")
	}
	return nil
}
