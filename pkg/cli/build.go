package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/withgalaxy/nexp/pkg/codegen"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the server entry",
	Long:  `Resolve the source tree and write the generated Express entry to distDir/filename`,
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	p.Logger.Debug("building", "src", p.SrcDir, "dist", p.DistDir, "filename", p.Filename)

	result, err := codegen.Compile(cmd.Context(), p.SrcDir, p.DistDir, p.Filename, p.options())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if !silent {
		fmt.Fprintf(cmd.OutOrStdout(), "%d routes -> %s\n", len(result.Routes), result.OutputPath)
	}
	return nil
}
