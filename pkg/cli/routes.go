package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/withgalaxy/nexp/pkg/codegen"
	"github.com/withgalaxy/nexp/pkg/manifest"
)

var (
	routesFormat string
	routesOutput string
	routesOpen   bool
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the routes the generated server registers",
	Long:  `Resolve and analyze the source tree without writing the server entry, then print every route`,
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().StringVarP(&routesFormat, "format", "f", "text", "text, json, yaml, markdown or html")
	routesCmd.Flags().StringVarP(&routesOutput, "output", "o", "", "write to a file instead of stdout")
	routesCmd.Flags().BoolVar(&routesOpen, "open", false, "open the written file in a browser")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	format, err := manifest.ParseFormat(routesFormat)
	if err != nil {
		return err
	}

	p, err := loadProject()
	if err != nil {
		return err
	}

	result, err := codegen.Plan(cmd.Context(), p.SrcDir, p.DistDir, p.options())
	if err != nil {
		return err
	}
	m := manifest.FromResult(filepath.Base(p.Root)+" routes", result)

	var w io.Writer = cmd.OutOrStdout()
	if routesOutput != "" {
		f, err := os.Create(routesOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", routesOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := manifest.Write(w, m, format); err != nil {
		return err
	}

	if routesOpen && routesOutput != "" {
		abs, err := filepath.Abs(routesOutput)
		if err == nil {
			openBrowser("file://" + filepath.ToSlash(abs))
		}
	}
	return nil
}
