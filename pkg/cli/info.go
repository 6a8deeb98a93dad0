package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/withgalaxy/nexp/pkg/router"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display environment information",
	Long:  `Display useful information about your current nexp setup`,
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "nexp                     v%s\n", Version)
	fmt.Fprintf(out, "Go                       %s\n", runtime.Version())
	fmt.Fprintf(out, "System                   %s (%s)\n", runtime.GOOS, runtime.GOARCH)

	p, err := loadProject()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Working Directory        %s\n", p.Root)

	if _, err := os.Stat(p.ConfigPath); err == nil {
		fmt.Fprintf(out, "Config                   %s\n", p.ConfigPath)
	}
	fmt.Fprintf(out, "Source                   %s\n", p.SrcDir)
	fmt.Fprintf(out, "Output                   %s\n", p.DistDir)
	fmt.Fprintf(out, "Filename                 %s\n", p.Filename)

	conv := p.Config.ConventionTable()
	fmt.Fprintf(out, "Extensions               %v\n", conv.Extensions)

	app, err := router.Resolve(p.SrcDir, p.DistDir, conv, p.Logger)
	if err != nil {
		fmt.Fprintf(out, "Routes                   unavailable (%v)\n", err)
		return nil
	}

	routes := 0
	for _, n := range app.Tree.Nodes {
		if n.RouteFile != "" {
			routes++
		}
	}
	fmt.Fprintf(out, "Route Files              %d\n", routes)
	fmt.Fprintf(out, "Scanned                  %d directories, %d files\n", app.Directories, app.Files)
	if app.CustomServer != "" {
		fmt.Fprintf(out, "Custom Server            %s\n", app.CustomServer)
	}
	return nil
}
