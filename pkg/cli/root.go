package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version  = "0.1.0"
	cfgFile  string
	rootDir  string
	srcDir   string
	distDir  string
	filename string
	verbose  bool
	silent   bool
)

var rootCmd = &cobra.Command{
	Use:   "nexp",
	Short: "nexp - file-system routing for Express",
	Long: `nexp compiles a directory tree of route, middleware and settings files
into a single Express server entry.

Every app/**/route.ts becomes a catch-all route dispatching on the request
method, middlewares.ts files scope routers, and settings.ts,
tail-middlewares.ts and custom-server.ts shape the generated application.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root directory")
	rootCmd.PersistentFlags().StringVar(&srcDir, "src-dir", "", "source directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&distDir, "dist-dir", "", "output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&filename, "filename", "", "generated file name (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "disable all logging")
}
