package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const docsURL = "https://github.com/withgalaxy/nexp"

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Open documentation in browser",
	Long:  `Open the nexp documentation in your web browser`,
	RunE:  runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	if !silent {
		fmt.Fprintf(cmd.OutOrStdout(), "Opening docs: %s\n", docsURL)
	}

	openBrowser(docsURL)
	return nil
}
