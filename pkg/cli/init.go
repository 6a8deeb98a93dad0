package cli

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/withgalaxy/nexp/pkg/scaffold"
)

var (
	initLanguage string
	initForce    bool
	initYes      bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new nexp project",
	Long:  `Write nexp.config.toml and a starter source tree`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initLanguage, "lang", "", "typescript or javascript")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if rootDir != "" {
		dir = rootDir
	}
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	lang := scaffold.DetectLanguage(dir)
	switch {
	case initLanguage != "":
		if lang, err = scaffold.ParseLanguage(initLanguage); err != nil {
			return err
		}
	case !initYes:
		var answer string
		prompt := &survey.Select{
			Message: "Select a language:",
			Options: scaffold.Languages,
			Default: string(lang),
		}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return err
		}
		lang = scaffold.Language(answer)
	}

	written, err := scaffold.Init(scaffold.Options{Dir: dir, Language: lang, Force: initForce})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range written {
		fmt.Fprintf(out, "  ✓ %s\n", f)
	}

	pm := scaffold.DetectPackageManager(dir)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. %s\n", scaffold.InstallCommand(pm))
	fmt.Fprintln(out, "  2. nexp build")
	return nil
}
