package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/withgalaxy/nexp/pkg/codegen"
	"github.com/withgalaxy/nexp/pkg/config"
)

// project is the resolved working set of a command.
type project struct {
	Root       string
	ConfigPath string
	Config     *config.Config
	SrcDir     string
	DistDir    string
	Filename   string
	Logger     *log.Logger
}

func loadProject() (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if rootDir != "" {
		cwd = rootDir
	}

	configPath := cfgFile
	if configPath == "" {
		configPath = filepath.Join(cwd, config.ConfigFileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if srcDir != "" {
		cfg.SrcDir = srcDir
	}
	if distDir != "" {
		cfg.DistDir = distDir
	}
	if filename != "" {
		cfg.Filename = filename
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &project{
		Root:       cwd,
		ConfigPath: configPath,
		Config:     cfg,
		SrcDir:     absUnder(cwd, cfg.SrcDir),
		DistDir:    absUnder(cwd, cfg.DistDir),
		Filename:   cfg.Filename,
		Logger:     newLogger(),
	}, nil
}

func (p *project) options() codegen.Options {
	return codegen.Options{
		Convention: p.Config.ConventionTable(),
		Logger:     p.Logger,
	}
}

// newLogger builds the process logger. --silent wins over --verbose, which
// wins over NEXP_LOG.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "nexp",
	})

	level := log.InfoLevel
	if env := os.Getenv("NEXP_LOG"); env != "" {
		if l, err := log.ParseLevel(env); err == nil {
			level = l
		}
	}
	if verbose {
		level = log.DebugLevel
	}
	if silent {
		level = log.ErrorLevel
	}
	logger.SetLevel(level)
	return logger
}

func absUnder(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

func isUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..") && rel != "."
}
