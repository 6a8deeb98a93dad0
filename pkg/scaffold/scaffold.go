// Package scaffold writes the skeleton of a new project.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/withgalaxy/nexp/pkg/config"
)

type Language string

const (
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
)

var Languages = []string{string(TypeScript), string(JavaScript)}

func (l Language) Ext() string {
	if l == JavaScript {
		return ".js"
	}
	return ".ts"
}

func ParseLanguage(s string) (Language, error) {
	switch s {
	case "typescript", "ts":
		return TypeScript, nil
	case "javascript", "js":
		return JavaScript, nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

var ErrExists = errors.New("file already exists")

type Options struct {
	Dir      string
	Language Language
	Force    bool
}

type file struct {
	rel     string
	content string
}

// Init writes the config file and a minimal source tree into opts.Dir. It
// returns the paths it wrote, relative to opts.Dir. Existing files are left
// untouched unless Force is set.
func Init(opts Options) ([]string, error) {
	if opts.Language == "" {
		opts.Language = TypeScript
	}
	cfg := config.DefaultConfig()
	ext := opts.Language.Ext()

	files := []file{
		{filepath.Join(cfg.SrcDir, "app", "route"+ext), routeSource(opts.Language)},
		{filepath.Join(cfg.SrcDir, "app", "health", "route"+ext), healthSource(opts.Language)},
		{filepath.Join(cfg.SrcDir, "middlewares"+ext), middlewaresSource},
		{filepath.Join(cfg.SrcDir, "tail-middlewares"+ext), tailSource(opts.Language)},
		{filepath.Join(cfg.SrcDir, "settings"+ext), settingsSource},
	}

	if !opts.Force {
		for _, f := range append(files, file{rel: config.ConfigFileName}) {
			if _, err := os.Stat(filepath.Join(opts.Dir, f.rel)); err == nil {
				return nil, fmt.Errorf("%s: %w", f.rel, ErrExists)
			}
		}
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(opts.Dir, f.rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.rel, err)
		}
		written = append(written, f.rel)
	}

	if opts.Language == JavaScript {
		cfg.Filename = "server.js"
	}
	if err := config.Encode(filepath.Join(opts.Dir, config.ConfigFileName), cfg); err != nil {
		return written, err
	}
	written = append(written, config.ConfigFileName)

	return written, nil
}

// DetectLanguage guesses the project language from a tsconfig.json.
func DetectLanguage(dir string) Language {
	if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err == nil {
		return TypeScript
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return JavaScript
	}
	return TypeScript
}

// DetectPackageManager picks the package manager from the lock file present
// in dir.
func DetectPackageManager(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, "pnpm-lock.yaml")); err == nil {
		return "pnpm"
	}
	if _, err := os.Stat(filepath.Join(dir, "yarn.lock")); err == nil {
		return "yarn"
	}
	if _, err := os.Stat(filepath.Join(dir, "bun.lockb")); err == nil {
		return "bun"
	}
	return "npm"
}

// InstallCommand is the command that adds express to a project.
func InstallCommand(pm string) string {
	if pm == "npm" {
		return "npm install express"
	}
	return pm + " add express"
}
