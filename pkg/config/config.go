package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return Load(configPath)
}

// Encode writes cfg as TOML.
func Encode(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SrcDir == "" {
		c.SrcDir = DefaultSrcDir
	}

	if c.DistDir == "" {
		c.DistDir = DefaultDistDir
	}

	if c.Filename == "" {
		c.Filename = DefaultFilename
	}

	if strings.Contains(filepath.ToSlash(c.Filename), "..") {
		return fmt.Errorf("invalid filename: %s (must stay inside distDir)", c.Filename)
	}

	if c.Dev.DebounceMs < 0 {
		return fmt.Errorf("invalid dev.debounceMs: %d", c.Dev.DebounceMs)
	}
	if c.Dev.DebounceMs == 0 {
		c.Dev.DebounceMs = 100
	}

	for _, ext := range c.Convention.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension: %q (must start with a dot)", ext)
		}
	}

	conv := c.ConventionTable()
	seen := make(map[string]bool)
	for _, name := range []string{
		conv.RouteBasename,
		conv.MiddlewaresBasename,
		conv.TailMiddlewaresBasename,
		conv.SettingsBasename,
		conv.CustomServerBasename,
	} {
		if seen[name] {
			return fmt.Errorf("duplicate convention basename: %s", name)
		}
		seen[name] = true
	}

	if IsVirtualGroup(conv.AppDir) || strings.ContainsAny(conv.AppDir, `/\`) {
		return fmt.Errorf("invalid appDir: %s", conv.AppDir)
	}

	return nil
}
