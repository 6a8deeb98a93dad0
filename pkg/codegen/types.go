package codegen

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/withgalaxy/nexp/pkg/config"
	"github.com/withgalaxy/nexp/pkg/parser"
	"github.com/withgalaxy/nexp/pkg/router"
	"github.com/withgalaxy/nexp/pkg/template"
)

// AnalyzeFunc returns the exported handlers of a route file.
type AnalyzeFunc func(path string) ([]parser.Handler, error)

type Options struct {
	// Convention defaults to config.DefaultConvention when AppDir is empty.
	Convention config.Convention
	Logger     *log.Logger
	Analyze    AnalyzeFunc
}

func (o Options) withDefaults() Options {
	if o.Convention.AppDir == "" {
		o.Convention = config.DefaultConvention()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Analyze == nil {
		o.Analyze = parser.ParseExports
	}
	return o
}

// RouteInfo describes one catch-all registration emitted for a route file.
type RouteInfo struct {
	URL      string           `json:"url" yaml:"url"`
	Path     string           `json:"path" yaml:"path"`
	Router   string           `json:"router" yaml:"router"`
	File     string           `json:"file" yaml:"file"`
	Handlers []parser.Handler `json:"handlers" yaml:"handlers"`
	Mount    string           `json:"mount,omitempty" yaml:"mount,omitempty"`
}

// Result summarizes a compile.
type Result struct {
	OutputPath   string             `json:"outputPath" yaml:"outputPath"`
	Template     string             `json:"template,omitempty" yaml:"template,omitempty"`
	Routes       []RouteInfo        `json:"routes" yaml:"routes"`
	SubRouters   []router.SubRouter `json:"subRouters" yaml:"subRouters"`
	Fragments    template.Fragments `json:"-" yaml:"-"`
	Output       string             `json:"-" yaml:"-"`
	Duration     time.Duration      `json:"duration" yaml:"duration"`
	TopLevel     string             `json:"topLevelMiddlewares,omitempty" yaml:"topLevelMiddlewares,omitempty"`
	Tail         string             `json:"tailMiddlewares,omitempty" yaml:"tailMiddlewares,omitempty"`
	SettingsFile string             `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// CompileError ties a failure to the route directory being compiled.
type CompileError struct {
	Path string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Path, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
