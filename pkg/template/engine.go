package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/withgalaxy/nexp/pkg/config"
)

const (
	MarkerImports             = "/* __nextExpress_imports__ */"
	MarkerSettings            = "/* __nextExpress_settings__ */"
	MarkerTopLevelMiddlewares = "/* __nextExpress_topLevelMiddlewares__ */"
	MarkerRoutes              = "/* __nextExpress_routes__ */"
	MarkerTailMiddlewares     = "/* __nextExpress_tailMiddlewares__ */"
)

// Markers lists every insertion point in substitution order.
var Markers = []string{
	MarkerImports,
	MarkerSettings,
	MarkerTopLevelMiddlewares,
	MarkerRoutes,
	MarkerTailMiddlewares,
}

// Fragments is the generated code inserted at each marker.
type Fragments struct {
	Imports             string
	Settings            string
	TopLevelMiddlewares string
	Routes              string
	TailMiddlewares     string
}

func (f Fragments) byMarker() map[string]string {
	return map[string]string{
		MarkerImports:             f.Imports,
		MarkerSettings:            f.Settings,
		MarkerTopLevelMiddlewares: f.TopLevelMiddlewares,
		MarkerRoutes:              f.Routes,
		MarkerTailMiddlewares:     f.TailMiddlewares,
	}
}

type Engine struct {
	Source string
	// Path is the custom-server file the source was read from, empty for the
	// built-in template.
	Path string
}

// Default returns the built-in server template.
func Default() *Engine {
	return &Engine{Source: config.ServerTemplate}
}

// Select returns the custom-server template at customServerPath verbatim,
// or the built-in template when the path is empty.
func Select(customServerPath string) (*Engine, error) {
	if customServerPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(customServerPath)
	if err != nil {
		return nil, fmt.Errorf("read custom server template: %w", err)
	}

	return &Engine{Source: string(data), Path: customServerPath}, nil
}

func (e *Engine) IsCustom() bool {
	return e.Path != ""
}

// Render replaces the first occurrence of each marker with its fragment. A
// marker missing from the template drops its fragment.
func (e *Engine) Render(f Fragments) string {
	out := e.Source
	values := f.byMarker()
	for _, marker := range Markers {
		out = strings.Replace(out, marker, values[marker], 1)
	}
	return out
}

// MissingMarkers lists the markers absent from the template source.
func (e *Engine) MissingMarkers() []string {
	var missing []string
	for _, marker := range Markers {
		if !strings.Contains(e.Source, marker) {
			missing = append(missing, marker)
		}
	}
	return missing
}
