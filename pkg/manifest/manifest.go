// Package manifest renders the routes of a compile for humans and tools.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/withgalaxy/nexp/pkg/codegen"
	"github.com/withgalaxy/nexp/pkg/router"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Manifest is the serializable view of a compile.
type Manifest struct {
	Title               string              `json:"title" yaml:"title"`
	Template            string              `json:"template,omitempty" yaml:"template,omitempty"`
	Settings            string              `json:"settings,omitempty" yaml:"settings,omitempty"`
	TopLevelMiddlewares string              `json:"topLevelMiddlewares,omitempty" yaml:"topLevelMiddlewares,omitempty"`
	TailMiddlewares     string              `json:"tailMiddlewares,omitempty" yaml:"tailMiddlewares,omitempty"`
	SubRouters          []router.SubRouter  `json:"subRouters" yaml:"subRouters"`
	Routes              []codegen.RouteInfo `json:"routes" yaml:"routes"`

	imports string
}

func FromResult(title string, r *codegen.Result) *Manifest {
	m := &Manifest{
		Title:               title,
		Template:            r.Template,
		Settings:            r.SettingsFile,
		TopLevelMiddlewares: r.TopLevel,
		TailMiddlewares:     r.Tail,
		SubRouters:          r.SubRouters,
		Routes:              r.Routes,
		imports:             r.Fragments.Imports,
	}
	if m.SubRouters == nil {
		m.SubRouters = []router.SubRouter{}
	}
	if m.Routes == nil {
		m.Routes = []codegen.RouteInfo{}
	}
	return m
}

func Write(w io.Writer, m *Manifest, f Format) error {
	switch f {
	case FormatText:
		return writeText(w, m)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(m))
		return err
	case FormatHTML:
		return writeHTML(w, m)
	}
	return fmt.Errorf("unknown format %q", f)
}

func methods(r codegen.RouteInfo) string {
	parts := make([]string, 0, len(r.Handlers))
	for _, h := range r.Handlers {
		if h.IsAsync {
			parts = append(parts, h.ExportName+"*")
		} else {
			parts = append(parts, h.ExportName)
		}
	}
	return strings.Join(parts, ", ")
}
