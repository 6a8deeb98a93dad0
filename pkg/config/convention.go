package config

import "strings"

// ServerTemplate is the entry template used when the source root has no
// custom-server file. Each marker comment appears exactly once.
const ServerTemplate = `import express from "express";
/* __nextExpress_imports__ */

export const createServer = () => {
  const app = express();

  /* __nextExpress_settings__ */

  /* __nextExpress_topLevelMiddlewares__ */

  /* __nextExpress_routes__ */

  /* __nextExpress_tailMiddlewares__ */
  return app;
};
`

const MethodNotAllowed = "res.status(405).send(`Method ${req.method} Not Allowed`);"

// Convention is the file-naming table that drives resolution and code
// generation. It is built once per compile and never mutated afterwards.
type Convention struct {
	AppDir     string
	Extensions []string

	RouteBasename           string
	MiddlewaresBasename     string
	TailMiddlewaresBasename string
	SettingsBasename        string
	CustomServerBasename    string

	SettingsExport        string
	MiddlewaresExport     string
	TailMiddlewaresExport string

	MethodNotAllowed string
}

func DefaultConvention() Convention {
	return Convention{
		AppDir:     "app",
		Extensions: []string{".ts", ".js"},

		RouteBasename:           "route",
		MiddlewaresBasename:     "middlewares",
		TailMiddlewaresBasename: "tail-middlewares",
		SettingsBasename:        "settings",
		CustomServerBasename:    "custom-server",

		SettingsExport:        "settings",
		MiddlewaresExport:     "middlewares",
		TailMiddlewaresExport: "middlewares",

		MethodNotAllowed: MethodNotAllowed,
	}
}

// ConventionTable applies the [convention] overrides of the project file on top
// of the defaults.
func (c *Config) ConventionTable() Convention {
	conv := DefaultConvention()
	o := c.Convention
	if o.AppDir != "" {
		conv.AppDir = o.AppDir
	}
	if len(o.Extensions) > 0 {
		conv.Extensions = append([]string(nil), o.Extensions...)
	}
	if o.Route != "" {
		conv.RouteBasename = o.Route
	}
	if o.Middlewares != "" {
		conv.MiddlewaresBasename = o.Middlewares
	}
	if o.TailMiddlewares != "" {
		conv.TailMiddlewaresBasename = o.TailMiddlewares
	}
	if o.Settings != "" {
		conv.SettingsBasename = o.Settings
	}
	if o.CustomServer != "" {
		conv.CustomServerBasename = o.CustomServer
	}
	if o.MethodNotAllowed != "" {
		conv.MethodNotAllowed = o.MethodNotAllowed
	}
	return conv
}

// Filenames lists the accepted file names for basename in extension
// preference order.
func (c Convention) Filenames(basename string) []string {
	names := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		names = append(names, basename+ext)
	}
	return names
}

// Match reports the extension preference rank of filename for basename, or
// -1 when the name is not one of its variants. Comparison is exact and
// case-sensitive.
func (c Convention) Match(basename, filename string) int {
	for i, name := range c.Filenames(basename) {
		if name == filename {
			return i
		}
	}
	return -1
}

// TrimExtension drops a recognized extension from name.
func (c Convention) TrimExtension(name string) string {
	for _, ext := range c.Extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// IsVirtualGroup reports whether a directory segment is wrapped in
// parentheses and therefore elided from URLs.
func IsVirtualGroup(name string) bool {
	return len(name) >= 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")")
}
