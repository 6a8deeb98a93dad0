package codegen

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/withgalaxy/nexp/pkg/config"
	"github.com/withgalaxy/nexp/pkg/parser"
	"github.com/withgalaxy/nexp/pkg/router"
	"github.com/withgalaxy/nexp/pkg/template"
)

const rootRouter = "app"

// Compiler turns a resolved app into the five template fragments.
type Compiler struct {
	app     *router.App
	conv    config.Convention
	logger  *log.Logger
	analyze AnalyzeFunc
	names   *names

	imports             strings.Builder
	settings            strings.Builder
	topLevelMiddlewares strings.Builder
	routes              strings.Builder
	tailMiddlewares     strings.Builder

	Routes     []RouteInfo
	SubRouters []router.SubRouter
}

func NewCompiler(app *router.App, opts Options) *Compiler {
	opts = opts.withDefaults()
	return &Compiler{
		app:     app,
		conv:    app.Convention(),
		logger:  opts.Logger,
		analyze: opts.Analyze,
		names:   newNames(),
	}
}

// CompileTree emits the top-level fragments and then every route node in
// pre-order over case-insensitively sorted children.
func (c *Compiler) CompileTree() (template.Fragments, error) {
	c.compileTopLevel()

	tree := c.app.Tree
	if err := tree.Walk(func(n *router.RouteNode) error {
		if n.RouteFile == "" && n.MiddlewaresFile == "" {
			return nil
		}
		return c.compileNode(n)
	}); err != nil {
		return template.Fragments{}, err
	}

	return template.Fragments{
		Imports:             c.imports.String(),
		Settings:            c.settings.String(),
		TopLevelMiddlewares: c.topLevelMiddlewares.String(),
		Routes:              c.routes.String(),
		TailMiddlewares:     c.tailMiddlewares.String(),
	}, nil
}

func (c *Compiler) compileTopLevel() {
	if f := c.app.Settings; f != "" {
		c.logger.Debug("adding settings import", "file", f)
		c.writeImport(c.conv.SettingsExport, "appSettings", f)
		c.settings.WriteString("for (const setting of appSettings) {\n      app.set(setting.name, setting.value);\n    }\n")
	}

	if f := c.app.TopLevelMiddlewares; f != "" {
		c.logger.Debug("adding top-level middlewares import", "file", f)
		c.writeImport(c.conv.MiddlewaresExport, "topLevelMiddlewares", f)
		c.topLevelMiddlewares.WriteString("app.use(...topLevelMiddlewares);\n")
	}

	if f := c.app.TailMiddlewares; f != "" {
		c.logger.Debug("adding tail middlewares import", "file", f)
		c.writeImport(c.conv.TailMiddlewaresExport, "tailMiddlewares", f)
		c.tailMiddlewares.WriteString("app.use(...tailMiddlewares);\n")
	}
}

func (c *Compiler) compileNode(n *router.RouteNode) error {
	c.logger.Debug("compiling route", "name", n.Name, "dir", n.RelativePath)

	fmt.Fprintf(&c.routes, "// ===== routes [%s | %s] =====\n", n.Name, n.RelativePath)

	if n.MiddlewaresFile != "" {
		if err := c.compileSubRouter(n); err != nil {
			return &CompileError{Path: n.RelativePath, Err: err}
		}
	}

	if n.RouteFile != "" {
		if err := c.compileRoute(n); err != nil {
			return &CompileError{Path: path.Join(n.RelativePath, n.RouteFile), Err: err}
		}
	}

	c.routes.WriteByte('\n')
	return nil
}

// compileSubRouter creates a router for a directory owning a middleware
// file and mounts it on the root application at "/" + name. Nested
// middleware directories are mounted on the root as well, with a single
// segment mount path.
func (c *Compiler) compileSubRouter(n *router.RouteNode) error {
	ident, err := routeIdentifier(n.Name)
	if err != nil {
		return err
	}

	alias := c.names.take(ident + "Middlewares")
	routerID := c.names.take(ident + "Router")
	mountPath := "/" + n.Name

	c.writeImport(c.conv.MiddlewaresExport, alias, path.Join(n.RelativePath, n.MiddlewaresFile))

	n.SubRouter = &router.SubRouter{Identifier: routerID, MountPath: mountPath}
	c.SubRouters = append(c.SubRouters, *n.SubRouter)

	fmt.Fprintf(&c.routes, "const %s = express.Router();\n", routerID)
	fmt.Fprintf(&c.routes, "%s.use(%s, %s);\n", rootRouter, strconv.Quote(mountPath), routerID)
	fmt.Fprintf(&c.routes, "%s.use(...%s);\n", routerID, alias)
	return nil
}

func (c *Compiler) compileRoute(n *router.RouteNode) error {
	url := router.Endpoint(n.RelativePath, c.conv.AppDir)
	fullURL := url
	routerID := rootRouter
	mount := ""
	if sr := c.app.Tree.NearestSubRouter(n.ID); sr != nil {
		url = router.StripMount(url, sr.MountPath)
		routerID = sr.Identifier
		mount = sr.MountPath
	}

	c.logger.Debug("mapped endpoint", "url", url, "router", routerID, "route", n.Name)

	rel := path.Join(n.RelativePath, n.RouteFile)
	handlers, err := c.analyze(c.app.Abs(rel))
	if err != nil {
		return fmt.Errorf("get endpoint handlers: %w", err)
	}
	if len(handlers) == 0 {
		return parser.ErrNoHandlers
	}

	prefix := handlerAliasPrefix(n.RelativePath)
	var inner strings.Builder
	for _, h := range handlers {
		alias := c.names.take(prefix + "_" + h.ExportName)
		c.writeImport(h.ExportName, alias, rel)

		await := ""
		if h.IsAsync {
			await = "await "
		}
		fmt.Fprintf(&inner, "if (req.method === %s) { %s%s(req, res); return; }\n", strconv.Quote(h.ExportName), await, alias)
	}

	fmt.Fprintf(&c.routes, "%s.all(%s, async (req, res) => { %s %s });\n",
		routerID, strconv.Quote(url), inner.String(), c.conv.MethodNotAllowed)

	c.Routes = append(c.Routes, RouteInfo{
		URL:      fullURL,
		Path:     url,
		Router:   routerID,
		File:     rel,
		Handlers: handlers,
		Mount:    mount,
	})
	return nil
}

func (c *Compiler) writeImport(export, alias, rel string) {
	fmt.Fprintf(&c.imports, "import { %s as %s } from %s;\n", export, alias, strconv.Quote(c.app.ImportPath(rel)))
}
