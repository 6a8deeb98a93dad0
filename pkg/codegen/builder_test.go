package codegen

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/withgalaxy/nexp/pkg/parser"
	"github.com/withgalaxy/nexp/pkg/router"
	"github.com/withgalaxy/nexp/pkg/template"
)

type project struct {
	base string
	src  string
	dist string
}

func newProject(t *testing.T, files map[string]string) project {
	t.Helper()
	base := t.TempDir()
	p := project{
		base: base,
		src:  filepath.Join(base, "src"),
		dist: filepath.Join(base, "nexp-compiled"),
	}
	require.NoError(t, os.MkdirAll(p.src, 0755))
	for name, content := range files {
		path := filepath.Join(p.src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return p
}

func testOptions() Options {
	return Options{Logger: log.New(io.Discard)}
}

func (p project) compile(t *testing.T) (*Result, string) {
	t.Helper()
	result, err := Compile(context.Background(), p.src, p.dist, "server.ts", testOptions())
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(p.dist, "server.ts"))
	require.NoError(t, err)
	return result, string(data)
}

func assertInOrder(t *testing.T, out string, parts ...string) {
	t.Helper()
	last := -1
	for _, part := range parts {
		idx := strings.Index(out, part)
		if !assert.GreaterOrEqual(t, idx, 0, "missing %q", part) {
			return
		}
		assert.Greater(t, idx, last, "%q is out of order", part)
		last = idx
	}
}

const (
	getOnly     = "export const GET = (req, res) => { res.send('ok'); };\n"
	middlewares = "export const middlewares = [(req, res, next) => next()];\n"
)

func TestCompile_EndToEnd(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/route.ts": getOnly,
		"app/user/route.ts": `export function GET(req, res) { res.json([]); }
export const POST = async (req, res) => { res.sendStatus(201); };
`,
		"middlewares.ts":      middlewares,
		"tail-middlewares.ts": "export const middlewares = [(err, req, res, next) => res.sendStatus(500)];\n",
	})

	result, out := p.compile(t)

	wantImports := "" +
		"import { middlewares as topLevelMiddlewares } from \"../src/middlewares\";\n" +
		"import { middlewares as tailMiddlewares } from \"../src/tail-middlewares\";\n" +
		"import { GET as app_GET } from \"../src/app/route\";\n" +
		"import { GET as app_user_GET } from \"../src/app/user/route\";\n" +
		"import { POST as app_user_POST } from \"../src/app/user/route\";\n"
	assert.Equal(t, wantImports, result.Fragments.Imports)

	wantRoutes := "" +
		"// ===== routes [app | app] =====\n" +
		"app.all(\"/\", async (req, res) => { if (req.method === \"GET\") { app_GET(req, res); return; }\n" +
		" res.status(405).send(`Method ${req.method} Not Allowed`); });\n" +
		"\n" +
		"// ===== routes [user | app/user] =====\n" +
		"app.all(\"/user\", async (req, res) => { if (req.method === \"GET\") { app_user_GET(req, res); return; }\n" +
		"if (req.method === \"POST\") { await app_user_POST(req, res); return; }\n" +
		" res.status(405).send(`Method ${req.method} Not Allowed`); });\n" +
		"\n"
	assert.Equal(t, wantRoutes, result.Fragments.Routes)

	assert.Equal(t, "app.use(...topLevelMiddlewares);\n", result.Fragments.TopLevelMiddlewares)
	assert.Equal(t, "app.use(...tailMiddlewares);\n", result.Fragments.TailMiddlewares)
	assert.Empty(t, result.Fragments.Settings)

	assertInOrder(t, out,
		"import express from \"express\";",
		"import { middlewares as topLevelMiddlewares }",
		"const app = express();",
		"app.use(...topLevelMiddlewares);",
		"app.all(\"/\"",
		"app.all(\"/user\"",
		"app.use(...tailMiddlewares);",
		"return app;",
	)
	for _, marker := range template.Markers {
		assert.NotContains(t, out, marker)
	}

	require.Len(t, result.Routes, 2)
	assert.Equal(t, "/user", result.Routes[1].URL)
	assert.Equal(t, "app", result.Routes[1].Router)
	assert.Equal(t, filepath.Join(p.dist, "server.ts"), result.OutputPath)
}

func TestCompile_Idempotent(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/route.ts":             getOnly,
		"app/b/route.ts":           getOnly,
		"app/A/route.ts":           getOnly,
		"app/(g)/c/route.ts":       getOnly,
		"app/admin/middlewares.ts": middlewares,
		"settings.ts":              "export const settings = [{ name: 'x-powered-by', value: false }];\n",
	})

	_, first := p.compile(t)
	_, second := p.compile(t)
	assert.Equal(t, first, second)
}

func TestCompile_SortedSiblings(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/zeta/route.ts":  getOnly,
		"app/Beta/route.ts":  getOnly,
		"app/alpha/route.ts": getOnly,
	})

	_, out := p.compile(t)
	assertInOrder(t, out, `app.all("/alpha"`, `app.all("/Beta"`, `app.all("/zeta"`)
}

func TestCompile_VirtualGroups(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/(group)/stats/route.ts": getOnly,
		"app/(group)/route.ts":       getOnly,
	})

	result, out := p.compile(t)
	assert.Contains(t, out, `app.all("/stats"`)
	assert.NotContains(t, out, `"/(group)`)
	assert.Contains(t, out, `import { GET as app_group_stats_GET } from "../src/app/(group)/stats/route";`)
	require.Len(t, result.Routes, 1)
}

func TestCompile_ScopedMiddleware(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/admin/middlewares.ts":       middlewares,
		"app/admin/route.ts":             getOnly,
		"app/admin/users/route.ts":       getOnly,
		"app/admin/(x)/y/route.ts":       getOnly,
		"app/public/route.ts":            getOnly,
		"app/admin-tools/middlewares.js": middlewares,
	})

	result, out := p.compile(t)

	assert.Contains(t, result.Fragments.Imports, `import { middlewares as adminMiddlewares } from "../src/app/admin/middlewares";`)
	assert.Contains(t, result.Fragments.Imports, `import { middlewares as admin_toolsMiddlewares } from "../src/app/admin-tools/middlewares";`)

	assertInOrder(t, out,
		"const adminRouter = express.Router();",
		`app.use("/admin", adminRouter);`,
		"adminRouter.use(...adminMiddlewares);",
		`adminRouter.all("/", async`,
		`adminRouter.all("/y", async`,
		`adminRouter.all("/users", async`,
		"const admin_toolsRouter = express.Router();",
		`app.use("/admin-tools", admin_toolsRouter);`,
		`app.all("/public", async`,
	)

	require.Len(t, result.SubRouters, 2)
	assert.Equal(t, router.SubRouter{Identifier: "adminRouter", MountPath: "/admin"}, result.SubRouters[0])
}

func TestCompile_NestedMiddlewareKeepsSingleSegmentMount(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/api/middlewares.ts":       middlewares,
		"app/api/admin/middlewares.ts": middlewares,
		"app/api/admin/users/route.ts": getOnly,
		"app/api/health/route.ts":      getOnly,
	})

	_, out := p.compile(t)

	assert.Contains(t, out, `app.use("/api", apiRouter);`)
	assert.Contains(t, out, `app.use("/admin", adminRouter);`)
	assert.Contains(t, out, `adminRouter.all("/api/admin/users", async`)
	assert.Contains(t, out, `apiRouter.all("/health", async`)
}

func TestCompile_AsyncFidelity(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/route.ts": `export const GET = async (req, res) => res.send("a");
export function PUT(req, res) { res.send("b"); }
`,
	})

	_, out := p.compile(t)
	assert.Contains(t, out, `if (req.method === "GET") { await app_GET(req, res); return; }`)
	assert.Contains(t, out, `if (req.method === "PUT") { app_PUT(req, res); return; }`)
}

func TestCompile_Settings(t *testing.T) {
	p := newProject(t, map[string]string{
		"settings.js":  "export const settings = [{ name: 'trust proxy', value: 1 }];\n",
		"app/route.js": getOnly,
	})

	result, out := p.compile(t)
	assert.Contains(t, result.Fragments.Imports, `import { settings as appSettings } from "../src/settings";`)
	assert.Contains(t, out, "for (const setting of appSettings) {\n      app.set(setting.name, setting.value);\n    }\n")
	assert.Equal(t, "settings.js", result.SettingsFile)
}

func TestCompile_CustomServer(t *testing.T) {
	custom := `import express from "express";
import helmet from "helmet";
` + template.MarkerImports + `

export const createServer = () => {
  const app = express();
  app.use(helmet());
  ` + template.MarkerRoutes + `
  return app;
};
`
	p := newProject(t, map[string]string{
		"custom-server.ts": custom,
		"middlewares.ts":   middlewares,
		"app/route.ts":     getOnly,
	})

	result, out := p.compile(t)
	assert.Equal(t, filepath.Join(p.src, "custom-server.ts"), result.Template)
	assert.Contains(t, out, "app.use(helmet());")
	assert.Contains(t, out, `app.all("/"`)
	// No marker for top-level middlewares: that fragment is dropped.
	assert.NotContains(t, out, "app.use(...topLevelMiddlewares);")
}

func TestCompile_NoConventionFiles(t *testing.T) {
	p := newProject(t, map[string]string{"README.md": "# hi\n"})

	result, out := p.compile(t)
	assert.Empty(t, result.Fragments.Imports)
	assert.Empty(t, result.Fragments.Routes)
	assert.Equal(t, template.Default().Render(template.Fragments{}), out)
}

func TestCompile_ParseErrorWritesNothing(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/route.ts":     getOnly,
		"app/bad/route.ts": "export const GET = (req, res => {\n",
	})

	_, err := Compile(context.Background(), p.src, p.dist, "server.ts", testOptions())
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "app/bad/route.ts", ce.Path)

	var pe *parser.ParseError
	assert.True(t, errors.As(err, &pe))

	_, statErr := os.Stat(filepath.Join(p.dist, "server.ts"))
	assert.True(t, os.IsNotExist(statErr), "no output must be written on failure")
}

func TestCompile_NoHandlers(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/route.ts": "export const config = {};\n",
	})

	_, err := Compile(context.Background(), p.src, p.dist, "server.ts", testOptions())
	assert.ErrorIs(t, err, parser.ErrNoHandlers)
}

func TestCompile_MissingSource(t *testing.T) {
	base := t.TempDir()
	_, err := Compile(context.Background(), filepath.Join(base, "nope"), filepath.Join(base, "out"), "server.ts", testOptions())

	var re *router.ResolveError
	assert.True(t, errors.As(err, &re))
	_, statErr := os.Stat(filepath.Join(base, "out"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompile_NestedFilename(t *testing.T) {
	p := newProject(t, map[string]string{"app/route.ts": getOnly})

	result, err := Compile(context.Background(), p.src, p.dist, "gen/entry.ts", testOptions())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(p.dist, "gen", "entry.ts"))
	assert.Equal(t, filepath.Join(p.dist, "gen", "entry.ts"), result.OutputPath)
}

func TestCompile_OverwritesPreviousOutput(t *testing.T) {
	p := newProject(t, map[string]string{"app/route.ts": getOnly})
	require.NoError(t, os.MkdirAll(p.dist, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(p.dist, "server.ts"), []byte("stale"), 0644))

	_, out := p.compile(t)
	assert.NotContains(t, out, "stale")

	entries, err := os.ReadDir(p.dist)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestCompile_CustomAnalyzer(t *testing.T) {
	p := newProject(t, map[string]string{"app/route.ts": ""})

	opts := testOptions()
	opts.Analyze = func(path string) ([]parser.Handler, error) {
		return []parser.Handler{{ExportName: "OPTIONS"}}, nil
	}

	result, err := Plan(context.Background(), p.src, p.dist, opts)
	require.NoError(t, err)
	assert.Contains(t, result.Output, `if (req.method === "OPTIONS") { app_OPTIONS(req, res); return; }`)
}

func TestCheck_CollectsEveryFailure(t *testing.T) {
	p := newProject(t, map[string]string{
		"app/route.ts":   getOnly,
		"app/a/route.ts": "export const GET = (;\n",
		"app/b/route.ts": "export const value = 1;\n",
		"app/c/route.js": getOnly,
	})

	problems, err := Check(p.src, testOptions())
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0].Error(), "app/a/route.ts")
	assert.ErrorIs(t, problems[1], parser.ErrNoHandlers)
}
