package manifest

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/withgalaxy/nexp/pkg/codegen"
	"github.com/withgalaxy/nexp/pkg/parser"
	"github.com/withgalaxy/nexp/pkg/router"
	"github.com/withgalaxy/nexp/pkg/template"
)

func sample() *Manifest {
	return FromResult("nexp routes", &codegen.Result{
		TopLevel: "middlewares.ts",
		Tail:     "tail-middlewares.ts",
		SubRouters: []router.SubRouter{
			{Identifier: "adminRouter", MountPath: "/admin"},
		},
		Routes: []codegen.RouteInfo{
			{URL: "/", Path: "/", Router: "app", File: "app/route.ts", Handlers: []parser.Handler{{ExportName: "GET"}}},
			{URL: "/admin/users", Path: "/users", Router: "adminRouter", File: "app/admin/users/route.ts", Mount: "/admin", Handlers: []parser.Handler{
				{ExportName: "GET"},
				{ExportName: "POST", IsAsync: true},
			}},
		},
		Fragments: template.Fragments{
			Imports: "import { GET as app_GET } from \"../src/app/route\";\n",
		},
	})
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatText,
		"text":     FormatText,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"html":     FormatHTML,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatJSON))

	var decoded struct {
		Routes []struct {
			URL      string `json:"url"`
			Router   string `json:"router"`
			Handlers []struct {
				ExportName string `json:"exportName"`
				IsAsync    bool   `json:"isAsync"`
			} `json:"handlers"`
		} `json:"routes"`
		TopLevelMiddlewares string `json:"topLevelMiddlewares"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Routes, 2)
	assert.Equal(t, "/admin/users", decoded.Routes[1].URL)
	assert.Equal(t, "adminRouter", decoded.Routes[1].Router)
	assert.True(t, decoded.Routes[1].Handlers[1].IsAsync)
	assert.Equal(t, "middlewares.ts", decoded.TopLevelMiddlewares)
	assert.NotContains(t, buf.String(), "imports")
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatYAML))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "nexp routes", decoded["title"])
	routes, ok := decoded["routes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, routes, 2)
}

func TestWrite_EmptyResultEncodesLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromResult("empty", &codegen.Result{}), FormatJSON))
	assert.Contains(t, buf.String(), `"routes": []`)
	assert.Contains(t, buf.String(), `"subRouters": []`)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatText))
	out := buf.String()

	assert.Contains(t, out, "/admin/users")
	assert.Contains(t, out, "GET, POST*")
	assert.Contains(t, out, "2 routes, 1 sub-routers")

	buf.Reset()
	require.NoError(t, Write(&buf, FromResult("empty", &codegen.Result{}), FormatText))
	assert.Equal(t, "no routes\n", buf.String())
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sample())

	assert.True(t, strings.HasPrefix(md, "---\ntitle: nexp routes\nroutes: 2\nsubRouters: 1\n---\n"))
	assert.Contains(t, md, "| `/admin/users` | GET, POST\\* | `adminRouter` | `app/admin/users/route.ts` |")
	assert.Contains(t, md, "- `adminRouter` mounted at `/admin`")
	assert.Contains(t, md, "- Tail middlewares: `tail-middlewares.ts`")
	assert.Contains(t, md, "```ts\nimport { GET as app_GET }")
}

func TestWrite_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatHTML))
	out := buf.String()

	assert.Contains(t, out, "<title>nexp routes</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<code>/admin/users</code>")
	assert.NotContains(t, out, "subRouters: 1", "front matter is consumed")
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sample(), Format("xml")))
}
