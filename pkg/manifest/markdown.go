package manifest

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	Title      string `yaml:"title"`
	Routes     int    `yaml:"routes"`
	SubRouters int    `yaml:"subRouters"`
}

// Markdown renders the manifest as a document with YAML front matter, a
// route table and the generated import block.
func Markdown(m *Manifest) string {
	var sb strings.Builder

	fm, _ := yaml.Marshal(frontmatter{Title: m.Title, Routes: len(m.Routes), SubRouters: len(m.SubRouters)})
	sb.WriteString("---\n")
	sb.Write(fm)
	sb.WriteString("---\n\n")

	fmt.Fprintf(&sb, "# %s\n\n", m.Title)

	if m.Template != "" {
		fmt.Fprintf(&sb, "Template: `%s`\n\n", m.Template)
	}
	for _, f := range []struct{ label, file string }{
		{"Settings", m.Settings},
		{"Top-level middlewares", m.TopLevelMiddlewares},
		{"Tail middlewares", m.TailMiddlewares},
	} {
		if f.file != "" {
			fmt.Fprintf(&sb, "- %s: `%s`\n", f.label, f.file)
		}
	}
	if m.Settings != "" || m.TopLevelMiddlewares != "" || m.TailMiddlewares != "" {
		sb.WriteString("\n")
	}

	sb.WriteString("## Routes\n\n")
	sb.WriteString("| URL | Methods | Router | File |\n")
	sb.WriteString("| --- | --- | --- | --- |\n")
	for _, r := range m.Routes {
		fmt.Fprintf(&sb, "| `%s` | %s | `%s` | `%s` |\n", r.URL, cell(methods(r)), r.Router, r.File)
	}

	if len(m.SubRouters) > 0 {
		sb.WriteString("\n## Sub-routers\n\n")
		for _, sr := range m.SubRouters {
			fmt.Fprintf(&sb, "- `%s` mounted at `%s`\n", sr.Identifier, sr.MountPath)
		}
	}

	if m.imports != "" {
		sb.WriteString("\n## Imports\n\n```ts\n")
		sb.WriteString(m.imports)
		sb.WriteString("```\n")
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "*", `\*`)
}

func writeHTML(w io.Writer, m *Manifest) error {
	md := goldmark.New(
		goldmark.WithExtensions(
			meta.Meta,
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
	)

	var body bytes.Buffer
	ctx := parser.NewContext()
	if err := md.Convert([]byte(Markdown(m)), &body, parser.WithContext(ctx)); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	title := m.Title
	if t, ok := meta.Get(ctx)["title"].(string); ok && t != "" {
		title = t
	}

	_, err := fmt.Fprintf(w, "<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body.String())
	return err
}
