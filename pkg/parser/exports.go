package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Handler is an exported top-level callable of a route module. ExportName is
// used verbatim as the dispatch key.
type Handler struct {
	ExportName string `json:"exportName" yaml:"exportName"`
	IsAsync    bool   `json:"isAsync" yaml:"isAsync"`
}

// ErrNoHandlers is returned by callers that require at least one handler
// from a route module.
var ErrNoHandlers = errors.New("no valid endpoint handlers")

// ParseError locates a syntax error in a route module. Line is 1-based,
// Column 0-based.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// ParseExports reads a route module and returns its exported functions in
// declaration order.
func ParseExports(path string) ([]Handler, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseSource(path, src)
}

// ParseSource is ParseExports on in-memory source. filename selects the
// loader by extension.
func ParseSource(filename string, src []byte) ([]Handler, error) {
	code, err := stripTypes(filename, src)
	if err != nil {
		return nil, err
	}

	ast, err := js.Parse(parse.NewInputString(code), js.Options{})
	if err != nil {
		pe := &ParseError{File: filename, Message: err.Error()}
		var perr *parse.Error
		if errors.As(err, &perr) {
			pe.Line = perr.Line
			pe.Column = perr.Column
			pe.Message = perr.Message
		}
		return nil, pe
	}

	locals := topLevelFunctions(ast.List)
	seen := map[string]bool{}
	var handlers []Handler
	add := func(h Handler) {
		if seen[h.ExportName] {
			return
		}
		seen[h.ExportName] = true
		handlers = append(handlers, h)
	}
	for _, stmt := range ast.List {
		export, ok := stmt.(*js.ExportStmt)
		if !ok || export.Default || export.Module != nil {
			continue
		}
		if export.Decl != nil {
			for _, h := range functionBindings(export.Decl) {
				add(h)
			}
			continue
		}
		for _, alias := range export.List {
			local, exported := alias.Binding, alias.Binding
			if alias.Name != nil {
				local = alias.Name
			}
			if len(exported) == 0 || string(exported) == "default" {
				continue
			}
			if async, ok := locals[string(local)]; ok {
				add(Handler{ExportName: string(exported), IsAsync: async})
			}
		}
	}
	return handlers, nil
}

// topLevelFunctions maps every top-level function binding to whether it is
// async, so export clauses can be resolved against their declarations.
func topLevelFunctions(list []js.IStmt) map[string]bool {
	locals := map[string]bool{}
	for _, stmt := range list {
		var decl js.IExpr
		switch s := stmt.(type) {
		case *js.FuncDecl:
			decl = s
		case *js.VarDecl:
			decl = s
		case *js.ExportStmt:
			decl = s.Decl
		}
		if decl == nil {
			continue
		}
		for _, h := range functionBindings(decl) {
			locals[h.ExportName] = h.IsAsync
		}
	}
	return locals
}

// functionBindings lists the function-valued bindings a declaration introduces.
func functionBindings(decl js.IExpr) []Handler {
	switch d := decl.(type) {
	case *js.FuncDecl:
		if d.Name == nil {
			return nil
		}
		return []Handler{{ExportName: string(d.Name.Data), IsAsync: d.Async}}
	case *js.VarDecl:
		var handlers []Handler
		for _, el := range d.List {
			v, ok := el.Binding.(*js.Var)
			if !ok {
				continue
			}
			if async, ok := functionInit(el.Default); ok {
				handlers = append(handlers, Handler{ExportName: string(v.Data), IsAsync: async})
			}
		}
		return handlers
	}
	return nil
}

// functionInit reports whether an initializer is a function or arrow
// function expression, and whether it is async.
func functionInit(expr js.IExpr) (async bool, ok bool) {
	switch e := expr.(type) {
	case *js.ArrowFunc:
		return e.Async, true
	case *js.FuncDecl:
		return e.Async, true
	case *js.GroupExpr:
		return functionInit(e.X)
	}
	return false, false
}

// stripTypes lowers TypeScript to plain JavaScript so the module parser only
// sees ECMAScript syntax. JavaScript passes through esbuild unchanged apart
// from formatting.
func stripTypes(filename string, src []byte) (string, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:     loaderFor(filename),
		Target:     api.ESNext,
		Sourcefile: filename,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		pe := &ParseError{File: filename, Message: msg.Text}
		if msg.Location != nil {
			pe.Line = msg.Location.Line
			pe.Column = msg.Location.Column
		}
		return "", pe
	}
	return string(result.Code), nil
}

func loaderFor(filename string) api.Loader {
	switch filepath.Ext(filename) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}
