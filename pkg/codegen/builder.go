package codegen

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/withgalaxy/nexp/pkg/parser"
	"github.com/withgalaxy/nexp/pkg/router"
	"github.com/withgalaxy/nexp/pkg/template"
)

const tracerName = "github.com/withgalaxy/nexp/pkg/codegen"

// Compile resolves srcDir, generates the server entry and writes it to
// distDir/filename. Nothing is written unless every stage succeeds.
func Compile(ctx context.Context, srcDir, distDir, filename string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "nexp.compile", trace.WithAttributes(
		attribute.String("nexp.src_dir", srcDir),
		attribute.String("nexp.dist_dir", distDir),
		attribute.String("nexp.filename", filename),
	))
	defer span.End()

	opts.Logger.Debug("starting compilation", "src", srcDir, "dist", distDir, "filename", filename)

	result, err := Plan(ctx, srcDir, distDir, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	outputPath := filepath.Join(distDir, filepath.FromSlash(filename))
	_, writeSpan := otel.Tracer(tracerName).Start(ctx, "nexp.write")
	err = writeAtomic(outputPath, []byte(result.Output))
	writeSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("write %s: %w", outputPath, err)
	}

	result.OutputPath = outputPath
	result.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("nexp.routes", len(result.Routes)))

	opts.Logger.Info("wrote server entry", "path", outputPath, "routes", len(result.Routes), "took", result.Duration.Round(time.Millisecond))
	return result, nil
}

// Plan runs resolution, analysis and template rendering without touching
// the destination.
func Plan(ctx context.Context, srcDir, distDir string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	tracer := otel.Tracer(tracerName)
	start := time.Now()

	_, span := tracer.Start(ctx, "nexp.resolve")
	app, err := router.Resolve(srcDir, distDir, opts.Convention, opts.Logger)
	span.End()
	if err != nil {
		return nil, err
	}

	engine, err := selectTemplate(app)
	if err != nil {
		return nil, err
	}
	if engine.IsCustom() {
		opts.Logger.Info("found custom server template", "path", engine.Path)
		if missing := engine.MissingMarkers(); len(missing) > 0 {
			opts.Logger.Warn("custom server template is missing markers", "markers", missing)
		}
	}

	_, span = tracer.Start(ctx, "nexp.compile_tree")
	compiler := NewCompiler(app, opts)
	fragments, err := compiler.CompileTree()
	span.End()
	if err != nil {
		return nil, err
	}

	return &Result{
		Template:     engine.Path,
		Routes:       compiler.Routes,
		SubRouters:   compiler.SubRouters,
		Fragments:    fragments,
		Output:       engine.Render(fragments),
		Duration:     time.Since(start),
		TopLevel:     app.TopLevelMiddlewares,
		Tail:         app.TailMiddlewares,
		SettingsFile: app.Settings,
	}, nil
}

// Check analyzes every route file of srcDir and returns one error per file
// that fails, instead of stopping at the first.
func Check(srcDir string, opts Options) ([]error, error) {
	opts = opts.withDefaults()

	app, err := router.Resolve(srcDir, srcDir, opts.Convention, opts.Logger)
	if err != nil {
		return nil, err
	}

	var problems []error
	err = app.Tree.Walk(func(n *router.RouteNode) error {
		if n.RouteFile == "" {
			return nil
		}
		rel := path.Join(n.RelativePath, n.RouteFile)
		handlers, err := opts.Analyze(app.Abs(rel))
		switch {
		case err != nil:
			problems = append(problems, &CompileError{Path: rel, Err: err})
		case len(handlers) == 0:
			problems = append(problems, &CompileError{Path: rel, Err: parser.ErrNoHandlers})
		}
		return nil
	})
	return problems, err
}

func selectTemplate(app *router.App) (*template.Engine, error) {
	if app.CustomServer == "" {
		return template.Default(), nil
	}
	return template.Select(app.Abs(app.CustomServer))
}

// writeAtomic writes data next to dest and renames it into place, so a
// failed write never leaves a truncated file behind.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
