package router

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/withgalaxy/nexp/pkg/config"
)

// App is the resolved source tree of one compile.
type App struct {
	SrcDir  string
	DistDir string
	// DistToSrc prefixes every import specifier emitted into the generated
	// file so that it points back at the source tree.
	DistToSrc string
	Tree      *Tree

	TopLevelMiddlewares string
	TailMiddlewares     string
	Settings            string
	CustomServer        string

	Directories int
	Files       int

	topLevelRank int
	tailRank     int
	settingsRank int
	customRank   int
	conv         config.Convention
	logger       *log.Logger
}

// ResolveError reports a filesystem failure while scanning the source root.
type ResolveError struct {
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Path, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Resolve scans srcDir once and builds the route tree of its app directory
// together with the top-level convention files.
func Resolve(srcDir, distDir string, conv config.Convention, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}

	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, &ResolveError{Path: srcDir, Err: err}
	}
	info, err := os.Stat(absSrc)
	if err != nil {
		return nil, &ResolveError{Path: srcDir, Err: err}
	}
	if !info.IsDir() {
		return nil, &ResolveError{Path: srcDir, Err: fmt.Errorf("not a directory")}
	}

	absDist, err := filepath.Abs(distDir)
	if err != nil {
		return nil, &ResolveError{Path: distDir, Err: err}
	}
	distToSrc, err := importPrefix(absDist, absSrc)
	if err != nil {
		return nil, &ResolveError{Path: distDir, Err: err}
	}

	app := &App{
		SrcDir:       absSrc,
		DistDir:      absDist,
		DistToSrc:    distToSrc,
		Tree:         NewTree(conv.AppDir),
		topLevelRank: -1,
		tailRank:     -1,
		settingsRank: -1,
		customRank:   -1,
		conv:         conv,
		logger:       logger,
	}

	logger.Debug("scanning source tree", "dir", absSrc)

	if err := filepath.WalkDir(absSrc, app.visit); err != nil {
		var re *ResolveError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, &ResolveError{Path: srcDir, Err: err}
	}

	app.Tree.Sort()

	logger.Debug("scan completed", "directories", app.Directories, "files", app.Files)
	return app, nil
}

func (a *App) visit(p string, d fs.DirEntry, err error) error {
	if err != nil {
		return &ResolveError{Path: p, Err: err}
	}

	rel, err := filepath.Rel(a.SrcDir, p)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return nil
	}

	appDir := a.conv.AppDir
	parentRel := path.Dir(rel)

	if d.IsDir() {
		a.Directories++
		if !strings.HasPrefix(rel, appDir+"/") {
			return nil
		}
		parent, ok := a.Tree.Lookup(parentRel)
		if !ok {
			return nil
		}
		a.logger.Debug("found directory", "dir", rel)
		a.Tree.add(parent.ID, d.Name(), rel)
		return nil
	}

	a.Files++
	name := d.Name()

	if parentRel == "." {
		a.matchTopLevel(name)
		return nil
	}

	node, ok := a.Tree.Lookup(parentRel)
	if !ok || node.IsVirtualGroup() {
		return nil
	}

	if rank := a.conv.Match(a.conv.RouteBasename, name); rank >= 0 && (node.routeRank < 0 || rank < node.routeRank) {
		a.logger.Info("found route file", "file", rel)
		node.RouteFile = name
		node.routeRank = rank
	}
	if rank := a.conv.Match(a.conv.MiddlewaresBasename, name); rank >= 0 && (node.middlewaresRank < 0 || rank < node.middlewaresRank) {
		a.logger.Info("found middleware file", "file", rel)
		node.MiddlewaresFile = name
		node.middlewaresRank = rank
	}
	return nil
}

func (a *App) matchTopLevel(name string) {
	pick := func(basename, label string, current *string, currentRank *int) {
		rank := a.conv.Match(basename, name)
		if rank < 0 || (*currentRank >= 0 && rank >= *currentRank) {
			return
		}
		a.logger.Info("found "+label+" file", "file", name)
		*current = name
		*currentRank = rank
	}

	pick(a.conv.MiddlewaresBasename, "top-level middleware", &a.TopLevelMiddlewares, &a.topLevelRank)
	pick(a.conv.TailMiddlewaresBasename, "tail middleware", &a.TailMiddlewares, &a.tailRank)
	pick(a.conv.SettingsBasename, "settings", &a.Settings, &a.settingsRank)
	pick(a.conv.CustomServerBasename, "custom server", &a.CustomServer, &a.customRank)
}

// Convention returns the table the app was resolved with.
func (a *App) Convention() config.Convention {
	return a.conv
}

// ImportPath builds the specifier for a source file relative to the source
// root, without its extension.
func (a *App) ImportPath(rel string) string {
	return a.DistToSrc + "/" + a.conv.TrimExtension(rel)
}

// Abs returns the absolute path of a file relative to the source root.
func (a *App) Abs(rel string) string {
	return filepath.Join(a.SrcDir, filepath.FromSlash(rel))
}

func importPrefix(from, to string) (string, error) {
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return rel, nil
	}
	return "./" + rel, nil
}
