package server

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Watcher reports changed paths below a source root. fsnotify is not
// recursive, so directories are added as they appear.
type Watcher struct {
	Events chan string
	Errors chan error

	root    string
	ignore  string
	fs      *fsnotify.Watcher
	logger  *log.Logger
	done    chan struct{}
	stopped chan struct{}
}

// NewWatcher watches root and every directory below it except ignore (the
// output directory, when it lives inside root).
func NewWatcher(root, ignore string, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		fw.Close()
		return nil, err
	}
	absIgnore := ""
	if ignore != "" {
		if absIgnore, err = filepath.Abs(ignore); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		Events:  make(chan string),
		Errors:  make(chan error),
		root:    absRoot,
		ignore:  absIgnore,
		fs:      fw,
		logger:  logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if err := w.addTree(absRoot); err != nil {
		fw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	<-w.stopped
	return err
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && skipDirs[d.Name()] || w.ignored(p) {
			return filepath.SkipDir
		}
		w.logger.Debug("watching directory", "dir", p)
		return w.fs.Add(p)
	})
}

func (w *Watcher) ignored(p string) bool {
	if w.ignore == "" {
		return false
	}
	return p == w.ignore || strings.HasPrefix(p, w.ignore+string(filepath.Separator))
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Debug("add watch", "path", ev.Name, "err", err)
				}
			}
			select {
			case w.Events <- ev.Name:
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// relevant drops chmod-only events and anything inside the output
// directory, which would otherwise retrigger on every write.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !w.ignored(ev.Name)
}
