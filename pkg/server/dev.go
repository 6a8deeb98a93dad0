package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/withgalaxy/nexp/pkg/codegen"
)

// CompileFunc produces the server entry once.
type CompileFunc func(ctx context.Context) (*codegen.Result, error)

// Status is the dev loop state reported by the status server.
type Status struct {
	Compiles       int       `json:"compiles"`
	Failures       int       `json:"failures"`
	Routes         int       `json:"routes"`
	OutputPath     string    `json:"outputPath,omitempty"`
	LastError      string    `json:"lastError,omitempty"`
	LastDurationMs int64     `json:"lastDurationMs"`
	LastCompiledAt time.Time `json:"lastCompiledAt,omitempty"`
	Compiling      bool      `json:"compiling"`
}

type DevServer struct {
	SrcDir     string
	DistDir    string
	Filename   string
	Debounce   time.Duration
	StatusAddr string
	Logger     *log.Logger
	Metrics    *Metrics

	compile CompileFunc
	ctx     context.Context

	mu           sync.Mutex
	rebuildTimer *time.Timer
	pending      map[string]bool
	running      bool
	rerun        bool
	idle         *sync.Cond
	status       Status
}

// NewDevServer wires the default compile: codegen.Compile over srcDir into
// distDir/filename with opts.
func NewDevServer(srcDir, distDir, filename string, debounce time.Duration, opts codegen.Options) *DevServer {
	s := NewDevServerWithCompiler(srcDir, distDir, debounce, opts.Logger, func(ctx context.Context) (*codegen.Result, error) {
		return codegen.Compile(ctx, srcDir, distDir, filename, opts)
	})
	s.Filename = filename
	return s
}

func NewDevServerWithCompiler(srcDir, distDir string, debounce time.Duration, logger *log.Logger, compile CompileFunc) *DevServer {
	if logger == nil {
		logger = log.Default()
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	s := &DevServer{
		SrcDir:   srcDir,
		DistDir:  distDir,
		Debounce: debounce,
		Logger:   logger,
		Metrics:  NewMetrics(),
		compile:  compile,
		ctx:      context.Background(),
		pending:  make(map[string]bool),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Start compiles once, then watches the source tree and recompiles on change
// until ctx is cancelled. Compile failures are logged and watching continues.
func (s *DevServer) Start(ctx context.Context) error {
	s.ctx = ctx

	if err := s.Build(); err != nil {
		s.Logger.Warn("watching despite failed initial compile")
	}

	watcher, err := NewWatcher(s.SrcDir, s.DistDir, s.Logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	var statusSrv *http.Server
	if s.StatusAddr != "" {
		statusSrv = &http.Server{Addr: s.StatusAddr, Handler: s.StatusHandler()}
		go func() {
			s.Logger.Info("status server listening", "addr", s.StatusAddr)
			if err := statusSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.Error("status server stopped", "err", err)
			}
		}()
	}

	s.Logger.Info("watching for changes", "dir", s.SrcDir)

	for {
		select {
		case <-ctx.Done():
			s.stopTimer()
			if statusSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				statusSrv.Shutdown(shutdownCtx)
				cancel()
			}
			s.Wait()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.Metrics.watchEvents.Inc()
			s.ScheduleRebuild(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.Logger.Warn("watcher error", "err", err)
		}
	}
}

// ScheduleRebuild records filePath as changed and restarts the debounce
// timer.
func (s *DevServer) ScheduleRebuild(filePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[filePath] = true
	if s.rebuildTimer != nil {
		s.rebuildTimer.Stop()
	}
	s.rebuildTimer = time.AfterFunc(s.Debounce, s.executeRebuild)
}

// executeRebuild runs at most one compile at a time. A request that arrives
// while a compile is running is folded into exactly one follow-up compile.
func (s *DevServer) executeRebuild() {
	if !s.acquire(false) {
		return
	}
	s.drain()
}

// Build compiles synchronously, waiting for any compile in flight first. The
// error is that of the last compile it ran.
func (s *DevServer) Build() error {
	s.acquire(true)
	return s.drain()
}

// Wait blocks until no compile is running.
func (s *DevServer) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

func (s *DevServer) acquire(wait bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wait {
		for s.running {
			s.idle.Wait()
		}
	} else if s.running {
		s.rerun = true
		s.Metrics.coalesced.Inc()
		return false
	}
	s.running = true
	s.status.Compiling = true
	return true
}

// drain compiles until no follow-up was requested, then releases the loop.
func (s *DevServer) drain() error {
	for {
		if changed := s.takePending(); len(changed) > 0 {
			s.Logger.Debug("recompiling", "changed", changed)
		}
		err := s.runCompile()

		s.mu.Lock()
		if !s.rerun {
			s.running = false
			s.status.Compiling = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return err
		}
		s.rerun = false
		s.mu.Unlock()
	}
}

func (s *DevServer) runCompile() error {
	start := time.Now()
	result, err := s.compile(s.ctx)
	took := time.Since(start)

	routes := 0
	if result != nil {
		routes = len(result.Routes)
	}
	s.Metrics.observeCompile(took.Seconds(), routes, err)

	s.mu.Lock()
	s.status.Compiles++
	s.status.LastDurationMs = took.Milliseconds()
	s.status.LastCompiledAt = time.Now()
	if err != nil {
		s.status.Failures++
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		s.status.Routes = routes
		s.status.OutputPath = result.OutputPath
	}
	s.mu.Unlock()

	if err != nil {
		s.Logger.Error("compile failed", "err", err)
		return err
	}
	s.Logger.Info("compiled", "routes", routes, "took", took.Round(time.Millisecond))
	return nil
}

func (s *DevServer) takePending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := make([]string, 0, len(s.pending))
	for p := range s.pending {
		if rel, err := filepath.Rel(s.SrcDir, p); err == nil {
			p = filepath.ToSlash(rel)
		}
		changed = append(changed, p)
	}
	s.pending = make(map[string]bool)
	return changed
}

func (s *DevServer) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rebuildTimer != nil {
		s.rebuildTimer.Stop()
	}
}

// Status returns a snapshot of the dev loop state.
func (s *DevServer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
