// Package bootstrap runs the start-up sequence of the training pipeline entry
// point: search path, logging, collaborator resolution and the greeting.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/churnlab/trainpipe/internal/collab"
	"github.com/churnlab/trainpipe/internal/observability"
	"github.com/churnlab/trainpipe/internal/searchpath"
)

// Greeting is the only line written to stdout
const Greeting = "Hello world"

// DefaultLoggerName names the entry point logger when none is configured
const DefaultLoggerName = "pipelines.training_pipeline"

// DefaultRequirements lists the collaborators the entry point resolves.
// Model evaluation is deliberately not required.
func DefaultRequirements() []collab.Requirement {
	return []collab.Requirement{
		{Name: "data_pipeline", Constraint: "^1.0.0"},
		{Name: "model_training", Constraint: "^1.0.0"},
		{Name: "config", Constraint: "^1.0.0"},
	}
}

// Options configures a Bootstrapper. Zero values fall back to the process
// defaults.
type Options struct {
	Stdout     io.Writer
	LogWriter  io.Writer
	LogLevel   string
	EntryPoint string
	LoggerName string

	Logging      *observability.LogSetup
	Registry     *collab.Registry
	Requirements []collab.Requirement
}

// Bootstrapper runs the start-up sequence once
type Bootstrapper struct {
	opts Options
	logs logSink

	once       sync.Once
	err        error
	searchPath *searchpath.SearchPath
	logger     *slog.Logger
	set        *collab.Set
}

// New creates a bootstrapper
func New(opts Options) *Bootstrapper {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	if opts.LoggerName == "" {
		opts.LoggerName = DefaultLoggerName
	}
	if opts.Registry == nil {
		opts.Registry = collab.Default()
	}
	if opts.Requirements == nil {
		opts.Requirements = DefaultRequirements()
	}
	var logs logSink = processLogs{}
	if opts.Logging != nil {
		logs = opts.Logging
	}
	return &Bootstrapper{opts: opts, logs: logs}
}

type logSink interface {
	Configure(observability.LogOptions) bool
	Logger(name string) *slog.Logger
}

// processLogs routes to the package-level sink of observability
type processLogs struct{}

func (processLogs) Configure(opts observability.LogOptions) bool {
	return observability.Configure(opts)
}

func (processLogs) Logger(name string) *slog.Logger {
	return observability.Logger(name)
}

// Run performs the sequence on the first call and returns its outcome on
// every later call without repeating any side effect.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.once.Do(func() {
		b.err = b.run(ctx)
	})
	return b.err
}

func (b *Bootstrapper) run(ctx context.Context) error {
	metrics := observability.GetMetrics()
	metrics.BootstrapRuns.Inc()
	start := time.Now()
	defer func() {
		metrics.BootstrapDuration.Observe(time.Since(start).Seconds())
	}()

	entryPoint := b.opts.EntryPoint
	if entryPoint == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}
		entryPoint = exe
	}

	sp, err := searchpath.ForEntryPoint(entryPoint)
	if err != nil {
		return fmt.Errorf("failed to build search path: %w", err)
	}
	b.searchPath = sp
	metrics.SearchPathEntries.Set(float64(sp.Len()))

	b.logs.Configure(observability.LogOptions{
		Writer: b.opts.LogWriter,
		Level:  b.opts.LogLevel,
	})
	b.logger = b.logs.Logger(b.opts.LoggerName)

	set, err := b.opts.Registry.Resolve(ctx, collab.Env{SearchPath: sp, Logger: b.logger}, b.opts.Requirements)
	if err != nil {
		return err
	}
	b.set = set

	if _, err := fmt.Fprintln(b.opts.Stdout, Greeting); err != nil {
		return fmt.Errorf("failed to write greeting: %w", err)
	}
	return nil
}

// SearchPath returns the search path built by Run, or nil before it
func (b *Bootstrapper) SearchPath() *searchpath.SearchPath {
	return b.searchPath
}

// Logger returns the entry point logger, or nil before Run
func (b *Bootstrapper) Logger() *slog.Logger {
	return b.logger
}

// Collaborators returns the resolved collaborators, or nil if Run failed
func (b *Bootstrapper) Collaborators() *collab.Set {
	return b.set
}
