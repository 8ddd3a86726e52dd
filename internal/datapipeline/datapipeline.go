// Package datapipeline provides the data pipeline entry point collaborator.
// Its stages are owned elsewhere; the entry point only needs it to resolve.
package datapipeline

import (
	"context"
	"log/slog"

	"github.com/churnlab/trainpipe/internal/collab"
	"github.com/churnlab/trainpipe/internal/errors"
	"github.com/churnlab/trainpipe/internal/searchpath"
)

const (
	// CollaboratorName is the name the pipeline is registered under
	CollaboratorName = "data_pipeline"
	// Version of the pipeline contract
	Version = "1.0.0"
)

func init() {
	collab.MustRegister(collab.Descriptor{Name: CollaboratorName, Version: Version}, func(env collab.Env) (collab.Collaborator, error) {
		return New(env.SearchPath, env.Logger), nil
	})
}

// Pipeline produces the dataset a trainer consumes
type Pipeline struct {
	searchPath *searchpath.SearchPath
	logger     *slog.Logger
}

// New creates a pipeline
func New(sp *searchpath.SearchPath, logger *slog.Logger) *Pipeline {
	if sp == nil {
		sp = searchpath.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{searchPath: sp, logger: logger}
}

// Name implements collab.Collaborator
func (p *Pipeline) Name() string {
	return CollaboratorName
}

// Run executes the pipeline. No stages are wired yet.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Debug("data pipeline requested", "search_path", p.searchPath.Entries())
	return errors.NewPermanentf("data pipeline: %w", errors.ErrNotImplemented)
}
