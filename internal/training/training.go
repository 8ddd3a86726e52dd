// Package training provides the model training collaborator.
package training

import (
	"context"
	"log/slog"

	"github.com/churnlab/trainpipe/internal/collab"
	"github.com/churnlab/trainpipe/internal/errors"
	"github.com/churnlab/trainpipe/internal/modelconfig"
)

const (
	// CollaboratorName is the name the trainer is registered under
	CollaboratorName = "model_training"
	// Version of the trainer contract
	Version = "1.0.0"
)

func init() {
	collab.MustRegister(collab.Descriptor{Name: CollaboratorName, Version: Version}, func(env collab.Env) (collab.Collaborator, error) {
		return NewModelTrainer(env.Logger), nil
	})
}

// ModelTrainer fits a model from hyperparameters
type ModelTrainer struct {
	logger *slog.Logger
}

// NewModelTrainer creates a trainer
func NewModelTrainer(logger *slog.Logger) *ModelTrainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelTrainer{logger: logger}
}

// Name implements collab.Collaborator
func (t *ModelTrainer) Name() string {
	return CollaboratorName
}

// Train fits a model. No estimator is wired yet.
func (t *ModelTrainer) Train(ctx context.Context, params modelconfig.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.logger.Debug("model training requested", "params", len(params))
	return errors.NewPermanentf("model training with %d params: %w", len(params), errors.ErrNotImplemented)
}
