package modelconfig

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/churnlab/trainpipe/internal/collab"
	"github.com/churnlab/trainpipe/internal/errors"
	"github.com/churnlab/trainpipe/internal/searchpath"
)

const (
	// CollaboratorName is the name the accessor is registered under
	CollaboratorName = "config"
	// Version of the accessor contract
	Version = "1.0.0"
	// FileName is looked up on the search path
	FileName = "model_config.yaml"
	// DefaultModel is used when no file sets a model
	DefaultModel = "random_forest"
)

func init() {
	collab.MustRegister(collab.Descriptor{Name: CollaboratorName, Version: Version}, func(env collab.Env) (collab.Collaborator, error) {
		return New(env.SearchPath, env.Logger), nil
	})
}

// Params holds model hyperparameters as decoded from YAML
type Params map[string]any

// Rule is a CEL expression over `model` and `params` that must hold
type Rule struct {
	Expression string `yaml:"expression"`
	Message    string `yaml:"message"`
}

// ModelConfig is the model section of the pipeline configuration
type ModelConfig struct {
	Model  string `yaml:"model"`
	Params Params `yaml:"params"`
	Rules  []Rule `yaml:"rules"`

	// Source is the file the config was read from; empty for defaults
	Source string `yaml:"-"`
}

// Defaults returns the configuration used when no file is found
func Defaults() *ModelConfig {
	return &ModelConfig{
		Model:  DefaultModel,
		Params: Params{},
	}
}

// Parse decodes a model config document and fills in defaults
func Parse(data []byte) (*ModelConfig, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewPermanentf("failed to parse model config YAML: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Params == nil {
		cfg.Params = Params{}
	}
	return cfg, nil
}

// Validate evaluates every rule. The first rule that does not hold is
// reported with its message.
func (c *ModelConfig) Validate() error {
	if len(c.Rules) == 0 {
		return nil
	}

	env, err := cel.NewEnv(
		cel.Variable("model", cel.StringType),
		cel.Variable("params", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return fmt.Errorf("failed to create CEL environment: %w", err)
	}

	input := map[string]interface{}{
		"model":  c.Model,
		"params": map[string]any(c.Params),
	}

	for i, rule := range c.Rules {
		ast, issues := env.Compile(rule.Expression)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("%w: rule %d: failed to compile %q: %v", errors.ErrInvalidInput, i, rule.Expression, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return fmt.Errorf("%w: rule %d must return a boolean, got %v", errors.ErrInvalidInput, i, ast.OutputType())
		}

		program, err := env.Program(ast)
		if err != nil {
			return fmt.Errorf("failed to create CEL program: %w", err)
		}

		out, _, err := program.Eval(input)
		if err != nil {
			return fmt.Errorf("%w: rule %d: %v", errors.ErrInvalidInput, i, err)
		}
		passed, ok := out.Value().(bool)
		if !ok {
			return fmt.Errorf("%w: rule %d did not return a boolean: %v", errors.ErrInvalidInput, i, out.Value())
		}
		if !passed {
			msg := rule.Message
			if msg == "" {
				msg = rule.Expression
			}
			return fmt.Errorf("%w: %s", errors.ErrInvalidInput, msg)
		}
	}

	return nil
}

// Accessor retrieves the model configuration. Nothing is read until
// GetModelConfig is called.
type Accessor struct {
	searchPath *searchpath.SearchPath
	logger     *slog.Logger

	mu     sync.Mutex
	cached *ModelConfig
}

// New creates an accessor looking for FileName on sp
func New(sp *searchpath.SearchPath, logger *slog.Logger) *Accessor {
	if sp == nil {
		sp = searchpath.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Accessor{searchPath: sp, logger: logger}
}

// Name implements collab.Collaborator
func (a *Accessor) Name() string {
	return CollaboratorName
}

// GetModelConfig returns the validated model configuration. The first entry
// of the search path holding FileName wins; without one the defaults apply.
func (a *Accessor) GetModelConfig(ctx context.Context) (*ModelConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached != nil {
		return a.cached, nil
	}

	cfg := Defaults()
	if path, ok := a.searchPath.Find(FileName); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read model config %s: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, err
		}
		cfg.Source = path
		a.logger.Debug("model config loaded", "path", path, "model", cfg.Model, "params", len(cfg.Params))
	} else {
		a.logger.Debug("model config not found on search path, using defaults", "file", FileName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a.cached = cfg
	return cfg, nil
}
