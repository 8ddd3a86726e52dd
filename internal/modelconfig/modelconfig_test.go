package modelconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/churnlab/trainpipe/internal/collab"
	trainErrors "github.com/churnlab/trainpipe/internal/errors"
	"github.com/churnlab/trainpipe/internal/searchpath"
)

const sampleConfig = `model: random_forest_cv
params:
  n_estimators: 200
  max_depth: 8
  test_size: 0.2
rules:
  - expression: "params.n_estimators > 0"
    message: "n_estimators must be positive"
  - expression: "params.test_size > 0.0 && params.test_size < 1.0"
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Model != "random_forest_cv" {
		t.Errorf("Model = %s", cfg.Model)
	}
	if cfg.Params["n_estimators"] != 200 {
		t.Errorf("n_estimators = %v", cfg.Params["n_estimators"])
	}
	if len(cfg.Rules) != 2 {
		t.Errorf("expected 2 rules, got %d", len(cfg.Rules))
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("rules: []\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %s, want %s", cfg.Model, DefaultModel)
	}
	if cfg.Params == nil {
		t.Error("Params must not be nil")
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("model: [unclosed"))
	if !trainErrors.IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr string
	}{
		{
			name:  "no rules",
			rules: nil,
		},
		{
			name:  "passing rule",
			rules: []Rule{{Expression: `model == "random_forest" && params.max_depth <= 10`}},
		},
		{
			name:    "failing rule with message",
			rules:   []Rule{{Expression: "params.max_depth > 10", Message: "trees too shallow"}},
			wantErr: "trees too shallow",
		},
		{
			name:    "failing rule without message",
			rules:   []Rule{{Expression: "params.max_depth > 10"}},
			wantErr: "params.max_depth > 10",
		},
		{
			name:    "non boolean",
			rules:   []Rule{{Expression: "params.max_depth + 1"}},
			wantErr: "must return a boolean",
		},
		{
			name:    "syntax error",
			rules:   []Rule{{Expression: "params.max_depth >"}},
			wantErr: "failed to compile",
		},
		{
			name:    "missing param",
			rules:   []Rule{{Expression: "params.learning_rate > 0.0"}},
			wantErr: "rule 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ModelConfig{Model: "random_forest", Params: Params{"max_depth": 8}, Rules: tt.rules}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
			if !errors.Is(err, trainErrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGetModelConfig_FromSearchPath(t *testing.T) {
	src := t.TempDir()
	utils := t.TempDir()
	path := writeConfig(t, utils, sampleConfig)

	a := New(searchpath.New(src, utils), nil)
	cfg, err := a.GetModelConfig(context.Background())
	if err != nil {
		t.Fatalf("GetModelConfig failed: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %s, want %s", cfg.Source, path)
	}
	if cfg.Params["max_depth"] != 8 {
		t.Errorf("max_depth = %v", cfg.Params["max_depth"])
	}

	// cached: a file appearing earlier on the path is not picked up
	writeConfig(t, src, "model: other\n")
	again, err := a.GetModelConfig(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again != cfg {
		t.Error("expected cached config")
	}
}

func TestGetModelConfig_FirstEntryWins(t *testing.T) {
	src := t.TempDir()
	utils := t.TempDir()
	writeConfig(t, src, "model: from_src\n")
	writeConfig(t, utils, "model: from_utils\n")

	cfg, err := New(searchpath.New(src, utils), nil).GetModelConfig(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "from_src" {
		t.Errorf("Model = %s, want from_src", cfg.Model)
	}
}

func TestGetModelConfig_Defaults(t *testing.T) {
	cfg, err := New(searchpath.New(t.TempDir()), nil).GetModelConfig(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != DefaultModel || cfg.Source != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestGetModelConfig_RuleFailure(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "params:\n  n_estimators: 0\nrules:\n  - expression: \"params.n_estimators > 0\"\n    message: \"n_estimators must be positive\"\n")

	_, err := New(searchpath.New(dir), nil).GetModelConfig(context.Background())
	if !errors.Is(err, trainErrors.ErrInvalidInput) || !strings.Contains(err.Error(), "n_estimators must be positive") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetModelConfig_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil, nil).GetModelConfig(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRegistered(t *testing.T) {
	desc, ok := collab.Default().Describe(CollaboratorName)
	if !ok {
		t.Fatal("accessor not registered")
	}
	if desc.Version != Version {
		t.Errorf("Version = %s", desc.Version)
	}

	set, err := collab.Default().Resolve(context.Background(), collab.Env{SearchPath: searchpath.New()}, []collab.Requirement{{Name: CollaboratorName, Constraint: "^1.0.0"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := collab.Lookup[*Accessor](set, CollaboratorName); err != nil {
		t.Errorf("Lookup failed: %v", err)
	}
}
