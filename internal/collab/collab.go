package collab

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/churnlab/trainpipe/internal/errors"
	"github.com/churnlab/trainpipe/internal/observability"
	"github.com/churnlab/trainpipe/internal/searchpath"
)

// Collaborator is a named unit the entry point depends on
type Collaborator interface {
	Name() string
}

// Descriptor identifies a registered provider
type Descriptor struct {
	Name    string
	Version string
}

// Env is handed to factories. Everything a collaborator needs from the entry
// point is passed here explicitly.
type Env struct {
	SearchPath *searchpath.SearchPath
	Logger     *slog.Logger
}

// Factory builds a collaborator
type Factory func(Env) (Collaborator, error)

// Requirement names a collaborator the entry point needs. Constraint is a
// semver range such as "^1.0.0"; empty accepts any version.
type Requirement struct {
	Name       string
	Constraint string
}

type provider struct {
	desc    Descriptor
	version *semver.Version
	factory Factory
}

// Registry maps collaborator names to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]provider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]provider)}
}

// Register adds a provider. Names are unique and versions must be valid semver.
func (r *Registry) Register(desc Descriptor, factory Factory) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: collaborator name is required", errors.ErrInvalidInput)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %s", errors.ErrInvalidInput, desc.Name)
	}
	v, err := semver.NewVersion(desc.Version)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q for %s: %v", errors.ErrInvalidInput, desc.Version, desc.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[desc.Name]; exists {
		return fmt.Errorf("%w: collaborator %s registered twice", errors.ErrInvalidInput, desc.Name)
	}
	r.providers[desc.Name] = provider{desc: desc, version: v, factory: factory}
	return nil
}

// Names returns the registered collaborator names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the descriptor registered under name
func (r *Registry) Describe(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p.desc, ok
}

// Resolve builds every required collaborator in order. It stops at the first
// requirement that cannot be met and returns an *errors.UnresolvedError for it.
func (r *Registry) Resolve(ctx context.Context, env Env, reqs []Requirement) (*Set, error) {
	metrics := observability.GetMetrics()
	set := &Set{items: make(map[string]Collaborator, len(reqs))}

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := set.items[req.Name]; ok {
			continue
		}

		c, err := r.resolveOne(env, req)
		if err != nil {
			metrics.CollaboratorResolutionErrors.WithLabelValues(req.Name).Inc()
			return nil, errors.NewUnresolved(req.Name, err)
		}
		metrics.CollaboratorsResolved.WithLabelValues(req.Name).Inc()
		set.items[req.Name] = c
		set.order = append(set.order, req.Name)
	}

	return set, nil
}

func (r *Registry) resolveOne(env Env, req Requirement) (Collaborator, error) {
	r.mu.RLock()
	p, ok := r.providers[req.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrNotFound
	}

	if req.Constraint != "" {
		constraint, err := semver.NewConstraint(req.Constraint)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid constraint %q: %v", errors.ErrInvalidInput, req.Constraint, err)
		}
		if !constraint.Check(p.version) {
			return nil, fmt.Errorf("%w: have %s, want %s", errors.ErrVersionMismatch, p.version, req.Constraint)
		}
	}

	c, err := p.factory(env)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: factory for %s returned nil", errors.ErrInvalidInput, req.Name)
	}
	return c, nil
}

// Set holds resolved collaborators
type Set struct {
	items map[string]Collaborator
	order []string
}

// Get returns the collaborator resolved under name
func (s *Set) Get(name string) (Collaborator, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.items[name]
	return c, ok
}

// Names returns the resolved names in resolution order
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Lookup returns the collaborator resolved under name as a T
func Lookup[T any](s *Set, name string) (T, error) {
	var zero T
	c, ok := s.Get(name)
	if !ok {
		return zero, fmt.Errorf("%w: collaborator %s", errors.ErrNotFound, name)
	}
	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: collaborator %s is %T", errors.ErrInvalidInput, name, c)
	}
	return typed, nil
}

var defaultRegistry = NewRegistry()

// Default returns the registry collaborator packages register into
func Default() *Registry {
	return defaultRegistry
}

// Register adds a provider to the default registry
func Register(desc Descriptor, factory Factory) error {
	return defaultRegistry.Register(desc, factory)
}

// MustRegister is Register for use in init functions
func MustRegister(desc Descriptor, factory Factory) {
	if err := Register(desc, factory); err != nil {
		panic(err)
	}
}
