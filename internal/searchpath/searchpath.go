package searchpath

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sibling directories of the entry point that collaborators are looked up in.
const (
	SourceDir  = "src"
	UtilityDir = "utils"
)

// SearchPath is an ordered list of directories consulted when a collaborator
// looks for a file by name. Entries are absolute and cleaned, keep the order of
// their first insertion and are never removed.
type SearchPath struct {
	mu      sync.RWMutex
	entries []string
}

// New creates a search path holding the given entries in order
func New(entries ...string) *SearchPath {
	sp := &SearchPath{}
	for _, e := range entries {
		sp.Append(e)
	}
	return sp
}

// ForEntryPoint builds the search path for an entry point binary: the src and
// utils siblings of the directory that holds it. Symlinks are resolved so the
// result depends on where the binary lives, not on how it was invoked.
func ForEntryPoint(executable string) (*SearchPath, error) {
	if executable == "" {
		return nil, fmt.Errorf("entry point path is empty")
	}

	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		// Missing entry points still get a path; nothing is read at this stage.
		resolved = executable
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry point %s: %w", executable, err)
	}

	dir := filepath.Dir(abs)
	sp := New()
	sp.Append(filepath.Join(dir, "..", SourceDir))
	sp.Append(filepath.Join(dir, "..", UtilityDir))
	return sp, nil
}

// Append adds dir to the end of the path. It reports false and leaves the path
// unchanged when dir is empty or already present. The directory does not need
// to exist.
func (s *SearchPath) Append(dir string) bool {
	if dir == "" {
		return false
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	dir = filepath.Clean(dir)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e == dir {
			return false
		}
	}
	s.entries = append(s.entries, dir)
	return true
}

// Entries returns a copy of the entries in order
func (s *SearchPath) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries
func (s *SearchPath) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Find returns the first entry, in order, that holds a regular file called name.
func (s *SearchPath) Find(name string) (string, bool) {
	if name == "" || filepath.IsAbs(name) {
		return "", false
	}
	for _, dir := range s.Entries() {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return candidate, true
	}
	return "", false
}
