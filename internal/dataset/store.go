package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound reports that no dataset exists under the requested name.
var ErrNotFound = errors.New("dataset not found")

// ErrExists reports that a dataset already exists under the requested name.
var ErrExists = errors.New("dataset already exists")

// Store is the minimal contract experiment callers depend on. Implementations
// may be local files, memory, or a remote tracking backend.
type Store interface {
	// Has reports whether a dataset exists under the given name.
	Has(ctx context.Context, name string) (bool, error)
	// Create stores a new dataset; it fails with ErrExists when the name is taken.
	Create(ctx context.Context, name, description string, examples []Example) error
	// Examples returns the dataset's examples; it fails with ErrNotFound when absent.
	Examples(ctx context.Context, name string) ([]Example, error)
}

// EnsureDataset creates the dataset when absent and reports whether it did.
func EnsureDataset(ctx context.Context, store Store, name, description string, examples []Example) (bool, error) {
	exists, err := store.Has(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := store.Create(ctx, name, description, examples); err != nil {
		return false, err
	}
	return true, nil
}

// DirStore stores each dataset as one JSON or YAML file in a directory.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Has reports whether a dataset file exists for the name.
func (s *DirStore) Has(_ context.Context, name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	_, err := s.find(name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create writes the dataset as a pretty JSON file named after the dataset.
func (s *DirStore) Create(_ context.Context, name, description string, examples []Example) error {
	if err := checkName(name); err != nil {
		return err
	}
	if _, err := s.find(name); err == nil {
		return fmt.Errorf("create dataset %q: %w", name, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	spec, err := NormalizeSpec(Spec{Version: 1, Name: name, Description: description, Examples: examples})
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset %q: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	path := filepath.Join(s.dir, name+".json")
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write dataset %q: %w", name, err)
	}
	return nil
}

// Examples loads and validates the named dataset file.
func (s *DirStore) Examples(_ context.Context, name string) ([]Example, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	spec, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	return spec.Examples, nil
}

// Names lists the dataset names present in the directory, sorted.
func (s *DirStore) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) find(name string) (string, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(s.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat dataset %q: %w", name, err)
		}
	}
	return "", fmt.Errorf("dataset %q: %w", name, ErrNotFound)
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("dataset name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("dataset name %q must not contain path separators", name)
	}
	return nil
}

// MemStore keeps datasets in memory; it backs tests and ad hoc runs.
type MemStore struct {
	mu       sync.RWMutex
	datasets map[string]memDataset
}

type memDataset struct {
	description string
	examples    []Example
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{datasets: map[string]memDataset{}}
}

// Has reports whether the name is present.
func (s *MemStore) Has(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.datasets[name]
	return ok, nil
}

// Create stores a copy of the examples under the name.
func (s *MemStore) Create(_ context.Context, name, description string, examples []Example) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("dataset name is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[name]; ok {
		return fmt.Errorf("create dataset %q: %w", name, ErrExists)
	}
	copied := make([]Example, len(examples))
	copy(copied, examples)
	s.datasets[name] = memDataset{description: description, examples: copied}
	return nil
}

// Examples returns a copy of the stored examples.
func (s *MemStore) Examples(_ context.Context, name string) ([]Example, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.datasets[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q: %w", name, ErrNotFound)
	}
	copied := make([]Example, len(stored.examples))
	copy(copied, stored.examples)
	return copied, nil
}
