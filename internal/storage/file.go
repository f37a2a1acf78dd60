package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File persists all keys in a single JSON file. The default backend for
// a single-user CLI: human-inspectable and survives restarts.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a file store at the given path. The file is created
// lazily on first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return nil, err
	}

	value, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}

	values[key] = json.RawMessage(append([]byte(nil), value...))

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store file: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	return nil
}

func (f *File) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	if len(data) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing store file %q: %w", f.path, err)
	}
	if values == nil {
		values = make(map[string]json.RawMessage)
	}
	return values, nil
}
