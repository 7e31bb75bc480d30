package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var _ SpecStore = &localStore{}

// candidate names in lookup order
var specFileNames = []string{
	SpecFileName + ".json",
	SpecFileName + ".yaml",
	SpecFileName + ".yml",
}

type localStore struct {
	dir string // <dir>/<assignment>/expected_output.{json,yaml}
	mu  sync.RWMutex
}

// NewLocalStore creates a specification store backed by a directory. Files
// are read on every Get so edits on disk take effect immediately.
func NewLocalStore(dir string) SpecStore {
	return &localStore{
		dir: filepath.Clean(dir),
	}
}

func (s *localStore) Add(name string, content []byte) (string, error) {
	if _, err := Decode(name, content); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := generateUniqueID(func(id string) bool {
		_, err := os.Stat(filepath.Join(s.dir, id))
		return err == nil
	})
	if err != nil {
		return "", err
	}
	return id, s.write(id, name, content)
}

func (s *localStore) Put(id, name string, content []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := Decode(name, content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(id, name, content)
}

// write replaces any existing specification of the assignment
func (s *localStore) write(id, name string, content []byte) error {
	d := filepath.Join(s.dir, id)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return err
	}
	fn := fileName(name)
	for _, n := range specFileNames {
		if n != fn {
			os.Remove(filepath.Join(d, n))
		}
	}
	tmp, err := os.CreateTemp(d, ".spec-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(d, fn))
}

func (s *localStore) Get(id string) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, name, err := s.find(id)
	if err != nil {
		return nil, err
	}
	spec, err := LoadSpecFile(p)
	if err != nil {
		return nil, err
	}
	return &Entry{ID: id, Name: name, Spec: spec}, nil
}

func (s *localStore) find(id string) (string, string, error) {
	for _, n := range specFileNames {
		p := filepath.Join(s.dir, id, n)
		_, err := os.Stat(p)
		if err == nil {
			return p, n, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", "", err
		}
	}
	return "", "", ErrNotFound
}

func (s *localStore) Remove(id string) bool {
	if checkID(id) != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for _, n := range specFileNames {
		if os.Remove(filepath.Join(s.dir, id, n)) == nil {
			removed = true
		}
	}
	// only removes the directory when it became empty
	os.Remove(filepath.Join(s.dir, id))
	return removed
}

func (s *localStore) List() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fi, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	names := make(map[string]string, len(fi))
	for _, f := range fi {
		if !f.IsDir() || checkID(f.Name()) != nil {
			continue
		}
		if _, n, err := s.find(f.Name()); err == nil {
			names[f.Name()] = n
		}
	}
	return names
}
