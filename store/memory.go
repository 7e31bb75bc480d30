package store

import (
	"sync"
)

var _ SpecStore = &memoryStore{}

type memoryStore struct {
	store map[string]Entry
	mu    sync.RWMutex
}

// NewMemoryStore creates new memory specification store
func NewMemoryStore() SpecStore {
	return &memoryStore{
		store: make(map[string]Entry),
	}
}

func (s *memoryStore) Add(name string, content []byte) (string, error) {
	spec, err := Decode(name, content)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := generateUniqueID(func(id string) bool {
		_, ok := s.store[id]
		return ok
	})
	if err != nil {
		return "", err
	}
	s.store[id] = Entry{ID: id, Name: fileName(name), Spec: spec}
	return id, nil
}

func (s *memoryStore) Put(id, name string, content []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	spec, err := Decode(name, content)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[id] = Entry{ID: id, Name: fileName(name), Spec: spec}
	return nil
}

func (s *memoryStore) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *memoryStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.store[id]
	delete(s.store, id)
	return ok
}

func (s *memoryStore) List() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]string, len(s.store))
	for id, e := range s.store {
		names[id] = e.Name
	}
	return names
}
