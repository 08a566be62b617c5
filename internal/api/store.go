package api

import (
	"bytes"
	"context"
	"sync"
)

// Store holds assembled containers by id.
type Store interface {
	Put(ctx context.Context, c Container) error
	Get(ctx context.Context, id string) (Container, error)
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// MemoryStore keeps containers in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Container
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Container)}
}

func (s *MemoryStore) Put(_ context.Context, c Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; ok {
		return ErrAlreadyExists
	}
	c.Data = bytes.Clone(c.Data)
	s.items[c.ID] = c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return Container{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func (s *MemoryStore) Close() error { return nil }
