package plan

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned by stores for territories without a record.
var ErrNotFound = errors.New("record not found")

// Store persists territory records between ticks and restarts.
type Store interface {
	Load(ctx context.Context, territory string) (*Record, error)
	Save(ctx context.Context, r *Record) error
	Delete(ctx context.Context, territory string) error
	Territories(ctx context.Context) ([]string, error)
	Close() error
}

// MemoryStore keeps encoded records in memory. Records still go through
// Encode/Decode so it behaves like a persistent backend.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, territory string) (*Record, error) {
	s.mu.Lock()
	b, ok := s.blobs[territory]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(b)
}

func (s *MemoryStore) Save(_ context.Context, r *Record) error {
	b, err := Encode(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[r.Territory] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, territory string) error {
	s.mu.Lock()
	delete(s.blobs, territory)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Territories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.blobs))
	for name := range s.blobs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
