package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history"
)

// MemoryStore keeps layouts in process. Documents are stored in compressed
// form so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, doc *history.Document) (string, error) {
	id := assignID(doc)
	data, err := history.Marshal(doc)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.docs[id] = data
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*history.Document, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return history.Unmarshal(data)
}

func (s *MemoryStore) List(ctx context.Context) ([]history.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]history.Summary, 0, len(s.docs))
	for _, data := range s.docs {
		doc, err := history.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, doc.Summary())
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.docs, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
