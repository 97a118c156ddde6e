package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ DocumentStore = (*MemoryStore)(nil)

// MemoryStore is an in-process DocumentStore for tests and
// single-binary deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document // ownerID -> id -> document
	seq  map[string][]string            // ownerID -> ids in creation order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]Document),
		seq:  make(map[string][]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, ownerID string, doc Document) (string, error) {
	id := uuid.NewString()

	stored := copyDocument(doc)
	stored["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[ownerID] == nil {
		s.docs[ownerID] = make(map[string]Document)
	}
	s.docs[ownerID][id] = stored
	s.seq[ownerID] = append(s.seq[ownerID], id)
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, ownerID, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[ownerID][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Patch(_ context.Context, ownerID, id string, partial Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[ownerID][id]
	if !ok {
		return ErrNotFound
	}
	s.docs[ownerID][id] = Merge(doc, partial)
	return nil
}

func (s *MemoryStore) List(_ context.Context, ownerID string, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.seq[ownerID]
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.docs[ownerID][id]; ok {
			out = append(out, copyDocument(doc))
		}
	}

	sortByCreatedAtDesc(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
