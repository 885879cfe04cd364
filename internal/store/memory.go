package store

import (
	"context"
	"sync"
	"time"

	"smart_tracker/internal/models"
)

// MemoryStore keeps activities in insertion order for the lifetime of the
// process. A single mutex serializes every operation.
type MemoryStore struct {
	mu    sync.Mutex
	order []string
	byID  map[string]models.Activity
	now   func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]models.Activity),
		now:  time.Now,
	}
}

// Insert appends a new activity and stamps CreatedAt.
func (s *MemoryStore) Insert(_ context.Context, a models.Activity) (models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[a.ID]; exists {
		return models.Activity{}, ErrDuplicateID
	}
	a.CreatedAt = s.now()
	a.UpdatedAt = nil
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return a, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return models.Activity{}, ErrNotFound
	}
	return a, nil
}

// List filters, sorts newest first and pages over a copy of the collection.
func (s *MemoryStore) List(_ context.Context, q ListQuery) (Page, error) {
	s.mu.Lock()
	filtered := s.snapshot(func(a models.Activity) bool {
		return q.Search == "" || containsFold(a.Address, q.Search) || containsFold(a.ID, q.Search)
	})
	s.mu.Unlock()

	sortNewestFirst(filtered)
	return Page{Items: paginate(filtered, q.Skip, q.Limit), Total: len(filtered)}, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch models.ActivityPatch) (models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return models.Activity{}, ErrNotFound
	}
	patch.Apply(&a, s.now())
	s.byID[id] = a
	return a, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return models.Activity{}, ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return a, nil
}

// Search matches the address only and keeps insertion order.
func (s *MemoryStore) Search(_ context.Context, query string) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(func(a models.Activity) bool {
		return containsFold(a.Address, query)
	}), nil
}

// Recent sorts a copy, never the shared order.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]models.Activity, error) {
	s.mu.Lock()
	all := s.snapshot(nil)
	s.mu.Unlock()

	sortNewestFirst(all)
	return paginate(all, 0, limit), nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order), nil
}

func (s *MemoryStore) Close() error { return nil }

// snapshot copies matching activities in insertion order. Caller holds mu.
func (s *MemoryStore) snapshot(keep func(models.Activity) bool) []models.Activity {
	out := make([]models.Activity, 0, len(s.order))
	for _, id := range s.order {
		a := s.byID[id]
		if keep == nil || keep(a) {
			out = append(out, a)
		}
	}
	return out
}
