package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. Used for local runs and tests.
type MemoryStore[T Record] struct {
	resource string

	mu    sync.RWMutex
	items map[string]T
}

// NewMemoryStore returns an empty store. resource names the record kind in errors.
func NewMemoryStore[T Record](resource string) *MemoryStore[T] {
	return &MemoryStore[T]{resource: resource, items: make(map[string]T)}
}

func (s *MemoryStore[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]T, 0, len(s.items))
	for _, rec := range s.items {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Created(), out[j].Created()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Key() > out[j].Key()
	})
	return out, nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[id]
	if !ok {
		return zero, NotFoundError{Op: "catalog.Get", Resource: s.resource}
	}
	return rec, nil
}

func (s *MemoryStore[T]) Create(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[rec.Key()]; ok {
		return fmt.Errorf("catalog.Create: %w: %s id", ErrConflict, s.resource)
	}
	s.items[rec.Key()] = rec
	return nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[rec.Key()]; !ok {
		return NotFoundError{Op: "catalog.Update", Resource: s.resource}
	}
	s.items[rec.Key()] = rec
	return nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return NotFoundError{Op: "catalog.Delete", Resource: s.resource}
	}
	delete(s.items, id)
	return nil
}
