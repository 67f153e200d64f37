// Package memory keeps cart slots in process memory. Used by tests and as
// a dev fallback; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type Slots struct {
	mu    sync.Mutex
	slots map[string][]domain.LineItem
}

func New() *Slots {
	return &Slots{slots: map[string][]domain.LineItem{}}
}

func (s *Slots) Slot(key string) cart.Storage {
	return &slot{parent: s, key: key}
}

type slot struct {
	parent *Slots
	key    string
}

func (s *slot) Load(_ context.Context) ([]domain.LineItem, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	stored := s.parent.slots[s.key]
	items := make([]domain.LineItem, len(stored))
	copy(items, stored)
	return items, nil
}

func (s *slot) Save(_ context.Context, items []domain.LineItem) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	stored := make([]domain.LineItem, len(items))
	copy(stored, items)
	s.parent.slots[s.key] = stored
	return nil
}

func (s *slot) Clear(_ context.Context) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.slots, s.key)
	return nil
}
