package cart

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry hands out one Store per session key, all backed by the same
// Slots factory. Stores are created lazily and reused for the lifetime
// of the process.
type Registry struct {
	slots  Slots
	logger zerolog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(slots Slots, logger zerolog.Logger) *Registry {
	return &Registry{
		slots:  slots,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// For returns the Store bound to the given session key.
func (r *Registry) For(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[sessionID]; ok {
		return store
	}
	store := NewStore(r.slots.Slot(sessionID), r.logger.With().Str("session_id", sessionID).Logger())
	r.stores[sessionID] = store
	return store
}
