package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Storage is the persistence port for a single cart slot. Load returns
// domain.ErrCorruptState (possibly wrapped) when the slot exists but cannot
// be parsed; the store recovers from that locally.
type Storage interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
	Clear(ctx context.Context) error
}

// Slots hands out a Storage bound to a named slot. Backends share one
// connection or directory across slots.
type Slots interface {
	Slot(key string) Storage
}

// Change describes the cart after a successful mutation.
type Change struct {
	Items     []domain.LineItem
	ItemCount int
}

// Observer receives cart changes synchronously, before the mutating call
// returns.
type Observer func(Change)

// Store owns the line items of one cart slot. The persisted representation
// is the sole source of truth; every operation reads it, mutates, and
// writes it back. Writes from concurrent processes sharing the same slot
// are last-writer-wins.
type Store struct {
	storage Storage
	logger  zerolog.Logger

	mu sync.Mutex

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

// NewStore builds a cart store over the given storage port.
func NewStore(storage Storage, logger zerolog.Logger) *Store {
	return &Store{
		storage:   storage,
		logger:    logger,
		observers: map[int]Observer{},
	}
}

// Subscribe registers an observer and returns a token for Unsubscribe.
// A nil observer is accepted and never invoked.
func (s *Store) Subscribe(fn Observer) int {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	if fn != nil {
		s.observers[id] = fn
	}
	return id
}

// Unsubscribe removes a previously registered observer. Unknown tokens are
// a no-op.
func (s *Store) Unsubscribe(id int) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	delete(s.observers, id)
}

// GetItems returns the persisted line items in insertion order. A slot that
// was never written, or whose contents cannot be parsed, reads as an empty
// cart rather than an error.
func (s *Store) GetItems(ctx context.Context) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// AddItem adds quantity units of the product. If a line for the same
// product id already exists its quantity grows; otherwise a new line is
// appended with the product's data snapshotted. Quantity has no upper
// bound.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int) ([]domain.LineItem, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidArgument)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1, got %d", domain.ErrInvalidArgument, quantity)
	}
	product.ID = domain.CanonicalProductID(product.ID.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == product.ID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.LineItem{
			ProductID: product.ID,
			Title:     product.Title,
			UnitPrice: product.UnitPrice(),
			ImageRef:  product.Image,
			Quantity:  quantity,
		})
	}

	if err := s.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem deletes the line matching the product id. Ids are compared in
// canonical form, so a line stored from a numeric id matches its string
// form. Absent ids are a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID domain.ProductID) ([]domain.LineItem, error) {
	id := domain.CanonicalProductID(productID.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	kept := items[:0:0]
	removed := false
	for _, item := range items {
		if item.ProductID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return items, nil
	}

	if err := s.save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// UpdateQuantity sets the line's quantity to the given value. A quantity of
// zero or less removes the line instead. Unknown ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID domain.ProductID, quantity int) ([]domain.LineItem, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	id := domain.CanonicalProductID(productID.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	updated := false
	for i := range items {
		if items[i].ProductID == id {
			items[i].Quantity = quantity
			updated = true
			break
		}
	}
	if !updated {
		return items, nil
	}

	if err := s.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemCount sums the quantities of all lines.
func (s *Store) ItemCount(ctx context.Context) (int, error) {
	items, err := s.GetItems(ctx)
	if err != nil {
		return 0, err
	}
	return domain.ItemCount(items), nil
}

// TotalPrice sums unit price times quantity over all lines.
func (s *Store) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	items, err := s.GetItems(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.TotalPrice(items), nil
}

// Clear empties the cart. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		return err
	}
	s.notify(nil)
	return nil
}

func (s *Store) load(ctx context.Context) ([]domain.LineItem, error) {
	items, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptState) {
			s.logger.Warn().Err(err).Msg("cart slot unparsable, treating as empty")
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (s *Store) save(ctx context.Context, items []domain.LineItem) error {
	if err := s.storage.Save(ctx, items); err != nil {
		return err
	}
	s.notify(items)
	return nil
}

func (s *Store) notify(items []domain.LineItem) {
	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()

	change := Change{Items: items, ItemCount: domain.ItemCount(items)}
	for _, fn := range observers {
		fn(change)
	}
}
