// Package redis persists each cart slot as a JSON value under a
// "cart:{key}" Redis key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

const keyPrefix = "cart:"

type Slots struct {
	client *goredis.Client
}

func New(client *goredis.Client) *Slots {
	return &Slots{client: client}
}

func (s *Slots) Slot(key string) cart.Storage {
	return &slot{client: s.client, key: keyPrefix + key}
}

type slot struct {
	client *goredis.Client
	key    string
}

func (s *slot) Load(ctx context.Context) ([]domain.LineItem, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart slot %s: %w", s.key, err)
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	return items, nil
}

func (s *slot) Save(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart slot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save cart slot %s: %w", s.key, err)
	}
	return nil
}

func (s *slot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear cart slot %s: %w", s.key, err)
	}
	return nil
}
