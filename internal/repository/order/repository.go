package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, order domain.OrderSnapshot) error
	GetByID(ctx context.Context, id string) (*domain.OrderSnapshot, error)
	GetLatestBySession(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error)
}
