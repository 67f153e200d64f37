package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

// cartAccess is the slice of the cart store checkout needs.
type cartAccess interface {
	GetItems(ctx context.Context) ([]domain.LineItem, error)
	Clear(ctx context.Context) error
}

// orderWriter persists completed order snapshots.
type orderWriter interface {
	Create(ctx context.Context, order domain.OrderSnapshot) error
}

// SubmitInput is the checkout form: a delivery address and a payment
// method tag. Settlement is simulated; the tag is recorded as-is.
type SubmitInput struct {
	Delivery      domain.DeliveryAddress `json:"delivery"`
	PaymentMethod string                 `json:"paymentMethod" validate:"required,oneof=credit-card klarna vipps"`
}

// Service assembles order snapshots from carts.
type Service struct {
	orders   orderWriter
	validate *validator.Validate
	logger   zerolog.Logger

	now func() time.Time
}

func NewService(orders orderWriter, logger zerolog.Logger) *Service {
	return &Service{
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

// Submit snapshots the cart into an immutable order, persists it, and
// clears the cart. The returned snapshot is independent of any later cart
// mutation.
func (s *Service) Submit(ctx context.Context, store cartAccess, sessionID string, in SubmitInput) (*domain.OrderSnapshot, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if err := s.validate.Struct(in.Delivery); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	items, err := store.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidArgument)
	}

	// Copy the lines so the snapshot cannot alias live cart state.
	lines := make([]domain.LineItem, len(items))
	copy(lines, items)

	now := s.now().UTC()
	order := domain.OrderSnapshot{
		ID:            uuid.NewString(),
		Number:        s.orderNumber(now),
		SessionID:     sessionID,
		Items:         lines,
		Delivery:      in.Delivery,
		PaymentMethod: in.PaymentMethod,
		Totals:        ComputeOrderTotals(lines),
		CreatedAt:     now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := store.Clear(ctx); err != nil {
		// The order is already placed; a stale cart is recoverable.
		s.logger.Error().Err(err).Str("order_number", order.Number).Msg("clear cart after checkout failed")
	}

	s.logger.Info().
		Str("order_number", order.Number).
		Int("lines", len(order.Items)).
		Str("total", order.Totals.Total.String()).
		Msg("order placed")
	return &order, nil
}

// orderNumber uses the top-level generator, which is safe for the
// concurrent Submit calls a shared Service sees.
func (s *Service) orderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%03d", now.Format("20060102"), rand.Intn(1000))
}
