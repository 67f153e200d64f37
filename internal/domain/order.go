package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryAddress is the delivery form collected at checkout.
type DeliveryAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Notes     string `json:"notes,omitempty"`
}

// OrderTotals breaks down the amount charged for an order. Shipping and tax
// are both derived from the pre-tax, pre-shipping subtotal.
type OrderTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// OrderSnapshot is the immutable record assembled at checkout time. Once
// created it is independent of subsequent cart mutations; the cart is
// cleared right after.
type OrderSnapshot struct {
	ID            string          `json:"id"`
	Number        string          `json:"orderNumber"`
	SessionID     string          `json:"-"`
	Items         []LineItem      `json:"items"`
	Delivery      DeliveryAddress `json:"delivery"`
	PaymentMethod string          `json:"paymentMethod"`
	Totals        OrderTotals     `json:"totals"`
	CreatedAt     time.Time       `json:"createdAt"`
}
