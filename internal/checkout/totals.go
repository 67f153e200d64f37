package checkout

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	freeShippingMin = decimal.NewFromInt(50)
	shippingFee     = decimal.RequireFromString("5.99")
	taxRate         = decimal.RequireFromString("0.08")
)

// ComputeOrderTotals derives the checkout summary from the cart lines.
// Shipping is free when the subtotal exceeds 50, otherwise a flat 5.99.
// Tax is 8% of the pre-shipping subtotal; tax is not charged on shipping.
func ComputeOrderTotals(items []domain.LineItem) domain.OrderTotals {
	subtotal := domain.TotalPrice(items)

	shipping := shippingFee
	if subtotal.GreaterThan(freeShippingMin) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate)

	return domain.OrderTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
