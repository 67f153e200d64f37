package domain

import "github.com/shopspring/decimal"

// LineItem is one product entry in a cart. Title, unit price and image are
// snapshotted when the item is added and never re-derived from the catalog.
type LineItem struct {
	ProductID ProductID       `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  Image           `json:"imageRef"`
	Quantity  int             `json:"quantity"`
}

// ItemCount sums the quantities of all line items.
func ItemCount(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity over all line items.
func TotalPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
