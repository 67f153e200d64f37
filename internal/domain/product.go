package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductID is the canonical form of an upstream product identifier. The
// upstream API is inconsistent about id types (the same product can arrive
// as the number 7 or the string "7"), so ids are normalized here and the
// ambiguity never leaves this package.
type ProductID string

// CanonicalProductID normalizes a raw id so that numeric and string forms
// of the same id compare equal.
func CanonicalProductID(raw string) ProductID {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ProductID(strconv.FormatInt(n, 10))
	}
	return ProductID(s)
}

func (id ProductID) String() string { return string(id) }

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *ProductID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*id = CanonicalProductID(t)
	case json.Number:
		*id = CanonicalProductID(t.String())
	case nil:
		*id = ""
	default:
		return fmt.Errorf("product id must be a string or number, got %T", v)
	}
	return nil
}

// Image is a normalized display reference. The upstream API returns either
// a bare URL string or an {url, alt} object.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

func (i *Image) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var url string
		if err := json.Unmarshal(trimmed, &url); err != nil {
			return err
		}
		*i = Image{URL: url}
		return nil
	}
	type plain Image
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*i = Image(p)
	return nil
}

// Product is a catalog record as consumed by the cart. Fields beyond these
// are upstream concerns and are dropped at decode time.
type Product struct {
	ID              ProductID        `json:"id"`
	Title           string           `json:"title"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	Image           Image            `json:"image"`
	Rating          float64          `json:"rating,omitempty"`
	Description     string           `json:"description,omitempty"`
}

// UnitPrice is the effective price at add-to-cart time: the discounted
// price when present and strictly lower than the list price, else the list
// price.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountedPrice != nil && p.DiscountedPrice.LessThan(p.Price) {
		return *p.DiscountedPrice
	}
	return p.Price
}
