// Package pricing computes cart and order money amounts. All amounts
// are integers in the smallest currency unit; functions are pure and
// deterministic.
package pricing

import (
	"go-storefront/models"
)

// Totals holds the amounts derived from a list of cart lines.
type Totals struct {
	SubtotalPrice  int64
	DiscountAmount int64
	TotalPrice     int64
}

// CartTotals derives a cart's totals from its lines:
// subtotal = Σ salePrice*qty, discount = Σ (price-salePrice)*qty.
// At cart level the total equals the subtotal; shipping and vouchers
// apply at order time.
func CartTotals(items []models.CartItem) Totals {
	var t Totals
	for _, it := range items {
		qty := int64(it.Quantity)
		t.SubtotalPrice += it.SalePrice * qty
		t.DiscountAmount += (it.Price - it.SalePrice) * qty
	}
	t.TotalPrice = t.SubtotalPrice
	return t
}

// OriginalSubtotal sums the pre-sale unit prices over the lines. Order
// creation uses this as the order's subtotal and carries the cart's
// sale discount separately.
func OriginalSubtotal(items []models.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

// OrderTotal computes subtotal - discountCart - voucher + shipping,
// clamped so an order can never total below zero.
func OrderTotal(subtotal, discountCart, voucher, shipping int64) int64 {
	total := subtotal - discountCart - voucher + shipping
	if total < 0 {
		return 0
	}
	return total
}

// DiscountAmount computes the reduction a code grants against a
// subtotal: holiday codes take a flat amount, percent codes take a
// rounded percentage. The result is clamped to [0, subtotal] so a
// discount can never exceed the bill.
func DiscountAmount(discountType string, value, subtotal int64) int64 {
	var amount int64
	switch discountType {
	case models.DiscountHoliday:
		amount = value
	case models.DiscountPercent:
		// round to nearest unit
		amount = (subtotal*value + 50) / 100
	}
	if amount < 0 {
		return 0
	}
	if amount > subtotal {
		return subtotal
	}
	return amount
}
