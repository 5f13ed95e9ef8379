package pricing

import (
	"testing"

	"go-storefront/models"

	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	items := []models.CartItem{
		{Price: 100000, SalePrice: 80000, Quantity: 2},
	}

	totals := CartTotals(items)
	assert.Equal(t, int64(160000), totals.SubtotalPrice)
	assert.Equal(t, int64(40000), totals.DiscountAmount)
	assert.Equal(t, int64(160000), totals.TotalPrice)
}

func TestCartTotalsEmpty(t *testing.T) {
	totals := CartTotals(nil)
	assert.Equal(t, int64(0), totals.SubtotalPrice)
	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(0), totals.TotalPrice)
}

func TestCartTotalsIdempotent(t *testing.T) {
	items := []models.CartItem{
		{Price: 100000, SalePrice: 80000, Quantity: 2},
		{Price: 50000, SalePrice: 50000, Quantity: 1},
		{Price: 30000, SalePrice: 25000, Quantity: 3},
	}

	first := CartTotals(items)
	second := CartTotals(items)
	assert.Equal(t, first, second)
}

func TestOriginalSubtotal(t *testing.T) {
	items := []models.CartItem{
		{Price: 100000, SalePrice: 80000, Quantity: 2},
		{Price: 50000, SalePrice: 45000, Quantity: 1},
	}
	assert.Equal(t, int64(250000), OriginalSubtotal(items))
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, int64(160000), OrderTotal(200000, 40000, 16000, 16000))
	assert.Equal(t, int64(0), OrderTotal(10000, 5000, 10000, 0), "never negative")
	assert.Equal(t, int64(30000), OrderTotal(0, 0, 0, 30000))
}

func TestDiscountAmountPercent(t *testing.T) {
	// 10% of 160000
	assert.Equal(t, int64(16000), DiscountAmount(models.DiscountPercent, 10, 160000))
	// rounds to the nearest unit: 15% of 333 = 49.95 -> 50
	assert.Equal(t, int64(50), DiscountAmount(models.DiscountPercent, 15, 333))
}

func TestDiscountAmountHoliday(t *testing.T) {
	assert.Equal(t, int64(20000), DiscountAmount(models.DiscountHoliday, 20000, 160000))
}

func TestDiscountAmountClamp(t *testing.T) {
	// flat amount above the bill is capped at the bill
	assert.Equal(t, int64(5000), DiscountAmount(models.DiscountHoliday, 99999, 5000))
	// 100% is the most a percent code can take
	assert.Equal(t, int64(5000), DiscountAmount(models.DiscountPercent, 150, 5000))
	// unknown type grants nothing
	assert.Equal(t, int64(0), DiscountAmount("bogus", 50, 5000))
	assert.Equal(t, int64(0), DiscountAmount(models.DiscountHoliday, -100, 5000))
}
