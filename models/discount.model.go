package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount types
const (
	DiscountHoliday = "holiday" // flat amount off the bill
	DiscountPercent = "percent" // percentage of the subtotal
)

// Discount is a redeemable code. Codes have no redemption tracking:
// any valid code may be reused by any user.
type Discount struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Code               string               `bson:"code" json:"code"`
	DiscountType       string               `bson:"discountType" json:"discountType"`
	DiscountValue      int64                `bson:"discountValue" json:"discountValue"`
	IsActive           bool                 `bson:"isActive" json:"isActive"`
	StartDate          time.Time            `bson:"startDate" json:"startDate"`
	EndDate            *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	ApplicableProducts []primitive.ObjectID `bson:"applicableProducts" json:"applicableProducts"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
}

// IsValidAt reports whether the code can be applied at the given time:
// active, already started, and not past its optional end date.
func (d Discount) IsValidAt(now time.Time) bool {
	if !d.IsActive || d.StartDate.After(now) {
		return false
	}
	return d.EndDate == nil || !d.EndDate.Before(now)
}
