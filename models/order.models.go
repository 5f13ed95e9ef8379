package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods
const (
	PaymentCOD   = "COD"
	PaymentVNPay = "VNPAY"
)

// Payment statuses
const (
	PaymentUnpaid  = "Unpaid"
	PaymentSuccess = "Success"
	PaymentFailed  = "Failed"
)

// Order statuses
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
	OrderShipping  = "Shipping"
	OrderCompleted = "Completed"
	OrderCancelled = "Cancelled"
)

// ShippingInfo is the recipient snapshot stored on an order
type ShippingInfo struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
}

// Order is an immutable snapshot of a cart at checkout time. Only the
// two status fields change after creation.
//
// Invariant: TotalPrice = SubtotalPrice - DiscountCart - DiscountAmount
// + ShippingPrice, never negative.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderCode      string             `bson:"orderCode" json:"orderCode"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Items          []CartItem         `bson:"items" json:"items"`
	ShippingInfo   ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	PaymentMethod  string             `bson:"paymentMethod" json:"paymentMethod"`
	SubtotalPrice  int64              `bson:"subtotalPrice" json:"subtotalPrice"`
	DiscountCart   int64              `bson:"discountCart" json:"discountCart"`
	DiscountAmount int64              `bson:"discountAmount" json:"discountAmount"`
	ShippingPrice  int64              `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice     int64              `bson:"totalPrice" json:"totalPrice"`
	PaymentStatus  string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus    string             `bson:"orderStatus" json:"orderStatus"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanCancel reports whether the order may still be cancelled. Orders
// already shipping, completed or cancelled cannot be.
func (o Order) CanCancel() bool {
	return o.OrderStatus == OrderPending || o.OrderStatus == OrderConfirmed
}

// orderStatusRank encodes the forward-only progression of an order.
var orderStatusRank = map[string]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderShipping:  2,
	OrderCompleted: 3,
}

// CanTransitionTo reports whether the order status may move to next.
// The fulfilment chain only moves forward; cancellation is the one
// sideways exit and follows the CanCancel guard.
func (o Order) CanTransitionTo(next string) bool {
	if next == OrderCancelled {
		return o.CanCancel()
	}
	cur, ok := orderStatusRank[o.OrderStatus]
	if !ok {
		return false
	}
	nxt, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}
