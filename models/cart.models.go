package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (product, color, size) line with a price snapshot.
// Subtotal is always SalePrice*Quantity, recomputed server-side on
// every mutation.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Color     string             `bson:"color" json:"color"`
	Size      string             `bson:"size" json:"size"`
	Price     int64              `bson:"price" json:"price"`
	SalePrice int64              `bson:"salePrice" json:"salePrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Subtotal  int64              `bson:"subtotal" json:"subtotal"`
}

// Matches reports whether the line is keyed by the given product variant.
func (i CartItem) Matches(productID primitive.ObjectID, color, size string) bool {
	return i.ProductID == productID && i.Color == color && i.Size == size
}

// Cart is a user's mutable set of prospective purchase lines plus the
// totals derived from them. Version backs optimistic concurrency on
// concurrent mutations of the same cart.
type Cart struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Items          []CartItem         `bson:"items" json:"items"`
	SubtotalPrice  int64              `bson:"subtotalPrice" json:"subtotalPrice"`
	DiscountAmount int64              `bson:"discountAmount" json:"discountAmount"`
	TotalPrice     int64              `bson:"totalPrice" json:"totalPrice"`
	Version        int64              `bson:"version" json:"-"`
}
