package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VariantSize is one size option within a color variant
type VariantSize struct {
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

// Variant groups the sizes and images available for one color
type Variant struct {
	Color  string        `bson:"color" json:"color"`
	Sizes  []VariantSize `bson:"sizes" json:"sizes"`
	Images []string      `bson:"images" json:"images"`
}

// Product represents a catalog product
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	CategoryID    primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Price         int64              `bson:"price" json:"price"`
	Description   string             `bson:"description" json:"description"`
	Images        []string           `bson:"images" json:"images"`
	Variants      []Variant          `bson:"variants" json:"variants"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	NumReviews    int                `bson:"numReviews" json:"numReviews"`
}
