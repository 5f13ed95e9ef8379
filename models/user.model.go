package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a customer or admin account
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password,omitempty" json:"-"`
	Phone             string             `bson:"phone" json:"phone"`
	Address           string             `bson:"address" json:"address"`
	Role              string             `bson:"role" json:"role"` // "user" or "admin"
	IsVerified        bool               `bson:"isVerified" json:"isVerified"`
	VerificationToken string             `bson:"verificationToken" json:"-"`
}
