package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDiscountIsValidAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	openEnded := Discount{IsActive: true, StartDate: yesterday}
	assert.True(t, openEnded.IsValidAt(now), "no end date means no expiry")

	windowed := Discount{IsActive: true, StartDate: yesterday, EndDate: &tomorrow}
	assert.True(t, windowed.IsValidAt(now))

	inactive := Discount{IsActive: false, StartDate: yesterday}
	assert.False(t, inactive.IsValidAt(now))

	notStarted := Discount{IsActive: true, StartDate: tomorrow}
	assert.False(t, notStarted.IsValidAt(now))

	expired := Discount{IsActive: true, StartDate: yesterday.AddDate(0, -1, 0), EndDate: &yesterday}
	assert.False(t, expired.IsValidAt(now))

	// end date boundary is inclusive
	endsNow := Discount{IsActive: true, StartDate: yesterday, EndDate: &now}
	assert.True(t, endsNow.IsValidAt(now))
}

func TestCartItemMatches(t *testing.T) {
	id := primitive.NewObjectID()
	item := CartItem{ProductID: id, Color: "red", Size: "M"}

	assert.True(t, item.Matches(id, "red", "M"))
	assert.False(t, item.Matches(id, "red", "L"))
	assert.False(t, item.Matches(id, "blue", "M"))
}
