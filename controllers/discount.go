package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DiscountController handles discount-code requests
type DiscountController struct {
	Discounts *mongo.Collection
}

// NewDiscountController creates a new DiscountController
func NewDiscountController(db *mongo.Database) *DiscountController {
	return &DiscountController{
		Discounts: db.Collection("discounts"),
	}
}

type validateDiscountRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

// ValidateDiscount checks a code against the current time and computes
// the amount it would take off the given subtotal. Validation does not
// redeem the code; codes may be reused.
func (dc *DiscountController) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.Subtotal < 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var discount models.Discount
	err := dc.Discounts.FindOne(ctx, bson.M{"code": req.Code}).Decode(&discount)
	if err != nil || !discount.IsValidAt(time.Now()) {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid or expired discount code",
		})
		return
	}

	amount := pricing.DiscountAmount(discount.DiscountType, discount.DiscountValue, req.Subtotal)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"message":        "Discount applied",
		"discountAmount": amount,
		"code":           discount.Code,
		"type":           discount.DiscountType,
	})
}

// GetActiveDiscounts lists codes currently valid for use
func (dc *DiscountController) GetActiveDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"$or": bson.A{
			bson.M{"endDate": bson.M{"$exists": false}},
			bson.M{"endDate": nil},
			bson.M{"endDate": bson.M{"$gte": now}},
		},
	}

	cursor, err := dc.Discounts.Find(ctx, filter)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve discounts")
		return
	}
	defer cursor.Close(ctx)

	discounts := []models.Discount{}
	if err := cursor.All(ctx, &discounts); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding discounts")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": discounts})
}

// GetLatestHolidayDiscounts returns the three newest holiday codes
func (dc *DiscountController) GetLatestHolidayDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := dc.Discounts.Find(ctx,
		bson.M{"discountType": models.DiscountHoliday},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(3))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve discounts")
		return
	}
	defer cursor.Close(ctx)

	discounts := []models.Discount{}
	if err := cursor.All(ctx, &discounts); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding discounts")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": discounts})
}

// GetAllDiscounts lists every code, admin only
func (dc *DiscountController) GetAllDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := dc.Discounts.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve discounts")
		return
	}
	defer cursor.Close(ctx)

	discounts := []models.Discount{}
	if err := cursor.All(ctx, &discounts); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding discounts")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": discounts})
}

type discountRequest struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discountType"`
	DiscountValue int64      `json:"discountValue"`
	IsActive      bool       `json:"isActive"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
}

func (req discountRequest) validate() string {
	if req.Code == "" {
		return "Code is required"
	}
	if req.DiscountType != models.DiscountHoliday && req.DiscountType != models.DiscountPercent {
		return "Discount type must be holiday or percent"
	}
	if req.DiscountValue <= 0 {
		return "Discount value must be positive"
	}
	if req.DiscountType == models.DiscountPercent && req.DiscountValue > 100 {
		return "Percent discount cannot exceed 100"
	}
	return ""
}

// CreateDiscount adds a new code, admin only
func (dc *DiscountController) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if msg := req.validate(); msg != "" {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	discount := models.Discount{
		Code:               req.Code,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
		IsActive:           req.IsActive,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		ApplicableProducts: []primitive.ObjectID{},
		CreatedAt:          time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := dc.Discounts.InsertOne(ctx, discount)
	if mongo.IsDuplicateKeyError(err) {
		utils.RespondError(w, http.StatusBadRequest, "Discount code already exists")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create discount")
		return
	}
	discount.ID = res.InsertedID.(primitive.ObjectID)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": discount})
}

// UpdateDiscount edits a code, admin only
func (dc *DiscountController) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid discount ID")
		return
	}

	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if msg := req.validate(); msg != "" {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"code":          req.Code,
		"discountType":  req.DiscountType,
		"discountValue": req.DiscountValue,
		"isActive":      req.IsActive,
		"startDate":     req.StartDate,
		"endDate":       req.EndDate,
	}}

	res, err := dc.Discounts.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update discount")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Discount not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Discount updated"})
}

// DeleteDiscount removes a code, admin only
func (dc *DiscountController) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid discount ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := dc.Discounts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to delete discount")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Discount not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Discount deleted"})
}
