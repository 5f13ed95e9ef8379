package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewController handles product review requests
type ReviewController struct {
	Reviews  *mongo.Collection
	Orders   *mongo.Collection
	Products *mongo.Collection
}

// NewReviewController creates a new ReviewController
func NewReviewController(db *mongo.Database) *ReviewController {
	return &ReviewController{
		Reviews:  db.Collection("reviews"),
		Orders:   db.Collection("orders"),
		Products: db.Collection("products"),
	}
}

type createReviewRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CreateReview adds a review for a product the user has bought and
// received, then recomputes the product's rating aggregates from all
// of its reviews.
func (rc *ReviewController) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.RespondError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// the user must have a completed order containing the product
	err = rc.Orders.FindOne(ctx, bson.M{
		"userId":          userID,
		"orderStatus":     models.OrderCompleted,
		"items.productId": productID,
	}).Err()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "You can only review products from completed orders")
		return
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	res, err := rc.Reviews.InsertOne(ctx, review)
	if mongo.IsDuplicateKeyError(err) {
		utils.RespondError(w, http.StatusBadRequest, "You have already reviewed this product")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	if err := rc.recomputeProductRating(ctx, productID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update product rating")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Review created",
		"review":  review,
	})
}

// recomputeProductRating rebuilds averageRating and numReviews from
// every review of the product rather than adjusting incrementally.
func (rc *ReviewController) recomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	cursor, err := rc.Reviews.Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	var average float64
	if len(reviews) > 0 {
		var sum int
		for _, rv := range reviews {
			sum += rv.Rating
		}
		average = float64(sum) / float64(len(reviews))
	}

	_, err = rc.Products.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{
		"$set": bson.M{
			"averageRating": average,
			"numReviews":    len(reviews),
		},
	})
	return err
}

// GetProductReviews lists a product's reviews, newest first
func (rc *ReviewController) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := rc.Reviews.Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding reviews")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": reviews})
}
