package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductController handles product-related requests
type ProductController struct {
	Collection *mongo.Collection
}

// NewProductController creates a new ProductController
func NewProductController(db *mongo.Database) *ProductController {
	return &ProductController{
		Collection: db.Collection("products"),
	}
}

// GetProducts retrieves products with optional category filter,
// pagination and price sorting
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" {
		categoryID, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		filter["categoryId"] = categoryID
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	switch r.URL.Query().Get("sort") {
	case "price_asc":
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case "price_desc":
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	default:
		opts.SetSort(bson.D{{Key: "_id", Value: -1}})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error reading products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, products)
}

// GetLatestProducts returns the most recently added products
func (pc *ProductController) GetLatestProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(8))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error reading products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, products)
}

// SearchProducts finds products whose name matches the keyword
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		utils.RespondError(w, http.StatusBadRequest, "Search keyword is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"name": bson.M{"$regex": keyword, "$options": "i"}}
	cursor, err := pc.Collection.Find(ctx, filter, options.Find().SetLimit(50))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error reading products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, products)
}

// GetRelatedProducts lists other products in the same category
func (pc *ProductController) GetRelatedProducts(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	if err := pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	cursor, err := pc.Collection.Find(ctx,
		bson.M{"categoryId": product.CategoryID, "_id": bson.M{"$ne": id}},
		options.Find().SetLimit(8))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error reading products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	if err := pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if product.Name == "" || product.Price < 0 {
		utils.RespondError(w, http.StatusBadRequest, "Name and a non-negative price are required")
		return
	}
	product.AverageRating = 0
	product.NumReviews = 0

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := pc.Collection.InsertOne(ctx, product)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error creating product")
		return
	}
	product.ID = res.InsertedID.(primitive.ObjectID)

	utils.RespondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"categoryId":  product.CategoryID,
		"price":       product.Price,
		"description": product.Description,
		"images":      product.Images,
		"variants":    product.Variants,
	}}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := pc.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Product updated"})
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := pc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Product deleted"})
}
