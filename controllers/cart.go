package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// errCartConflict signals that a concurrent mutation won the version
// race and the caller should retry.
var errCartConflict = errors.New("cart version conflict")

// CartController handles cart-related requests
type CartController struct {
	Carts    *mongo.Collection
	Products *mongo.Collection
}

// NewCartController creates a new CartController
func NewCartController(db *mongo.Database) *CartController {
	return &CartController{
		Carts:    db.Collection("carts"),
		Products: db.Collection("products"),
	}
}

func requestUserID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// emptyCart is what a user without a persisted cart sees. Empty carts
// are never written to storage.
func emptyCart(userID primitive.ObjectID) models.Cart {
	return models.Cart{UserID: userID, Items: []models.CartItem{}}
}

// saveCart recomputes the derived totals from the item list and writes
// the cart back. Updates are guarded by the version read earlier so
// concurrent mutations of the same cart cannot silently overwrite each
// other.
func (cc *CartController) saveCart(ctx context.Context, cart *models.Cart) error {
	totals := pricing.CartTotals(cart.Items)
	cart.SubtotalPrice = totals.SubtotalPrice
	cart.DiscountAmount = totals.DiscountAmount
	cart.TotalPrice = totals.TotalPrice

	if cart.ID.IsZero() {
		cart.Version = 1
		res, err := cc.Carts.InsertOne(ctx, cart)
		if err != nil {
			return err
		}
		cart.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	}

	res, err := cc.Carts.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{
			"$set": bson.M{
				"items":          cart.Items,
				"subtotalPrice":  cart.SubtotalPrice,
				"discountAmount": cart.DiscountAmount,
				"totalPrice":     cart.TotalPrice,
			},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errCartConflict
	}
	cart.Version++
	return nil
}

// GetCart returns the user's cart with freshly derived totals, or an
// empty zero-total cart if none exists yet
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	err := cc.Carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		utils.RespondJSON(w, http.StatusOK, emptyCart(userID))
		return
	}

	totals := pricing.CartTotals(cart.Items)
	cart.SubtotalPrice = totals.SubtotalPrice
	cart.DiscountAmount = totals.DiscountAmount
	cart.TotalPrice = totals.TotalPrice

	utils.RespondJSON(w, http.StatusOK, cart)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	SalePrice int64  `json:"salePrice"`
	Image     string `json:"image"`
}

// AddToCart adds a product variant to the user's cart, merging into an
// existing line when the same (product, color, size) is already there
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil || req.Quantity < 1 || req.Price < 0 || req.SalePrice < 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	err = cc.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var cart models.Cart
	err = cc.Carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		cart = emptyCart(userID)
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].Matches(productID, req.Color, req.Size) {
			cart.Items[i].Quantity += req.Quantity
			cart.Items[i].SalePrice = req.SalePrice
			cart.Items[i].Subtotal = req.SalePrice * int64(cart.Items[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Image:     req.Image,
			Color:     req.Color,
			Size:      req.Size,
			Price:     req.Price,
			SalePrice: req.SalePrice,
			Quantity:  req.Quantity,
			Subtotal:  req.SalePrice * int64(req.Quantity),
		})
	}

	if err := cc.saveCart(ctx, &cart); err != nil {
		if errors.Is(err, errCartConflict) {
			utils.RespondError(w, http.StatusBadRequest, "Cart was modified concurrently, please retry")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, cart)
}

type updateCartRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	SalePrice *int64 `json:"salePrice,omitempty"`
}

// UpdateCart changes the quantity of one line. A quantity of zero or
// less removes the line instead
func (cc *CartController) UpdateCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	err = cc.Carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].Matches(productID, req.Color, req.Size) {
			idx = i
			break
		}
	}
	if idx < 0 {
		utils.RespondError(w, http.StatusNotFound, "Item not found in cart")
		return
	}

	if req.Quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = req.Quantity
		if req.SalePrice != nil {
			cart.Items[idx].SalePrice = *req.SalePrice
		}
		cart.Items[idx].Subtotal = cart.Items[idx].SalePrice * int64(req.Quantity)
	}

	if err := cc.saveCart(ctx, &cart); err != nil {
		if errors.Is(err, errCartConflict) {
			utils.RespondError(w, http.StatusBadRequest, "Cart was modified concurrently, please retry")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, cart)
}

type removeFromCartRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// RemoveFromCart drops one line from the cart. Removing a line that is
// not there is a no-op
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req removeFromCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	err = cc.Carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Cart not found")
		return
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if !item.Matches(productID, req.Color, req.Size) {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := cc.saveCart(ctx, &cart); err != nil {
		if errors.Is(err, errCartConflict) {
			utils.RespondError(w, http.StatusBadRequest, "Cart was modified concurrently, please retry")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, cart)
}

// ClearCart resets the cart to no items and zero totals. The cart
// document itself stays around
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := clearUserCart(ctx, cc.Carts, userID)
	if err != nil {
		utils.RespondJSON(w, http.StatusOK, emptyCart(userID))
		return
	}

	utils.RespondJSON(w, http.StatusOK, cart)
}

// clearUserCart empties a user's cart in place, zeroing all derived
// totals. Shared with order creation, which clears the cart after the
// order document is safely persisted.
func clearUserCart(ctx context.Context, carts *mongo.Collection, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := carts.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set": bson.M{
				"items":          []models.CartItem{},
				"subtotalPrice":  int64(0),
				"discountAmount": int64(0),
				"totalPrice":     int64(0),
			},
			"$inc": bson.M{"version": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cart)
	return cart, err
}
