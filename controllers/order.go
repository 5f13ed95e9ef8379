// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/payment"
	"go-storefront/pricing"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders  *mongo.Collection
	Carts   *mongo.Collection
	Users   *mongo.Collection
	Gateway *payment.Gateway
	Email   *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(db *mongo.Database, gateway *payment.Gateway, email *utils.EmailService) *OrderController {
	return &OrderController{
		Orders:  db.Collection("orders"),
		Carts:   db.Collection("carts"),
		Users:   db.Collection("users"),
		Gateway: gateway,
		Email:   email,
	}
}

type createOrderRequest struct {
	ShippingAddress models.ShippingInfo `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	ShippingPrice   int64               `json:"shippingPrice"`
	DiscountAmount  int64               `json:"discountAmount"` // voucher discount, validated separately
}

// clientIP returns the caller's address, preferring the proxy header.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// CreateOrder snapshots the user's cart into an immutable order. The
// order subtotal is the sum of pre-sale prices; the cart's sale
// discount and any voucher are subtracted and shipping added. The cart
// is cleared only after the order document is confirmed persisted. For
// gateway payments a signed redirect URL is returned alongside the
// order.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.PaymentMethod != models.PaymentCOD && req.PaymentMethod != models.PaymentVNPay {
		utils.RespondError(w, http.StatusBadRequest, "Invalid payment method")
		return
	}
	if req.ShippingPrice < 0 || req.DiscountAmount < 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.ShippingAddress.Name == "" || req.ShippingAddress.Phone == "" || req.ShippingAddress.Address == "" {
		utils.RespondError(w, http.StatusBadRequest, "Shipping address is incomplete")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var cart models.Cart
	err := oc.Carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil || len(cart.Items) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	subtotal := pricing.OriginalSubtotal(cart.Items)
	total := pricing.OrderTotal(subtotal, cart.DiscountAmount, req.DiscountAmount, req.ShippingPrice)

	paymentStatus := models.PaymentUnpaid
	if req.PaymentMethod == models.PaymentCOD {
		paymentStatus = models.PaymentSuccess
	}

	now := time.Now()
	order := models.Order{
		OrderCode:      "ORD" + strconv.FormatInt(now.UnixMilli(), 10),
		UserID:         userID,
		Items:          append([]models.CartItem(nil), cart.Items...),
		ShippingInfo:   req.ShippingAddress,
		PaymentMethod:  req.PaymentMethod,
		SubtotalPrice:  subtotal,
		DiscountCart:   cart.DiscountAmount,
		DiscountAmount: req.DiscountAmount,
		ShippingPrice:  req.ShippingPrice,
		TotalPrice:     total,
		PaymentStatus:  paymentStatus,
		OrderStatus:    models.OrderPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res, err := oc.Orders.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		// two checkouts in the same millisecond; regenerate the code
		order.OrderCode = "ORD" + strconv.FormatInt(time.Now().UnixMilli()+1, 10)
		res, err = oc.Orders.InsertOne(ctx, order)
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	order.ID = res.InsertedID.(primitive.ObjectID)

	// clear only after the order is safely persisted
	if _, err := clearUserCart(ctx, oc.Carts, userID); err != nil {
		log.Printf("order %s created but cart clear failed: %v", order.OrderCode, err)
	}

	oc.notify(userID, func(email string) error {
		return oc.Email.SendOrderConfirmationEmail(email, order)
	})

	if req.PaymentMethod == models.PaymentVNPay {
		paymentURL := oc.Gateway.BuildPaymentURL(
			order.ID.Hex(),
			"Thanh toan don hang "+order.OrderCode,
			order.TotalPrice,
			clientIP(r),
			time.Now(),
		)
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success":    true,
			"message":    "Redirecting to payment gateway",
			"order":      order,
			"paymentUrl": paymentURL,
		})
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message":    "Order placed successfully (COD)",
		"order":      order,
		"paymentUrl": nil,
	})
}

// notify looks up the user's email and sends in the background.
func (oc *OrderController) notify(userID primitive.ObjectID, send func(email string) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var user models.User
		if err := oc.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Printf("notify: user %s not found: %v", userID.Hex(), err)
			return
		}
		if err := send(user.Email); err != nil {
			log.Printf("Failed to send email to %s: %v", user.Email, err)
		}
	}()
}

// VNPayReturn handles the gateway's asynchronous callback. Nothing in
// the query can be trusted until the signature verifies; after that
// the response code decides the payment outcome.
func (oc *OrderController) VNPayReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if err := oc.Gateway.VerifyReturn(query); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "97",
			"message": "Invalid signature",
		})
		return
	}

	orderID, err := primitive.ObjectIDFromHex(query.Get(payment.ParamTxnRef))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	rspCode := query.Get(payment.ParamResponseCode)
	if rspCode != payment.ResponseSuccess {
		// the payment status is terminal once set, so only move Unpaid
		oc.Orders.UpdateOne(ctx,
			bson.M{"_id": orderID, "paymentStatus": models.PaymentUnpaid},
			bson.M{"$set": bson.M{"paymentStatus": models.PaymentFailed, "updatedAt": time.Now()}})
		utils.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    rspCode,
			"message": "Payment failed",
		})
		return
	}

	res, err := oc.Orders.UpdateOne(ctx,
		bson.M{"_id": orderID, "paymentStatus": models.PaymentUnpaid},
		bson.M{"$set": bson.M{"paymentStatus": models.PaymentSuccess, "updatedAt": time.Now()}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update payment status")
		return
	}

	if res.ModifiedCount > 0 {
		order.PaymentStatus = models.PaymentSuccess
		oc.notify(order.UserID, func(email string) error {
			return oc.Email.SendPaymentSuccessEmail(email, order)
		})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"code":    "00",
		"message": "Payment successful",
	})
}

// GetMyOrders lists the authenticated user's orders, newest first
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := oc.Orders.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding orders")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": orders})
}

// GetOrderByID returns one order. Customers can only read their own;
// admins can read any.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if claims.Role != "admin" && order.UserID.Hex() != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": order})
}

type updateShippingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateShippingInfo patches the recipient details on an order. Blank
// fields keep their current value.
func (oc *OrderController) UpdateShippingInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req updateShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.Orders.FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	info := order.ShippingInfo
	if req.Name != "" {
		info.Name = req.Name
	}
	if req.Phone != "" {
		info.Phone = req.Phone
	}
	if req.Address != "" {
		info.Address = req.Address
	}

	_, err = oc.Orders.UpdateOne(ctx, bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"shippingInfo": info, "updatedAt": time.Now()}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}
	order.ShippingInfo = info

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": order})
}

// CancelOrder cancels an order that has not yet shipped
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := oc.Orders.FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if !order.CanCancel() {
		utils.RespondError(w, http.StatusBadRequest, "Order cannot be cancelled")
		return
	}

	_, err = oc.Orders.UpdateOne(ctx, bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"orderStatus": models.OrderCancelled, "updatedAt": time.Now()}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to cancel order")
		return
	}
	order.OrderStatus = models.OrderCancelled

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order cancelled",
		"order":   order,
	})
}

// GetProductSold reports how many units of a product have shipped in
// completed orders
func (oc *OrderController) GetProductSold(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"orderStatus": models.OrderCompleted}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":  nil,
			"sold": bson.M{"$sum": "$items.quantity"},
		}}},
	}

	cursor, err := oc.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute sold count")
		return
	}
	defer cursor.Close(ctx)

	var results []struct {
		Sold int64 `bson:"sold"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute sold count")
		return
	}

	var sold int64
	if len(results) > 0 {
		sold = results[0].Sold
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int64{"sold": sold})
}
