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

// AdminController serves the back-office endpoints
type AdminController struct {
	Users    *mongo.Collection
	Orders   *mongo.Collection
	Products *mongo.Collection
}

// NewAdminController creates a new AdminController
func NewAdminController(db *mongo.Database) *AdminController {
	return &AdminController{
		Users:    db.Collection("users"),
		Orders:   db.Collection("orders"),
		Products: db.Collection("products"),
	}
}

// GetStats returns dashboard counters and revenue over completed orders
func (ac *AdminController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userCount, err := ac.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	productCount, err := ac.Products.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	orderCount, err := ac.Orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"orderStatus": models.OrderCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$totalPrice"},
		}}},
	}
	cursor, err := ac.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	defer cursor.Close(ctx)

	var results []struct {
		Revenue int64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	var revenue int64
	if len(results) > 0 {
		revenue = results[0].Revenue
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"users":    userCount,
		"products": productCount,
		"orders":   orderCount,
		"revenue":  revenue,
	})
}

// GetAllUsers lists every account without password fields
func (ac *AdminController) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := ac.Users.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"password": 0, "verificationToken": 0}))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error decoding users")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": users})
}

// DeleteUser removes an account
func (ac *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := ac.Users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "User deleted"})
}

// GetAllOrders lists every order, newest first
func (ac *AdminController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := ac.Orders.Find(ctx, bson.M{},
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

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus advances an order along its fulfilment chain. The
// chain only runs forward; cancellation obeys the same guard customers
// get.
func (ac *AdminController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		utils.RespondError(w, http.StatusBadRequest, "Status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := ac.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if !order.CanTransitionTo(req.Status) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid status transition")
		return
	}

	_, err = ac.Orders.UpdateOne(ctx, bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"orderStatus": req.Status, "updatedAt": time.Now()}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}
	order.OrderStatus = req.Status

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": order})
}
