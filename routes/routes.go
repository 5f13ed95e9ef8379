// routes/routes.go
package routes

import (
	"go-storefront/controllers"
	"go-storefront/middleware"

	"github.com/gorilla/mux"
)

// Controllers bundles everything RegisterRoutes needs to wire up
type Controllers struct {
	User     *controllers.UserController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Discount *controllers.DiscountController
	Review   *controllers.ReviewController
	Admin    *controllers.AdminController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	api := router.PathPrefix("/api").Subrouter()

	// Auth
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", c.User.Register).Methods("POST")
	auth.HandleFunc("/login", c.User.Login).Methods("POST")
	auth.HandleFunc("/verify", c.User.VerifyEmail).Methods("GET")
	auth.HandleFunc("/check-email", c.User.CheckEmail).Methods("POST")

	account := api.PathPrefix("/auth").Subrouter()
	account.Use(middleware.AuthMiddleware)
	account.HandleFunc("/profile", c.User.GetProfile).Methods("GET")
	account.HandleFunc("/change-password", c.User.ChangePassword).Methods("PUT")
	account.HandleFunc("/delete-account", c.User.DeleteAccount).Methods("DELETE")

	// Products (public catalog)
	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", c.Product.GetProducts).Methods("GET")
	products.HandleFunc("/latest", c.Product.GetLatestProducts).Methods("GET")
	products.HandleFunc("/search", c.Product.SearchProducts).Methods("GET")
	products.HandleFunc("/related/{id}", c.Product.GetRelatedProducts).Methods("GET")
	products.HandleFunc("/{id}", c.Product.GetProductByID).Methods("GET")

	// Cart (customers only)
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(middleware.AuthMiddleware, middleware.CustomerMiddleware)
	cart.HandleFunc("", c.Cart.GetCart).Methods("GET")
	cart.HandleFunc("/add", c.Cart.AddToCart).Methods("POST")
	cart.HandleFunc("/update", c.Cart.UpdateCart).Methods("PUT")
	cart.HandleFunc("/remove", c.Cart.RemoveFromCart).Methods("DELETE")
	cart.HandleFunc("/clear", c.Cart.ClearCart).Methods("DELETE")

	// Discounts
	discounts := api.PathPrefix("/discounts").Subrouter()
	discounts.HandleFunc("/validate", c.Discount.ValidateDiscount).Methods("POST")
	discounts.HandleFunc("/active", c.Discount.GetActiveDiscounts).Methods("GET")
	discounts.HandleFunc("/latest-holiday", c.Discount.GetLatestHolidayDiscounts).Methods("GET")

	// Orders; the gateway callback and sold counter are public
	api.HandleFunc("/orders/vnpay-return", c.Order.VNPayReturn).Methods("GET")
	api.HandleFunc("/orders/sold/{productId}", c.Order.GetProductSold).Methods("GET")

	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.AuthMiddleware)
	orders.HandleFunc("", c.Order.CreateOrder).Methods("POST")
	orders.HandleFunc("/my-orders", c.Order.GetMyOrders).Methods("GET")
	orders.HandleFunc("/{id}", c.Order.GetOrderByID).Methods("GET")
	orders.HandleFunc("/{id}", c.Order.UpdateShippingInfo).Methods("PUT")
	orders.HandleFunc("/{id}/cancel", c.Order.CancelOrder).Methods("PUT")

	// Reviews
	api.HandleFunc("/reviews/{productId}", c.Review.GetProductReviews).Methods("GET")

	reviews := api.PathPrefix("/reviews").Subrouter()
	reviews.Use(middleware.AuthMiddleware, middleware.CustomerMiddleware)
	reviews.HandleFunc("", c.Review.CreateReview).Methods("POST")

	// Admin back-office
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware, middleware.AdminMiddleware)
	admin.HandleFunc("/stats", c.Admin.GetStats).Methods("GET")
	admin.HandleFunc("/users", c.Admin.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", c.Admin.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/orders", c.Admin.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", c.Admin.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", c.Product.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", c.Product.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/discounts", c.Discount.GetAllDiscounts).Methods("GET")
	admin.HandleFunc("/discounts", c.Discount.CreateDiscount).Methods("POST")
	admin.HandleFunc("/discounts/{id}", c.Discount.UpdateDiscount).Methods("PUT")
	admin.HandleFunc("/discounts/{id}", c.Discount.DeleteDiscount).Methods("DELETE")
}
