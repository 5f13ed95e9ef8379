// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go-storefront/controllers"
	"go-storefront/payment"
	"go-storefront/routes"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Connect to MongoDB
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	client := utils.ConnectDB(mongoURI)
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	db := client.Database("storefront")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := utils.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Gateway credentials are read here once and injected; nothing
	// below main touches the environment.
	gateway := payment.New(payment.Config{
		TmnCode:    os.Getenv("VNP_TMN_CODE"),
		HashSecret: os.Getenv("VNP_HASH_SECRET"),
		BaseURL:    os.Getenv("VNP_URL"),
		ReturnURL:  os.Getenv("VNP_RETURN_URL"),
	})

	// Initialize controllers
	c := routes.Controllers{
		User:     controllers.NewUserController(db, emailService),
		Product:  controllers.NewProductController(db),
		Cart:     controllers.NewCartController(db),
		Order:    controllers.NewOrderController(db, gateway, emailService),
		Discount: controllers.NewDiscountController(db),
		Review:   controllers.NewReviewController(db),
		Admin:    controllers.NewAdminController(db),
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, c)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
