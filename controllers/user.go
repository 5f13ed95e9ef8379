package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// UserController handles user-related requests
type UserController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
}

// NewUserController creates a new UserController with EmailService
func NewUserController(db *mongo.Database, emailService *utils.EmailService) *UserController {
	return &UserController{
		Collection:   db.Collection("users"),
		EmailService: emailService,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		utils.RespondError(w, http.StatusBadRequest, "Name, email and a password of at least 6 characters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		utils.RespondError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     "user",
	}

	verificationToken, err := utils.GenerateJWT("", user.Email, user.Role)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error generating verification token")
		return
	}
	user.VerificationToken = verificationToken

	res, err := uc.Collection.InsertOne(ctx, user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	go func(email, token string) {
		if err := uc.EmailService.SendVerificationEmail(email, token); err != nil {
			log.Printf("Failed to send verification email to %s: %v", email, err)
		}
	}(user.Email, verificationToken)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registration successful, please verify your email",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and issues a JWT
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	user.Password = ""
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

// VerifyEmail marks an account verified using the emailed token
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		utils.RespondError(w, http.StatusBadRequest, "Verification token is required")
		return
	}

	claims := &utils.Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	})
	if err != nil || !token.Valid {
		utils.RespondError(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := uc.Collection.UpdateOne(ctx,
		bson.M{"email": claims.Email, "verificationToken": tokenStr},
		bson.M{"$set": bson.M{"isVerified": true, "verificationToken": ""}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid verification token")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully"})
}

// CheckEmail reports whether an account exists for the address
func (uc *UserController) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.RespondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"exists": count > 0})
}

// GetProfile returns the authenticated user's account
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}
	user.Password = ""

	utils.RespondJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword updates the password after checking the old one
func (uc *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.NewPassword) < 6 {
		utils.RespondError(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = uc.Collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": string(hashed)}})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// DeleteAccount removes the authenticated user's account
func (uc *UserController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := uc.Collection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
