package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/models"
)

type UserHandler struct {
	DB *mongo.Database
}

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required"`
	CompanyID string `json:"companyID"`
}

// CreateUser registers a portal account. Broker, company_admin and
// driver accounts must belong to an existing company.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, ok := auth.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown role '%s'", req.Role)})
		return
	}

	if role != auth.RoleAdmin {
		if req.CompanyID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required for non-admin roles"})
			return
		}
		count, err := h.DB.Collection("companies").CountDocuments(context.Background(), bson.M{"companyID": req.CompanyID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for company"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Company does not exist"})
			return
		}
	}

	userCollection := h.DB.Collection("users")
	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		UserID:    fmt.Sprintf("USR-%s", strings.ToUpper(uuid.New().String()[:8])),
		Email:     req.Email,
		Name:      req.Name,
		Password:  hashedPassword,
		Role:      role,
		CompanyID: req.CompanyID,
		Status:    "active",
		CreatedAt: time.Now(),
	}

	if _, err := userCollection.InsertOne(context.Background(), &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User created successfully",
		"userID":  user.UserID,
		"email":   user.Email,
	})
}

// GetAllUsers lists accounts, optionally filtered by role or company.
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}
	if companyID := c.Query("companyID"); companyID != "" {
		filter["companyID"] = companyID
	}

	cursor, err := h.DB.Collection("users").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query users"})
		return
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}
