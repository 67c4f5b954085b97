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

	"xdrive-logistics-api-server/internal/api/middleware"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/models"
)

type CompanyHandler struct {
	DB *mongo.Database
}

type CreateCompanyPayload struct {
	Name         string         `json:"name" binding:"required"`
	Type         string         `json:"type" binding:"required,oneof=BROKER CARRIER"`
	ContactEmail string         `json:"contactEmail" binding:"required,email"`
	ContactPhone string         `json:"contactPhone"`
	Address      AddressPayload `json:"address" binding:"required"`
}

// CreateCompany registers a new broker or carrier company.
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var payload CreateCompanyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("companies")

	count, err := collection.CountDocuments(context.Background(), bson.M{"name": payload.Name})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for company"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Company with this name already exists"})
		return
	}

	now := time.Now()
	company := models.Company{
		CompanyID:    fmt.Sprintf("CMP-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:         payload.Name,
		Type:         payload.Type,
		ContactEmail: payload.ContactEmail,
		ContactPhone: payload.ContactPhone,
		Address:      payload.Address.toModel(),
		Status:       "ACTIVE",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := collection.InsertOne(context.Background(), &company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// GetAllCompanies lists every company.
func (h *CompanyHandler) GetAllCompanies(c *gin.Context) {
	cursor, err := h.DB.Collection("companies").Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query companies"})
		return
	}
	defer cursor.Close(context.Background())

	var companies []models.Company
	if err := cursor.All(context.Background(), &companies); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode companies"})
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}

	c.JSON(http.StatusOK, companies)
}

// GetCompanyByID returns one company.
func (h *CompanyHandler) GetCompanyByID(c *gin.Context) {
	var company models.Company
	err := h.DB.Collection("companies").FindOne(context.Background(), bson.M{"companyID": c.Param("id")}).Decode(&company)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		}
		return
	}

	c.JSON(http.StatusOK, company)
}

type UpdateCompanyPayload struct {
	Name         *string         `json:"name"`
	ContactEmail *string         `json:"contactEmail"`
	ContactPhone *string         `json:"contactPhone"`
	Address      *AddressPayload `json:"address"`
	Status       *string         `json:"status"`
}

// UpdateCompany patches company fields.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	var payload UpdateCompanyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Name != nil {
		set["name"] = *payload.Name
	}
	if payload.ContactEmail != nil {
		set["contactEmail"] = *payload.ContactEmail
	}
	if payload.ContactPhone != nil {
		set["contactPhone"] = *payload.ContactPhone
	}
	if payload.Address != nil {
		set["address"] = payload.Address.toModel()
	}
	if payload.Status != nil {
		if *payload.Status != "ACTIVE" && *payload.Status != "INACTIVE" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be ACTIVE or INACTIVE"})
			return
		}
		set["status"] = *payload.Status
	}

	res, err := h.DB.Collection("companies").UpdateOne(context.Background(),
		bson.M{"companyID": c.Param("id")}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Company updated"})
}

// DeleteCompany marks a company inactive. Companies are never hard
// deleted: jobs and bids keep referencing them.
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	res, err := h.DB.Collection("companies").UpdateOne(context.Background(),
		bson.M{"companyID": c.Param("id")},
		bson.M{"$set": bson.M{"status": "INACTIVE", "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate company"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Company deactivated"})
}

// GetMyDrivers lists the driver accounts of the caller's company.
func (h *CompanyHandler) GetMyDrivers(c *gin.Context) {
	companyID := c.GetString(middleware.CtxCompanyID)
	if companyID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of a company"})
		return
	}

	cursor, err := h.DB.Collection("users").Find(context.Background(),
		bson.M{"companyID": companyID, "role": auth.RoleDriver})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query drivers"})
		return
	}
	defer cursor.Close(context.Background())

	var drivers []models.User
	if err := cursor.All(context.Background(), &drivers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode drivers"})
		return
	}
	if drivers == nil {
		drivers = []models.User{}
	}

	c.JSON(http.StatusOK, drivers)
}
