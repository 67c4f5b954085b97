package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"xdrive-logistics-api-server/internal/api/middleware"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/s3"
	"xdrive-logistics-api-server/internal/socket"
)

type VehicleHandler struct {
	DB         *mongo.Database
	Hub        *socket.Hub
	S3Uploader *s3.Uploader
}

type CreateVehiclePayload struct {
	PlateNumber string              `json:"plateNumber" binding:"required"`
	Model       string              `json:"model" binding:"required"`
	Specs       models.VehicleSpecs `json:"specs" binding:"required"`
}

// CreateVehicle registers a vehicle under the caller's company.
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	companyID := c.GetString(middleware.CtxCompanyID)
	if companyID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of a company"})
		return
	}

	var payload CreateVehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	vehicle := models.Vehicle{
		VehicleID:   fmt.Sprintf("VEH-%s", strings.ToUpper(uuid.New().String()[:8])),
		CompanyID:   companyID,
		PlateNumber: payload.PlateNumber,
		Model:       payload.Model,
		Specs:       payload.Specs,
		Status:      "AVAILABLE",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := h.DB.Collection("vehicles").InsertOne(context.Background(), &vehicle); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetMyVehicles lists the fleet of the caller's company.
func (h *VehicleHandler) GetMyVehicles(c *gin.Context) {
	companyID := c.GetString(middleware.CtxCompanyID)
	if companyID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of a company"})
		return
	}

	cursor, err := h.DB.Collection("vehicles").Find(context.Background(), bson.M{"companyID": companyID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query vehicles"})
		return
	}
	defer cursor.Close(context.Background())

	var vehicles []models.Vehicle
	if err := cursor.All(context.Background(), &vehicles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode vehicles"})
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	c.JSON(http.StatusOK, vehicles)
}

// findCompanyVehicle loads a vehicle and checks it belongs to the
// caller's company (admins bypass the ownership check).
func (h *VehicleHandler) findCompanyVehicle(c *gin.Context, vehicleID string) (*models.Vehicle, bool) {
	var vehicle models.Vehicle
	err := h.DB.Collection("vehicles").FindOne(context.Background(), bson.M{"vehicleID": vehicleID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicle"})
		}
		return nil, false
	}

	role, _ := auth.ParseRole(c.GetString(middleware.CtxUserRole))
	if !role.IsPlatformAdmin() && vehicle.CompanyID != c.GetString(middleware.CtxCompanyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vehicle belongs to another company"})
		return nil, false
	}

	return &vehicle, true
}

// GetVehicleByID returns one vehicle of the caller's company.
func (h *VehicleHandler) GetVehicleByID(c *gin.Context) {
	vehicle, ok := h.findCompanyVehicle(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

type UpdateVehiclePayload struct {
	Model  *string              `json:"model"`
	Specs  *models.VehicleSpecs `json:"specs"`
	Status *string              `json:"status"`
}

// UpdateVehicle patches vehicle fields.
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	vehicle, ok := h.findCompanyVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	var payload UpdateVehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Model != nil {
		set["model"] = *payload.Model
	}
	if payload.Specs != nil {
		set["specs"] = *payload.Specs
	}
	if payload.Status != nil {
		switch *payload.Status {
		case "AVAILABLE", "IN_TRIP", "MAINTENANCE":
			set["status"] = *payload.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be AVAILABLE, IN_TRIP or MAINTENANCE"})
			return
		}
	}

	if _, err := h.DB.Collection("vehicles").UpdateOne(context.Background(),
		bson.M{"vehicleID": vehicle.VehicleID}, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Vehicle updated"})
}

type AssignDriverPayload struct {
	DriverID string `json:"driverID" binding:"required"`
}

// AssignDriver sets the vehicle's responsible driver. The driver must
// be a driver account of the same company.
func (h *VehicleHandler) AssignDriver(c *gin.Context) {
	vehicle, ok := h.findCompanyVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	var payload AssignDriverPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var driver models.User
	err := h.DB.Collection("users").FindOne(context.Background(),
		bson.M{"userID": payload.DriverID, "role": auth.RoleDriver, "companyID": vehicle.CompanyID}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Driver not found in this company"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check driver"})
		}
		return
	}

	if _, err := h.DB.Collection("vehicles").UpdateOne(context.Background(),
		bson.M{"vehicleID": vehicle.VehicleID},
		bson.M{"$set": bson.M{"assignedDriverID": payload.DriverID, "updatedAt": time.Now()}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign driver"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Driver assigned to vehicle " + vehicle.VehicleID})
}

type LocationPingPayload struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// ReportLocation records a driver's position ping for the vehicle and
// fans it out to the company's admins over WebSocket.
func (h *VehicleHandler) ReportLocation(c *gin.Context) {
	vehicleID := c.Param("id")
	userID := c.GetString(middleware.CtxUserID)

	var payload LocationPingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vehicle models.Vehicle
	err := h.DB.Collection("vehicles").FindOne(context.Background(),
		bson.M{"vehicleID": vehicleID, "assignedDriverID": userID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not the assigned driver of this vehicle"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicle"})
		}
		return
	}

	location := models.VehicleLocation{
		Latitude:   payload.Latitude,
		Longitude:  payload.Longitude,
		ReportedAt: time.Now(),
	}

	if _, err := h.DB.Collection("vehicles").UpdateOne(context.Background(),
		bson.M{"vehicleID": vehicleID},
		bson.M{"$set": bson.M{"lastLocation": location, "updatedAt": time.Now()}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store location"})
		return
	}

	if h.Hub != nil {
		cursor, err := h.DB.Collection("users").Find(context.Background(),
			bson.M{"companyID": vehicle.CompanyID, "role": auth.RoleCompanyAdmin})
		if err == nil {
			var admins []models.User
			if err := cursor.All(context.Background(), &admins); err == nil {
				recipients := make([]string, 0, len(admins))
				for _, a := range admins {
					recipients = append(recipients, a.UserID)
				}
				h.Hub.Notify(recipients, "vehicle_location", gin.H{
					"vehicleID": vehicleID,
					"location":  location,
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UploadRegistrationDoc attaches a registration document to a vehicle.
func (h *VehicleHandler) UploadRegistrationDoc(c *gin.Context) {
	vehicle, ok := h.findCompanyVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'document' form file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := fmt.Sprintf("vehicles/%s/%s%s", vehicle.VehicleID, strings.ToUpper(uuid.New().String()[:8]), filepath.Ext(fileHeader.Filename))
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document", "details": err.Error()})
		return
	}

	doc := models.MediaPointer{
		ID:         objectKey,
		URL:        url,
		FileName:   fileHeader.Filename,
		FileType:   contentType,
		UploadedBy: c.GetString(middleware.CtxUserID),
		CreatedAt:  time.Now(),
	}

	if _, err := h.DB.Collection("vehicles").UpdateOne(context.Background(),
		bson.M{"vehicleID": vehicle.VehicleID},
		bson.M{"$push": bson.M{"registrationDocs": doc}, "$set": bson.M{"updatedAt": time.Now()}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Document uploaded but failed to attach to vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "document": doc})
}
