package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleSpecs struct {
	Type          string  `bson:"type" json:"type"` // TRUCK, VAN, MOTORBIKE
	Refrigerated  bool    `bson:"refrigerated" json:"refrigerated"`
	PayloadTonnes float64 `bson:"payloadTonnes" json:"payloadTonnes"`
	VolumeCBM     float64 `bson:"volumeCBM" json:"volumeCBM"`
}

// VehicleLocation is the last reported position of a vehicle.
type VehicleLocation struct {
	Latitude   float64   `bson:"latitude" json:"latitude"`
	Longitude  float64   `bson:"longitude" json:"longitude"`
	ReportedAt time.Time `bson:"reportedAt" json:"reportedAt"`
}

type Vehicle struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID        string             `bson:"vehicleID" json:"vehicleID"`
	CompanyID        string             `bson:"companyID" json:"companyID"`
	PlateNumber      string             `bson:"plateNumber" json:"plateNumber"`
	Model            string             `bson:"model" json:"model"`
	Specs            VehicleSpecs       `bson:"specs" json:"specs"`
	AssignedDriverID string             `bson:"assignedDriverID,omitempty" json:"assignedDriverID,omitempty"`
	Status           string             `bson:"status" json:"status"` // AVAILABLE, IN_TRIP, MAINTENANCE
	RegistrationDocs []MediaPointer     `bson:"registrationDocs,omitempty" json:"registrationDocs,omitempty"`
	LastLocation     *VehicleLocation   `bson:"lastLocation,omitempty" json:"lastLocation,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
