package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xdrive-logistics-api-server/internal/jobs"
)

type CargoDetails struct {
	Description  string  `bson:"description" json:"description"`
	WeightTonnes float64 `bson:"weightTonnes,omitempty" json:"weightTonnes"`
	Refrigerated bool    `bson:"refrigerated,omitempty" json:"refrigerated"`
}

type Job struct {
	ID                primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	JobID             string                 `bson:"jobID" json:"jobID"`
	PostedByUserID    string                 `bson:"postedByUserID" json:"postedByUserID"`
	PostingCompanyID  string                 `bson:"postingCompanyID" json:"postingCompanyID"`
	PickupAddress     Address                `bson:"pickupAddress" json:"pickupAddress"`
	DeliveryAddress   Address                `bson:"deliveryAddress" json:"deliveryAddress"`
	PickupWindow      string                 `bson:"pickupWindow,omitempty" json:"pickupWindow"`
	DeliveryWindow    string                 `bson:"deliveryWindow,omitempty" json:"deliveryWindow"`
	Cargo             CargoDetails           `bson:"cargo" json:"cargo"`
	Status            jobs.MarketStatus      `bson:"status" json:"status"`
	FulfillmentStatus jobs.FulfillmentStatus `bson:"fulfillmentStatus,omitempty" json:"fulfillmentStatus,omitempty"`
	AssignedCompanyID string                 `bson:"assignedCompanyID,omitempty" json:"assignedCompanyID,omitempty"`
	AcceptedBidID     string                 `bson:"acceptedBidID,omitempty" json:"acceptedBidID,omitempty"`
	AssignedDriverID  string                 `bson:"assignedDriverID,omitempty" json:"assignedDriverID,omitempty"`
	AssignedVehicleID string                 `bson:"assignedVehicleID,omitempty" json:"assignedVehicleID,omitempty"`
	PodPhotos         []MediaPointer         `bson:"podPhotos,omitempty" json:"podPhotos,omitempty"`
	CreatedAt         time.Time              `bson:"createdAt" json:"createdAt"`
	StatusUpdatedAt   time.Time              `bson:"statusUpdatedAt" json:"statusUpdatedAt"`
}
