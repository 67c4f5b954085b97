package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BidStatus string

const (
	BidSubmitted BidStatus = "submitted"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidSubmitted, BidAccepted, BidRejected, BidWithdrawn:
		return true
	default:
		return false
	}
}

type Bid struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BidID        string             `bson:"bidID" json:"bidID"`
	JobID        string             `bson:"jobID" json:"jobID"`
	BidderUserID string             `bson:"bidderUserID" json:"bidderUserID"`
	CompanyID    string             `bson:"companyID" json:"companyID"`
	Amount       float64            `bson:"amount" json:"amount"`
	Currency     string             `bson:"currency" json:"currency"`
	Message      string             `bson:"message,omitempty" json:"message"`
	// Crew the carrier proposes for the job; copied onto the job on accept.
	DriverID  string    `bson:"driverID,omitempty" json:"driverID,omitempty"`
	VehicleID string    `bson:"vehicleID,omitempty" json:"vehicleID,omitempty"`
	Status    BidStatus `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
