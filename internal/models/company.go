package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Company struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID    string             `bson:"companyID" json:"companyID"`
	Name         string             `bson:"name" json:"name"`
	Type         string             `bson:"type" json:"type"` // BROKER or CARRIER
	ContactEmail string             `bson:"contactEmail" json:"contactEmail"`
	ContactPhone string             `bson:"contactPhone,omitempty" json:"contactPhone"`
	Address      Address            `bson:"address" json:"address"`
	Status       string             `bson:"status" json:"status"` // ACTIVE, INACTIVE
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
