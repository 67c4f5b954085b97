package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xdrive-logistics-api-server/internal/auth"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userID" json:"userID"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password" json:"-"`
	Role      auth.Role          `bson:"role" json:"role"`
	CompanyID string             `bson:"companyID,omitempty" json:"companyID"`
	Status    string             `bson:"status" json:"status"` // active, suspended
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
