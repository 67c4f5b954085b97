package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/jobs"
)

// StatusEvent is one row of a job's audit trail. Events are append-only:
// one per accepted fulfillment transition, never updated or deleted.
type StatusEvent struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	EventID     string                 `bson:"eventID" json:"eventID"`
	JobID       string                 `bson:"jobID" json:"jobID"`
	Status      jobs.FulfillmentStatus `bson:"status" json:"status"`
	ActorUserID string                 `bson:"actorUserID" json:"actorUserID"`
	ActorRole   auth.Role              `bson:"actorRole" json:"actorRole"`
	Notes       string                 `bson:"notes,omitempty" json:"notes,omitempty"`
	Location    *GeoPoint              `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt   time.Time              `bson:"createdAt" json:"createdAt"`
}
