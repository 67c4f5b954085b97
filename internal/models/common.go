package models

import "time"

// Address is a structured postal address with coordinates.
type Address struct {
	FullText  string  `bson:"fullText" json:"fullText"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// GeoPoint is a bare coordinate pair, used for status events and
// driver location pings.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// MediaPointer references a document stored on S3 (or a CDN in front of it).
type MediaPointer struct {
	ID         string    `bson:"id" json:"id"`
	URL        string    `bson:"url" json:"url"`
	FileName   string    `bson:"fileName" json:"fileName"`
	FileType   string    `bson:"fileType" json:"fileType"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
