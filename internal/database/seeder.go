package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"xdrive-logistics-api-server/config"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/models"
)

// SeedOwnerAdmin creates the platform owner account on first start.
// Safe to call on every boot.
func SeedOwnerAdmin(db *mongo.Database, cfg config.AdminConfig) error {
	email := cfg.Email
	if email == "" {
		email = "owner@xdrive.local"
	}
	password := cfg.Password
	if password == "" {
		password = "changeme"
	}

	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Owner admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Owner admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	owner := models.User{
		UserID:    fmt.Sprintf("USR-%s", strings.ToUpper(uuid.New().String()[:8])),
		Email:     email,
		Name:      "Platform Owner",
		Password:  hashedPassword,
		Role:      auth.RoleAdmin,
		Status:    "active",
		CreatedAt: time.Now(),
	}

	if _, err := userCollection.InsertOne(context.Background(), owner); err != nil {
		return err
	}

	log.Println("Owner admin seeded successfully.")
	return nil
}
