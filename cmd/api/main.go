package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"xdrive-logistics-api-server/config"
	"xdrive-logistics-api-server/internal/api/routes"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/database"
	"xdrive-logistics-api-server/internal/s3"
	"xdrive-logistics-api-server/internal/socket"
	"xdrive-logistics-api-server/internal/store"
)

func main() {
	// 1. Load .env (optional) and configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// 2. Initialize the token signer
	expiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		log.Fatalf("Invalid JWT expiration %q: %v", cfg.JWT.Expiration, err)
	}
	auth.Init(cfg.JWT.Secret, expiration)

	// 3. Connect to MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB database %q", cfg.Mongo.DBName)

	// 4. Seed the platform owner account
	if err := database.SeedOwnerAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed owner admin: %v", err)
	}

	// 5. S3 uploader is optional: without a bucket the server runs but
	// file uploads return 503.
	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("S3 bucket not configured, file uploads disabled")
	}

	// 6. Wire storage, notifications and routes
	st := store.NewMongo(db)
	wsHub := socket.NewHub()

	router := routes.SetupRouter(cfg, db, st, s3Uploader, wsHub)

	// 7. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
