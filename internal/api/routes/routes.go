package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"xdrive-logistics-api-server/config"
	"xdrive-logistics-api-server/internal/api/handlers"
	"xdrive-logistics-api-server/internal/api/middleware"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/s3"
	"xdrive-logistics-api-server/internal/service"
	"xdrive-logistics-api-server/internal/socket"
	"xdrive-logistics-api-server/internal/store"
)

// SetupRouter wires every handler onto the gin engine.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	st store.Store,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	jobService := &service.JobService{Store: st}
	bidService := &service.BidService{Store: st, Hub: wsHub}
	statusService := &service.StatusService{Store: st, Hub: wsHub}

	authHandler := &handlers.AuthHandler{DB: db}
	jobHandler := &handlers.JobHandler{Jobs: jobService, Store: st, S3Uploader: s3Uploader}
	bidHandler := &handlers.BidHandler{Bids: bidService}
	statusHandler := &handlers.StatusHandler{Status: statusService}
	companyHandler := &handlers.CompanyHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	vehicleHandler := &handlers.VehicleHandler{DB: db, Hub: wsHub, S3Uploader: s3Uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)

			me := authRoutes.Group("/")
			me.Use(middleware.Authenticate())
			{
				me.GET("/me", authHandler.Me)
			}
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.RequireRole(auth.RoleAdmin))
		{
			admin.POST("/users", userHandler.CreateUser)
			admin.GET("/users", userHandler.GetAllUsers)

			companies := admin.Group("/companies")
			{
				companies.POST("", companyHandler.CreateCompany)
				companies.GET("", companyHandler.GetAllCompanies)
				companies.GET("/:id", companyHandler.GetCompanyByID)
				companies.PUT("/:id", companyHandler.UpdateCompany)
				companies.DELETE("/:id", companyHandler.DeleteCompany)
			}
		}

		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate())
		{
			posterOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleBroker, auth.RoleCompanyAdmin)
			jobRoutes := protected.Group("/jobs")
			{
				jobRoutes.POST("", posterOnly, jobHandler.CreateJob)
				jobRoutes.POST("/:id/bids", posterOnly, bidHandler.ResolveBid)
				jobRoutes.POST("/:id/cancel", posterOnly, jobHandler.CancelJob)

				jobRoutes.GET("", jobHandler.ListJobs)
				jobRoutes.GET("/:id", jobHandler.GetJob)
				jobRoutes.GET("/:id/bids", bidHandler.GetJobBids)
				jobRoutes.GET("/:id/status", statusHandler.GetStatusHistory)
				jobRoutes.POST("/:id/status", statusHandler.UpdateStatus)

				jobRoutes.POST("/:id/pod-photo", middleware.RequireRole(auth.RoleDriver), jobHandler.UploadPodPhoto)
			}

			marketplace := protected.Group("/marketplace")
			marketplace.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleCompanyAdmin, auth.RoleDriver))
			{
				marketplace.GET("/jobs", jobHandler.ListOpenJobs)
				marketplace.POST("/jobs/:id/bids", bidHandler.SubmitBid)
			}

			bidRoutes := protected.Group("/bids")
			{
				bidRoutes.GET("/my", bidHandler.GetMyCompanyBids)
				bidRoutes.POST("/:id/withdraw", bidHandler.WithdrawBid)
			}

			fleetAdminOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleCompanyAdmin)
			vehicleRoutes := protected.Group("/vehicles")
			{
				vehicleRoutes.POST("", fleetAdminOnly, vehicleHandler.CreateVehicle)
				vehicleRoutes.PUT("/:id", fleetAdminOnly, vehicleHandler.UpdateVehicle)
				vehicleRoutes.PUT("/:id/driver", fleetAdminOnly, vehicleHandler.AssignDriver)
				vehicleRoutes.POST("/:id/docs", fleetAdminOnly, vehicleHandler.UploadRegistrationDoc)

				vehicleRoutes.GET("", vehicleHandler.GetMyVehicles)
				vehicleRoutes.GET("/:id", vehicleHandler.GetVehicleByID)

				vehicleRoutes.POST("/:id/location", middleware.RequireRole(auth.RoleDriver), vehicleHandler.ReportLocation)
			}

			protected.GET("/companies/my/drivers", companyHandler.GetMyDrivers)
		}
	}

	return router
}
