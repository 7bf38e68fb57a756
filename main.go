package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vehicle-parking-server/config"
	"vehicle-parking-server/database"
	"vehicle-parking-server/jobs"
	"vehicle-parking-server/middleware"
	"vehicle-parking-server/routes"
	ws "vehicle-parking-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database (migrations + bootstrap admin)
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Vehicle Parking Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Occupancy feed for the admin dashboard
	occupancyHub := ws.NewHub()
	go occupancyHub.Run()
	routes.UseOccupancyHub(occupancyHub)

	// Auth routes (no authentication required) - with strict rate limiting
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.AuthRateLimitMiddleware())
	routes.RegisterAuthRoutes(authRoutes)

	// Protected routes
	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		routes.RegisterMeRoute(protected)

		// End-user booking routes
		userRoutes := protected.Group("/user")
		routes.RegisterUserRoutes(userRoutes)
		routes.RegisterProfileRoutes(userRoutes)

		notificationRoutes := userRoutes.Group("/notifications")
		routes.RegisterNotificationRoutes(notificationRoutes)

		// Read-only JSON API
		apiRoutes := protected.Group("/api")
		routes.RegisterAPIRoutes(apiRoutes)

		// Admin routes
		adminRoutes := protected.Group("/admin")
		adminRoutes.Use(middleware.AdminMiddleware())
		routes.RegisterAdminRoutes(adminRoutes)
	}

	// The websocket feed authenticates from a query token since browsers
	// cannot set headers on websocket upgrades
	feedRoutes := router.Group("/admin")
	feedRoutes.Use(middleware.QueryTokenAuthMiddleware())
	routes.RegisterOccupancyFeed(feedRoutes, occupancyHub)

	// Background occupancy audit
	auditJob := jobs.NewOccupancyAuditJob(database.DB, 5*time.Minute)
	auditJob.Start()
	defer auditJob.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
