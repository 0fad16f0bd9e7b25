package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"digitaltwin/config"
	"digitaltwin/controllers"
	"digitaltwin/database"
	"digitaltwin/geo"
	"digitaltwin/middleware"
	"digitaltwin/routes"
	"digitaltwin/security"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize config
	config.InitConfig()

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	database.SeedDefaultAdmin(db, config.AppConfig.AdminEmail, config.AppConfig.AdminPassword)

	// Construct service handles once at process start; everything downstream
	// receives them explicitly.
	attackStore := database.NewAttackStore(db)
	auditStore := database.NewAuditStore(db)
	geoClient := geo.NewClient(config.AppConfig.GeoAPIBaseURL, config.GetGeoTimeout(), attackStore)
	wafEngine := security.NewLocalEngine(config.AppConfig.RateLimitCapacity, config.GetRateLimitWindow())

	// Setup router
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}))

	// Firewall pipeline runs on every request before routing
	r.Use(middleware.IngressFilter(middleware.IngressConfig{
		Sink:       attackStore,
		Enricher:   geoClient,
		Engine:     wafEngine,
		FailClosed: config.AppConfig.WAFFailClosed,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Controllers{
		Auth:     controllers.NewAuthController(db),
		Security: controllers.NewSecurityController(attackStore),
		Audit:    controllers.NewAuditController(db, auditStore),
		Admin:    controllers.NewAdminController(db, auditStore, attackStore),
		Project:  controllers.NewProjectController(db, auditStore),
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("Server running at http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
