package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"garasi/internal/handlers"
	"garasi/internal/middleware"
	"garasi/internal/models"
	"garasi/internal/repositories"
	"garasi/internal/services"
	"garasi/pkg/rabbitmq"
	"garasi/pkg/storage"

	"github.com/spf13/viper"
)

const uploadURLPrefix = "/uploads"

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "garasi.db")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("APP_ENV", "development")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	jwtSecret := viper.GetString("JWT_SECRET")
	uploadDir := viper.GetString("UPLOAD_DIR")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Database ---
	db, err := openDatabase(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Car{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Image Storage ---
	imageStore, err := storage.NewLocalStore(uploadDir, uploadURLPrefix)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// Listing lifecycle events are published when a broker is configured;
	// without one the services simply skip publishing.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	carRepo := repositories.NewGORMCarRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, jwtSecret)
	carService := services.NewCarService(carRepo, imageStore, mqClient)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	carHandler := handlers.NewCarHandler(carService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	app.Use(cors.New())   // The browser client lives on another origin

	// Serve uploaded images back as static assets.
	app.Static(uploadURLPrefix, uploadDir)

	// --- API Routes ---
	api := app.Group("/api")

	// User routes (public)
	authHandler.RegisterRoutes(api)

	// Car routes (require a valid bearer token)
	protected := api.Group("", middleware.AuthRequired(authService))
	carHandler.RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens a PostgreSQL connection when given a postgres DSN
// and falls back to a local SQLite file otherwise. TranslateError maps
// driver duplicate-key failures onto gorm.ErrDuplicatedKey so the
// repositories can report conflicts uniformly.
func openDatabase(databaseURL string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return gorm.Open(postgres.Open(databaseURL), cfg)
	}
	return gorm.Open(sqlite.Open(databaseURL), cfg)
}
