package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pointwallet/backend/docs"
	"github.com/pointwallet/backend/internal/database"
	"github.com/pointwallet/backend/internal/handlers"
	mW "github.com/pointwallet/backend/internal/middleware"
	"github.com/pointwallet/backend/internal/services"
	"github.com/pointwallet/backend/internal/storage"
)

// @title Point Wallet API
// @version 1.0
// @description API for per-user point balances and charge/use transaction history
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	viper.BindEnv("storage.driver", "STORAGE_DRIVER")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Point Wallet API"
	docs.SwaggerInfo.Description = "API for per-user point balances and charge/use transaction history"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Storage backend: in-memory tables by default, postgres when configured
	viper.SetDefault("storage.driver", "memory")

	var accounts storage.AccountStore
	var history storage.HistoryStore

	switch driver := viper.GetString("storage.driver"); driver {
	case "postgres":
		db := database.InitDatabase()
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		accounts = storage.NewPostgresAccountStore(db)
		history = storage.NewPostgresHistoryStore(db)
		log.Println("Using postgres storage")
	case "memory":
		accounts = storage.NewMemoryAccountStore()
		history = storage.NewMemoryHistoryStore()
		log.Println("Using in-memory storage")
	default:
		log.Fatalf("Unknown storage driver: %s", driver)
	}

	// Optional balance cache
	var cache *storage.BalanceCache
	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
		cache = storage.NewBalanceCache(redisClient)
	}

	ledgerService := services.NewLedgerService(accounts, history, cache)
	pointHandler := handlers.NewPointHandler(ledgerService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/point/{id}", pointHandler.GetPoint)
		r.Get("/point/{id}/histories", pointHandler.GetHistories)
		r.Patch("/point/{id}/charge", pointHandler.Charge)
		r.Patch("/point/{id}/use", pointHandler.Use)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
