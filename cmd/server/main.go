package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"kitting/cmd"
	"kitting/internal/catalog"
	"kitting/internal/core/logger"
	"kitting/internal/database"
	"kitting/internal/explosion"
	"kitting/internal/linkage"
	"kitting/internal/middleware"
	"kitting/internal/movements"
	"kitting/internal/purchase"
	"kitting/internal/relations"
	"kitting/internal/repository"
	"kitting/pkg/auditlog"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	// Execute migration CMD
	cmd.Execute(ctx)
}

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer db.Close()

	log.Println("Connected to the database successfully!")

	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	repo := repository.NewRepository(db)
	auditLog := auditlog.NewAuditLog(repo)
	catalogService := catalog.NewService(catalog.NewRepository(repo))

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	api := router.Group("/api")
	relations.NewHandler(repo, catalogService).RegisterRoutes(api)
	purchase.NewHandler(repo, catalogService).RegisterRoutes(api)
	explosion.NewHandler(repo, catalogService).RegisterRoutes(api)
	linkage.NewHandler(repo, auditLog, zapLogger).RegisterRoutes(api)
	movements.NewHandler(repo, catalogService, auditLog, zapLogger).RegisterRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := router.Run(os.Getenv("APP_HOST")); err != nil {
		panic(err)
	}
}
