package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"jalrakshak/backend/internal/api/handler"
	"jalrakshak/backend/internal/live"
	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/notify"
	"jalrakshak/backend/internal/pipeline"
	"jalrakshak/backend/internal/query"
	"jalrakshak/backend/internal/scoring"
	"jalrakshak/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.Complaint{},
		&models.Response{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting JalRakshak Backend...")

	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	mlURL := os.Getenv("ML_SERVICE_URL")
	if mlURL == "" {
		log.Fatal("ML_SERVICE_URL is not set!")
	}
	scorer := scoring.NewClient(mlURL)

	// 2. Core services
	pipe := pipeline.NewService(s, scorer)
	queries := query.NewService(s)

	// Telegram alerting is optional; skip it when no token is configured.
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_ALERT_CHAT_ID"), 10, 64)
		if err != nil {
			log.Fatalf("TELEGRAM_ALERT_CHAT_ID must be a chat ID: %v", err)
		}
		alerts, err := notify.NewAlertService(botToken, chatID)
		if err != nil {
			log.Fatalf("Failed to start Telegram alerting: %v", err)
		}
		pipe.Notifier = alerts
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, high-priority alerts disabled.")
	}

	// 3. Live dashboard feed
	hub := live.NewHub()
	go hub.Run()
	hub.StartPubSubListener(s)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set!")
	}

	// 4. Gin routing
	r := gin.Default()
	h := handler.NewHandler(pipe, queries, s, hub, uploadDir, jwtSecret, os.Getenv("OFFICER_ACCESS_CODE"))

	r.GET("/healthz", h.Healthz)
	r.POST("/api/auth/officer", h.OfficerLogin)

	r.POST("/api/complaints/submit", h.SubmitComplaint)
	r.GET("/api/complaints/list", h.ListComplaints)
	r.GET("/api/complaints/:id", h.GetComplaint)
	r.POST("/api/complaints/:id/respond", h.RequireOfficer, h.RespondToComplaint)

	r.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
