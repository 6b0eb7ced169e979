package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/pipeline"
	"jalrakshak/backend/internal/scoring"
	"jalrakshak/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	storageSvc := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: rescore | rescore-one <complaint_id> | stats")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "rescore":
		pipe := newPipeline(storageSvc)
		ids, err := storageSvc.GetRescoreQueue()
		if err != nil {
			log.Fatalf("Error reading rescore queue: %v", err)
		}
		if len(ids) == 0 {
			fmt.Println("Rescore queue is empty.")
			return
		}
		for _, id := range ids {
			complaint, err := pipe.Rescore(id)
			if err != nil {
				log.Printf("ERROR: Rescore of %s failed, keeping it queued: %v", id, err)
				continue
			}
			if complaint.PriorityScore != nil {
				fmt.Printf("Complaint %s rescored: %.0f (%s)\n", id, *complaint.PriorityScore, complaint.Status)
			} else {
				fmt.Printf("Complaint %s left unscored (status %s)\n", id, complaint.Status)
			}
		}
	case "rescore-one":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin rescore-one <complaint_id>")
			os.Exit(1)
		}
		pipe := newPipeline(storageSvc)
		complaint, err := pipe.Rescore(os.Args[2])
		if err != nil {
			log.Fatalf("Error rescoring complaint: %v", err)
		}
		fmt.Printf("Complaint %s now has status %s\n", complaint.ID, complaint.Status)
	case "stats":
		for _, status := range []models.ComplaintStatus{models.StatusPending, models.StatusScored, models.StatusResolved} {
			total, err := storageSvc.CountComplaints(status)
			if err != nil {
				log.Fatalf("Error counting complaints: %v", err)
			}
			fmt.Printf("%-10s %d\n", status, total)
		}
		queued, err := storageSvc.GetRescoreQueue()
		if err != nil {
			log.Fatalf("Error reading rescore queue: %v", err)
		}
		fmt.Printf("%-10s %d\n", "queued", len(queued))
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func newPipeline(s storage.Storage) *pipeline.Service {
	mlURL := os.Getenv("ML_SERVICE_URL")
	if mlURL == "" {
		log.Fatal("ML_SERVICE_URL is not set!")
	}
	return pipeline.NewService(s, scoring.NewClient(mlURL))
}
