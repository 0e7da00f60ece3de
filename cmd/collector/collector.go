package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/miravand/aquatrend/internal/integration"
	"github.com/miravand/aquatrend/internal/repository"
	"github.com/miravand/aquatrend/internal/usecases"
	"github.com/robfig/cron/v3"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting aquatrend collector...")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	sourceURL := os.Getenv("AQUATREND_SOURCE_URL")
	if sourceURL == "" {
		log.Fatal("AQUATREND_SOURCE_URL environment variable is not set")
	}

	// Initialize repository
	repo, err := repository.NewSQLiteSampleRepository()
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Initialize scraper
	scraper := integration.NewStationScraper(sourceURL)

	// Initialize use case
	useCase := usecases.NewAnalysisUseCase(repo, scraper, nil)

	// Run use case immediately on startup
	if err := useCase.RefreshFromSource(); err != nil {
		log.Printf("Initial data refresh failed: %v", err)
	}

	schedule := os.Getenv("AQUATREND_CRON")
	if schedule == "" {
		schedule = "0 * * * *"
	}

	// Set up cron scheduler
	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		if err := useCase.RefreshFromSource(); err != nil {
			log.Printf("Scheduled data refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}

	log.Printf("Collector scheduled with cron expression %q", schedule)
	c.Start()

	// Keep the program running
	select {}
}
