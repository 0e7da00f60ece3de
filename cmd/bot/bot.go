package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/miravand/aquatrend/internal/api"
	"github.com/miravand/aquatrend/internal/integration"
	"github.com/miravand/aquatrend/internal/integration/openai"
	"github.com/miravand/aquatrend/internal/repository"
	"github.com/miravand/aquatrend/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting aquatrend bot...")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize repository
	repo, err := repository.NewSQLiteSampleRepository()
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Initialize AI summary service; /summary answers with the fallback without it
	summaryService, err := openai.NewSummaryService()
	if err != nil {
		log.Printf("AI summaries disabled: %v", err)
		summaryService = nil
	}

	// The bot pulls its dataset from the published station tables
	sourceURL := os.Getenv("AQUATREND_SOURCE_URL")
	var scraper *integration.StationScraper
	if sourceURL != "" {
		scraper = integration.NewStationScraper(sourceURL)
	}

	// Initialize use case
	useCase := usecases.NewAnalysisUseCase(repo, scraper, summaryService)

	if scraper != nil {
		if err := useCase.RefreshFromSource(); err != nil {
			log.Printf("Initial data refresh failed: %v", err)
		}
	}

	// Get the bot token from environment variable
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Initialize Telegram bot
	telegramBot, err := api.NewTelegramBot(botToken, useCase)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	// Start the bot
	telegramBot.Start()
}
