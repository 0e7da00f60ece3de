package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/miravand/aquatrend/internal/api"
	"github.com/miravand/aquatrend/internal/integration/openai"
	"github.com/miravand/aquatrend/internal/repository"
	"github.com/miravand/aquatrend/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting aquatrend API server...")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize repository
	repo, err := repository.NewSQLiteSampleRepository()
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Initialize AI summary service; analysis still works without it
	summaryService, err := openai.NewSummaryService()
	if err != nil {
		log.Printf("AI summaries disabled: %v", err)
		summaryService = nil
	}

	// Initialize use case
	useCase := usecases.NewAnalysisUseCase(repo, nil, summaryService)

	addr := os.Getenv("AQUATREND_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	server := api.NewServer(useCase)
	if err := server.Start(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
