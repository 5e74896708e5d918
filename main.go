package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"fleetinvoice/cmd"
	"fleetinvoice/internal/config"
	"fleetinvoice/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg := config.Load()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	mainLog := logger.WithComponent("main")
	mainLog.Info().Msg("Starting fleetinvoice CLI")

	cmd.Execute()

	os.Exit(0)
}
