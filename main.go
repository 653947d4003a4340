package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"indicatorlab/app"
	"indicatorlab/internal"
	"indicatorlab/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))

	result, err := app.Run(context.Background(), appConfig, logger, os.Stdout)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	for _, path := range result.Outputs {
		logger.Info("[Main] output: %s", path)
	}
}
