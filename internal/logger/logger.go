package logger

import (
	"log"

	"go.uber.org/zap"
)

// Log is the shared application logger. Call InitLogger before use.
var Log *zap.Logger

// InitLogger sets up the global zap logger.
func InitLogger() {
	var err error
	Log, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

// InitDevelopment sets up a human-readable logger for CLI tools and tests.
func InitDevelopment() {
	var err error
	Log, err = zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}
