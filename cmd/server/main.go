package main

import (
	"log"

	"github.com/ridwanfathin/invoice-service/internal/logger"
)

// @title Invoice Service API
// @version 1.0
// @description Owner-scoped invoices with server-computed totals, payment status and AI assisted entry.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Until config is loaded the default logger is used
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	Execute()
}
