package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridwanfathin/invoice-service/internal/config"
	"github.com/ridwanfathin/invoice-service/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoice-service",
	Short: "Invoice service - owner-scoped invoices over HTTP",
	Long: `Invoice service stores invoices per owner, computes every line total,
subtotal, tax and grand total on the server, tracks Paid/Unpaid status and can
turn free text into an invoice with the help of a language model.

Configuration is read from the environment (and a .env file when present).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and reconfigures the logger from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	if err := logger.Setup(logCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}
