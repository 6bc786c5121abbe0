package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridwanfathin/invoice-service/internal/auth"
	"github.com/ridwanfathin/invoice-service/internal/handler"
	"github.com/ridwanfathin/invoice-service/internal/logger"
	"github.com/ridwanfathin/invoice-service/internal/openrouter"
	"github.com/ridwanfathin/invoice-service/internal/render"
	"github.com/ridwanfathin/invoice-service/internal/server"
	"github.com/ridwanfathin/invoice-service/internal/service"

	_ "github.com/ridwanfathin/invoice-service/docs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. The storage backend is chosen with STORAGE_DRIVER
(postgres, mongo or memory); the language model is reached through OpenRouter
when OPENROUTER_API_KEY is set.`,
	Example: `  # Serve with an in-memory store
  STORAGE_DRIVER=memory JWT_SECRET=dev invoice-service serve

  # Apply migrations before serving
  invoice-service serve --migrate`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply PostgreSQL migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := applyMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	ai := openrouter.NewClient(&openrouter.Config{
		APIKey:      cfg.OpenRouterAPIKey,
		BaseURL:     cfg.OpenRouterBaseURL,
		ModelID:     cfg.OpenRouterModelID,
		Timeout:     cfg.OpenRouterTimeout,
		Temperature: openrouter.DefaultConfig().Temperature,
	})
	if !ai.Configured() {
		log.Warn().Msg("OpenRouter is not configured; AI endpoints will answer 502 and insights fall back to local ones")
	}

	invoices := service.NewInvoiceService(store.repo, ai, service.Options{
		Policy:              cfg.ValidationPolicy(),
		DefaultPaymentTerms: cfg.DefaultPaymentTerms,
		ExtractionDueIn:     time.Duration(cfg.ExtractionDueDays) * 24 * time.Hour,
		MaxWorkers:          cfg.MaxWorkers,
	})
	assistant := service.NewAssistantService(invoices, ai, ai)

	errs := handler.ErrorMapper{
		MaskForbidden: cfg.MaskForbidden,
		Log:           logger.WithComponent("handler"),
	}

	appServer := server.NewServer(cfg, server.Dependencies{
		InvoiceHandler: handler.NewInvoiceHandler(invoices, render.NewPDFRenderer(), errs),
		AIHandler:      handler.NewAIHandler(invoices, assistant, errs),
		Tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration, nil),
		HealthCheck:    store.health,
	})

	log.Info().
		Str("storage", cfg.StorageDriver).
		Int("port", cfg.Port).
		Str("version", version).
		Msg("Starting invoice service")

	if err := appServer.Run(ctx); err != nil {
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
