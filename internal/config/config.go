package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Storage configuration
	StorageDriver string
	PostgresURL   string
	MongoURI      string
	MongoDBName   string

	// Auth configuration
	JWTSecret     string
	JWTExpiration time.Duration

	// AI collaborator configuration
	OpenRouterAPIKey     string
	OpenRouterBaseURL    string
	OpenRouterModelID    string
	OpenRouterTimeout    time.Duration
	AIRateLimitPerMinute int
	AIRateBurst          int
	MaxWorkers           int

	// Invoice rules
	DefaultPaymentTerms        string
	ExtractionDueDays          int
	RejectNegativeAmounts      bool
	RequireDueDate             bool
	RequireDueAfterInvoiceDate bool
	MaskForbidden              bool
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	loadDotEnv()

	config := &Config{
		// Server configuration
		Port:               getEnvInt("PORT", 8080),
		ReadTimeout:        time.Duration(getEnvInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout:       time.Duration(getEnvInt("WRITE_TIMEOUT", 90)) * time.Second,
		ShutdownTimeout:    time.Duration(getEnvInt("SHUTDOWN_TIMEOUT", 10)) * time.Second,
		CORSAllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Logging configuration
		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "json"),

		// Storage configuration
		StorageDriver: strings.ToLower(getEnvString("STORAGE_DRIVER", StoragePostgres)),
		PostgresURL:   os.Getenv("POSTGRES_DB_URL"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDBName:   getEnvString("MONGO_DB_NAME", "invoices"),

		// Auth configuration
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,

		// AI collaborator configuration
		OpenRouterAPIKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:    getEnvString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModelID:    getEnvString("OPENROUTER_MODEL_ID", "meta-llama/llama-3.3-70b-instruct:free"),
		OpenRouterTimeout:    time.Duration(getEnvInt("OPENROUTER_TIMEOUT", 60)) * time.Second,
		AIRateLimitPerMinute: getEnvInt("AI_RATE_LIMIT_PER_MINUTE", 10),
		AIRateBurst:          getEnvInt("AI_RATE_BURST", 3),
		MaxWorkers:           getEnvInt("MAX_WORKERS", 5),

		// Invoice rules
		DefaultPaymentTerms:        getEnvString("DEFAULT_PAYMENT_TERMS", domain.DefaultPaymentTerms),
		ExtractionDueDays:          getEnvInt("EXTRACTION_DUE_DAYS", 30),
		RejectNegativeAmounts:      getEnvBool("REJECT_NEGATIVE_AMOUNTS", false),
		RequireDueDate:             getEnvBool("REQUIRE_DUE_DATE", false),
		RequireDueAfterInvoiceDate: getEnvBool("REQUIRE_DUE_AFTER_INVOICE_DATE", false),
		MaskForbidden:              getEnvBool("MASK_FORBIDDEN", false),
	}

	// Validate critical configuration
	validateConfig(config)

	return config, nil
}

// ValidationPolicy returns the optional invoice checks selected by configuration
func (c *Config) ValidationPolicy() domain.ValidationPolicy {
	return domain.ValidationPolicy{
		RejectNegativeAmounts:      c.RejectNegativeAmounts,
		RequireDueDate:             c.RequireDueDate,
		RequireDueAfterInvoiceDate: c.RequireDueAfterInvoiceDate,
	}
}

// loadDotEnv looks for .env next to the project root of the executable, then in the working directory
func loadDotEnv() {
	execPath, err := os.Executable()
	if err != nil {
		log.Warn().Err(err).Msg("Could not determine executable path")
	}

	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(execPath)))
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err == nil {
		log.Debug().Str("path", envPath).Msg("Loaded environment variables")
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found. Using environment variables.")
		return
	}
	log.Debug().Msg("Loaded environment variables from current directory .env file")
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.OpenRouterAPIKey == "" {
		log.Warn().Msg("No OpenRouter API key provided. AI requests will fail.")
	}

	if config.JWTSecret == "" {
		log.Warn().Msg("No JWT secret provided. All authenticated requests will be rejected.")
	}

	switch config.StorageDriver {
	case StoragePostgres:
		if config.PostgresURL == "" {
			log.Warn().Msg("STORAGE_DRIVER is postgres but POSTGRES_DB_URL is not set.")
		}
	case StorageMongo:
		if config.MongoURI == "" {
			log.Warn().Msg("STORAGE_DRIVER is mongo but MONGO_URI is not set.")
		}
	case StorageMemory:
		log.Warn().Msg("Using in-memory storage. Invoices will be lost on restart.")
	default:
		log.Warn().Str("driver", config.StorageDriver).Msg("Unknown STORAGE_DRIVER")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("Invalid integer, using default")
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean from an environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvStringSlice gets a string slice from a comma-separated environment variable
func getEnvStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
