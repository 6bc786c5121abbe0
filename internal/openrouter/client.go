package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ridwanfathin/invoice-service/internal/logger"
)

// ErrNotConfigured is returned when no API key was provided
var ErrNotConfigured = errors.New("openrouter API key not configured")

// OpenRouterError represents an error that occurred during OpenRouter API interaction
type OpenRouterError struct {
	Op  string // Operation that caused the error
	Err error  // Original error
}

// Error implements the error interface
func (e *OpenRouterError) Error() string {
	if e.Err == nil {
		return "openrouter error: " + e.Op
	}
	return "openrouter error: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *OpenRouterError) Unwrap() error {
	return e.Err
}

// Client talks to OpenRouter through its OpenAI compatible chat completion API
type Client struct {
	api         *openai.Client
	modelID     string
	temperature float32
	configured  bool
	log         zerolog.Logger
}

// Config holds configuration for the OpenRouter client
type Config struct {
	APIKey      string
	BaseURL     string
	ModelID     string
	Timeout     time.Duration
	Temperature float32
}

// DefaultConfig returns a default configuration for the OpenRouter client
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://openrouter.ai/api/v1",
		ModelID:     "meta-llama/llama-3.3-70b-instruct:free",
		Timeout:     60 * time.Second,
		Temperature: 0.2,
	}
}

// NewClient creates a new OpenRouter client. The HTTP timeout bounds every call.
func NewClient(config *Config) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.ModelID == "" {
		config.ModelID = defaults.ModelID
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	apiConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	apiConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Client{
		api:         openai.NewClientWithConfig(apiConfig),
		modelID:     config.ModelID,
		temperature: config.Temperature,
		configured:  config.APIKey != "",
		log:         logger.WithComponent("openrouter"),
	}
}

// Configured reports whether an API key was provided
func (c *Client) Configured() bool {
	return c.configured
}

// complete sends a single user prompt and returns the first choice's content
func (c *Client) complete(ctx context.Context, op, system, prompt string) (string, error) {
	if !c.configured {
		return "", &OpenRouterError{Op: op, Err: ErrNotConfigured}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.modelID,
		Temperature: c.temperature,
		Messages:    messages,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Dur("latency", time.Since(start)).Msg("Chat completion failed")
		return "", &OpenRouterError{Op: op, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &OpenRouterError{Op: op, Err: fmt.Errorf("no choices in response")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &OpenRouterError{Op: op, Err: fmt.Errorf("empty content in response")}
	}

	c.log.Debug().
		Str("op", op).
		Str("model", c.modelID).
		Int("response_length", len(content)).
		Dur("latency", time.Since(start)).
		Msg("Chat completion received")

	return content, nil
}
