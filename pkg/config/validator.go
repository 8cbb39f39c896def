package config

import (
	"fmt"
	"net/url"

	"go.uber.org/zap/zapcore"

	"github.com/xhad/docqa/pkg/sanitizer"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	switch c.LLM.Provider {
	case "ollama":
		if c.LLM.BaseURL == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "Ollama base URL is required",
			})
		}
	case "openai":
		if c.LLM.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.api_key",
				Message: "api_key is required for the openai provider",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.LLM.Provider),
		})
	}

	if c.LLM.BaseURL != "" {
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid base URL",
			})
		}
	}

	if c.LLM.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.model",
			Message: "model is required",
		})
	}

	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.LLM.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.rate_limit",
			Message: "rate_limit must not be negative",
		})
	}

	// Validate Processor config
	if c.Processor.MaxDocumentChars < 2 {
		errors = append(errors, ValidationError{
			Field:   "processor.max_document_chars",
			Message: "max_document_chars must be at least 2",
		})
	}

	// Validate Answer config
	if c.Answer.MaxChars >= 0 && c.Answer.MaxChars < sanitizer.MinChars {
		errors = append(errors, ValidationError{
			Field:   "answer.max_chars",
			Message: fmt.Sprintf("max_chars must be at least %d, or negative to disable", sanitizer.MinChars),
		})
	}

	// Validate Fetch config
	if c.Fetch.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "fetch.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Fetch.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetch.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.Fetch.MaxDocuments < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetch.max_documents",
			Message: "max_documents must be positive",
		})
	}

	if c.Fetch.MaxBytes < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetch.max_bytes",
			Message: "max_bytes must be positive",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || u.Scheme == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Message: "addr is required",
		})
	}

	// Validate Log config
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level: %s", c.Log.Level),
		})
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Message: "format must be json or console",
		})
	}

	return errors
}
