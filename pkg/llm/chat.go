package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xhad/docqa/internal/types"
)

// DefaultStop is used when a call does not name its own stop words.
var DefaultStop = []string{"Documentos disponíveis:", "Pergunta:", "Usuário:"}

// ClientConfig represents the configuration for a model client.
type ClientConfig struct {
	Provider string // "ollama" or "openai"
	Model    string
	BaseURL  string
	APIKey   string
	// Timeout bounds a single inference call. Zero disables it.
	Timeout time.Duration
	// RateLimit is the number of calls per second. Zero disables throttling.
	RateLimit float64
	Logger    *zap.Logger
}

// Client adapts a langchaingo model to types.Model.
type Client struct {
	config  ClientConfig
	llm     llms.Model
	limiter *rate.Limiter
}

// NewWithConfig creates a new Client with the given configuration.
func NewWithConfig(config ClientConfig) (*Client, error) {
	if config.Provider == "" {
		config.Provider = "ollama"
	}
	if config.Model == "" {
		config.Model = "mistral"
	}

	var (
		model llms.Model
		err   error
	)
	switch config.Provider {
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		model, err = ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
	case "openai":
		opts := []openai.Option{openai.WithModel(config.Model)}
		if config.APIKey != "" {
			opts = append(opts, openai.WithToken(config.APIKey))
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return NewWithModel(model, config), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(model llms.Model, config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	c := &Client{
		config: config,
		llm:    model,
	}
	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return c
}

// Infer runs one completion. The output is cut at the earliest stop word
// even when the backend ignores the stop option. Deadline overruns are
// reported as *types.InferenceTimeoutError and every other failure as
// *types.InferenceError.
func (c *Client) Infer(ctx context.Context, prompt string, params types.InferParams) (string, error) {
	stop := params.Stop
	if len(stop) == 0 {
		stop = DefaultStop
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", c.wrapError(ctx, err)
		}
	}

	opts := []llms.CallOption{
		llms.WithTemperature(params.Temperature),
		llms.WithStopWords(stop),
	}
	if params.MaxNewTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxNewTokens))
	}

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
	if err != nil {
		c.config.Logger.Warn("inference failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", c.wrapError(ctx, err)
	}

	c.config.Logger.Debug("inference complete",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("completion_chars", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return TruncateAtStop(out, stop), nil
}

func (c *Client) wrapError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &types.InferenceTimeoutError{After: c.config.Timeout, Cause: err}
	}
	return &types.InferenceError{Cause: err}
}

// TruncateAtStop cuts text at the earliest occurrence of any stop word.
func TruncateAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
