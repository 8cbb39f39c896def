package types

import (
	"context"

	"github.com/xhad/docqa/internal/models"
)

// Core interfaces

// Extractor turns raw PDF bytes into text. Pages without extractable text
// contribute an empty string, never an error.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// InferParams bounds a single model invocation.
type InferParams struct {
	Temperature  float64
	MaxNewTokens int
	// Stop ends generation at the first occurrence of any entry.
	Stop []string
}

// Model is the language-model capability the pipeline depends on.
type Model interface {
	Infer(ctx context.Context, prompt string, params InferParams) (string, error)
}

type HistoryStore interface {
	Append(ctx context.Context, exchange models.Exchange) error
	List(ctx context.Context, sessionID string, limit int) ([]models.Exchange, error)
	Clear(ctx context.Context, sessionID string) error
}
