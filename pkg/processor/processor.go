package processor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xhad/docqa/internal/models"
	"github.com/xhad/docqa/internal/types"
)

type ProcessorConfig struct {
	// MaxChars is the per-document budget in characters.
	MaxChars int
	Logger   *zap.Logger
}

type Processor struct {
	config    ProcessorConfig
	extractor types.Extractor
}

func NewWithConfig(config ProcessorConfig, extractor types.Extractor) *Processor {
	if config.MaxChars <= 0 {
		config.MaxChars = DefaultMaxChars
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Processor{
		config:    config,
		extractor: extractor,
	}
}

// Process extracts, normalizes and budgets every document, in order. Any
// invalid payload rejects the whole batch before extraction starts, and the
// first extraction failure aborts the batch.
func (p *Processor) Process(ctx context.Context, docs []models.Document) ([]models.ProcessedDocument, error) {
	for _, doc := range docs {
		if err := validatePayload(doc); err != nil {
			return nil, err
		}
	}

	processed := make([]models.ProcessedDocument, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := p.extractor.Extract(ctx, doc.Data)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &types.ExtractionError{Name: doc.Name, Cause: err}
		}

		text := FitToBudget(Normalize(raw), p.config.MaxChars)
		p.config.Logger.Debug("document processed",
			zap.String("document", doc.Name),
			zap.Int("raw_chars", len(raw)),
			zap.Int("chars", len(text)),
		)

		processed = append(processed, models.ProcessedDocument{
			Name: doc.Name,
			Text: text,
		})
	}

	return processed, nil
}

// ContextBlock serializes processed documents with their provenance labels.
func ContextBlock(docs []models.ProcessedDocument) string {
	var b strings.Builder
	for _, doc := range docs {
		fmt.Fprintf(&b, "Document: %s\n%s\n\n", doc.Name, doc.Text)
	}
	return b.String()
}

func validatePayload(doc models.Document) error {
	if doc.Data == nil {
		return &types.InvalidDocumentPayloadError{Name: doc.Name, Reason: "content is not binary data"}
	}
	if len(doc.Data) == 0 {
		return &types.InvalidDocumentPayloadError{Name: doc.Name, Reason: "content is empty"}
	}
	return nil
}
