// Package assistant runs the full question pipeline: documents are turned
// into a context block, a plan is generated, the grounding prompt is sent to
// the model and its completion is sanitized.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xhad/docqa/internal/models"
	"github.com/xhad/docqa/internal/types"
	"github.com/xhad/docqa/pkg/llm"
	"github.com/xhad/docqa/pkg/planner"
	"github.com/xhad/docqa/pkg/processor"
	"github.com/xhad/docqa/pkg/prompt"
	"github.com/xhad/docqa/pkg/sanitizer"
	"github.com/xhad/docqa/pkg/store"
)

type Config struct {
	// MaxDocumentChars is the per-document context budget.
	MaxDocumentChars int
	// AnswerTemperature overrides the final call temperature when set, zero included.
	AnswerTemperature *float64
	// AnswerMaxTokens overrides the final call token limit when positive.
	AnswerMaxTokens int
	// MaxAnswerChars caps the sanitized answer; negative disables the cap.
	MaxAnswerChars int
	History        types.HistoryStore
	Logger         *zap.Logger
}

type Assistant struct {
	config    Config
	model     types.Model
	processor *processor.Processor
	planner   *planner.Planner
	sanitizer sanitizer.Sanitizer
	history   types.HistoryStore
	logger    *zap.Logger
}

func NewWithConfig(config Config, model types.Model, extractor types.Extractor) *Assistant {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.History == nil {
		config.History = store.NewMemory()
	}

	return &Assistant{
		config: config,
		model:  model,
		processor: processor.NewWithConfig(processor.ProcessorConfig{
			MaxChars: config.MaxDocumentChars,
			Logger:   config.Logger,
		}, extractor),
		planner:   planner.New(model, config.Logger),
		sanitizer: sanitizer.Sanitizer{MaxChars: config.MaxAnswerChars},
		history:   config.History,
		logger:    config.Logger,
	}
}

// Session is the caller-owned state of one conversation.
type Session struct {
	ID        string
	Documents *models.DocumentSet
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Documents: models.NewDocumentSet(),
	}
}

// ContextBlock processes documents into the text presented to the model.
func (a *Assistant) ContextBlock(ctx context.Context, docs []models.Document) (string, error) {
	processed, err := a.processor.Process(ctx, docs)
	if err != nil {
		return "", err
	}
	return processor.ContextBlock(processed), nil
}

// Answer runs the pipeline for one question against a fixed list of
// documents. It has no side effects beyond the model calls.
func (a *Assistant) Answer(ctx context.Context, docs []models.Document, question string) (*models.Answer, error) {
	start := time.Now()

	contextBlock, err := a.ContextBlock(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to process documents: %w", err)
	}

	plan, err := a.planner.Generate(ctx, question, contextBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	params := a.answerParams()
	raw, err := a.model.Infer(ctx, prompt.Assemble(question, contextBlock, plan), params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	raw = llm.TruncateAtStop(raw, params.Stop)

	content := a.sanitizer.Sanitize(raw)
	a.logger.Info("question answered",
		zap.Int("documents", len(docs)),
		zap.Int("context_chars", len(contextBlock)),
		zap.Int("plan_steps", len(plan.Steps)),
		zap.Bool("not_found", content == sanitizer.NotFound),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &models.Answer{
		Question:      question,
		Plan:          plan,
		RawCompletion: raw,
		Content:       content,
		Text:          sanitizer.Final(content),
	}, nil
}

// Ask answers a question against a snapshot of the session's documents and
// records the exchange. Failed questions are never recorded.
func (a *Assistant) Ask(ctx context.Context, session *Session, question string) (*models.Answer, error) {
	answer, err := a.Answer(ctx, session.Documents.Snapshot(), question)
	if err != nil {
		a.logger.Warn("question failed", zap.String("session", session.ID), zap.Error(err))
		return nil, err
	}

	exchange := models.Exchange{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Question:  question,
		Answer:    answer.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.history.Append(ctx, exchange); err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}
	return answer, nil
}

func (a *Assistant) History(ctx context.Context, session *Session, limit int) ([]models.Exchange, error) {
	return a.history.List(ctx, session.ID, limit)
}

func (a *Assistant) ClearHistory(ctx context.Context, session *Session) error {
	return a.history.Clear(ctx, session.ID)
}

func (a *Assistant) answerParams() types.InferParams {
	params := prompt.AnswerParams
	params.Stop = append([]string(nil), prompt.AnswerParams.Stop...)
	if a.config.AnswerTemperature != nil {
		params.Temperature = *a.config.AnswerTemperature
	}
	if a.config.AnswerMaxTokens > 0 {
		params.MaxNewTokens = a.config.AnswerMaxTokens
	}
	return params
}
