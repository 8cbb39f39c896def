// Package planner asks the model for a short step list before the final
// answer is generated.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xhad/docqa/internal/models"
	"github.com/xhad/docqa/internal/types"
	"github.com/xhad/docqa/pkg/llm"
)

// Planning is scaffolding, not creative output: keep it short and
// low-entropy.
const (
	Temperature  = 0.1
	MaxNewTokens = 200
)

// DefaultSteps is the canonical plan, worded exactly as in the planning prompt.
var DefaultSteps = []string{
	"Identificar palavras-chave da pergunta",
	"Buscar por estas palavras-chave nos documentos",
	"Extrair informações relevantes",
	"Formatar uma resposta clara e concisa",
}

const planTemplate = `Crie um plano simples para responder a seguinte pergunta técnica com base nos documentos carregados.

Pergunta: %s

O plano deve ter os seguintes passos:
%s

Retorne apenas os passos enumerados, sem explicações adicionais.
`

// stepLine matches "1. text", "12) text" and similar numbered lines.
var stepLine = regexp.MustCompile(`^\d{1,2}[.):-](.*)$`)

type Planner struct {
	model  types.Model
	logger *zap.Logger
}

func New(model types.Model, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{model: model, logger: logger}
}

// Prompt renders the planning prompt for a question.
func Prompt(question string) string {
	return fmt.Sprintf(planTemplate, question, formatSteps(DefaultSteps))
}

// Generate asks the model for a plan. The context block is accepted for
// callers that want to pass it but is not embedded in the prompt. A
// completion with no numbered lines yields DefaultPlan; only model failures
// are returned as errors.
func (p *Planner) Generate(ctx context.Context, question, contextBlock string) (models.Plan, error) {
	params := types.InferParams{
		Temperature:  Temperature,
		MaxNewTokens: MaxNewTokens,
	}
	raw, err := p.model.Infer(ctx, Prompt(question), params)
	if err != nil {
		return models.Plan{}, err
	}
	raw = llm.TruncateAtStop(raw, llm.DefaultStop)

	steps := Parse(raw)
	if len(steps) == 0 {
		p.logger.Debug("plan completion had no numbered steps, using default plan")
		return DefaultPlan(), nil
	}
	return models.Plan{Steps: steps}, nil
}

// Parse extracts numbered steps from a free-text completion, in order.
func Parse(raw string) []models.PlanStep {
	var steps []models.PlanStep
	for _, line := range strings.Split(raw, "\n") {
		m := stepLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[1])
		if desc == "" {
			continue
		}
		steps = append(steps, models.PlanStep{Description: desc})
	}
	return steps
}

func DefaultPlan() models.Plan {
	steps := make([]models.PlanStep, len(DefaultSteps))
	for i, s := range DefaultSteps {
		steps[i] = models.PlanStep{Description: s}
	}
	return models.Plan{Steps: steps}
}

func formatSteps(steps []string) string {
	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return strings.Join(lines, "\n")
}
