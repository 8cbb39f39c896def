// Package prompt builds the grounding prompt sent for the final answer.
package prompt

import (
	"fmt"
	"strings"

	"github.com/xhad/docqa/internal/models"
	"github.com/xhad/docqa/internal/types"
)

// Refusal is the sentence the model must reply with when the documents do
// not contain the answer.
const Refusal = "Não encontrei informações sobre isso nos documentos carregados."

// AnswerParams bounds the final answer call.
var AnswerParams = types.InferParams{
	Temperature:  0.1,
	MaxNewTokens: 1000,
	Stop:         []string{"Documento:", "Pergunta:"},
}

const template = `
Você é um assistente técnico especializado que SOMENTE responde com base nos documentos fornecidos.

REGRAS RIGOROSAS:
1. Se a resposta EXATA não estiver nos documentos, diga APENAS: "` + Refusal + `"
2. NUNCA invente informações, use conhecimento externo ou repita a pergunta/documentos disponíveis.
3. SEMPRE cite exatamente de qual parte do documento tirou a informação (ex: "Segundo o Manual X, seção 3...").
4. NUNCA repita informações - mencione cada fato apenas UMA vez, mesmo que presente em múltiplos documentos.
5. Responda APENAS ao que foi perguntado, de forma direta e objetiva (sem diálogo ou formato de perguntas/respostas).
6. Limite sua resposta a no máximo 1000 caracteres, priorizando as 3-5 informações mais relevantes.
7. NUNCA inclua frases como "conteúdo disponível", "documentos carregados" ou similares.

FORMATO DA RESPOSTA:
**Resposta:** [Lista concisa de pontos-chave APENAS do documento, com citações explícitas]

Plano de ação para esta pergunta:
{plan}

Documentos disponíveis:
{docs}

Pergunta: {question}
`

// FormatPlan renders plan steps as a 1-indexed list.
func FormatPlan(plan models.Plan) string {
	lines := make([]string, len(plan.Steps))
	for i, step := range plan.Steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, step.Description)
	}
	return strings.Join(lines, "\n")
}

// Assemble fills the grounding template. Substitution is single pass, so
// placeholders appearing inside the question or documents are left alone.
func Assemble(question, contextBlock string, plan models.Plan) string {
	r := strings.NewReplacer(
		"{plan}", FormatPlan(plan),
		"{docs}", contextBlock,
		"{question}", question,
	)
	return r.Replace(template)
}
