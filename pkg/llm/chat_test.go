package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/xhad/docqa/internal/types"
	"github.com/xhad/docqa/pkg/llm"
)

// fakeModel is a langchaingo model returning a canned completion and
// recording the options it was called with.
type fakeModel struct {
	completion string
	err        error
	delay      time.Duration
	got        llms.CallOptions
	prompt     string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.got)
	}
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompt += text.Text
			}
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.completion}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestNewWithConfig(t *testing.T) {
	client, err := llm.NewWithConfig(llm.ClientConfig{
		Model:   "testmodel",
		BaseURL: "http://localhost:1234",
	})
	assert.NoError(t, err)
	assert.NotNil(t, client)

	_, err = llm.NewWithConfig(llm.ClientConfig{Provider: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestClient_InferPassesParams(t *testing.T) {
	fake := &fakeModel{completion: "1. Identify keywords"}
	client := llm.NewWithModel(fake, llm.ClientConfig{})

	out, err := client.Infer(context.Background(), "plan this", types.InferParams{
		Temperature:  0.1,
		MaxNewTokens: 200,
		Stop:         []string{"Documento:"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1. Identify keywords", out)
	assert.Equal(t, "plan this", fake.prompt)
	assert.InDelta(t, 0.1, fake.got.Temperature, 1e-9)
	assert.Equal(t, 200, fake.got.MaxTokens)
	assert.Equal(t, []string{"Documento:"}, fake.got.StopWords)
}

func TestClient_InferDefaultStop(t *testing.T) {
	fake := &fakeModel{completion: "Answer text\nPergunta: what else?"}
	client := llm.NewWithModel(fake, llm.ClientConfig{})

	out, err := client.Infer(context.Background(), "q", types.InferParams{Temperature: 0.1})
	require.NoError(t, err)

	assert.Equal(t, "Answer text\n", out)
	assert.Equal(t, llm.DefaultStop, fake.got.StopWords)
}

func TestClient_InferError(t *testing.T) {
	fake := &fakeModel{err: errors.New("connection refused")}
	client := llm.NewWithModel(fake, llm.ClientConfig{})

	_, err := client.Infer(context.Background(), "q", types.InferParams{})
	require.Error(t, err)

	var inferErr *types.InferenceError
	require.ErrorAs(t, err, &inferErr)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_InferTimeout(t *testing.T) {
	fake := &fakeModel{completion: "late", delay: time.Second}
	client := llm.NewWithModel(fake, llm.ClientConfig{Timeout: 20 * time.Millisecond})

	_, err := client.Infer(context.Background(), "q", types.InferParams{})
	require.Error(t, err)

	var timeoutErr *types.InferenceTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 20*time.Millisecond, timeoutErr.After)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_InferRateLimited(t *testing.T) {
	fake := &fakeModel{completion: "ok"}
	client := llm.NewWithModel(fake, llm.ClientConfig{RateLimit: 100})

	for i := 0; i < 3; i++ {
		out, err := client.Infer(context.Background(), "q", types.InferParams{})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
}

func TestTruncateAtStop(t *testing.T) {
	tests := []struct {
		name string
		text string
		stop []string
		want string
	}{
		{"no stop words", "abc", nil, "abc"},
		{"absent stop word", "abc", []string{"x"}, "abc"},
		{"earliest wins", "a Pergunta: b Documento: c", []string{"Documento:", "Pergunta:"}, "a "},
		{"empty stop ignored", "abc", []string{""}, "abc"},
		{"stop at start", "Pergunta: b", []string{"Pergunta:"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.TruncateAtStop(tt.text, tt.stop))
		})
	}
}
