package processor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docqa/internal/models"
	"github.com/xhad/docqa/internal/types"
	"github.com/xhad/docqa/pkg/processor"
)

// stubExtractor treats the payload bytes as already-extracted text.
type stubExtractor struct {
	fail  map[string]bool
	calls int
}

func (s *stubExtractor) Extract(_ context.Context, data []byte) (string, error) {
	s.calls++
	if s.fail[string(data)] {
		return "", errors.New("malformed xref table")
	}
	return string(data), nil
}

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{}, &stubExtractor{})

	docs := []models.Document{
		{Name: "manual.pdf", Data: []byte("1. Setup: Connect cable.\n1. Setup: Connect cable.\n1. Setup: Connect cable.\n\n2. Power: Press button.")},
		{Name: "notes.pdf", Data: []byte("Page 20240101 footer\nWarranty is two years.")},
	}

	processed, err := p.Process(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, processed, 2)

	assert.Equal(t, "manual.pdf", processed[0].Name)
	assert.Equal(t, "1. Setup: Connect cable.\n1. Setup: Connect cable.\n2. Power: Press button.", processed[0].Text)
	assert.Equal(t, "notes.pdf", processed[1].Name)
	assert.Equal(t, "Page\nWarranty is two years.", processed[1].Text)
}

func TestProcessor_ProcessAppliesBudget(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{MaxChars: 100}, &stubExtractor{})

	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, "line "+strings.Repeat("x", i))
	}
	processed, err := p.Process(context.Background(), []models.Document{
		{Name: "big.pdf", Data: []byte(strings.Join(lines, "\n"))},
	})
	require.NoError(t, err)
	require.Len(t, processed, 1)
	assert.LessOrEqual(t, len([]rune(processed[0].Text)), 100)
}

func TestProcessor_InvalidPayloadFailsFast(t *testing.T) {
	ext := &stubExtractor{}
	p := processor.NewWithConfig(processor.ProcessorConfig{}, ext)

	_, err := p.Process(context.Background(), []models.Document{
		{Name: "ok.pdf", Data: []byte("content")},
		{Name: "broken.pdf", Data: nil},
	})
	require.Error(t, err)

	var payloadErr *types.InvalidDocumentPayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, "broken.pdf", payloadErr.Name)
	assert.Zero(t, ext.calls, "no document may be extracted when the batch is invalid")
}

func TestProcessor_ExtractionErrorAbortsBatch(t *testing.T) {
	ext := &stubExtractor{fail: map[string]bool{"bad": true}}
	p := processor.NewWithConfig(processor.ProcessorConfig{}, ext)

	processed, err := p.Process(context.Background(), []models.Document{
		{Name: "first.pdf", Data: []byte("fine")},
		{Name: "second.pdf", Data: []byte("bad")},
		{Name: "third.pdf", Data: []byte("never read")},
	})
	require.Error(t, err)
	assert.Nil(t, processed)

	var extractErr *types.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "second.pdf", extractErr.Name)
	assert.Contains(t, err.Error(), "malformed xref table")
	assert.Equal(t, 2, ext.calls)
}

func TestProcessor_DoesNotMutateInput(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{}, &stubExtractor{})
	data := []byte("  keep   me  \n")
	original := append([]byte(nil), data...)

	_, err := p.Process(context.Background(), []models.Document{{Name: "a.pdf", Data: data}})
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestContextBlock(t *testing.T) {
	block := processor.ContextBlock([]models.ProcessedDocument{
		{Name: "b.pdf", Text: "second"},
		{Name: "a.pdf", Text: "first"},
	})
	assert.Equal(t, "Document: b.pdf\nsecond\n\nDocument: a.pdf\nfirst\n\n", block)
	assert.Empty(t, processor.ContextBlock(nil))
}
