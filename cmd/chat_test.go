package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/docqa/internal/types"
	"github.com/xhad/docqa/pkg/assistant"
	cfgPkg "github.com/xhad/docqa/pkg/config"
	"github.com/xhad/docqa/pkg/fetcher"
	"github.com/xhad/docqa/pkg/planner"
	"github.com/xhad/docqa/pkg/store"
)

type echoExtractor struct{}

func (echoExtractor) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

type manualModel struct{}

func (manualModel) Infer(_ context.Context, prompt string, params types.InferParams) (string, error) {
	if params.MaxNewTokens == planner.MaxNewTokens {
		return "1. Find the power section", nil
	}
	if strings.Contains(prompt, "Document: manual.pdf") {
		return "**Resposta:** Hold the power button (manual.pdf).", nil
	}
	return "", nil
}

func writePDF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunChat(t *testing.T) {
	dir := t.TempDir()
	manual := writePDF(t, dir, "manual.pdf", "2. Power: Hold the power button.")

	a := assistant.NewWithConfig(assistant.Config{}, manualModel{}, echoExtractor{})
	session := assistant.NewSession()

	input := strings.Join([]string{
		"How do I power on?",
		":load " + manual,
		":docs",
		"How do I power on?",
		":history",
		":remove manual.pdf",
		":remove manual.pdf",
		":clear",
		":bogus",
		"exit",
		"never asked",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), a, testFetcher(), session, strings.NewReader(input), &out))

	got := out.String()
	assert.Contains(t, got, "Não encontrei")
	assert.Contains(t, got, "1 documents loaded")
	assert.Contains(t, got, "  manual.pdf")
	assert.Contains(t, got, "Assistant: **Resposta:** Hold the power button (manual.pdf).")
	assert.Contains(t, got, "removed manual.pdf")
	assert.Contains(t, got, "no such document")
	assert.Contains(t, got, "history cleared")
	assert.Contains(t, got, "unknown command :bogus")
	assert.NotContains(t, got, "never asked")

	exchanges, err := a.History(context.Background(), session, 0)
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestRunChat_LoadMissingFile(t *testing.T) {
	a := assistant.NewWithConfig(assistant.Config{}, manualModel{}, echoExtractor{})
	session := assistant.NewSession()

	var out bytes.Buffer
	err := runChat(context.Background(), a, testFetcher(), session, strings.NewReader(":load /does/not/exist.pdf\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "failed to read /does/not/exist.pdf")
	assert.Zero(t, session.Documents.Len())
}

func TestLoadDocuments_KeysByBaseName(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", "A")
	b := writePDF(t, dir, "b.pdf", "B")

	session := assistant.NewSession()
	require.NoError(t, loadDocuments(context.Background(), testFetcher(), session.Documents, []string{b, a}))
	assert.Equal(t, []string{"b.pdf", "a.pdf"}, session.Documents.Names())
}

func TestLoadDocuments_FailureLeavesSetUnchanged(t *testing.T) {
	dir := t.TempDir()
	good := writePDF(t, dir, "good.pdf", "G")

	session := assistant.NewSession()
	session.Documents.Put("existing.pdf", []byte("E"))

	err := loadDocuments(context.Background(), testFetcher(), session.Documents, []string{good, filepath.Join(dir, "missing.pdf")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
	assert.Equal(t, []string{"existing.pdf"}, session.Documents.Names())
}

func TestLoadDocuments_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 remote"))
	}))
	defer srv.Close()

	session := assistant.NewSession()
	require.NoError(t, loadDocuments(context.Background(), testFetcher(), session.Documents, []string{srv.URL + "/guides/remote.pdf"}))
	snap := session.Documents.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "remote.pdf", snap[0].Name)
	assert.Equal(t, "%PDF-1.4 remote", string(snap[0].Data))
}

func testFetcher() *fetcher.Fetcher {
	return newFetcher(cfgPkg.FetchConfig{RateLimit: 100, TimeoutSeconds: 5, MaxDocuments: 5, MaxBytes: 1 << 20})
}

func TestNewHistory_MemoryWithoutURL(t *testing.T) {
	history, closeFn, err := newHistory(context.Background(), cfgPkg.DatabaseConfig{})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.Memory{}, history)
}

func TestApplyFlags(t *testing.T) {
	c := &cfgPkg.Config{}
	c.LLM.Model = "mistral"
	c.LLM.BaseURL = "http://localhost:11434"

	require.NoError(t, rootCmd.ParseFlags([]string{"--model", "llama3"}))
	t.Cleanup(func() {
		flagModel = ""
		rootCmd.Flags().Lookup("model").Changed = false
	})

	applyFlags(rootCmd, c)
	assert.Equal(t, "llama3", c.LLM.Model)
	assert.Equal(t, "http://localhost:11434", c.LLM.BaseURL)
}
