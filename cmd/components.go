package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/docqa/internal/models"
	"github.com/xhad/docqa/internal/types"
	"github.com/xhad/docqa/pkg/assistant"
	cfgPkg "github.com/xhad/docqa/pkg/config"
	"github.com/xhad/docqa/pkg/extractor"
	"github.com/xhad/docqa/pkg/fetcher"
	"github.com/xhad/docqa/pkg/llm"
	"github.com/xhad/docqa/pkg/store"
)

// newAssistant wires the model client, PDF extractor and history store
// described by the config. The returned func releases the store.
func newAssistant(ctx context.Context, c *cfgPkg.Config) (*assistant.Assistant, func(), error) {
	client, err := llm.NewWithConfig(llm.ClientConfig{
		Provider:  c.LLM.Provider,
		Model:     c.LLM.Model,
		BaseURL:   c.LLM.BaseURL,
		APIKey:    c.LLM.APIKey,
		Timeout:   c.LLM.Timeout(),
		RateLimit: c.LLM.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	history, closeHistory, err := newHistory(ctx, c.Database)
	if err != nil {
		return nil, nil, err
	}

	a := assistant.NewWithConfig(assistant.Config{
		MaxDocumentChars:  c.Processor.MaxDocumentChars,
		AnswerTemperature: c.LLM.Temperature,
		AnswerMaxTokens:   c.LLM.MaxTokens,
		MaxAnswerChars:    c.Answer.MaxChars,
		History:           history,
		Logger:            logger,
	}, client, extractor.NewPDF())
	return a, closeHistory, nil
}

// newHistory uses PostgreSQL when a database URL is configured and keeps
// history in memory otherwise.
func newHistory(ctx context.Context, db cfgPkg.DatabaseConfig) (types.HistoryStore, func(), error) {
	if db.URL == "" {
		return store.NewMemory(), func() {}, nil
	}
	pg, err := store.NewPostgres(ctx, store.PostgresConfig{
		ConnString: db.URL,
		TableName:  db.TableName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize history store: %w", err)
	}
	return pg, pg.Close, nil
}

func newFetcher(c cfgPkg.FetchConfig) *fetcher.Fetcher {
	return fetcher.NewWithConfig(fetcher.FetcherConfig{
		RateLimit:    c.RateLimit,
		Timeout:      time.Duration(c.TimeoutSeconds) * time.Second,
		MaxDocuments: c.MaxDocuments,
		MaxBytes:     c.MaxBytes,
		Logger:       logger,
	})
}

// loadDocuments adds every source to the set. A source is a local PDF path,
// keyed by its base name, or an http(s) URL handled by the fetcher. The set
// is only changed when all sources load.
func loadDocuments(ctx context.Context, f *fetcher.Fetcher, set *models.DocumentSet, sources []string) error {
	bar := getProgressBar(len(sources), " Loading documents")
	defer bar.Finish()

	var loaded []models.Document
	for _, source := range sources {
		if fetcher.IsURL(source) {
			docs, err := f.Fetch(ctx, source)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", source, err)
			}
			loaded = append(loaded, docs...)
			bar.Add(1)
			continue
		}

		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source, err)
		}
		loaded = append(loaded, models.Document{Name: filepath.Base(source), Data: data})
		bar.Add(1)
	}

	for _, doc := range loaded {
		set.Put(doc.Name, doc.Data)
	}
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
