package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/slack-go/slack"
)

// buildDeps wires the live collaborators from config.
func buildDeps(cfg Config, cache *EvidenceCache) EvalDeps {
	return EvalDeps{
		Generator: &LLMGenerator{
			Provider:        cfg.LLMProvider,
			Model:           cfg.LLMModel,
			AnthropicAPIKey: cfg.AnthropicAPIKey,
			OpenAIAPIKey:    cfg.OpenAIAPIKey,
		},
		Retriever: &Retriever{
			Cache: cache,
			Searcher: &WikipediaSearcher{
				BaseURL:          cfg.WikipediaURL,
				ResultsPerQuery:  cfg.WikiResultsPerQuery,
				SummarySentences: cfg.WikiSentences,
			},
		},
		Scorer: &HTTPNLIScorer{
			Endpoint: cfg.NLIEndpoint,
			APIKey:   cfg.NLIAPIKey,
		},
		Mitigator: &LLMMitigator{
			Provider:        cfg.LLMProvider,
			Model:           cfg.LLMModel,
			AnthropicAPIKey: cfg.AnthropicAPIKey,
			OpenAIAPIKey:    cfg.OpenAIAPIKey,
		},
	}
}

// ExecuteRun performs one full evaluation pass: benchmark in, results log,
// run summary and optional Slack notice out.
func ExecuteRun(ctx context.Context, cfg Config, db *sql.DB, api *slack.Client) error {
	items, err := LoadBenchmark(cfg.BenchmarkPath)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("benchmark %s contains no items", cfg.BenchmarkPath)
	}
	log.Printf("run model=%s items=%d k=%d tau=%.2f concurrency=%d",
		cfg.ModelName, len(items), cfg.EvidenceK, cfg.Tau, cfg.Concurrency)

	deps := buildDeps(cfg, NewEvidenceCache(db))

	started := time.Now()
	records := RunEvaluation(ctx, cfg, deps, items)
	finished := time.Now()

	if err := os.MkdirAll(cfg.ResultsDir, 0755); err != nil {
		return err
	}
	logPath := filepath.Join(cfg.ResultsDir, fmt.Sprintf("results_%s.jsonl", sanitizeFilename(cfg.ModelName)))
	if err := WriteResults(logPath, records); err != nil {
		return fmt.Errorf("writing results log: %w", err)
	}
	log.Printf("run wrote %s records=%d", logPath, len(records))

	stats := runStatsFor(cfg.ModelName, records, started, finished)
	if err := SaveRun(db, stats); err != nil {
		log.Printf("run history save error: %v", err)
	}
	if path, err := WriteRunSummaryFile(stats, cfg.ResultsDir); err != nil {
		log.Printf("run summary write error: %v", err)
	} else {
		log.Printf("run wrote %s", path)
	}
	PostRunSummary(api, cfg.SlackChannelID, stats)
	return nil
}
