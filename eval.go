package main

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxRetrievedTitles = 5

// EvalDeps bundles the external collaborators so the pipeline can run
// against deterministic fakes in tests.
type EvalDeps struct {
	Generator Generator
	Retriever *Retriever
	Scorer    EntailmentScorer
	Mitigator Mitigator
}

// goldInEvidence reports whether the gold answer appears verbatim (after
// span normalization) in any retrieved snippet. Retriever recall proxy.
func goldInEvidence(gold string, snippets []EvidenceSnippet) bool {
	g := normalizeSpan(gold)
	if g == "" {
		return false
	}
	for _, s := range snippets {
		if strings.Contains(strings.ToLower(s.Text), g) {
			return true
		}
	}
	return false
}

// evaluateItem runs the full generate → retrieve → verdict chain for one
// item. Collaborator failures degrade to an empty answer or empty evidence;
// they never abort the batch.
func evaluateItem(ctx context.Context, cfg Config, deps EvalDeps, item Item) ResultRecord {
	itemCtx, cancel := context.WithTimeout(ctx, cfg.ItemTimeout)
	defer cancel()

	answer, usage, err := deps.Generator.Generate(itemCtx, item.Question)
	if err != nil {
		log.Printf("eval generate error item=%d: %v", item.ID, err)
		answer = ""
	}

	snippets := deps.Retriever.Retrieve(itemCtx, item.Question, answer, cfg.EvidenceK)
	verdict := BestVerdict(itemCtx, deps.Scorer, item.Question, answer, snippets, cfg.Tau)

	titles := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if len(titles) >= maxRetrievedTitles {
			break
		}
		titles = append(titles, s.Title)
	}

	rec := ResultRecord{
		ID:              item.ID,
		Domain:          item.Domain,
		Question:        item.Question,
		GoldAnswer:      item.GoldAnswer,
		Model:           cfg.ModelName,
		Answer:          answer,
		Label:           verdict.Label,
		Confidence:      verdict.Confidence,
		MaxEntail:       verdict.MaxEntail,
		MaxContradict:   verdict.MaxContradict,
		RetrievedTitles: titles,
	}
	if goldInEvidence(item.GoldAnswer, snippets) {
		rec.SupportedGoldInEvidence = 1
	}

	// Mitigation runs only for answers the evidence did not support.
	if cfg.MitigationEnabled && verdict.Label != LabelSupported && deps.Mitigator != nil {
		candidates, mitUsage, err := deps.Mitigator.Regenerate(itemCtx, item.Question, snippets, cfg.MitigationCandidates)
		usage.Add(mitUsage)
		if err != nil {
			log.Printf("eval mitigate error item=%d: %v", item.ID, err)
		} else if best, ok := SelectBestCandidate(itemCtx, deps.Scorer, item.Question, candidates, snippets, cfg.Tau); ok {
			rec.MitAnswer = best.Text
			rec.MitLabel = best.Verdict.Label
			rec.MitConfidence = best.Verdict.Confidence
		}
	}

	log.Printf("eval item=%d label=%s conf=%.3f tokens=%d", item.ID, rec.Label, rec.Confidence, usage.TotalTokens())
	return rec
}

// RunEvaluation evaluates every benchmark item through a bounded worker
// pool and returns the records sorted by item id for stable output.
func RunEvaluation(ctx context.Context, cfg Config, deps EvalDeps, items []Item) []ResultRecord {
	records := make([]ResultRecord, len(items))
	sem := make(chan struct{}, cfg.Concurrency)

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(idx int, item Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			records[idx] = evaluateItem(ctx, cfg, deps, item)
		}(i, item)
	}
	wg.Wait()

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// runStatsFor folds a run's records into the summary used by the run table,
// the summary file and the Slack notice.
func runStatsFor(model string, records []ResultRecord, started, finished time.Time) RunStats {
	summary := summarizeRun(records)
	return RunStats{
		Model:       model,
		N:           summary.Overall.N,
		Exact:       summary.Overall.Exact,
		Loose:       summary.Overall.Loose,
		Soft:        summary.Overall.Soft,
		RecallAny:   summary.Overall.RecallAny,
		LabelCounts: summary.Overall.LabelCounts,
		StartedAt:   started,
		FinishedAt:  finished,
	}
}
