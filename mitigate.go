package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const insufficientEvidenceAnswer = "Insufficient evidence in the provided sources to answer reliably."

const sourceBlockMaxChars = 500

// Mitigator regenerates answers constrained to the given sources.
type Mitigator interface {
	Regenerate(ctx context.Context, question string, sources []EvidenceSnippet, n int) ([]string, LLMUsage, error)
}

// buildSourceBlock renders snippets as a numbered [S#] block for the
// regeneration prompt, shortening each to sourceBlockMaxChars.
func buildSourceBlock(snippets []EvidenceSnippet) string {
	var lines []string
	for i, s := range snippets {
		txt := s.Text
		if len(txt) > sourceBlockMaxChars {
			cut := txt[:sourceBlockMaxChars]
			if j := strings.LastIndexByte(cut, ' '); j > 0 {
				cut = cut[:j]
			}
			txt = cut + "…"
		}
		lines = append(lines, fmt.Sprintf("[S%d] %s", i+1, txt))
	}
	return strings.Join(lines, "\n")
}

// LLMMitigator regenerates answers through the configured provider.
type LLMMitigator struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	OpenAIAPIKey    string
}

const mitigationSystemPrompt = "You are a factual assistant. Answer ONLY using the provided sources. " +
	"Cite sources inline like [S1], [S2]. If information is not present in sources, say 'Insufficient evidence.'"

func (m *LLMMitigator) Regenerate(ctx context.Context, question string, sources []EvidenceSnippet, n int) ([]string, LLMUsage, error) {
	if len(sources) == 0 {
		// No evidence: a single refusal-style candidate.
		return []string{insufficientEvidenceAnswer}, LLMUsage{}, nil
	}

	user := fmt.Sprintf("Question: %s\n\nSources:\n%s\n\nAnswer:", question, buildSourceBlock(sources))

	var out []string
	var totalUsage LLMUsage
	for i := 0; i < n; i++ {
		var text string
		var usage LLMUsage
		var err error
		switch m.Provider {
		case "openai":
			model := m.Model
			if model == "" {
				model = defaultOpenAIModel
			}
			text, usage, err = callOpenAI(ctx, m.OpenAIAPIKey, model, mitigationSystemPrompt, user)
		default:
			model := m.Model
			if model == "" {
				model = defaultAnthropicModel
			}
			text, usage, err = callAnthropic(ctx, m.AnthropicAPIKey, model, mitigationSystemPrompt, user)
		}
		totalUsage.Add(usage)
		if err != nil {
			return out, totalUsage, err
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out, totalUsage, nil
}

// ScoredCandidate pairs a regenerated answer with its verdict against the
// original evidence set.
type ScoredCandidate struct {
	Text    string
	Verdict Verdict
}

// SelectBestCandidate scores every candidate against the same evidence and
// picks the one with the highest confidence. The label is deliberately not
// part of the sort key, so a confidently-contradicted rewrite can outrank a
// weakly-supported one.
func SelectBestCandidate(ctx context.Context, scorer EntailmentScorer, question string, candidates []string, evidence []EvidenceSnippet, tau float64) (ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return ScoredCandidate{}, false
	}
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredCandidate{
			Text:    c,
			Verdict: BestVerdict(ctx, scorer, question, c, evidence, tau),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Verdict.Confidence > scored[j].Verdict.Confidence
	})
	return scored[0], true
}
