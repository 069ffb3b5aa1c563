package main

import (
	"context"
	"strings"
	"testing"
)

func TestBuildSourceBlock(t *testing.T) {
	snippets := []EvidenceSnippet{
		{Text: "First snippet."},
		{Text: "Second snippet."},
	}
	block := buildSourceBlock(snippets)
	want := "[S1] First snippet.\n[S2] Second snippet."
	if block != want {
		t.Fatalf("got %q, want %q", block, want)
	}
}

func TestBuildSourceBlockShortens(t *testing.T) {
	long := strings.Repeat("word ", 200) // 1000 chars
	block := buildSourceBlock([]EvidenceSnippet{{Text: long}})
	if len(block) > sourceBlockMaxChars+20 {
		t.Fatalf("block not shortened: %d chars", len(block))
	}
	if !strings.HasSuffix(block, "…") {
		t.Fatalf("shortened block should end with ellipsis, got %q", block[len(block)-10:])
	}
}

func TestSelectBestCandidateByConfidenceOnly(t *testing.T) {
	evidence := []EvidenceSnippet{{Title: "src", Text: "the premise text"}}
	// The confidently-contradicted candidate must beat the weakly-supported
	// one: the label is not part of the sort key.
	hs := &hypothesisScorer{scores: map[string]NLIScores{
		"Answer: contradicted loudly candidate text": {Entail: 0.05, Contradict: 0.95},
		"Answer: supported softly candidate text":    {Entail: 0.65, Contradict: 0.0},
	}}

	best, ok := SelectBestCandidate(context.Background(), hs, "Explain the event",
		[]string{"supported softly candidate text", "contradicted loudly candidate text"}, evidence, 0.6)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if best.Text != "contradicted loudly candidate text" {
		t.Fatalf("confidence-only sort should pick the contradicted candidate, got %q", best.Text)
	}
	if best.Verdict.Label != LabelContradicted {
		t.Fatalf("expected contradicted label, got %s", best.Verdict.Label)
	}
}

func TestSelectBestCandidateEmpty(t *testing.T) {
	if _, ok := SelectBestCandidate(context.Background(), &fakeScorer{}, "q", nil, nil, 0.6); ok {
		t.Fatal("no candidates should give ok=false")
	}
}

// hypothesisScorer scripts scores by hypothesis, for candidate-selection
// tests where every candidate shares the same premise.
type hypothesisScorer struct {
	scores map[string]NLIScores
}

func (h *hypothesisScorer) Score(_ context.Context, _, hypothesis string) (NLIScores, error) {
	return h.scores[hypothesis], nil
}

// mitigatorFunc adapts a function to the Mitigator interface.
type mitigatorFunc func(ctx context.Context, question string, sources []EvidenceSnippet, n int) ([]string, LLMUsage, error)

func (f mitigatorFunc) Regenerate(ctx context.Context, question string, sources []EvidenceSnippet, n int) ([]string, LLMUsage, error) {
	return f(ctx, question, sources, n)
}

func TestLLMMitigatorNoSources(t *testing.T) {
	m := &LLMMitigator{Provider: "anthropic"}
	out, _, err := m.Regenerate(context.Background(), "q", nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != insufficientEvidenceAnswer {
		t.Fatalf("no sources should return the refusal answer, got %v", out)
	}
}
