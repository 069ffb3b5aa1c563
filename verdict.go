package main

import (
	"context"
	"log"
	"math"
	"strings"
)

// spanMatchMaxTokens bounds the fast path: only short literal spans are
// trusted without entailment scoring.
const spanMatchMaxTokens = 3

const spanMatchConfidence = 0.7

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// spanSupport returns the first snippet whose lowercased text contains the
// normalized answer, provided the answer has at most spanMatchMaxTokens
// tokens. Returns nil when the fast path does not apply.
func spanSupport(answer string, snippets []EvidenceSnippet) *EvidenceSnippet {
	a := normalizeSpan(answer)
	if a == "" || len(strings.Fields(a)) > spanMatchMaxTokens {
		return nil
	}
	for i := range snippets {
		if strings.Contains(strings.ToLower(snippets[i].Text), a) {
			return &snippets[i]
		}
	}
	return nil
}

func unverifiableVerdict() Verdict {
	return Verdict{Label: LabelUnverifiable, Confidence: 0, MaxEntail: 0, MaxContradict: 0}
}

// BestVerdict aggregates entailment scores across snippets into a labeled
// verdict. The label is a pure function of (max_entail, max_contradict, tau)
// plus the span fast path; the attached evidence is always the snippet with
// the highest entailment score, even when the label is "contradicted".
func BestVerdict(ctx context.Context, scorer EntailmentScorer, question, answer string, snippets []EvidenceSnippet, tau float64) Verdict {
	if len(snippets) == 0 {
		return unverifiableVerdict()
	}

	// Short-span fast path: a literal occurrence in evidence is trusted
	// without model scoring.
	if hit := spanSupport(answer, snippets); hit != nil {
		return Verdict{
			Label:         LabelSupported,
			Confidence:    spanMatchConfidence,
			MaxEntail:     spanMatchConfidence,
			MaxContradict: 0,
			Evidence:      hit,
		}
	}

	// Premises are the non-empty snippet texts; keep the snippet index so
	// the evidence reference stays aligned after dropping empties.
	type premise struct {
		text    string
		snipIdx int
	}
	var premises []premise
	for i, s := range snippets {
		if s.Text != "" {
			premises = append(premises, premise{text: s.Text, snipIdx: i})
		}
	}
	if len(premises) == 0 {
		return unverifiableVerdict()
	}

	hypothesis := Claimify(question, answer)

	maxEnt, maxCon := 0.0, 0.0
	bestIdx := -1
	for _, p := range premises {
		scores, err := scorer.Score(ctx, p.text, hypothesis)
		if err != nil {
			// A failed premise contributes zero scores; the item never
			// aborts the batch.
			log.Printf("nli score error snippet=%d: %v", p.snipIdx, err)
			continue
		}
		// Strict > keeps the earliest snippet on ties.
		if scores.Entail > maxEnt {
			maxEnt = scores.Entail
			bestIdx = p.snipIdx
		}
		if scores.Contradict > maxCon {
			maxCon = scores.Contradict
		}
	}

	var label VerdictLabel
	switch {
	case maxCon >= tau && maxCon > maxEnt:
		label = LabelContradicted
	case maxEnt >= tau && maxEnt > maxCon:
		label = LabelSupported
	default:
		// Covers both below-threshold and an exact tie at or above tau.
		label = LabelUnverifiable
	}

	v := Verdict{
		Label:         label,
		Confidence:    round3(math.Abs(maxEnt - maxCon)),
		MaxEntail:     round3(maxEnt),
		MaxContradict: round3(maxCon),
	}
	if bestIdx != -1 {
		v.Evidence = &snippets[bestIdx]
	}
	return v
}
