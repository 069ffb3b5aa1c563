package main

import "strings"

// spanPunct is the fixed punctuation set stripped from span edges.
const spanPunct = " .,:;!?\"'()[]{}"

// normalizeSpan lowercases, strips edge punctuation and collapses internal
// whitespace runs to single spaces. Idempotent.
func normalizeSpan(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Trim(s, spanPunct)
	return strings.Join(strings.Fields(s), " ")
}

// exactMatch compares raw strings. Intentionally stricter than looseMatch.
func exactMatch(ans, gold string) bool {
	return ans == gold
}

// looseMatch compares case/space/punct-normalized forms.
func looseMatch(ans, gold string) bool {
	return normalizeSpan(ans) == normalizeSpan(gold)
}

// tokenF1 computes a multiset token-overlap F1 between normalized spans.
// Returns 0 when either side is empty or the overlap is empty.
func tokenF1(pred, gold string) float64 {
	predToks := strings.Fields(normalizeSpan(pred))
	goldToks := strings.Fields(normalizeSpan(gold))
	if len(predToks) == 0 || len(goldToks) == 0 {
		return 0
	}

	counts := make(map[string]int, len(goldToks))
	for _, t := range goldToks {
		counts[t]++
	}
	overlap := 0
	for _, t := range predToks {
		if counts[t] > 0 {
			counts[t]--
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}

	precision := float64(overlap) / float64(len(predToks))
	recall := float64(overlap) / float64(len(goldToks))
	return 2 * precision * recall / (precision + recall)
}

// looseCorrect is the lenient correctness check used for the "loose" metric:
// normalized equality, then gold-substring containment, then token F1 at the
// threshold, short-circuited in that order.
func looseCorrect(pred, gold string, threshold float64) bool {
	p := normalizeSpan(pred)
	g := normalizeSpan(gold)
	if p == g {
		return true
	}
	if g != "" && strings.Contains(p, g) {
		return true
	}
	return tokenF1(pred, gold) >= threshold
}
