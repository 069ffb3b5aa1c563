package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EntailmentScorer classifies whether a premise supports, is neutral to, or
// contradicts a hypothesis. Implementations return probabilities summing to
// roughly 1.
type EntailmentScorer interface {
	Score(ctx context.Context, premise, hypothesis string) (NLIScores, error)
}

// labeledScore is the wire shape NLI inference backends emit, one per label.
type labeledScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// parseNLIResponse normalizes the shape-varying backend output (a single
// object, a flat list, or a nested list of {label, score}) into the fixed
// 3-way NLIScores. Label synonyms map onto the fixed vocabulary; unknown
// labels contribute nothing.
func parseNLIResponse(raw []byte) (NLIScores, error) {
	var scores []labeledScore

	var single labeledScore
	if err := json.Unmarshal(raw, &single); err == nil && single.Label != "" {
		scores = []labeledScore{single}
	} else {
		var flat []labeledScore
		if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 && flat[0].Label != "" {
			scores = flat
		} else {
			var nested [][]labeledScore
			if err := json.Unmarshal(raw, &nested); err != nil || len(nested) == 0 {
				return NLIScores{}, fmt.Errorf("unrecognized NLI response shape: %s", truncateForLog(raw))
			}
			scores = nested[0]
		}
	}

	var out NLIScores
	for _, s := range scores {
		switch strings.ToLower(s.Label) {
		case "entail", "entailed", "entailment":
			out.Entail = s.Score
		case "neutral":
			out.Neutral = s.Score
		case "contradict", "contradictory", "contradiction":
			out.Contradict = s.Score
		}
	}
	return out, nil
}

func truncateForLog(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// HTTPNLIScorer scores premise/hypothesis pairs against an HF-style
// text-classification inference endpoint.
type HTTPNLIScorer struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

type nliRequest struct {
	Text     string `json:"text"`
	TextPair string `json:"text_pair"`
}

func (s *HTTPNLIScorer) Score(ctx context.Context, premise, hypothesis string) (NLIScores, error) {
	bodyBytes, err := json.Marshal(nliRequest{Text: premise, TextPair: hypothesis})
	if err != nil {
		return NLIScores{}, fmt.Errorf("marshaling NLI request: %w", err)
	}

	req, err := http.NewRequest("POST", s.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return NLIScores{}, fmt.Errorf("creating NLI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	client := s.Client
	if client == nil {
		client = externalHTTPClient
	}
	resp, err := doWithRetry(ctx, client, req)
	if err != nil {
		return NLIScores{}, fmt.Errorf("NLI endpoint error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NLIScores{}, fmt.Errorf("reading NLI response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return NLIScores{}, fmt.Errorf("NLI endpoint status %d: %s", resp.StatusCode, truncateForLog(respBody))
	}
	return parseNLIResponse(respBody)
}
