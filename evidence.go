package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

// Searcher returns up to k short evidence snippets for a (question, answer)
// pair. Implementations may query several surface forms.
type Searcher interface {
	Search(ctx context.Context, question, answer string, k int) ([]EvidenceSnippet, error)
}

// Retriever is the cached front of the search collaborator. One lookup per
// unique (question, answer, k) triple, ever.
type Retriever struct {
	Cache    *EvidenceCache
	Searcher Searcher
}

// Retrieve returns evidence for the pair, consulting the cache first. Search
// failures degrade to an empty snippet list so the item routes to an
// unverifiable verdict instead of failing the batch.
func (r *Retriever) Retrieve(ctx context.Context, question, answer string, k int) []EvidenceSnippet {
	if snips, ok := r.Cache.Get(question, answer, k); ok {
		return snips
	}
	snips, err := r.Searcher.Search(ctx, question, answer, k)
	if err != nil {
		log.Printf("evidence search error question=%q: %v", question, err)
		return nil
	}
	r.Cache.Put(question, answer, k, snips)
	return snips
}

// cleanText collapses whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// firstSentences returns the first n sentences of a text, splitting after
// terminal punctuation.
func firstSentences(text string, n int) string {
	if n < 1 {
		n = 1
	}
	text = strings.TrimSpace(text)
	var parts []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			j := i + 1
			if j >= len(runes) || unicode.IsSpace(runes[j]) {
				parts = append(parts, strings.TrimSpace(string(runes[start:j])))
				for j < len(runes) && unicode.IsSpace(runes[j]) {
					j++
				}
				start = j
				i = j - 1
				if len(parts) >= n {
					return strings.Join(parts, " ")
				}
			}
		}
	}
	if start < len(runes) {
		parts = append(parts, strings.TrimSpace(string(runes[start:])))
	}
	return strings.Join(parts, " ")
}

// WikipediaSearcher fetches short article summaries from the public
// MediaWiki APIs. It searches both the question and the answer surface form,
// dedupes snippets by normalized text and caps the result at k.
type WikipediaSearcher struct {
	BaseURL          string // e.g. "https://en.wikipedia.org"
	ResultsPerQuery  int
	SummarySentences int
	Client           *http.Client
}

func (w *WikipediaSearcher) client() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return externalHTTPClient
}

func (w *WikipediaSearcher) Search(ctx context.Context, question, answer string, k int) ([]EvidenceSnippet, error) {
	queries := []string{question, answer}
	var out []EvidenceSnippet
	seen := make(map[string]bool)

	for _, q := range queries {
		if len(out) >= k {
			break
		}
		if strings.TrimSpace(q) == "" {
			continue
		}
		titles, err := w.searchTitles(ctx, q, w.ResultsPerQuery)
		if err != nil {
			log.Printf("wiki search error query=%q: %v", q, err)
			continue
		}
		for _, title := range titles {
			if len(out) >= k {
				break
			}
			summary, err := w.summary(ctx, title)
			if err != nil {
				log.Printf("wiki summary error title=%q: %v", title, err)
				continue
			}
			snip := cleanText(firstSentences(summary, w.SummarySentences))
			if snip == "" || seen[snip] {
				continue
			}
			seen[snip] = true
			out = append(out, EvidenceSnippet{Source: "wikipedia", Title: title, Text: snip})
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (w *WikipediaSearcher) searchTitles(ctx context.Context, query string, n int) ([]string, error) {
	if n < 1 {
		n = 1
	}
	u := fmt.Sprintf("%s/w/api.php?action=opensearch&format=json&limit=%d&search=%s",
		strings.TrimRight(w.BaseURL, "/"), n, url.QueryEscape(query))
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := doWithRetry(ctx, w.client(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// Opensearch replies [query, [titles...], [descriptions...], [urls...]].
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing opensearch response: %w", err)
	}
	if len(payload) < 2 {
		return nil, nil
	}
	var titles []string
	if err := json.Unmarshal(payload[1], &titles); err != nil {
		return nil, fmt.Errorf("parsing opensearch titles: %w", err)
	}
	return titles, nil
}

type wikiSummaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

func (w *WikipediaSearcher) summary(ctx context.Context, title string) (string, error) {
	u := fmt.Sprintf("%s/api/rest_v1/page/summary/%s",
		strings.TrimRight(w.BaseURL, "/"), url.PathEscape(strings.ReplaceAll(title, " ", "_")))
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return "", err
	}
	resp, err := doWithRetry(ctx, w.client(), req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summary status %d for %q", resp.StatusCode, title)
	}
	var payload wikiSummaryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parsing summary response: %w", err)
	}
	return payload.Extract, nil
}
