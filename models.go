package main

import "time"

// Item is one immutable benchmark question.
type Item struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	GoldAnswer string `json:"gold_answer"`
	Domain     string `json:"domain"`
}

// EvidenceSnippet is one retrieved passage. Snippets are deduplicated by
// normalized text within a single retrieval and cached immutably.
type EvidenceSnippet struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

type VerdictLabel string

const (
	LabelSupported    VerdictLabel = "supported"
	LabelContradicted VerdictLabel = "contradicted"
	LabelUnverifiable VerdictLabel = "unverifiable"
)

// Verdict is the aggregated entailment decision for one (question, answer)
// pair against a set of evidence snippets. Confidence is always
// |max_entail - max_contradict|. Evidence, when present, is the snippet with
// the highest entailment score regardless of the final label.
type Verdict struct {
	Label         VerdictLabel     `json:"label"`
	Confidence    float64          `json:"confidence"`
	MaxEntail     float64          `json:"max_entail"`
	MaxContradict float64          `json:"max_contradict"`
	Evidence      *EvidenceSnippet `json:"evidence,omitempty"`
}

// NLIScores is the fixed 3-way shape every entailment backend response is
// normalized into at the boundary.
type NLIScores struct {
	Entail     float64
	Neutral    float64
	Contradict float64
}

// ResultRecord is one line of a cohort's append-only results log.
type ResultRecord struct {
	ID            int          `json:"id"`
	Domain        string       `json:"domain"`
	Question      string       `json:"question"`
	GoldAnswer    string       `json:"gold_answer"`
	Model         string       `json:"model"`
	Answer        string       `json:"answer"`
	Label         VerdictLabel `json:"label"`
	Confidence    float64      `json:"confidence"`
	MaxEntail     float64      `json:"max_entail"`
	MaxContradict float64      `json:"max_contradict"`

	// SupportedGoldInEvidence is a retriever recall proxy: 1 if the gold
	// answer appeared in any retrieved snippet, else 0.
	SupportedGoldInEvidence int      `json:"supported_gold_in_evidence"`
	RetrievedTitles         []string `json:"retrieved_titles"`

	// Mitigation fields are populated only when the base verdict was not
	// "supported" and mitigation ran for this item.
	MitAnswer     string       `json:"mit_answer,omitempty"`
	MitLabel      VerdictLabel `json:"mit_label,omitempty"`
	MitConfidence float64      `json:"mit_confidence,omitempty"`
}

// MetricPack is the bootstrap summary of one binary metric over one
// population (a cohort or a domain slice).
type MetricPack struct {
	Mean   float64
	CILow  float64
	CIHigh float64
	N      int
}

// RunStats summarizes a single evaluation run for the summary file, the run
// history table and the Slack notice.
type RunStats struct {
	Model       string
	N           int
	Exact       MetricPack
	Loose       MetricPack
	Soft        MetricPack
	RecallAny   MetricPack
	LabelCounts map[VerdictLabel]int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// LLMUsage tracks token accounting across generator and mitigator calls.
type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}
