package main

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS evidence_cache (
		key        TEXT PRIMARY KEY,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		k          INTEGER NOT NULL,
		snippets   TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		model         TEXT NOT NULL,
		n_items       INTEGER NOT NULL,
		supported     INTEGER NOT NULL DEFAULT 0,
		contradicted  INTEGER NOT NULL DEFAULT 0,
		unverifiable  INTEGER NOT NULL DEFAULT 0,
		exact_mean    REAL NOT NULL DEFAULT 0,
		loose_mean    REAL NOT NULL DEFAULT 0,
		soft_mean     REAL NOT NULL DEFAULT 0,
		started_at    DATETIME NOT NULL,
		finished_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EvidenceCache is a write-through memo of retrieval results keyed by
// (question, answer, k). Entries are immutable once written and never
// evicted. SQLite serializes concurrent writers; when no DB is available the
// cache degrades to an in-memory map guarded by a mutex, so entries simply
// do not survive a restart.
type EvidenceCache struct {
	db *sql.DB

	mu  sync.Mutex
	mem map[string][]EvidenceSnippet
}

func NewEvidenceCache(db *sql.DB) *EvidenceCache {
	return &EvidenceCache{db: db, mem: make(map[string][]EvidenceSnippet)}
}

func evidenceKey(question, answer string, k int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s::%s::k=%d", question, answer, k)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached snippet list for the triple, or (nil, false).
func (c *EvidenceCache) Get(question, answer string, k int) ([]EvidenceSnippet, bool) {
	key := evidenceKey(question, answer, k)

	c.mu.Lock()
	if snips, ok := c.mem[key]; ok {
		c.mu.Unlock()
		return snips, true
	}
	c.mu.Unlock()

	if c.db == nil {
		return nil, false
	}
	var raw string
	err := c.db.QueryRow(`SELECT snippets FROM evidence_cache WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("evidence cache read error key=%s: %v", key, err)
		return nil, false
	}
	var snips []EvidenceSnippet
	if err := json.Unmarshal([]byte(raw), &snips); err != nil {
		log.Printf("evidence cache decode error key=%s: %v", key, err)
		return nil, false
	}

	c.mu.Lock()
	c.mem[key] = snips
	c.mu.Unlock()
	return snips, true
}

// Put stores the snippet list for the triple. An existing entry is never
// overwritten. Persistence failures are logged and ignored; the in-memory
// copy keeps the current run working.
func (c *EvidenceCache) Put(question, answer string, k int, snips []EvidenceSnippet) {
	key := evidenceKey(question, answer, k)

	c.mu.Lock()
	if _, exists := c.mem[key]; !exists {
		c.mem[key] = snips
	}
	c.mu.Unlock()

	if c.db == nil {
		return
	}
	raw, err := json.Marshal(snips)
	if err != nil {
		log.Printf("evidence cache encode error key=%s: %v", key, err)
		return
	}
	if _, err := c.db.Exec(
		`INSERT OR IGNORE INTO evidence_cache (key, question, answer, k, snippets) VALUES (?, ?, ?, ?, ?)`,
		key, question, answer, k, string(raw)); err != nil {
		log.Printf("evidence cache write error key=%s: %v", key, err)
	}
}

// SaveRun records a finished evaluation run in the history table.
func SaveRun(db *sql.DB, stats RunStats) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO runs (model, n_items, supported, contradicted, unverifiable,
			exact_mean, loose_mean, soft_mean, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Model, stats.N,
		stats.LabelCounts[LabelSupported],
		stats.LabelCounts[LabelContradicted],
		stats.LabelCounts[LabelUnverifiable],
		stats.Exact.Mean, stats.Loose.Mean, stats.Soft.Mean,
		stats.StartedAt.UTC().Format(time.RFC3339),
		stats.FinishedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// RecentRuns returns the last n runs for a model, newest first.
func RecentRuns(db *sql.DB, model string, n int) ([]RunStats, error) {
	rows, err := db.Query(`
		SELECT model, n_items, supported, contradicted, unverifiable,
			exact_mean, loose_mean, soft_mean, started_at, finished_at
		FROM runs WHERE model = ? ORDER BY id DESC LIMIT ?`, model, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunStats
	for rows.Next() {
		var s RunStats
		var sup, con, unv int
		var started, finished string
		if err := rows.Scan(&s.Model, &s.N, &sup, &con, &unv,
			&s.Exact.Mean, &s.Loose.Mean, &s.Soft.Mean, &started, &finished); err != nil {
			return nil, err
		}
		s.LabelCounts = map[VerdictLabel]int{
			LabelSupported:    sup,
			LabelContradicted: con,
			LabelUnverifiable: unv,
		}
		s.StartedAt, _ = time.Parse(time.RFC3339, started)
		s.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, s)
	}
	return out, rows.Err()
}
