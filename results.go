package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// LoadBenchmark reads benchmark items from a JSONL file. Blank and malformed
// lines are skipped; items without a domain fall into the "unknown" bucket.
func LoadBenchmark(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening benchmark %s: %w", path, err)
	}
	defer f.Close()

	var items []Item
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			log.Printf("benchmark skip malformed line=%d: %v", lineNo, err)
			continue
		}
		if item.Domain == "" {
			item.Domain = "unknown"
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading benchmark %s: %w", path, err)
	}
	return items, nil
}

// LoadResults reads one cohort's results log. Blank and malformed lines are
// skipped silently so a partially corrupt log never fails the batch.
func LoadResults(path string) ([]ResultRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []ResultRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r ResultRecord
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		if r.Domain == "" {
			r.Domain = "unknown"
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// WriteResults appends records as JSONL, one line per item.
func WriteResults(path string, records []ResultRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

// indexByID builds the identity index used to pair two cohorts.
func indexByID(records []ResultRecord) map[int]ResultRecord {
	out := make(map[int]ResultRecord, len(records))
	for _, r := range records {
		out[r.ID] = r
	}
	return out
}
