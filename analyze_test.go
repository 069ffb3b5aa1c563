package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeJSONLFile(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return rows
}

func TestLoadResultsSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONLFile(t, dir, "results.jsonl", []string{
		`{"id":1,"model":"m","answer":"a","gold_answer":"a","label":"supported"}`,
		``,
		`{not json`,
		`{"id":2,"model":"m","answer":"b","gold_answer":"c","label":"contradicted"}`,
	})
	records, err := LoadResults(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(records))
	}
	if records[0].Domain != "unknown" {
		t.Fatalf("missing domain should default to unknown, got %q", records[0].Domain)
	}
}

func TestLoadCohortsMissingFile(t *testing.T) {
	if _, err := LoadCohorts([]string{"/nonexistent/results.jsonl"}); err == nil {
		t.Fatal("missing input file must be an error")
	}
}

func TestAnalyzeWritesSummaries(t *testing.T) {
	dir := t.TempDir()
	logA := writeJSONLFile(t, dir, "results_a.jsonl", []string{
		`{"id":1,"domain":"history","model":"model-a","answer":"1865","gold_answer":"1865","label":"supported","supported_gold_in_evidence":1}`,
		`{"id":2,"domain":"geo","model":"model-a","answer":"Sydney","gold_answer":"Canberra","label":"contradicted"}`,
		`{"id":3,"domain":"geo","model":"model-a","answer":"Paris","gold_answer":"Paris","label":"supported","supported_gold_in_evidence":1}`,
	})
	logB := writeJSONLFile(t, dir, "results_b.jsonl", []string{
		`{"id":1,"domain":"history","model":"model-b","answer":"1865","gold_answer":"1865","label":"supported","supported_gold_in_evidence":1}`,
		`{"id":2,"domain":"geo","model":"model-b","answer":"Canberra","gold_answer":"Canberra","label":"supported","supported_gold_in_evidence":1}`,
		`{"id":3,"domain":"geo","model":"model-b","answer":"wrong","gold_answer":"Paris","label":"unverifiable"}`,
	})

	cohorts, err := LoadCohorts([]string{logA, logB})
	if err != nil {
		t.Fatalf("LoadCohorts: %v", err)
	}
	if cohorts[0].Name != "model-a" || cohorts[1].Name != "model-b" {
		t.Fatalf("cohort names should come from the model field, got %q %q", cohorts[0].Name, cohorts[1].Name)
	}

	outDir := filepath.Join(dir, "tables")
	if err := Analyze(cohorts, outDir, true); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	perModel := readCSVFile(t, filepath.Join(outDir, "per_model_summary.csv"))
	if len(perModel) != 3 {
		t.Fatalf("expected header + 2 model rows, got %d rows", len(perModel))
	}
	if perModel[1][0] != "model-a" || perModel[1][1] != "3" {
		t.Fatalf("unexpected model row: %v", perModel[1])
	}
	// model-a exact matches: 1865 and Paris, 2 of 3.
	if perModel[1][2] != "0.667" {
		t.Fatalf("expected exact_mean 0.667 for model-a, got %q", perModel[1][2])
	}
	if perModel[1][14] != "2" || perModel[1][15] != "1" || perModel[1][16] != "0" {
		t.Fatalf("unexpected label counts: %v", perModel[1])
	}

	perDomain := readCSVFile(t, filepath.Join(outDir, "per_domain_summary.csv"))
	// header + 2 domains per model
	if len(perDomain) != 5 {
		t.Fatalf("expected header + 4 domain rows, got %d", len(perDomain))
	}

	pairwise := readCSVFile(t, filepath.Join(outDir, "pairwise_mcnemar.csv"))
	if len(pairwise) != 3 {
		t.Fatalf("expected header + exact + soft rows, got %d", len(pairwise))
	}
	if pairwise[1][2] != "exact" || pairwise[1][3] != "3" {
		t.Fatalf("unexpected pairwise row: %v", pairwise[1])
	}
	// exact: A=[1,0,1], B=[1,1,0] -> b01=1, b10=1, p=1.0
	if pairwise[1][4] != "1" || pairwise[1][5] != "1" || pairwise[1][6] != "1.000000" {
		t.Fatalf("unexpected exact McNemar row: %v", pairwise[1])
	}
}

func TestAnalyzePairwiseSkipsDisjointCohorts(t *testing.T) {
	dir := t.TempDir()
	logA := writeJSONLFile(t, dir, "results_a.jsonl", []string{
		`{"id":1,"model":"model-a","answer":"x","gold_answer":"x","label":"supported"}`,
	})
	logB := writeJSONLFile(t, dir, "results_b.jsonl", []string{
		`{"id":99,"model":"model-b","answer":"y","gold_answer":"y","label":"supported"}`,
	})
	cohorts, err := LoadCohorts([]string{logA, logB})
	if err != nil {
		t.Fatalf("LoadCohorts: %v", err)
	}
	outDir := filepath.Join(dir, "tables")
	if err := Analyze(cohorts, outDir, true); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	pairwise := readCSVFile(t, filepath.Join(outDir, "pairwise_mcnemar.csv"))
	if len(pairwise) != 1 {
		t.Fatalf("disjoint cohorts should emit no comparison rows, got %d", len(pairwise))
	}
}

func TestCohortNameFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONLFile(t, dir, "results_mystery.jsonl", []string{
		`{"id":1,"answer":"x","gold_answer":"x","label":"supported"}`,
	})
	records, err := LoadResults(path)
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if got := cohortName(records, path); got != "results_mystery" {
		t.Fatalf("expected filename fallback, got %q", got)
	}
}

func TestLoadBenchmark(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONLFile(t, dir, "bench.jsonl", []string{
		`{"id":1,"question":"Who?","gold_answer":"Someone","domain":"people"}`,
		`broken`,
		`{"id":2,"question":"Where?","gold_answer":"Somewhere"}`,
	})
	items, err := LoadBenchmark(path)
	if err != nil {
		t.Fatalf("LoadBenchmark: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Domain != "unknown" {
		t.Fatalf("missing domain should default to unknown, got %q", items[1].Domain)
	}
	if _, err := LoadBenchmark(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Fatal("missing benchmark must be an error")
	}
}
