package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BuildRunSummary renders a run's stats as a short markdown report.
func BuildRunSummary(stats RunStats) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("# Evaluation run: %s\n\n", stats.Model))
	out.WriteString(fmt.Sprintf("- Items: %d\n", stats.N))
	out.WriteString(fmt.Sprintf("- Started: %s\n", stats.StartedAt.Format("2006-01-02 15:04:05")))
	out.WriteString(fmt.Sprintf("- Duration: %s\n\n", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Second)))

	out.WriteString("## Verdicts\n\n")
	out.WriteString(fmt.Sprintf("- supported: %d\n", stats.LabelCounts[LabelSupported]))
	out.WriteString(fmt.Sprintf("- contradicted: %d\n", stats.LabelCounts[LabelContradicted]))
	out.WriteString(fmt.Sprintf("- unverifiable: %d\n\n", stats.LabelCounts[LabelUnverifiable]))

	out.WriteString("## Metrics (mean [95% CI])\n\n")
	writeMetric := func(name string, m MetricPack) {
		out.WriteString(fmt.Sprintf("- %s: %.3f [%.3f, %.3f]\n", name, m.Mean, m.CILow, m.CIHigh))
	}
	writeMetric("exact", stats.Exact)
	writeMetric("loose", stats.Loose)
	writeMetric("soft", stats.Soft)
	writeMetric("recall_any", stats.RecallAny)
	return out.String()
}

// WriteRunSummaryFile writes the markdown summary next to the results log.
func WriteRunSummaryFile(stats RunStats, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("summary_%s_%s.md", sanitizeFilename(stats.Model), stats.FinishedAt.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(BuildRunSummary(stats)), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
