package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// cohort is one loaded results log plus its display name.
type cohort struct {
	Name    string
	Records []ResultRecord
	Path    string
}

// cohortName prefers the model field of the first record, falling back to
// the file basename.
func cohortName(records []ResultRecord, path string) string {
	if len(records) > 0 && records[0].Model != "" {
		return records[0].Model
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadCohorts reads every results log. A missing or unreadable path is a
// user-visible error, not a skip.
func LoadCohorts(paths []string) ([]cohort, error) {
	var cohorts []cohort
	for _, p := range paths {
		records, err := LoadResults(p)
		if err != nil {
			return nil, fmt.Errorf("reading results log %s: %w", p, err)
		}
		cohorts = append(cohorts, cohort{Name: cohortName(records, p), Records: records, Path: p})
	}
	return cohorts, nil
}

func fmtMean(x float64) string {
	return fmt.Sprintf("%.3f", x)
}

// Analyze writes the per-model, per-domain and (optionally) pairwise McNemar
// CSV summaries for the given cohorts.
func Analyze(cohorts []cohort, outDir string, pairwise bool) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	if err := writePerModelSummary(cohorts, filepath.Join(outDir, "per_model_summary.csv")); err != nil {
		return err
	}
	if err := writePerDomainSummary(cohorts, filepath.Join(outDir, "per_domain_summary.csv")); err != nil {
		return err
	}
	if pairwise && len(cohorts) >= 2 {
		if err := writePairwiseMcNemar(cohorts, filepath.Join(outDir, "pairwise_mcnemar.csv")); err != nil {
			return err
		}
	}
	return nil
}

func writePerModelSummary(cohorts []cohort, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model", "n",
		"exact_mean", "exact_lo", "exact_hi",
		"loose_mean", "loose_lo", "loose_hi",
		"soft_mean", "soft_lo", "soft_hi",
		"recall_mean", "recall_lo", "recall_hi",
		"labels_supported", "labels_contradicted", "labels_unverifiable"}); err != nil {
		return err
	}
	for _, c := range cohorts {
		summ := summarizeRun(c.Records)
		ov := summ.Overall
		if err := w.Write([]string{
			c.Name, fmt.Sprintf("%d", ov.N),
			fmtMean(ov.Exact.Mean), fmtMean(ov.Exact.CILow), fmtMean(ov.Exact.CIHigh),
			fmtMean(ov.Loose.Mean), fmtMean(ov.Loose.CILow), fmtMean(ov.Loose.CIHigh),
			fmtMean(ov.Soft.Mean), fmtMean(ov.Soft.CILow), fmtMean(ov.Soft.CIHigh),
			fmtMean(ov.RecallAny.Mean), fmtMean(ov.RecallAny.CILow), fmtMean(ov.RecallAny.CIHigh),
			fmt.Sprintf("%d", ov.LabelCounts[LabelSupported]),
			fmt.Sprintf("%d", ov.LabelCounts[LabelContradicted]),
			fmt.Sprintf("%d", ov.LabelCounts[LabelUnverifiable]),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Printf("analyze wrote %s", path)
	return nil
}

func writePerDomainSummary(cohorts []cohort, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model", "domain", "n",
		"exact_mean", "exact_lo", "exact_hi",
		"loose_mean", "loose_lo", "loose_hi",
		"soft_mean", "soft_lo", "soft_hi",
		"recall_mean", "recall_lo", "recall_hi"}); err != nil {
		return err
	}
	for _, c := range cohorts {
		summ := summarizeRun(c.Records)
		domains := make([]string, 0, len(summ.ByDomain))
		for d := range summ.ByDomain {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		for _, d := range domains {
			dv := summ.ByDomain[d]
			if err := w.Write([]string{
				c.Name, d, fmt.Sprintf("%d", dv.N),
				fmtMean(dv.Exact.Mean), fmtMean(dv.Exact.CILow), fmtMean(dv.Exact.CIHigh),
				fmtMean(dv.Loose.Mean), fmtMean(dv.Loose.CILow), fmtMean(dv.Loose.CIHigh),
				fmtMean(dv.Soft.Mean), fmtMean(dv.Soft.CILow), fmtMean(dv.Soft.CIHigh),
				fmtMean(dv.RecallAny.Mean), fmtMean(dv.RecallAny.CILow), fmtMean(dv.RecallAny.CIHigh),
			}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Printf("analyze wrote %s", path)
	return nil
}

// pairedCorrectness derives the aligned 0/1 lists for one metric over the
// shared ids of two cohorts.
func pairedCorrectness(idxA, idxB map[int]ResultRecord, sharedIDs []int, metric string) (a, b []int) {
	score := func(r ResultRecord) int {
		switch metric {
		case "exact":
			if exactMatch(r.Answer, r.GoldAnswer) {
				return 1
			}
		case "soft":
			if VerdictLabel(strings.ToLower(string(r.Label))) == LabelSupported {
				return 1
			}
		}
		return 0
	}
	for _, id := range sharedIDs {
		a = append(a, score(idxA[id]))
		b = append(b, score(idxB[id]))
	}
	return a, b
}

func writePairwiseMcNemar(cohorts []cohort, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model_A", "model_B", "metric", "n_shared",
		"A_wrong_B_right", "A_right_B_wrong", "p_value"}); err != nil {
		return err
	}

	for i := 0; i < len(cohorts); i++ {
		for j := i + 1; j < len(cohorts); j++ {
			idxA := indexByID(cohorts[i].Records)
			idxB := indexByID(cohorts[j].Records)

			var sharedIDs []int
			for id := range idxA {
				if _, ok := idxB[id]; ok {
					sharedIDs = append(sharedIDs, id)
				}
			}
			if len(sharedIDs) == 0 {
				log.Printf("analyze pairwise skipped %s vs %s: no shared ids", cohorts[i].Name, cohorts[j].Name)
				continue
			}
			sort.Ints(sharedIDs)

			for _, metric := range []string{"exact", "soft"} {
				a, b := pairedCorrectness(idxA, idxB, sharedIDs, metric)
				b01, b10, p, err := mcnemar(a, b)
				if err != nil {
					return err
				}
				if err := w.Write([]string{
					cohorts[i].Name, cohorts[j].Name, metric,
					fmt.Sprintf("%d", len(sharedIDs)),
					fmt.Sprintf("%d", b01), fmt.Sprintf("%d", b10),
					fmt.Sprintf("%.6f", p),
				}); err != nil {
					return err
				}
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Printf("analyze wrote %s", path)
	return nil
}
