package main

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"strings"
)

const (
	bootstrapSeed  = 17
	defaultNBoot   = 10000
	defaultAlpha   = 0.05
	looseThreshold = 0.6
)

// bootstrapCI returns the sample mean and a two-sided percentile bootstrap
// confidence interval for a binary list. The random source is seeded once
// per call so identical inputs always produce identical intervals. Empty
// input returns NaN for all three values.
func bootstrapCI(xs []int, nBoot int, alpha float64) (mean, lo, hi float64) {
	if len(xs) == 0 {
		nan := math.NaN()
		return nan, nan, nan
	}
	n := len(xs)
	total := 0
	for _, x := range xs {
		total += x
	}
	mean = float64(total) / float64(n)

	rng := rand.New(rand.NewSource(bootstrapSeed))
	means := make([]float64, nBoot)
	for b := 0; b < nBoot; b++ {
		s := 0
		for i := 0; i < n; i++ {
			s += xs[rng.Intn(n)]
		}
		means[b] = float64(s) / float64(n)
	}
	sort.Float64s(means)

	loIdx := int(alpha / 2 * float64(nBoot))
	hiIdx := int((1 - alpha/2) * float64(nBoot))
	if hiIdx >= nBoot {
		hiIdx = nBoot - 1
	}
	return mean, means[loIdx], means[hiIdx]
}

// packMetric is the bootstrap summary with default resampling parameters.
func packMetric(xs []int) MetricPack {
	mean, lo, hi := bootstrapCI(xs, defaultNBoot, defaultAlpha)
	return MetricPack{Mean: mean, CILow: lo, CIHigh: hi, N: len(xs)}
}

// ErrPairedLength indicates a caller bug: the two correctness lists given to
// mcnemar were not item-aligned.
var ErrPairedLength = errors.New("paired correctness lists must have equal length")

// mcnemar runs an exact binomial McNemar test (no continuity correction) on
// paired 0/1 lists. b01 counts items A got wrong and B got right, b10 the
// reverse. With no discordant pairs the p-value is 1.
func mcnemar(aCorrect, bCorrect []int) (b01, b10 int, p float64, err error) {
	if len(aCorrect) != len(bCorrect) {
		return 0, 0, 0, ErrPairedLength
	}
	for i := range aCorrect {
		switch {
		case aCorrect[i] == 0 && bCorrect[i] == 1:
			b01++
		case aCorrect[i] == 1 && bCorrect[i] == 0:
			b10++
		}
	}
	n := b01 + b10
	if n == 0 {
		return b01, b10, 1.0, nil
	}
	k := b01
	if b10 < k {
		k = b10
	}
	p = 2 * binomTail(n, k)
	if p > 1 {
		p = 1
	}
	return b01, b10, p, nil
}

// binomTail is P(X <= k) for X ~ Binomial(n, 1/2), computed in log space to
// stay stable for large n.
func binomTail(n, k int) float64 {
	logHalfN := float64(n) * math.Log(0.5)
	tail := 0.0
	for i := 0; i <= k; i++ {
		tail += math.Exp(logChoose(n, i) + logHalfN)
	}
	if tail > 1 {
		tail = 1
	}
	return tail
}

func logChoose(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// cohortMetrics aggregates the four binary indicators over one population.
type cohortMetrics struct {
	Exact       MetricPack
	Loose       MetricPack
	Soft        MetricPack
	RecallAny   MetricPack
	N           int
	LabelCounts map[VerdictLabel]int
}

// indicators derives the per-item 0/1 correctness values.
func indicators(r ResultRecord) (exact, loose, soft, recallAny int) {
	if exactMatch(r.Answer, r.GoldAnswer) {
		exact = 1
	}
	if looseMatch(r.Answer, r.GoldAnswer) {
		loose = 1
	}
	if VerdictLabel(strings.ToLower(string(r.Label))) == LabelSupported {
		soft = 1
	}
	if r.SupportedGoldInEvidence == 1 {
		recallAny = 1
	}
	return
}

// runSummary holds cohort-level and per-domain metric packs for one results
// log.
type runSummary struct {
	Overall  cohortMetrics
	ByDomain map[string]cohortMetrics
}

// summarizeRun computes all metric packs for a cohort, overall and sliced by
// domain. Missing domains land in the "unknown" bucket.
func summarizeRun(records []ResultRecord) runSummary {
	type lists struct {
		exact, loose, soft, recall []int
	}
	var overall lists
	domains := make(map[string]*lists)
	labelCounts := make(map[VerdictLabel]int)

	for _, r := range records {
		e, l, s, rc := indicators(r)
		overall.exact = append(overall.exact, e)
		overall.loose = append(overall.loose, l)
		overall.soft = append(overall.soft, s)
		overall.recall = append(overall.recall, rc)
		labelCounts[VerdictLabel(strings.ToLower(string(r.Label)))]++

		d := r.Domain
		if d == "" {
			d = "unknown"
		}
		dl, ok := domains[d]
		if !ok {
			dl = &lists{}
			domains[d] = dl
		}
		dl.exact = append(dl.exact, e)
		dl.loose = append(dl.loose, l)
		dl.soft = append(dl.soft, s)
		dl.recall = append(dl.recall, rc)
	}

	pack := func(l *lists) cohortMetrics {
		return cohortMetrics{
			Exact:     packMetric(l.exact),
			Loose:     packMetric(l.loose),
			Soft:      packMetric(l.soft),
			RecallAny: packMetric(l.recall),
			N:         len(l.exact),
		}
	}

	summary := runSummary{
		Overall:  pack(&overall),
		ByDomain: make(map[string]cohortMetrics, len(domains)),
	}
	summary.Overall.LabelCounts = labelCounts
	for d, dl := range domains {
		summary.ByDomain[d] = pack(dl)
	}
	return summary
}
