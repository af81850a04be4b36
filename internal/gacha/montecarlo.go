package gacha

import (
	"math"
	"sort"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Draws until the first top-tier result, natural or guaranteed.
	GoalFirstTop TrialGoal = "first_top"
	// Draws until the guaranteed item itself shows up.
	GoalGuaranteedItem TrialGoal = "guaranteed_item"
	// Given a fixed budget N, count top-tier results.
	GoalFixedBudget TrialGoal = "fixed_budget"
)

// SimParams describes one simulation run.
type SimParams struct {
	Goal    TrialGoal
	Trials  int
	Budget  int // draws per trial for GoalFixedBudget
	Cushion int // draw count carried into each trial, clamped to [0, HardThreshold-1]
}

// Stats summarizes simulation results.
type Stats struct {
	Trials int     `json:"trials"`
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Trials:  n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// simulateOne runs a single trial on a fresh clone of tmpl.
func simulateOne(tmpl *Engine, p SimParams, rng RandomSource) int {
	e := tmpl.Clone(rng)
	c := p.Cushion
	if c < 0 {
		c = 0
	}
	if c >= e.pity.HardThreshold {
		c = e.pity.HardThreshold - 1
	}
	e.count = c

	switch p.Goal {
	case GoalGuaranteedItem:
		want, _ := e.GuaranteedItem()
		for draws := 1; ; draws++ {
			if r := e.draw(); r.Tier == TopTier && r.Item == want.Name {
				return draws
			}
		}
	case GoalFixedBudget:
		hits := 0
		for i := 0; i < p.Budget; i++ {
			if e.draw().Tier == TopTier {
				hits++
			}
		}
		return hits
	default:
		for draws := 1; ; draws++ {
			if e.draw().Tier == TopTier {
				return draws
			}
		}
	}
}

// RunMonteCarlo repeats trials against clones of tmpl and returns summary
// stats. tmpl itself is never mutated. All trials share rng so a seeded
// source gives a reproducible run.
func RunMonteCarlo(tmpl *Engine, p SimParams, rng RandomSource) (Stats, error) {
	if err := tmpl.Ready(); err != nil {
		return Stats{}, err
	}
	if p.Trials <= 0 {
		return Stats{}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]int, p.Trials)
	for i := range samples {
		samples[i] = simulateOne(tmpl, p, rng)
	}
	return calcStats(samples), nil
}
