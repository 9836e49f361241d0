// Package selection picks the ordered subset of questions shown in one quiz
// run: weighted by priority and exposure history, split into priority tiers,
// capped on repeats and backfilled on shortfall.
package selection

import (
	"cmp"
	"slices"
)

// Selector is safe for concurrent use when its Permuter is.
type Selector struct {
	shuffler Shuffler
}

// New returns a Selector breaking ties with perm. A nil perm uses the
// process-wide random source.
func New(perm Permuter) *Selector {
	return &Selector{shuffler: NewShuffler(perm)}
}

// Select returns min(limit, len(pool)) distinct candidates ordered by
// priority asc, exposure asc, weight desc. The pool is not modified.
func (s *Selector) Select(pool []Candidate, limit int) []Scored {
	if len(pool) == 0 || limit <= 0 {
		return []Scored{}
	}
	limit = min(limit, len(pool))

	tiers := Partition(annotate(pool))
	draw := Allocate(len(tiers.High), len(tiers.Medium), len(tiers.Low), limit)
	reps := RepetitionBudget(draw, limit)

	picked := make([]Scored, 0, limit)
	picked = append(picked, s.pick(tiers.High, draw.High, reps.High)...)
	picked = append(picked, s.pick(tiers.Medium, draw.Medium, reps.Medium)...)
	picked = append(picked, s.pick(tiers.Low, draw.Low, reps.Low)...)

	included := make(map[string]struct{}, len(picked))
	result := picked[:0]
	for _, q := range picked {
		if _, dup := included[q.ID]; dup {
			continue
		}
		included[q.ID] = struct{}{}
		result = append(result, q)
	}

	if len(result) < limit {
		rest := make([]Scored, 0, tiers.Total())
		for _, band := range [][]Scored{tiers.High, tiers.Medium, tiers.Low} {
			for _, q := range band {
				if _, ok := included[q.ID]; !ok {
					rest = append(rest, q)
				}
			}
		}
		slices.SortStableFunc(rest, compareFinal)
		for _, q := range rest {
			if len(result) >= limit {
				break
			}
			if _, dup := included[q.ID]; dup {
				continue
			}
			included[q.ID] = struct{}{}
			result = append(result, q)
		}
	}

	slices.SortStableFunc(result, compareFinal)
	return result[:min(len(result), limit)]
}

func compareFinal(a, b Scored) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Exposure, b.Exposure); c != 0 {
		return c
	}
	return cmp.Compare(b.Weight, a.Weight)
}
