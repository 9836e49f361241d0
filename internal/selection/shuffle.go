package selection

import (
	"cmp"
	"slices"
)

// Shuffler orders a group by weight and exposure and randomizes exact ties.
type Shuffler struct {
	perm Permuter
}

// NewShuffler breaks ties with perm, or the process-wide source when perm is nil.
func NewShuffler(perm Permuter) Shuffler {
	if perm == nil {
		perm = NewRandomPermuter()
	}
	return Shuffler{perm: perm}
}

// SortAndShuffle returns a copy of group sorted by weight desc, exposure asc.
// Each maximal run sharing (weight, exposure) is permuted in place; order
// across runs is never disturbed.
func (s Shuffler) SortAndShuffle(group []Scored) []Scored {
	out := slices.Clone(group)
	slices.SortStableFunc(out, func(a, b Scored) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Exposure, b.Exposure)
	})

	for i := 0; i < len(out); {
		j := i + 1
		for j < len(out) && out[j].Weight == out[i].Weight && out[j].Exposure == out[i].Exposure {
			j++
		}
		if j-i > 1 {
			run := out[i:j]
			s.perm.Shuffle(len(run), func(a, b int) { run[a], run[b] = run[b], run[a] })
		}
		i = j
	}
	return out
}
