package selection

// Tiers holds the pool split into three contiguous priority bands.
type Tiers struct {
	High, Medium, Low []Scored
	HighEnd           int
	MediumEnd         int
}

// Total returns the number of candidates across all bands.
func (t Tiers) Total() int {
	return len(t.High) + len(t.Medium) + len(t.Low)
}

// Partition splits the pool by the observed priority range. Band edges are
// highEnd = min + range/3 - 1 and mediumEnd = min + 2*range/3 - 1. When every
// priority is equal both edges fall below min and the whole pool lands in Low.
func Partition(pool []Scored) Tiers {
	if len(pool) == 0 {
		return Tiers{}
	}

	minP, maxP := pool[0].Priority, pool[0].Priority
	for _, s := range pool[1:] {
		minP = min(minP, s.Priority)
		maxP = max(maxP, s.Priority)
	}

	span := maxP - minP + 1
	t := Tiers{
		HighEnd:   minP + span/3 - 1,
		MediumEnd: minP + (2*span)/3 - 1,
	}
	for _, s := range pool {
		switch {
		case s.Priority <= t.HighEnd:
			t.High = append(t.High, s)
		case s.Priority <= t.MediumEnd:
			t.Medium = append(t.Medium, s)
		default:
			t.Low = append(t.Low, s)
		}
	}
	return t
}
