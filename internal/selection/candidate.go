package selection

// Candidate is one entry of the selectable pool with externally supplied
// counters already merged in.
type Candidate struct {
	ID       string
	Category string
	TechName string
	// Priority: smaller is more important. Zero or negative means unset.
	Priority int
	// Exposure counts previous showings; Missed counts sessions where the
	// question was drawn but never shown. Negative means unset.
	Exposure int
	Missed   int
}

// Normalize fills unset fields with their defaults (priority 1, counters 0).
func (c Candidate) Normalize() Candidate {
	if c.Priority <= 0 {
		c.Priority = 1
	}
	if c.Exposure < 0 {
		c.Exposure = 0
	}
	if c.Missed < 0 {
		c.Missed = 0
	}
	return c
}

// Scored is a normalized candidate annotated with its transient weight.
// It is produced fresh on every selection and never stored.
type Scored struct {
	Candidate
	Weight float64
}

func annotate(pool []Candidate) []Scored {
	out := make([]Scored, len(pool))
	for i, c := range pool {
		n := c.Normalize()
		out[i] = Scored{Candidate: n, Weight: Weight(n.Priority, n.Exposure, n.Missed)}
	}
	return out
}
