package selection

// pick draws up to totalCount items from one tier: at most repetitionLimit
// previously seen items first, then unseen ones. A short tier stays short;
// the orchestrator backfills.
func (s *Selector) pick(group []Scored, totalCount, repetitionLimit int) []Scored {
	if totalCount <= 0 {
		return nil
	}

	var seen, unseen []Scored
	for _, q := range group {
		if q.Exposure > 0 {
			seen = append(seen, q)
		} else {
			unseen = append(unseen, q)
		}
	}

	repetition := s.shuffler.SortAndShuffle(seen)
	repetition = repetition[:min(len(repetition), max(repetitionLimit, 0), totalCount)]

	used := make(map[string]struct{}, len(repetition))
	for _, q := range repetition {
		used[q.ID] = struct{}{}
	}

	picked := make([]Scored, 0, totalCount)
	picked = append(picked, repetition...)
	for _, q := range s.shuffler.SortAndShuffle(unseen) {
		if len(picked) >= totalCount {
			break
		}
		if _, dup := used[q.ID]; dup {
			continue
		}
		used[q.ID] = struct{}{}
		picked = append(picked, q)
	}
	return picked
}
