package selection

// Quota is a per-tier count.
type Quota struct {
	High, Medium, Low int
}

// Sum returns High + Medium + Low.
func (q Quota) Sum() int {
	return q.High + q.Medium + q.Low
}

// Allocate sizes each tier's draw proportionally to its share of the pool,
// floor-rounded, then hands the rounding remainder to high, medium and low in
// that order up to each tier's availability. The sum equals min(limit, total)
// unless every tier is exhausted. limit*total must fit in an int; Select
// clamps limit to the pool size first.
func Allocate(highN, mediumN, lowN, limit int) Quota {
	total := highN + mediumN + lowN
	if total == 0 || limit <= 0 {
		return Quota{}
	}

	q := Quota{
		High:   limit * highN / total,
		Medium: limit * mediumN / total,
	}
	q.Low = limit - q.High - q.Medium

	q.High = min(q.High, highN)
	q.Medium = min(q.Medium, mediumN)
	q.Low = min(q.Low, lowN, limit-q.High-q.Medium)

	left := limit - q.Sum()
	if left <= 0 {
		return q
	}
	add := min(left, highN-q.High)
	q.High += add
	left -= add

	add = min(left, mediumN-q.Medium)
	q.Medium += add
	left -= add

	q.Low += min(left, lowN-q.Low)
	return q
}

// RepetitionBudget spreads the global repeat allowance, floor(limit*2/6),
// across tiers in proportion to their draw counts. Low absorbs the remainder.
func RepetitionBudget(draw Quota, limit int) Quota {
	if limit <= 0 {
		return Quota{}
	}
	total := limit * 2 / 6
	r := Quota{
		High:   draw.High * total / limit,
		Medium: draw.Medium * total / limit,
	}
	r.Low = total - r.High - r.Medium
	return r
}
