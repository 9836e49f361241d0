package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightKnownValues(t *testing.T) {
	assert.Equal(t, 1.0, Weight(1, 0, 0))
	assert.InDelta(t, 0.6667, Weight(1, 1, 0), 0.0001)
	assert.Equal(t, 2.0, Weight(1, 0, 1))
	assert.InDelta(t, 4.0/4.5, Weight(2, 2, 3), 1e-9)
}

func TestWeightMonotonic(t *testing.T) {
	for priority := 1; priority <= 5; priority++ {
		for n := 0; n < 6; n++ {
			assert.Greater(t, Weight(priority, n, 2), Weight(priority, n+1, 2), "exposure must decay weight")
			assert.Less(t, Weight(priority, 2, n), Weight(priority, 2, n+1), "missed must boost weight")
		}
	}
}

func TestCandidateNormalize(t *testing.T) {
	got := Candidate{ID: "q", Priority: 0, Exposure: -1, Missed: -3}.Normalize()
	assert.Equal(t, Candidate{ID: "q", Priority: 1}, got)

	kept := Candidate{ID: "q", Priority: 4, Exposure: 2, Missed: 1}
	assert.Equal(t, kept, kept.Normalize())
}
