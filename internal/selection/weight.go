package selection

import "math"

// exposureDecay is the per-exposure divisor applied to a question's weight.
const exposureDecay = 1.5

// Weight scores a question: exponential decay with exposure, linear boost
// with missed sessions. priority must already be normalized (>= 1).
func Weight(priority, exposure, missed int) float64 {
	return (1 / (float64(priority) * math.Pow(exposureDecay, float64(exposure)))) * float64(1+missed)
}
