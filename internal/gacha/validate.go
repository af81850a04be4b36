package gacha

import (
	"math"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateRate(r float64) error {
	if !finite(r) || r < 0 {
		return ErrInvalidRate
	}
	return nil
}

func validateWeight(w float64) error {
	if !finite(w) || w <= 0 {
		return ErrInvalidWeight
	}
	return nil
}

// boostedTotal is the rate mass a soft-pity draw normalizes by, the largest
// divisor chances ever uses. It must stay finite.
func boostedTotal(rates map[Tier]float64, mult float64) float64 {
	var total float64
	for t, r := range rates {
		if t == TopTier {
			r *= mult
		}
		total += r
	}
	return total
}
