package gacha

// TierChance is one entry of a normalized tier distribution.
type TierChance struct {
	Tier Tier    `json:"tier"`
	P    float64 `json:"p"`
}

// effectiveTopRate applies the linear soft-pity boost to the top-tier base
// rate when count has reached SoftStart.
func (e *Engine) effectiveTopRate(count int) float64 {
	base := e.rates[TopTier]
	if count >= e.pity.SoftStart {
		return base * e.pity.SoftMultiplier
	}
	return base
}

// chances renormalizes the tier rates for a draw made at count. The result
// is in canonical order and sums to 1.
func (e *Engine) chances(count int) []TierChance {
	tiers := Tiers()
	raw := make([]float64, len(tiers))
	var total float64
	for i, t := range tiers {
		r := e.rates[t]
		if t == TopTier {
			r = e.effectiveTopRate(count)
		}
		raw[i] = r
		total += r
	}
	out := make([]TierChance, len(tiers))
	for i, t := range tiers {
		out[i] = TierChance{Tier: t, P: raw[i] / total}
	}
	return out
}

// rollTier walks the distribution top first; the first tier whose
// cumulative mass exceeds r wins, so boundary values land in the higher tier.
func rollTier(chances []TierChance, r float64) Tier {
	var cum float64
	for _, c := range chances {
		cum += c.P
		if r < cum {
			return c.Tier
		}
	}
	return chances[len(chances)-1].Tier
}

// TierProbabilities reports the normalized distribution at the current
// draw count.
func (e *Engine) TierProbabilities() []TierChance {
	return e.chances(e.count)
}

// CurrentTopTierRate is the top-tier base rate, boosted while InSoftPity.
func (e *Engine) CurrentTopTierRate() float64 {
	if e.InSoftPity() {
		return e.rates[TopTier] * e.pity.SoftMultiplier
	}
	return e.rates[TopTier]
}
