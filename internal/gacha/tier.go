package gacha

import "strings"

// Tier is a rarity label. The set is fixed and ordered from the top tier
// down to the base tier.
type Tier string

const (
	TierSSR    Tier = "SSR"
	TierSR     Tier = "SR"
	TierR      Tier = "R"
	TierCommon Tier = "Common"
)

// TopTier is the tier guarded by pity.
const TopTier = TierSSR

// Tiers returns the canonical order used by the tier walk: top first,
// base last.
func Tiers() []Tier {
	return []Tier{TierSSR, TierSR, TierR, TierCommon}
}

// DefaultRates are the base probabilities a new engine starts with.
func DefaultRates() map[Tier]float64 {
	return map[Tier]float64{
		TierSSR:    0.01,
		TierSR:     0.05,
		TierR:      0.15,
		TierCommon: 0.79,
	}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierSSR, TierSR, TierR, TierCommon:
		return true
	}
	return false
}

// Stars is the display rating used by presentation layers.
func (t Tier) Stars() int {
	switch t {
	case TierSSR:
		return 5
	case TierSR:
		return 4
	case TierR:
		return 3
	}
	return 0
}

// ParseTier resolves a label case-insensitively.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", ErrUnknownTier
}

func placeholderName(t Tier) string {
	return string(t) + " Item"
}
