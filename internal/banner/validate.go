package banner

import (
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// ValidateRaw checks semantic constraints of a merged RawConfig, reporting
// everything the engine would refuse in one error.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// rates: unspecified tiers keep their defaults
	rates := gacha.DefaultRates()
	for label, r := range cfg.Rates {
		tier, err := gacha.ParseTier(label)
		if err != nil {
			errs = append(errs, fmt.Sprintf("rates.%s: unknown tier", label))
			continue
		}
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			errs = append(errs, fmt.Sprintf("rates.%s must be a finite number >= 0", label))
			continue
		}
		rates[tier] = r
	}
	var total float64
	for _, r := range rates {
		total += r
	}
	if total <= 0 {
		errs = append(errs, "rates must not all be zero")
	}
	boosted := total + rates[gacha.TopTier]*(pityConfig(cfg.Pity).SoftMultiplier-1)
	if math.IsInf(total, 0) || math.IsInf(boosted, 0) || math.IsNaN(boosted) {
		errs = append(errs, "rates overflow once soft pity boosts the SSR rate")
	}

	// pity: fill the gaps from the engine defaults before checking the triple
	if cfg.Pity != nil {
		if err := pityConfig(cfg.Pity).Validate(); err != nil {
			errs = append(errs, "pity: "+err.Error())
		}
	}

	// items
	tops := map[string]bool{}
	for i, it := range cfg.Items {
		if it.Name == "" {
			errs = append(errs, fmt.Sprintf("items[%d].name is required", i))
		}
		tier, err := gacha.ParseTier(it.Tier)
		if err != nil {
			errs = append(errs, fmt.Sprintf("items[%d].tier %q is not one of SSR, SR, R, Common", i, it.Tier))
		} else if tier == gacha.TopTier {
			tops[it.Name] = true
		}
		if math.IsNaN(it.Weight) || math.IsInf(it.Weight, 0) || it.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("items[%d].weight must be > 0", i))
		}
	}
	if len(tops) == 0 {
		errs = append(errs, "items must contain at least one SSR item")
	}
	if cfg.Guaranteed != "" && !tops[cfg.Guaranteed] {
		errs = append(errs, fmt.Sprintf("guaranteed %q is not an SSR item", cfg.Guaranteed))
	}

	// tokens (optional)
	if cfg.Tokens != nil {
		if cfg.Tokens.PerDraw != nil && *cfg.Tokens.PerDraw < 0 {
			errs = append(errs, "tokens.per_draw must be >= 0")
		}
		if cfg.Tokens.PerTenDraw != nil && *cfg.Tokens.PerTenDraw < 0 {
			errs = append(errs, "tokens.per_ten_draw must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func pityConfig(p *PityCfg) gacha.PityConfig {
	cfg := gacha.DefaultPity()
	if p == nil {
		return cfg
	}
	if p.Hard != nil {
		cfg.HardThreshold = *p.Hard
	}
	if p.SoftStart != nil {
		cfg.SoftStart = *p.SoftStart
	}
	if p.Multiplier != nil {
		cfg.SoftMultiplier = *p.Multiplier
	}
	return cfg
}
