package banner

import (
	"fmt"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/token"
)

// Built is a ready engine plus the banner metadata presentation layers need.
type Built struct {
	Name    string
	Title   string
	Version string
	Engine  *gacha.Engine
	Token   token.Token
}

// Build validates cfg and turns it into a configured engine.
// Items are added in file order so per-tier insertion order follows the file.
func Build(name string, cfg RawConfig, rng gacha.RandomSource) (Built, error) {
	if err := ValidateRaw(cfg); err != nil {
		return Built{}, fmt.Errorf("banner %s: %w", name, err)
	}

	e := gacha.New(gacha.WithRNG(rng))

	applyRates := func() error {
		// non-zero first so an intermediate state never sums to 0
		for _, pass := range []bool{true, false} {
			for label, r := range cfg.Rates {
				if (r > 0) != pass {
					continue
				}
				tier, _ := gacha.ParseTier(label)
				if err := e.SetTierRate(tier, r); err != nil {
					return err
				}
			}
		}
		return nil
	}
	p := pityConfig(cfg.Pity)
	applyPity := func() error {
		return e.ConfigurePity(p.HardThreshold, p.SoftStart, p.SoftMultiplier)
	}
	// a lower multiplier lands before the rates and a higher one after, so
	// the boosted rate total never exceeds its final value mid-build
	steps := []func() error{applyRates, applyPity}
	if p.SoftMultiplier <= e.Pity().SoftMultiplier {
		steps = []func() error{applyPity, applyRates}
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Built{}, fmt.Errorf("banner %s: %w", name, err)
		}
	}

	for _, ic := range cfg.Items {
		tier, _ := gacha.ParseTier(ic.Tier)
		it := gacha.Item{Name: ic.Name, Tier: tier, Weight: ic.Weight, Title: ic.Title, Flavor: ic.Flavor}
		if err := e.AddItem(it); err != nil {
			return Built{}, fmt.Errorf("banner %s: %w", name, err)
		}
	}
	if cfg.Guaranteed != "" {
		if err := e.SetGuaranteedItemByName(cfg.Guaranteed); err != nil {
			return Built{}, fmt.Errorf("banner %s: %w", name, err)
		}
	}

	return Built{
		Name:    name,
		Title:   cfg.Title,
		Version: cfg.Version,
		Engine:  e,
		Token:   tokenFor(cfg.Tokens),
	}, nil
}

// Load merges, validates and builds the named banner in one step.
func (l *Loader) Load(name string, rng gacha.RandomSource) (Built, error) {
	if name == "" {
		name = DefaultName
	}
	cfg, err := l.LoadMerged(name)
	if err != nil {
		return Built{}, err
	}
	return Build(name, cfg, rng)
}

func tokenFor(tc *TokenConfig) token.Token {
	t := token.Default()
	if tc == nil {
		return t
	}
	if tc.Name != "" {
		t.Name = tc.Name
	}
	if tc.PerDraw != nil {
		t.PerDraw = *tc.PerDraw
	}
	if tc.PerTenDraw != nil {
		t.PerTenDraw = *tc.PerTenDraw
	}
	return t
}
