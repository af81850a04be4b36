package gacha

import (
	"errors"
	"fmt"
)

var ErrInvalidPityConfig = errors.New("invalid pity config")

// PityConfig holds the hard and soft pity parameters.
// Example: HardThreshold=90, SoftStart=75, SoftMultiplier=5 → draws 75..89
// roll the top tier at 5x its base rate, draw #90 is guaranteed.
type PityConfig struct {
	HardThreshold  int     `json:"hard_threshold"`  // draw count that forces the guaranteed item
	SoftStart      int     `json:"soft_start"`      // draw count at which the boost begins
	SoftMultiplier float64 `json:"soft_multiplier"` // top-tier rate multiplier while in soft pity
}

// DefaultPity mirrors the usual 90/75 schedule with a 5x boost.
func DefaultPity() PityConfig {
	return PityConfig{HardThreshold: 90, SoftStart: 75, SoftMultiplier: 5.0}
}

// Validate checks the parameters; it never adjusts them.
func (c PityConfig) Validate() error {
	switch {
	case c.HardThreshold <= 0:
		return fmt.Errorf("%w: hard threshold must be > 0, got %d", ErrInvalidPityConfig, c.HardThreshold)
	case c.SoftStart <= 0:
		return fmt.Errorf("%w: soft start must be > 0, got %d", ErrInvalidPityConfig, c.SoftStart)
	case c.SoftStart >= c.HardThreshold:
		return fmt.Errorf("%w: soft start %d must be < hard threshold %d", ErrInvalidPityConfig, c.SoftStart, c.HardThreshold)
	case !finite(c.SoftMultiplier) || c.SoftMultiplier <= 1.0:
		return fmt.Errorf("%w: multiplier must be > 1, got %v", ErrInvalidPityConfig, c.SoftMultiplier)
	}
	return nil
}

// ConfigurePity replaces all three pity parameters at once.
// On error the previous configuration stays in effect.
func (e *Engine) ConfigurePity(hard, softStart int, multiplier float64) error {
	cfg := PityConfig{HardThreshold: hard, SoftStart: softStart, SoftMultiplier: multiplier}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !finite(boostedTotal(e.rates, multiplier)) {
		return fmt.Errorf("%w: multiplier %v overflows the boosted rate total", ErrInvalidPityConfig, multiplier)
	}
	e.pity = cfg
	return nil
}

// Pity returns the active configuration.
func (e *Engine) Pity() PityConfig { return e.pity }

// DrawCount is the number of draws since the last top-tier result.
func (e *Engine) DrawCount() int { return e.count }

// PullsUntilHardPity may go negative only if the threshold was lowered below
// the current count; the next draw is then guaranteed.
func (e *Engine) PullsUntilHardPity() int { return e.pity.HardThreshold - e.count }

// PullsUntilSoftPity is <= 0 once soft pity is active.
func (e *Engine) PullsUntilSoftPity() int { return e.pity.SoftStart - e.count }

func (e *Engine) InSoftPity() bool {
	return e.count >= e.pity.SoftStart && e.count < e.pity.HardThreshold
}
